package token

import "fmt"

// Type identifies the category of a token.
type Type string

// Token carries the lexical item along with its source span.
// Lexeme is a substring of the scanned source; for String tokens it excludes
// the quotes, for Error tokens it holds the diagnostic message.
type Token struct {
	Type   Type
	Lexeme string
	Span   Span
}

// Line returns the 1-based source line of the token.
func (t Token) Line() int {
	return t.Span.Line
}

func (t Token) String() string {
	if t.Type == EOF {
		return fmt.Sprintf("Token ( %s line: %d )", t.Type, t.Span.Line)
	}
	return fmt.Sprintf("Token ( %s %q span: %s )", t.Type, t.Lexeme, t.Span)
}

// Span is a half-open byte range [Start, End) into the source plus the line it starts on.
type Span struct {
	Start int
	End   int
	Line  int
}

// Combine returns the smallest span covering both s and o.
func (s Span) Combine(o Span) Span {
	out := s
	if o.Start < out.Start {
		out.Start = o.Start
		out.Line = o.Line
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}

// Len reports the number of source bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d line: %d", s.Start, s.End, s.Line)
}

const (
	Error Type = "ERROR"
	EOF   Type = "EOF"

	// identifiers and literals
	Ident  Type = "IDENT"
	String Type = "STRING"
	Number Type = "NUMBER"

	// keywords
	And    Type = "AND"
	Class  Type = "CLASS"
	Else   Type = "ELSE"
	False  Type = "FALSE"
	Fn     Type = "FN"
	For    Type = "FOR"
	If     Type = "IF"
	Nil    Type = "NIL"
	Or     Type = "OR"
	Return Type = "RETURN"
	Super  Type = "SUPER"
	This   Type = "THIS"
	True   Type = "TRUE"
	Var    Type = "VAR"
	While  Type = "WHILE"

	// operators
	Plus         Type = "PLUS"         // +
	Minus        Type = "MINUS"        // -
	Star         Type = "STAR"         // *
	Slash        Type = "SLASH"        // /
	Bang         Type = "BANG"         // !
	BangEqual    Type = "BANGEQUAL"    // !=
	Equal        Type = "EQUAL"        // =
	EqualEqual   Type = "EQUALEQUAL"   // ==
	Greater      Type = "GREATER"      // >
	GreaterEqual Type = "GREATEREQUAL" // >=
	Less         Type = "LESS"         // <
	LessEqual    Type = "LESSEQUAL"    // <=

	// delimiters
	LParen    Type = "LPAREN"
	RParen    Type = "RPAREN"
	LBrace    Type = "LBRACE"
	RBrace    Type = "RBRACE"
	Comma     Type = "COMMA"
	Dot       Type = "DOT"
	Semicolon Type = "SEMICOLON"
)

var keywords = map[string]Type{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"fn":     Fn,
	"for":    For,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// LookupIdent returns the keyword token type or Ident. Matching is case-sensitive.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return Ident
}
