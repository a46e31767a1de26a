package lexer

import "github.com/xirelogy/go-roxy/internal/token"

// Lexer converts source text into a stream of tokens on demand.
// Lexemes are slices of the input string, so scanning does not copy text.
type Lexer struct {
	input string
	start int // start of the token being scanned
	pos   int // next byte to read
	line  int
}

// New creates a lexer for the provided source text.
func New(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
	}
}

// NextToken returns the next token from the input. Once the input is
// exhausted it keeps returning EOF.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.start = l.pos

	if l.atEnd() {
		return l.makeToken(token.EOF)
	}

	ch := l.advance()
	switch ch {
	case '(':
		return l.makeToken(token.LParen)
	case ')':
		return l.makeToken(token.RParen)
	case '{':
		return l.makeToken(token.LBrace)
	case '}':
		return l.makeToken(token.RBrace)
	case ',':
		return l.makeToken(token.Comma)
	case '.':
		return l.makeToken(token.Dot)
	case ';':
		return l.makeToken(token.Semicolon)
	case '+':
		return l.makeToken(token.Plus)
	case '-':
		return l.makeToken(token.Minus)
	case '*':
		return l.makeToken(token.Star)
	case '/':
		return l.makeToken(token.Slash)
	case '!':
		if l.match('=') {
			return l.makeToken(token.BangEqual)
		}
		return l.makeToken(token.Bang)
	case '=':
		if l.match('=') {
			return l.makeToken(token.EqualEqual)
		}
		return l.makeToken(token.Equal)
	case '>':
		if l.match('=') {
			return l.makeToken(token.GreaterEqual)
		}
		return l.makeToken(token.Greater)
	case '<':
		if l.match('=') {
			return l.makeToken(token.LessEqual)
		}
		return l.makeToken(token.Less)
	case '"':
		return l.readString()
	}

	switch {
	case isDigit(ch):
		return l.readNumber()
	case isAlpha(ch) || ch == '_':
		return l.readIdentifier()
	}
	return l.errorToken("Unexpected character.")
}

func (l *Lexer) makeToken(t token.Type) token.Token {
	return token.Token{
		Type:   t,
		Lexeme: l.input[l.start:l.pos],
		Span:   token.Span{Start: l.start, End: l.pos, Line: l.line},
	}
}

func (l *Lexer) errorToken(msg string) token.Token {
	return token.Token{
		Type:   token.Error,
		Lexeme: msg,
		Span:   token.Span{Start: l.start, End: l.pos, Line: l.line},
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.pos++
		case '\n':
			l.line++
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) readString() token.Token {
	line := l.line
	for !l.atEnd() && l.peek() != '"' {
		if l.peek() == '\n' {
			l.line++
		}
		l.pos++
	}
	if l.atEnd() {
		return l.errorToken("Unterminated string")
	}
	l.pos++ // closing quote

	return token.Token{
		Type:   token.String,
		Lexeme: l.input[l.start+1 : l.pos-1],
		Span:   token.Span{Start: l.start, End: l.pos, Line: line},
	}
}

func (l *Lexer) readNumber() token.Token {
	for isDigit(l.peek()) {
		l.pos++
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.pos++
		for isDigit(l.peek()) {
			l.pos++
		}
	}
	return l.makeToken(token.Number)
}

func (l *Lexer) readIdentifier() token.Token {
	for isAlpha(l.peek()) {
		l.pos++
	}
	tok := l.makeToken(token.Ident)
	tok.Type = token.LookupIdent(tok.Lexeme)
	return tok
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.input[l.pos] != expected {
		return false
	}
	l.pos++
	return true
}

func (l *Lexer) advance() byte {
	ch := l.input[l.pos]
	l.pos++
	return ch
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
