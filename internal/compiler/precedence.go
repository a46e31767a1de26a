package compiler

import "github.com/xirelogy/go-roxy/internal/token"

// Precedence orders binding strength from loosest to tightest.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

var precNames = [...]string{
	PrecNone:       "None",
	PrecAssignment: "Assignment",
	PrecOr:         "Or",
	PrecAnd:        "And",
	PrecEquality:   "Equality",
	PrecComparison: "Comparison",
	PrecTerm:       "Term",
	PrecFactor:     "Factor",
	PrecUnary:      "Unary",
	PrecCall:       "Call",
	PrecPrimary:    "Primary",
}

func (p Precedence) String() string {
	if p < 0 || int(p) >= len(precNames) {
		return "Invalid"
	}
	return precNames[p]
}

// Next returns the level one step tighter than p. Binary operators parse
// their right operand at Next so equal-precedence operators associate left.
func (p Precedence) Next() Precedence {
	if p >= PrecPrimary {
		return PrecPrimary
	}
	return p + 1
}

type parseFn func(*Compiler)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// getRule returns the prefix/infix handlers and infix precedence for t.
// New expression forms are added here.
func getRule(t token.Type) parseRule {
	switch t {
	case token.LParen:
		return parseRule{prefix: (*Compiler).grouping}
	case token.Minus:
		return parseRule{prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm}
	case token.Plus:
		return parseRule{infix: (*Compiler).binary, precedence: PrecTerm}
	case token.Slash, token.Star:
		return parseRule{infix: (*Compiler).binary, precedence: PrecFactor}
	case token.Bang:
		return parseRule{prefix: (*Compiler).unary}
	case token.BangEqual, token.EqualEqual:
		return parseRule{infix: (*Compiler).binary, precedence: PrecEquality}
	case token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		return parseRule{infix: (*Compiler).binary, precedence: PrecComparison}
	case token.Number:
		return parseRule{prefix: (*Compiler).number}
	case token.String:
		return parseRule{prefix: (*Compiler).str}
	case token.True, token.False, token.Nil:
		return parseRule{prefix: (*Compiler).literal}
	default:
		return parseRule{}
	}
}
