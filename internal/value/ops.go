package value

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrTypeMismatch is the cause of every *OperandError.
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrIntegerOverflow = errors.New("Integer overflow.")
	ErrDivisionByZero  = errors.New("Division by zero.")
)

// OperandError reports an operator applied to operands of the wrong kind.
type OperandError struct {
	Op      string
	Left    Kind
	Right   Kind
	Unary   bool
	Message string
}

func (e *OperandError) Error() string {
	return e.Message
}

// Detail describes the offending operand kinds.
func (e *OperandError) Detail() string {
	if e.Unary {
		return fmt.Sprintf("%s %s", e.Op, e.Right)
	}
	return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
}

func (e *OperandError) Unwrap() error {
	return ErrTypeMismatch
}

func binaryMismatch(op string, a, b Value, msg string) error {
	return &OperandError{Op: op, Left: a.Kind, Right: b.Kind, Message: msg}
}

const (
	msgNumbers       = "Operands must be numbers."
	msgNumberOperand = "Operand must be a number."
	msgAddOperands   = "Operands must be two numbers or two strings."
)

// Add returns a + b. Two strings concatenate into a new string.
func Add(a, b Value) (Value, error) {
	if a.Kind == KindString && b.Kind == KindString {
		return String(a.Str + b.Str), nil
	}
	if !a.IsNumber() || !b.IsNumber() {
		return Nil(), binaryMismatch("+", a, b, msgAddOperands)
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		c := a.Int + b.Int
		if (a.Int^c)&(b.Int^c) < 0 {
			return Nil(), ErrIntegerOverflow
		}
		return Int(c), nil
	}
	x, y := promote(a, b)
	return Float(x + y), nil
}

// Subtract returns a - b.
func Subtract(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Nil(), binaryMismatch("-", a, b, msgNumbers)
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		c := a.Int - b.Int
		if (a.Int^b.Int)&(a.Int^c) < 0 {
			return Nil(), ErrIntegerOverflow
		}
		return Int(c), nil
	}
	x, y := promote(a, b)
	return Float(x - y), nil
}

// Multiply returns a * b.
func Multiply(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Nil(), binaryMismatch("*", a, b, msgNumbers)
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		x, y := a.Int, b.Int
		if x == 0 || y == 0 {
			return Int(0), nil
		}
		if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return Nil(), ErrIntegerOverflow
		}
		c := x * y
		if c/y != x {
			return Nil(), ErrIntegerOverflow
		}
		return Int(c), nil
	}
	x, y := promote(a, b)
	return Float(x * y), nil
}

// Divide returns a / b. Integer division truncates toward zero; float
// division follows IEEE-754.
func Divide(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Nil(), binaryMismatch("/", a, b, msgNumbers)
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		if b.Int == 0 {
			return Nil(), ErrDivisionByZero
		}
		if a.Int == math.MinInt64 && b.Int == -1 {
			return Nil(), ErrIntegerOverflow
		}
		return Int(a.Int / b.Int), nil
	}
	x, y := promote(a, b)
	return Float(x / y), nil
}

// Negate returns -v.
func Negate(v Value) (Value, error) {
	switch v.Kind {
	case KindInt:
		if v.Int == math.MinInt64 {
			return Nil(), ErrIntegerOverflow
		}
		return Int(-v.Int), nil
	case KindFloat:
		return Float(-v.Float), nil
	default:
		return Nil(), &OperandError{Op: "-", Right: v.Kind, Unary: true, Message: msgNumberOperand}
	}
}

// Not returns the logical negation of v.
func Not(v Value) Value {
	return Bool(v.Falsey())
}

// Equal compares a and b. Values of different kinds are unequal, except
// Int and Float which compare by numeric value.
func Equal(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		if a.Kind == KindInt && b.Kind == KindInt {
			return a.Int == b.Int
		}
		x, y := promote(a, b)
		return x == y
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.B == b.B
	case KindString:
		return a.Str == b.Str
	default:
		return false
	}
}

// Greater returns a > b for numeric operands.
func Greater(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Nil(), binaryMismatch(">", a, b, msgNumbers)
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		return Bool(a.Int > b.Int), nil
	}
	x, y := promote(a, b)
	return Bool(x > y), nil
}

// Less returns a < b for numeric operands.
func Less(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Nil(), binaryMismatch("<", a, b, msgNumbers)
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		return Bool(a.Int < b.Int), nil
	}
	x, y := promote(a, b)
	return Bool(x < y), nil
}

func promote(a, b Value) (float64, float64) {
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	return x, y
}
