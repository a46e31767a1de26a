package value

import (
	"math"
	"strconv"
)

type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is the runtime representation of every roxy value. It is copied by
// value; the string payload is an immutable Go string, so copies share the
// same backing storage and it is released once no value refers to it.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	B     bool
}

func Nil() Value { return Value{Kind: KindNil} }
func Bool(b bool) Value {
	return Value{Kind: KindBool, B: b}
}
func Int(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}
func Float(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// IsNumber reports whether v is an Int or a Float.
func (v Value) IsNumber() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// AsFloat returns the numeric payload promoted to float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Falsey reports whether v counts as false for logical negation.
// Only nil and false are falsey.
func (v Value) Falsey() bool {
	switch v.Kind {
	case KindNil:
		return true
	case KindBool:
		return !v.B
	default:
		return false
	}
}

// String returns the display form used by the REPL and the disassembler.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindString:
		return v.Str
	default:
		return "<invalid>"
	}
}

// GoString quotes strings so debug output distinguishes "1" from 1.
func (v Value) GoString() string {
	if v.Kind == KindString {
		return strconv.Quote(v.Str)
	}
	return v.String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
