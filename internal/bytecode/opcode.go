package bytecode

import "fmt"

// OpCode enumerates bytecode operations. Values are grouped in blocks of
// eight; the reserved slots are where variable, jump and call instructions go.
type OpCode byte

const (
	OP_CONSTANT OpCode = iota
	OP_NIL
	OP_TRUE
	OP_FALSE
	_ // reserved
	_ // reserved
	_ // reserved
	_ // reserved

	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_NEGATE
	OP_NOT
	_ // reserved
	_ // reserved

	OP_EQUAL
	OP_GREATER
	OP_LESS
	_ // reserved
	_ // reserved
	_ // reserved
	_ // reserved
	_ // reserved

	OP_RETURN
)

var opNames = map[OpCode]string{
	OP_CONSTANT: "OP_CONSTANT",
	OP_NIL:      "OP_NIL",
	OP_TRUE:     "OP_TRUE",
	OP_FALSE:    "OP_FALSE",
	OP_ADD:      "OP_ADD",
	OP_SUBTRACT: "OP_SUBTRACT",
	OP_MULTIPLY: "OP_MULTIPLY",
	OP_DIVIDE:   "OP_DIVIDE",
	OP_NEGATE:   "OP_NEGATE",
	OP_NOT:      "OP_NOT",
	OP_EQUAL:    "OP_EQUAL",
	OP_GREATER:  "OP_GREATER",
	OP_LESS:     "OP_LESS",
	OP_RETURN:   "OP_RETURN",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN_0x%02X", byte(op))
}

// Valid reports whether op is a known instruction.
func (op OpCode) Valid() bool {
	_, ok := opNames[op]
	return ok
}

// HasOperand reports whether op reads its inline operand.
func (op OpCode) HasOperand() bool {
	return op == OP_CONSTANT
}

// Instruction is one fixed-shape slot of the code stream: an opcode plus an
// optional 8-bit operand.
type Instruction struct {
	Op      OpCode
	Operand uint8
}

// Simple builds an instruction without an operand.
func Simple(op OpCode) Instruction {
	return Instruction{Op: op}
}

// Constant builds an OP_CONSTANT referring to pool index idx.
func Constant(idx uint8) Instruction {
	return Instruction{Op: OP_CONSTANT, Operand: idx}
}

func (in Instruction) String() string {
	if in.Op.HasOperand() {
		return fmt.Sprintf("%s %d", in.Op, in.Operand)
	}
	return in.Op.String()
}
