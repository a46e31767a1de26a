package compiler

import "github.com/xirelogy/go-roxy/internal/bytecode"

const (
	OP_CONSTANT = bytecode.OP_CONSTANT
	OP_NIL      = bytecode.OP_NIL
	OP_TRUE     = bytecode.OP_TRUE
	OP_FALSE    = bytecode.OP_FALSE
	OP_ADD      = bytecode.OP_ADD
	OP_SUBTRACT = bytecode.OP_SUBTRACT
	OP_MULTIPLY = bytecode.OP_MULTIPLY
	OP_DIVIDE   = bytecode.OP_DIVIDE
	OP_NEGATE   = bytecode.OP_NEGATE
	OP_NOT      = bytecode.OP_NOT
	OP_EQUAL    = bytecode.OP_EQUAL
	OP_GREATER  = bytecode.OP_GREATER
	OP_LESS     = bytecode.OP_LESS
	OP_RETURN   = bytecode.OP_RETURN
)
