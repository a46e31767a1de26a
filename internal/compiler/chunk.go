package compiler

import "github.com/xirelogy/go-roxy/internal/bytecode"

type Chunk = bytecode.Chunk
type Instruction = bytecode.Instruction
type OpCode = bytecode.OpCode
