package bytecode

import (
	"errors"
	"fmt"

	"github.com/xirelogy/go-roxy/internal/value"
)

// MaxConstants is the number of pool entries an 8-bit operand can address.
const MaxConstants = 256

var ErrTooManyConstants = errors.New("too many constants in one chunk")

// Chunk is a compiled instruction stream with its constant pool.
// Lines[i] is the source line that produced Code[i].
type Chunk struct {
	Code   []Instruction
	Consts []value.Value
	Lines  []int
}

// New returns an empty chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends an instruction produced by the given source line.
func (c *Chunk) Write(in Instruction, line int) {
	c.Code = append(c.Code, in)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends v to the pool and returns its index.
func (c *Chunk) AddConstant(v value.Value) (uint8, error) {
	if len(c.Consts) >= MaxConstants {
		return 0, ErrTooManyConstants
	}
	c.Consts = append(c.Consts, v)
	return uint8(len(c.Consts) - 1), nil
}

// ReadConstant fetches pool entry idx.
func (c *Chunk) ReadConstant(idx uint8) (value.Value, error) {
	if int(idx) >= len(c.Consts) {
		return value.Nil(), fmt.Errorf("const index out of range: %d", idx)
	}
	return c.Consts[idx], nil
}

// Len returns the number of instructions.
func (c *Chunk) Len() int {
	return len(c.Code)
}

// LineAt returns the source line for the instruction at offset, or 0.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}
