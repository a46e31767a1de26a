package vm

import (
	"fmt"
	"io"

	"github.com/xirelogy/go-roxy/internal/bytecode"
)

// Disassemble emits assembly-style output for the chunk most recently run.
func (vm *VM) Disassemble(w io.Writer, label string) error {
	if vm == nil {
		return fmt.Errorf("nil VM")
	}
	if w == nil {
		return fmt.Errorf("nil writer")
	}
	if vm.chunk == nil {
		return fmt.Errorf("no chunk loaded")
	}
	return bytecode.NewDisassembler(w).DisassembleChunk(label, vm.chunk)
}
