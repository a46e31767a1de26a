package bytecode

import (
	"fmt"
	"io"
	"strings"

	"github.com/xirelogy/go-roxy/internal/value"
)

// Disassembler formats bytecode as a readable assembly-style dump.
// It only reads the chunk and stack it is given.
type Disassembler struct {
	w io.Writer
}

// NewDisassembler constructs a disassembler that writes to w.
func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{w: w}
}

// DisassembleChunk emits every instruction of chunk between BEGIN/END markers.
func (d *Disassembler) DisassembleChunk(label string, chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("nil chunk")
	}
	if label == "" {
		label = "<chunk>"
	}
	fmt.Fprintf(d.w, "== BEGIN %s ==\n", label)
	for offset := range chunk.Code {
		if err := d.Instruction(chunk, offset, nil); err != nil {
			return err
		}
	}
	fmt.Fprintf(d.w, "== END   %s ==\n\n", label)
	return nil
}

// Instruction emits the instruction at offset. When stack is non-nil the
// stack contents are printed on the line before it.
func (d *Disassembler) Instruction(chunk *Chunk, offset int, stack []value.Value) error {
	if chunk == nil {
		return fmt.Errorf("nil chunk")
	}
	if offset < 0 || offset >= len(chunk.Code) {
		return fmt.Errorf("offset out of range: %d", offset)
	}
	if stack != nil {
		fmt.Fprintln(d.w, FormatStack(stack))
	}

	line := chunk.LineAt(offset)
	lineStr := fmt.Sprintf("%4d", line)
	if offset > 0 && line == chunk.LineAt(offset-1) {
		lineStr = "   |"
	}

	in := chunk.Code[offset]
	fmt.Fprintf(d.w, "%04d %s ", offset, lineStr)
	if !in.Op.HasOperand() {
		fmt.Fprintln(d.w, in.Op)
		return nil
	}
	if int(in.Operand) >= len(chunk.Consts) {
		return fmt.Errorf("const index out of range: %d", in.Operand)
	}
	fmt.Fprintf(d.w, "%-16s %4d '%s'\n", in.Op, in.Operand, chunk.Consts[in.Operand].GoString())
	return nil
}

// FormatStack renders stack slots bottom to top as "S: [ a ][ b ]".
func FormatStack(stack []value.Value) string {
	if len(stack) == 0 {
		return "S: [ ]"
	}
	var sb strings.Builder
	sb.WriteString("S: ")
	for _, v := range stack {
		sb.WriteString("[ ")
		sb.WriteString(v.GoString())
		sb.WriteString(" ]")
	}
	return sb.String()
}
