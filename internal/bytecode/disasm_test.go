package bytecode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xirelogy/go-roxy/internal/value"
)

func buildChunk(t *testing.T) *Chunk {
	t.Helper()
	c := New()
	idx, err := c.AddConstant(value.Float(1.2))
	if err != nil {
		t.Fatalf("add constant: %v", err)
	}
	c.Write(Constant(idx), 123)
	c.Write(Simple(OP_NEGATE), 123)
	c.Write(Simple(OP_RETURN), 124)
	return c
}

func TestDisassembleChunk(t *testing.T) {
	c := buildChunk(t)
	var buf bytes.Buffer
	dis := NewDisassembler(&buf)
	if err := dis.DisassembleChunk("test chunk", c); err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	want := strings.Join([]string{
		"== BEGIN test chunk ==",
		"0000  123 OP_CONSTANT         0 '1.2'",
		"0001    | OP_NEGATE",
		"0002  124 OP_RETURN",
		"== END   test chunk ==",
		"",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected dump:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestDisassembleInstructionWithStack(t *testing.T) {
	c := buildChunk(t)
	var buf bytes.Buffer
	dis := NewDisassembler(&buf)
	if err := dis.Instruction(c, 1, []value.Value{value.Int(1), value.String("a")}); err != nil {
		t.Fatalf("instruction: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "S: [ 1 ][ \"a\" ]\n") {
		t.Fatalf("expected stack line, got:\n%s", out)
	}
	buf.Reset()
	if err := dis.Instruction(c, 0, []value.Value{}); err != nil {
		t.Fatalf("instruction: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "S: [ ]\n") {
		t.Fatalf("expected empty stack line, got:\n%s", buf.String())
	}
}

func TestDisassembleDoesNotMutate(t *testing.T) {
	c := buildChunk(t)
	code := append([]Instruction(nil), c.Code...)
	lines := append([]int(nil), c.Lines...)
	consts := append([]value.Value(nil), c.Consts...)

	var buf bytes.Buffer
	if err := NewDisassembler(&buf).DisassembleChunk("x", c); err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	for i := range code {
		if c.Code[i] != code[i] || c.Lines[i] != lines[i] {
			t.Fatalf("instruction %d changed", i)
		}
	}
	for i := range consts {
		if c.Consts[i] != consts[i] {
			t.Fatalf("constant %d changed", i)
		}
	}
}

func TestDisassembleErrors(t *testing.T) {
	dis := NewDisassembler(&bytes.Buffer{})
	if err := dis.DisassembleChunk("nil", nil); err == nil {
		t.Fatalf("expected error for nil chunk")
	}
	c := New()
	c.Write(Constant(3), 1)
	if err := dis.Instruction(c, 0, nil); err == nil {
		t.Fatalf("expected error for bad constant index")
	}
	if err := dis.Instruction(c, 5, nil); err == nil {
		t.Fatalf("expected error for bad offset")
	}
}

func TestChunkConstantLimit(t *testing.T) {
	c := New()
	for i := 0; i < MaxConstants; i++ {
		idx, err := c.AddConstant(value.Int(int64(i)))
		if err != nil {
			t.Fatalf("constant %d: %v", i, err)
		}
		if int(idx) != i {
			t.Fatalf("expected index %d, got %d", i, idx)
		}
	}
	if _, err := c.AddConstant(value.Int(256)); !errors.Is(err, ErrTooManyConstants) {
		t.Fatalf("expected ErrTooManyConstants, got %v", err)
	}
	if len(c.Consts) != MaxConstants {
		t.Fatalf("pool grew past limit: %d", len(c.Consts))
	}
	v, err := c.ReadConstant(255)
	if err != nil || v != value.Int(255) {
		t.Fatalf("read constant 255: %v %v", v, err)
	}
	if _, err := c.ReadConstant(0); err != nil {
		t.Fatalf("read constant 0: %v", err)
	}
}

func TestChunkLinesParallelCode(t *testing.T) {
	c := buildChunk(t)
	if len(c.Code) != len(c.Lines) || c.Len() != 3 {
		t.Fatalf("code/lines mismatch: %d vs %d", len(c.Code), len(c.Lines))
	}
	if c.LineAt(2) != 124 || c.LineAt(9) != 0 {
		t.Fatalf("unexpected LineAt results")
	}
	if _, err := New().ReadConstant(0); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestOpCodeNames(t *testing.T) {
	if OP_RETURN.String() != "OP_RETURN" {
		t.Fatalf("unexpected name %s", OP_RETURN)
	}
	if OpCode(0x07).Valid() {
		t.Fatalf("reserved slot should not be valid")
	}
	if OpCode(0x07).String() != "OP_UNKNOWN_0x07" {
		t.Fatalf("unexpected unknown name %s", OpCode(0x07))
	}
	if Constant(4).String() != "OP_CONSTANT 4" {
		t.Fatalf("unexpected instruction string %s", Constant(4))
	}
}
