package vm_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xirelogy/go-roxy/internal/bytecode"
	"github.com/xirelogy/go-roxy/internal/compiler"
	"github.com/xirelogy/go-roxy/internal/value"
	"github.com/xirelogy/go-roxy/internal/vm"
)

func compileChunk(t *testing.T, src string) *bytecode.Chunk {
	t.Helper()
	chunk := bytecode.New()
	if err := compiler.Compile(src, chunk); err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return chunk
}

func runSource(t *testing.T, src string, opts ...vm.Option) vm.Value {
	t.Helper()
	machine := vm.New(opts...)
	res, err := machine.Run(compileChunk(t, src))
	if err != nil {
		t.Fatalf("%q: vm run error: %v", src, err)
	}
	if !res.HasValue {
		t.Fatalf("%q: expected a result value", src)
	}
	return res.Value
}

func runFault(t *testing.T, src string) *vm.RuntimeError {
	t.Helper()
	machine := vm.New()
	_, err := machine.Run(compileChunk(t, src))
	var rtErr *vm.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("%q: expected *RuntimeError, got %v", src, err)
	}
	if machine.StackDepth() != 0 {
		t.Fatalf("%q: stack should be cleared after a fault, depth %d", src, machine.StackDepth())
	}
	return rtErr
}

func TestVMArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want vm.Value
	}{
		{"2 + 3 * 4", value.Int(14)},
		{"(2 + 3) * 4", value.Int(20)},
		{"10 - 2 - 3", value.Int(5)},
		{"100 / 10 / 5", value.Int(2)},
		{"1 + 2.5", value.Float(3.5)},
		{"7 / 2", value.Int(3)},
		{"7 / 2.0", value.Float(3.5)},
		{"-3 - -4", value.Int(1)},
		{"-(1.5)", value.Float(-1.5)},
		{"2 * (3 + 4) - 6 / 2", value.Int(11)},
	}
	for _, tt := range tests {
		if got := runSource(t, tt.src); got != tt.want {
			t.Fatalf("%q: expected %#v, got %#v", tt.src, tt.want, got)
		}
	}
}

func TestVMLiteralsAndLogic(t *testing.T) {
	tests := []struct {
		src  string
		want vm.Value
	}{
		{"true", value.Bool(true)},
		{"nil", value.Nil()},
		{"!nil", value.Bool(true)},
		{"!true", value.Bool(false)},
		{"!0", value.Bool(false)},
		{"1 == 1.0", value.Bool(true)},
		{"1 != 2", value.Bool(true)},
		{"nil == false", value.Bool(false)},
		{`"a" == "a"`, value.Bool(true)},
		{`"1" == 1`, value.Bool(false)},
		{"3 > 2", value.Bool(true)},
		{"3 < 2.5", value.Bool(false)},
		{"2 >= 2", value.Bool(true)},
		{"2 <= 1", value.Bool(false)},
		{"!(5 - 4 > 3 * 2 == !nil)", value.Bool(true)},
	}
	for _, tt := range tests {
		if got := runSource(t, tt.src); got != tt.want {
			t.Fatalf("%q: expected %#v, got %#v", tt.src, tt.want, got)
		}
	}
}

func TestVMStringConcatenation(t *testing.T) {
	got := runSource(t, `"ab" + "cd"`)
	if got.Kind != value.KindString || got.Str != "abcd" {
		t.Fatalf("expected abcd, got %#v", got)
	}
	got = runSource(t, `"a" + "b" + "c"`)
	if got.Str != "abc" {
		t.Fatalf("expected abc, got %#v", got)
	}
}

func TestVMRuntimeFaults(t *testing.T) {
	tests := []struct {
		src   string
		msg   string
		cause error
	}{
		{`"a" + 1`, "Operands must be two numbers or two strings.", value.ErrTypeMismatch},
		{`"a" - "b"`, "Operands must be numbers.", value.ErrTypeMismatch},
		{`-"a"`, "Operand must be a number.", value.ErrTypeMismatch},
		{`true > "x"`, "Operands must be numbers.", value.ErrTypeMismatch},
		{`nil <= 1`, "Operands must be numbers.", value.ErrTypeMismatch},
		{`1 / 0`, "Division by zero.", value.ErrDivisionByZero},
		{`9223372036854775807 + 1`, "Integer overflow.", value.ErrIntegerOverflow},
		{`-9223372036854775807 - 2`, "Integer overflow.", value.ErrIntegerOverflow},
	}
	for _, tt := range tests {
		rtErr := runFault(t, tt.src)
		if rtErr.Message != tt.msg {
			t.Fatalf("%q: expected message %q, got %q", tt.src, tt.msg, rtErr.Message)
		}
		if !errors.Is(rtErr, tt.cause) {
			t.Fatalf("%q: expected cause %v, got %v", tt.src, tt.cause, rtErr.Cause)
		}
	}
}

func TestVMFaultReportsLine(t *testing.T) {
	rtErr := runFault(t, "1\n+\n\"a\"")
	if rtErr.Line != 2 {
		t.Fatalf("expected fault on line 2, got %d", rtErr.Line)
	}
	if rtErr.Op != bytecode.OP_ADD || rtErr.Offset != 2 {
		t.Fatalf("expected OP_ADD at 2, got %v at %d", rtErr.Op, rtErr.Offset)
	}
	want := "[line 2] Runtime error: Operands must be two numbers or two strings."
	if rtErr.Error() != want {
		t.Fatalf("expected %q, got %q", want, rtErr.Error())
	}
}

func TestVMReusableAfterFault(t *testing.T) {
	machine := vm.New()
	if _, err := machine.Run(compileChunk(t, `1 + (2 - "x")`)); err == nil {
		t.Fatalf("expected fault")
	}
	res, err := machine.Run(compileChunk(t, "40 + 2"))
	if err != nil {
		t.Fatalf("run after fault: %v", err)
	}
	if res.Value != value.Int(42) {
		t.Fatalf("expected 42, got %#v", res.Value)
	}
}

func TestVMComparisonComplements(t *testing.T) {
	nums := []string{"-3", "0", "2", "2.0", "2.5", "7"}
	for _, a := range nums {
		for _, b := range nums {
			ge := runSource(t, fmt.Sprintf("%s >= %s", a, b))
			notLt := runSource(t, fmt.Sprintf("!(%s < %s)", a, b))
			if ge != notLt {
				t.Fatalf("%s >= %s gave %v but !(%s < %s) gave %v", a, b, ge, a, b, notLt)
			}
			le := runSource(t, fmt.Sprintf("%s <= %s", a, b))
			notGt := runSource(t, fmt.Sprintf("!(%s > %s)", a, b))
			if le != notGt {
				t.Fatalf("%s <= %s gave %v but !(%s > %s) gave %v", a, b, le, a, b, notGt)
			}
		}
	}
}

func TestVMNegationInvolution(t *testing.T) {
	for _, x := range []string{"0", "5", "123456789", "0.25", "1.5"} {
		got := runSource(t, fmt.Sprintf("-(-%s) == %s", x, x))
		if got != value.Bool(true) {
			t.Fatalf("-(-%s) != %s", x, x)
		}
	}
}

func TestVMReturnOnEmptyStack(t *testing.T) {
	chunk := bytecode.New()
	chunk.Write(bytecode.Simple(bytecode.OP_RETURN), 1)
	res, err := vm.New().Run(chunk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HasValue {
		t.Fatalf("expected no value, got %#v", res.Value)
	}
}

func TestVMStackUnderflowPanics(t *testing.T) {
	chunk := bytecode.New()
	chunk.Write(bytecode.Simple(bytecode.OP_NEGATE), 1)
	chunk.Write(bytecode.Simple(bytecode.OP_RETURN), 1)

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, vm.ErrStackUnderflow) {
			t.Fatalf("expected stack underflow panic, got %v", r)
		}
	}()
	_, _ = vm.New().Run(chunk)
	t.Fatalf("expected panic")
}

func TestVMStackOverflow(t *testing.T) {
	machine := vm.New(vm.WithStackLimit(2))
	if machine.StackLimit() != 2 {
		t.Fatalf("expected limit 2, got %d", machine.StackLimit())
	}
	_, err := machine.Run(compileChunk(t, "1 + (2 + 3)"))
	if !errors.Is(err, vm.ErrStackOverflow) {
		t.Fatalf("expected stack overflow, got %v", err)
	}
	if v := runSource(t, "1 + (2 + 3)", vm.WithStackLimit(3)); v != value.Int(6) {
		t.Fatalf("expected 6, got %#v", v)
	}
	if vm.New(vm.WithStackLimit(0)).StackLimit() != vm.StackMax {
		t.Fatalf("invalid limit should fall back to StackMax")
	}
}

func TestVMDeepNestingWithinDefaultLimit(t *testing.T) {
	depth := 200
	src := strings.Repeat("(1 + ", depth) + "1" + strings.Repeat(")", depth)
	if v := runSource(t, src); v != value.Int(int64(depth+1)) {
		t.Fatalf("expected %d, got %#v", depth+1, v)
	}
}

func TestVMTracingDoesNotAffectResults(t *testing.T) {
	sources := []string{"2 + 3 * 4", `"ab" + "cd"`, "!(1 >= 2)", `1 - "x"`}
	for _, src := range sources {
		chunk := compileChunk(t, src)
		plainRes, plainErr := vm.New().Run(chunk)

		var buf bytes.Buffer
		var hooks int
		traced := vm.New(
			vm.WithTraceWriter(&buf),
			vm.WithTraceHook(func(vm.TraceInfo) { hooks++ }),
		)
		tracedRes, tracedErr := traced.Run(chunk)

		if plainRes != tracedRes {
			t.Fatalf("%q: traced result %#v differs from %#v", src, tracedRes, plainRes)
		}
		if (plainErr == nil) != (tracedErr == nil) {
			t.Fatalf("%q: traced error %v differs from %v", src, tracedErr, plainErr)
		}
		if hooks == 0 || !strings.Contains(buf.String(), "S: [ ]") {
			t.Fatalf("%q: expected trace output, got hooks=%d:\n%s", src, hooks, buf.String())
		}
	}
}

func TestVMTraceHookInfo(t *testing.T) {
	var infos []vm.TraceInfo
	machine := vm.New()
	machine.SetTraceHook(func(info vm.TraceInfo) { infos = append(infos, info) })
	if _, err := machine.Run(compileChunk(t, "1 + 2")); err != nil {
		t.Fatalf("run: %v", err)
	}
	wantOps := []bytecode.OpCode{bytecode.OP_CONSTANT, bytecode.OP_CONSTANT, bytecode.OP_ADD, bytecode.OP_RETURN}
	wantDepth := []int{0, 1, 2, 1}
	if len(infos) != len(wantOps) {
		t.Fatalf("expected %d trace events, got %d", len(wantOps), len(infos))
	}
	for i, info := range infos {
		if info.Op != wantOps[i] || info.IP != i || info.StackDepth != wantDepth[i] || info.Line != 1 {
			t.Fatalf("event %d: unexpected %+v", i, info)
		}
	}
}

func TestVMDisassembleLastChunk(t *testing.T) {
	machine := vm.New()
	var buf bytes.Buffer
	if err := machine.Disassemble(&buf, "none"); err == nil {
		t.Fatalf("expected error before any run")
	}
	if _, err := machine.Run(compileChunk(t, "-1")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := machine.Disassemble(&buf, "neg"); err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	if !strings.Contains(buf.String(), "OP_NEGATE") {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestVMStackEmptyAfterReturn(t *testing.T) {
	machine := vm.New()
	if _, err := machine.Run(compileChunk(t, "1")); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := machine.Stack()
	if len(snap) != 0 {
		t.Fatalf("stack should be empty after return, got %v", snap)
	}
}
