package vm

import (
	"fmt"

	"github.com/xirelogy/go-roxy/internal/bytecode"
)

// TraceInfo describes a single instruction dispatch for debugging/tracing.
type TraceInfo struct {
	Op         bytecode.OpCode
	Line       int
	IP         int
	StackDepth int
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// RuntimeError is a recoverable fault raised while executing a chunk.
type RuntimeError struct {
	Message string
	Line    int
	Offset  int
	Op      bytecode.OpCode
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[line %d] Runtime error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("Runtime error: %s", e.Message)
}

// Unwrap exposes the original error, if any.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// fault converts an operator error into a *RuntimeError located at the
// instruction that raised it, then clears the stack so the VM can be reused.
func (vm *VM) fault(cause error) (Result, error) {
	err := &RuntimeError{
		Message: cause.Error(),
		Line:    vm.chunk.LineAt(vm.lastOp),
		Offset:  vm.lastOp,
		Cause:   cause,
	}
	if vm.lastOp >= 0 && vm.lastOp < len(vm.chunk.Code) {
		err.Op = vm.chunk.Code[vm.lastOp].Op
	}
	vm.stack = vm.stack[:0]
	return Result{}, err
}

func (vm *VM) trace() {
	if vm.tracer != nil {
		// Tracing is read-only; a formatting failure must not stop execution.
		_ = vm.tracer.Instruction(vm.chunk, vm.ip, vm.stack)
	}
	if vm.traceHook == nil {
		return
	}
	vm.traceHook(TraceInfo{
		Op:         vm.chunk.Code[vm.ip].Op,
		Line:       vm.chunk.LineAt(vm.ip),
		IP:         vm.ip,
		StackDepth: len(vm.stack),
	})
}
