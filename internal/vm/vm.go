package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/xirelogy/go-roxy/internal/bytecode"
	"github.com/xirelogy/go-roxy/internal/value"
)

// Value is the runtime value type the VM operates on.
type Value = value.Value

// StackMax is the operand stack ceiling, matching the 8-bit operand width.
const StackMax = 256

var (
	// ErrStackUnderflow signals a malformed chunk popping an empty stack.
	// It is raised with panic because a compiled chunk can never cause it.
	ErrStackUnderflow = errors.New("stack underflow")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrBadConstant    = errors.New("constant index out of range")
	ErrStackOverflow  = errors.New("Stack overflow.")
)

// Result is the outcome of a run. HasValue is false when Return found the
// stack already empty.
type Result struct {
	Value    Value
	HasValue bool
}

// Option configures a VM.
type Option func(*VM)

// WithStackLimit caps the operand stack at n slots (1..StackMax).
func WithStackLimit(n int) Option {
	return func(vm *VM) {
		if n < 1 || n > StackMax {
			n = StackMax
		}
		vm.stackLimit = n
	}
}

// WithTraceWriter prints the live stack and each instruction to w before it
// executes.
func WithTraceWriter(w io.Writer) Option {
	return func(vm *VM) { vm.SetTraceWriter(w) }
}

// WithTraceHook registers a callback for instruction-level tracing.
func WithTraceHook(h TraceHook) Option {
	return func(vm *VM) { vm.traceHook = h }
}

// VM is a stack-based bytecode interpreter. A VM may run many chunks one
// after another but only one at a time.
type VM struct {
	chunk      *bytecode.Chunk
	ip         int
	lastOp     int
	stack      []Value
	stackLimit int
	traceHook  TraceHook
	tracer     *bytecode.Disassembler
}

// New constructs an idle VM.
func New(opts ...Option) *VM {
	vm := &VM{
		stack:      make([]Value, 0, StackMax),
		stackLimit: StackMax,
		lastOp:     -1,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// SetTraceHook registers a callback for instruction-level tracing.
func (vm *VM) SetTraceHook(h TraceHook) {
	vm.traceHook = h
}

// SetTraceWriter enables stack/instruction tracing to w; nil disables it.
func (vm *VM) SetTraceWriter(w io.Writer) {
	if w == nil {
		vm.tracer = nil
		return
	}
	vm.tracer = bytecode.NewDisassembler(w)
}

// ResetState clears transient execution state.
func (vm *VM) ResetState() {
	vm.stack = vm.stack[:0]
	vm.ip = 0
	vm.lastOp = -1
}

// Run executes chunk from offset 0 until OP_RETURN or a runtime fault.
// Faults are returned as *RuntimeError and leave the stack empty.
func (vm *VM) Run(chunk *bytecode.Chunk) (Result, error) {
	if chunk == nil {
		return Result{}, fmt.Errorf("nil chunk")
	}
	vm.chunk = chunk
	vm.ResetState()

	for vm.ip < len(chunk.Code) {
		vm.trace()
		vm.lastOp = vm.ip
		in := chunk.Code[vm.ip]
		vm.ip++

		switch in.Op {
		case bytecode.OP_CONSTANT:
			v, err := chunk.ReadConstant(in.Operand)
			if err != nil {
				panic(fmt.Errorf("%w: %d at %04d", ErrBadConstant, in.Operand, vm.lastOp))
			}
			if err := vm.push(v); err != nil {
				return vm.fault(err)
			}
		case bytecode.OP_NIL:
			if err := vm.push(value.Nil()); err != nil {
				return vm.fault(err)
			}
		case bytecode.OP_TRUE:
			if err := vm.push(value.Bool(true)); err != nil {
				return vm.fault(err)
			}
		case bytecode.OP_FALSE:
			if err := vm.push(value.Bool(false)); err != nil {
				return vm.fault(err)
			}
		case bytecode.OP_ADD, bytecode.OP_SUBTRACT, bytecode.OP_MULTIPLY, bytecode.OP_DIVIDE,
			bytecode.OP_GREATER, bytecode.OP_LESS:
			r := vm.pop()
			l := vm.pop()
			res, err := binaryOp(in.Op, l, r)
			if err != nil {
				return vm.fault(err)
			}
			vm.mustPush(res)
		case bytecode.OP_EQUAL:
			r := vm.pop()
			l := vm.pop()
			vm.mustPush(value.Bool(value.Equal(l, r)))
		case bytecode.OP_NEGATE:
			res, err := value.Negate(vm.pop())
			if err != nil {
				return vm.fault(err)
			}
			vm.mustPush(res)
		case bytecode.OP_NOT:
			vm.mustPush(value.Not(vm.pop()))
		case bytecode.OP_RETURN:
			if len(vm.stack) == 0 {
				return Result{}, nil
			}
			return Result{Value: vm.pop(), HasValue: true}, nil
		default:
			panic(fmt.Errorf("%w: %v at %04d", ErrUnknownOpcode, in.Op, vm.lastOp))
		}
	}
	return Result{}, nil
}

func binaryOp(op bytecode.OpCode, l, r Value) (Value, error) {
	switch op {
	case bytecode.OP_ADD:
		return value.Add(l, r)
	case bytecode.OP_SUBTRACT:
		return value.Subtract(l, r)
	case bytecode.OP_MULTIPLY:
		return value.Multiply(l, r)
	case bytecode.OP_DIVIDE:
		return value.Divide(l, r)
	case bytecode.OP_GREATER:
		return value.Greater(l, r)
	case bytecode.OP_LESS:
		return value.Less(l, r)
	}
	return value.Nil(), fmt.Errorf("unsupported binary op %v", op)
}

func (vm *VM) push(v Value) error {
	if len(vm.stack) >= vm.stackLimit {
		return ErrStackOverflow
	}
	vm.stack = append(vm.stack, v)
	return nil
}

// mustPush pushes a result that replaces operands just popped, so it cannot
// exceed the limit.
func (vm *VM) mustPush(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() Value {
	if len(vm.stack) == 0 {
		panic(fmt.Errorf("%w at %04d", ErrStackUnderflow, vm.lastOp))
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}
