// Package roxy is the host API of the roxy expression runtime: compile
// source text into a bytecode chunk and run it on a stack VM.
package roxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/xirelogy/go-roxy/internal/bytecode"
	"github.com/xirelogy/go-roxy/internal/compiler"
	"github.com/xirelogy/go-roxy/internal/value"
	"github.com/xirelogy/go-roxy/internal/vm"
)

var (
	log   = commonlog.GetLogger("roxy")
	vmLog = commonlog.GetLogger("roxy.vm")
)

// Process exit codes for file mode.
const (
	ExitOK           = 0
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitIOError      = 74
)

// CompileError is one compile diagnostic; a failed compile returns
// CompileErrors holding every reported one.
type CompileError = compiler.Error

// CompileErrors is the list returned by a failed compile.
type CompileErrors = compiler.ErrorList

// RuntimeError is a fault raised while running a program.
type RuntimeError = vm.RuntimeError

// TraceInfo describes one instruction dispatch.
type TraceInfo = vm.TraceInfo

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook = vm.TraceHook

// IsCompileError reports whether err came from the compiler.
func IsCompileError(err error) bool {
	var list compiler.ErrorList
	var single *compiler.Error
	return errors.As(err, &list) || errors.As(err, &single)
}

// IsRuntimeError reports whether err is a runtime fault.
func IsRuntimeError(err error) bool {
	var rte *vm.RuntimeError
	return errors.As(err, &rte)
}

// ExitCode maps the error from RunFile to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsCompileError(err):
		return ExitCompileError
	case IsRuntimeError(err):
		return ExitRuntimeError
	default:
		return ExitIOError
	}
}

// ValueKind mirrors the runtime kinds for convenient inspection.
type ValueKind int

const (
	ValueNil ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
)

// Value is a result produced by a program.
type Value struct {
	v value.Value
}

// Kind reports the underlying value kind.
func (v Value) Kind() ValueKind {
	switch v.v.Kind {
	case value.KindBool:
		return ValueBool
	case value.KindInt:
		return ValueInt
	case value.KindFloat:
		return ValueFloat
	case value.KindString:
		return ValueString
	default:
		return ValueNil
	}
}

// IsNil reports whether the value is nil.
func (v Value) IsNil() bool {
	return v.v.Kind == value.KindNil
}

// Bool returns the boolean value when the kind matches.
func (v Value) Bool() (bool, bool) {
	if v.v.Kind != value.KindBool {
		return false, false
	}
	return v.v.B, true
}

// Int returns the integer value when the kind matches.
func (v Value) Int() (int64, bool) {
	if v.v.Kind != value.KindInt {
		return 0, false
	}
	return v.v.Int, true
}

// Number returns the value as a float64 for either numeric kind.
func (v Value) Number() (float64, bool) {
	return v.v.AsFloat()
}

// Str returns the string value when the kind matches.
func (v Value) Str() (string, bool) {
	if v.v.Kind != value.KindString {
		return "", false
	}
	return v.v.Str, true
}

// Raw returns a Go representation: nil, bool, int64, float64 or string.
func (v Value) Raw() any {
	switch v.v.Kind {
	case value.KindBool:
		return v.v.B
	case value.KindInt:
		return v.v.Int
	case value.KindFloat:
		return v.v.Float
	case value.KindString:
		return v.v.Str
	default:
		return nil
	}
}

// String returns the display form printed by the REPL.
func (v Value) String() string {
	return v.v.String()
}

// Result is the outcome of one run. HasValue is false when the program
// returned with an empty stack.
type Result struct {
	Value    Value
	HasValue bool
}

func resultFromVM(r vm.Result) Result {
	return Result{Value: Value{v: r.Value}, HasValue: r.HasValue}
}

// Program is a compiled unit ready to run.
type Program struct {
	name  string
	chunk *bytecode.Chunk
}

// Compile compiles source as a single expression.
func Compile(source string) (*Program, error) {
	return compileProgram("code", source, nil, nil)
}

func compileProgram(name, source string, diag, trace io.Writer) (*Program, error) {
	chunk := bytecode.New()
	var opts []compiler.Option
	if diag != nil {
		opts = append(opts, compiler.WithDiagnostics(diag))
	}
	if trace != nil {
		opts = append(opts, compiler.WithTrace(trace, name))
	}
	c := compiler.New(source, chunk, opts...)
	if err := c.Compile(); err != nil {
		log.Infof("compile %s failed: %d reported, %d suppressed", name, len(c.Errors()), c.Suppressed())
		return nil, err
	}
	log.Debugf("compiled %s: %d instructions, %d constants", name, chunk.Len(), len(chunk.Consts))
	return &Program{name: name, chunk: chunk}, nil
}

// Name returns the label used in diagnostics and disassembly.
func (p *Program) Name() string {
	return p.name
}

// Run executes the program on a fresh VM.
func (p *Program) Run() (Result, error) {
	return NewInterpreter().Run(p)
}

// Disassemble writes the program's chunk to w.
func (p *Program) Disassemble(w io.Writer) error {
	if p == nil || p.chunk == nil {
		return errors.New("nil program")
	}
	return bytecode.NewDisassembler(w).DisassembleChunk(p.Name(), p.chunk)
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithTraceWriter disassembles each compiled chunk and traces every
// instruction with the live stack to w.
func WithTraceWriter(w io.Writer) Option {
	return func(in *Interpreter) { in.trace = w }
}

// WithDiagnostics prints compile errors to w as they are reported.
func WithDiagnostics(w io.Writer) Option {
	return func(in *Interpreter) { in.diag = w }
}

// WithStackLimit caps the operand stack (1..256 slots).
func WithStackLimit(n int) Option {
	return func(in *Interpreter) { in.stackLimit = n }
}

// WithTraceHook attaches a debug hook that observes instruction dispatch.
func WithTraceHook(h TraceHook) Option {
	return func(in *Interpreter) { in.hook = h }
}

// Interpreter compiles and runs source units one after another on a
// single VM. It is not safe for concurrent evaluation; overlapping calls
// fail with ErrBusy.
type Interpreter struct {
	core       *vm.VM
	trace      io.Writer
	diag       io.Writer
	hook       TraceHook
	stackLimit int

	mu   sync.Mutex
	busy bool
}

// ErrBusy is returned when an Interpreter is already evaluating.
var ErrBusy = errors.New("interpreter is busy; concurrent evaluation not allowed")

// NewInterpreter constructs an interpreter.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{stackLimit: vm.StackMax}
	for _, opt := range opts {
		opt(in)
	}
	in.core = vm.New(vm.WithStackLimit(in.stackLimit))
	in.applyTrace()
	return in
}

// SetTraceWriter enables tracing to w; nil disables it.
func (in *Interpreter) SetTraceWriter(w io.Writer) {
	in.trace = w
	in.applyTrace()
}

// Tracing reports whether tracing is enabled.
func (in *Interpreter) Tracing() bool {
	return in.trace != nil
}

func (in *Interpreter) applyTrace() {
	in.core.SetTraceWriter(in.trace)
	if in.trace == nil && in.hook == nil {
		in.core.SetTraceHook(nil)
		return
	}
	hook := in.hook
	tracing := in.trace != nil
	in.core.SetTraceHook(func(info vm.TraceInfo) {
		if tracing && vmLog.AllowLevel(commonlog.Debug) {
			vmLog.Debugf("%04d line %d %s depth %d", info.IP, info.Line, info.Op, info.StackDepth)
		}
		if hook != nil {
			hook(info)
		}
	})
}

// Compile compiles source with the interpreter's diagnostic and trace
// writers. The name labels the chunk in trace output.
func (in *Interpreter) Compile(name, source string) (*Program, error) {
	return compileProgram(name, source, in.diag, in.trace)
}

// Eval compiles and runs one expression.
func (in *Interpreter) Eval(source string) (Result, error) {
	p, err := in.Compile("code", source)
	if err != nil {
		return Result{}, err
	}
	return in.Run(p)
}

// Run executes a compiled program.
func (in *Interpreter) Run(p *Program) (Result, error) {
	if p == nil || p.chunk == nil {
		return Result{}, errors.New("nil program")
	}
	in.mu.Lock()
	if in.busy {
		in.mu.Unlock()
		return Result{}, ErrBusy
	}
	in.busy = true
	in.mu.Unlock()
	defer func() {
		in.mu.Lock()
		in.busy = false
		in.mu.Unlock()
	}()

	res, err := in.core.Run(p.chunk)
	if err != nil {
		log.Infof("run %s: %s", p.Name(), err)
		return Result{}, err
	}
	return resultFromVM(res), nil
}

// Disassemble writes the chunk most recently run to w.
func (in *Interpreter) Disassemble(w io.Writer, label string) error {
	return in.core.Disassemble(w, label)
}

// EvalFuture represents an in-flight evaluation.
type EvalFuture struct {
	ch <-chan evalResult
}

type evalResult struct {
	res Result
	err error
}

// Await waits for completion or context cancellation.
func (f EvalFuture) Await(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-f.ch:
		return r.res, r.err
	}
}

// EvalAsync evaluates source on a separate goroutine. A context that is
// already done prevents the run from starting.
func (in *Interpreter) EvalAsync(ctx context.Context, source string) EvalFuture {
	ch := make(chan evalResult, 1)
	go func() {
		defer close(ch)
		select {
		case <-ctx.Done():
			ch <- evalResult{err: ctx.Err()}
			return
		default:
		}
		res, err := in.Eval(source)
		ch <- evalResult{res: res, err: err}
	}()
	return EvalFuture{ch: ch}
}

// RunFile reads the whole file at path, compiles it as one unit and runs
// it. Use ExitCode to map the error to a process status.
func RunFile(path string, opts ...Option) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	in := NewInterpreter(opts...)
	p, err := in.Compile(path, string(data))
	if err != nil {
		return Result{}, err
	}
	return in.Run(p)
}
