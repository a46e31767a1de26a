package compiler

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xirelogy/go-roxy/internal/bytecode"
	"github.com/xirelogy/go-roxy/internal/lexer"
	"github.com/xirelogy/go-roxy/internal/token"
	"github.com/xirelogy/go-roxy/internal/value"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithDiagnostics prints each reported error to w as it is found.
func WithDiagnostics(w io.Writer) Option {
	return func(c *Compiler) { c.diag = w }
}

// WithTrace disassembles the finished chunk to w when compilation succeeds.
func WithTrace(w io.Writer, label string) Option {
	return func(c *Compiler) {
		c.trace = w
		c.label = label
	}
}

// Compile compiles source into chunk. It returns an ErrorList when any
// error was reported; the chunk must not be executed in that case.
func Compile(source string, chunk *Chunk, opts ...Option) error {
	return New(source, chunk, opts...).Compile()
}

// Compiler is a single-pass expression compiler. It pulls tokens from the
// lexer one at a time and emits instructions straight into its chunk.
type Compiler struct {
	lexer    *lexer.Lexer
	current  token.Token
	previous token.Token
	chunk    *Chunk

	hadError   bool
	panicMode  bool
	errors     ErrorList
	suppressed int

	diag  io.Writer
	trace io.Writer
	label string
}

// New creates a compiler for one compilation unit.
func New(source string, chunk *Chunk, opts ...Option) *Compiler {
	c := &Compiler{
		lexer: lexer.New(source),
		chunk: chunk,
		label: "code",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile runs the compiler over the whole unit. The grammar of a unit is a
// single expression followed by end of input.
func (c *Compiler) Compile() error {
	if c.chunk == nil {
		return fmt.Errorf("nil chunk")
	}
	c.advance()
	c.expression()
	c.consume(token.EOF, "Expect end of expression.")
	if c.panicMode {
		c.synchronize()
	}
	c.emitReturn()

	if c.hadError {
		return c.errors
	}
	if c.trace != nil {
		if err := bytecode.NewDisassembler(c.trace).DisassembleChunk(c.label, c.chunk); err != nil {
			return err
		}
	}
	return nil
}

// HadError reports whether any error was detected, displayed or not.
func (c *Compiler) HadError() bool {
	return c.hadError
}

// Errors returns the displayed diagnostics.
func (c *Compiler) Errors() ErrorList {
	return c.errors
}

// Suppressed returns how many errors were detected while in panic mode.
func (c *Compiler) Suppressed() int {
	return c.suppressed
}

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lexer.NextToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// synchronize leaves panic mode at the next boundary. A unit holds one
// expression, so the only boundary is end of input.
func (c *Compiler) synchronize() {
	for c.current.Type != token.EOF {
		c.advance()
	}
	c.panicMode = false
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	prefix(c)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		if infix == nil {
			return
		}
		infix(c)
	}
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RParen, "Expect ')' after expression.")
}

func (c *Compiler) unary() {
	op := c.previous.Type
	line := c.previous.Line()

	c.parsePrecedence(PrecUnary)

	switch op {
	case token.Minus:
		c.emitAt(bytecode.Simple(OP_NEGATE), line)
	case token.Bang:
		c.emitAt(bytecode.Simple(OP_NOT), line)
	}
}

func (c *Compiler) binary() {
	op := c.previous.Type
	line := c.previous.Line()

	c.parsePrecedence(getRule(op).precedence.Next())

	switch op {
	case token.BangEqual:
		c.emitAt(bytecode.Simple(OP_EQUAL), line)
		c.emitAt(bytecode.Simple(OP_NOT), line)
	case token.EqualEqual:
		c.emitAt(bytecode.Simple(OP_EQUAL), line)
	case token.Greater:
		c.emitAt(bytecode.Simple(OP_GREATER), line)
	case token.GreaterEqual:
		c.emitAt(bytecode.Simple(OP_LESS), line)
		c.emitAt(bytecode.Simple(OP_NOT), line)
	case token.Less:
		c.emitAt(bytecode.Simple(OP_LESS), line)
	case token.LessEqual:
		c.emitAt(bytecode.Simple(OP_GREATER), line)
		c.emitAt(bytecode.Simple(OP_NOT), line)
	case token.Plus:
		c.emitAt(bytecode.Simple(OP_ADD), line)
	case token.Minus:
		c.emitAt(bytecode.Simple(OP_SUBTRACT), line)
	case token.Star:
		c.emitAt(bytecode.Simple(OP_MULTIPLY), line)
	case token.Slash:
		c.emitAt(bytecode.Simple(OP_DIVIDE), line)
	}
}

func (c *Compiler) literal() {
	switch c.previous.Type {
	case token.True:
		c.emit(bytecode.Simple(OP_TRUE))
	case token.False:
		c.emit(bytecode.Simple(OP_FALSE))
	case token.Nil:
		c.emit(bytecode.Simple(OP_NIL))
	}
}

func (c *Compiler) number() {
	lit := c.previous.Lexeme
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		c.emitConstant(value.Int(i))
		return
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		c.error(fmt.Sprintf("Invalid number literal %q.", lit))
		return
	}
	c.emitConstant(value.Float(f))
}

func (c *Compiler) str() {
	// Clone so the constant does not keep the whole source buffer alive.
	c.emitConstant(value.String(strings.Clone(c.previous.Lexeme)))
}

func (c *Compiler) emit(in Instruction) {
	c.chunk.Write(in, c.previous.Line())
}

func (c *Compiler) emitAt(in Instruction, line int) {
	c.chunk.Write(in, line)
}

func (c *Compiler) emitReturn() {
	c.emit(bytecode.Simple(OP_RETURN))
}

func (c *Compiler) emitConstant(v value.Value) {
	idx, err := c.chunk.AddConstant(v)
	if err != nil {
		if errors.Is(err, bytecode.ErrTooManyConstants) {
			c.error("Too many constants in one chunk.")
			return
		}
		c.error(err.Error())
		return
	}
	c.emit(bytecode.Constant(idx))
}

func (c *Compiler) errorAtCurrent(msg string) {
	c.errorAt(c.current, msg)
}

func (c *Compiler) error(msg string) {
	c.errorAt(c.previous, msg)
}

func (c *Compiler) errorAt(tok token.Token, msg string) {
	c.hadError = true
	if c.panicMode {
		c.suppressed++
		return
	}
	c.panicMode = true

	var where string
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.Error:
		// the message already describes the bad input
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	e := &Error{Line: tok.Line(), Where: where, Message: msg}
	c.errors = append(c.errors, e)
	if c.diag != nil {
		fmt.Fprintln(c.diag, e.Error())
	}
}
