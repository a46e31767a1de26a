// Package repl implements the interactive roxy shell.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/tliron/commonlog"

	"github.com/xirelogy/go-roxy"
	"github.com/xirelogy/go-roxy/internal/config"
)

var log = commonlog.GetLogger("roxy.repl")

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

// LineReader supplies input lines. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// FormatError renders err for display, in red when color is set.
func FormatError(err error, color bool) string {
	if color {
		return red(err.Error())
	}
	return err.Error()
}

// plainReader reads lines from a non-terminal input, echoing the prompt.
// Lines have no length limit.
type plainReader struct {
	r   *bufio.Reader
	out io.Writer
}

// NewPlainReader returns a LineReader over r that writes prompts to out.
func NewPlainReader(r io.Reader, out io.Writer) LineReader {
	return &plainReader{r: bufio.NewReader(r), out: out}
}

func (p *plainReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *plainReader) AppendHistory(string) {}

// IsTerminal reports whether fd is an interactive terminal.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorEnabled resolves a color mode against the output descriptor.
func ColorEnabled(mode string, fd uintptr) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return IsTerminal(fd)
	}
}

// Session is one REPL conversation over a single interpreter.
type Session struct {
	prompt string
	reader LineReader
	out    io.Writer
	errOut io.Writer
	color  bool
	interp *roxy.Interpreter
}

// NewSession creates a session. Results and traces go to out, errors to
// errOut.
func NewSession(cfg *config.Config, reader LineReader, out, errOut io.Writer, color bool) *Session {
	opts := []roxy.Option{roxy.WithStackLimit(cfg.StackLimit)}
	if cfg.Trace {
		opts = append(opts, roxy.WithTraceWriter(out))
	}
	return &Session{
		prompt: cfg.Prompt,
		reader: reader,
		out:    out,
		errOut: errOut,
		color:  color,
		interp: roxy.NewInterpreter(opts...),
	}
}

// Run reads and evaluates lines until end of input or a quit command.
func (s *Session) Run() error {
	log.Info("session started")
	defer log.Info("session ended")
	for {
		line, err := s.reader.Prompt(s.prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if s.Handle(line) {
			return nil
		}
	}
}

// Handle processes one input line and reports whether the session should
// end. Errors are printed and never end the session.
func (s *Session) Handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	s.reader.AppendHistory(line)

	if trimmed == "q" {
		return true
	}
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	res, err := s.interp.Eval(line)
	if err != nil {
		s.printError(err)
		return false
	}
	if res.HasValue {
		fmt.Fprintln(s.out, res.Value.String())
	}
	return false
}

func (s *Session) command(cmd string) bool {
	name, arg, _ := strings.Cut(cmd, " ")
	switch strings.ToLower(name) {
	case ":quit":
		return true
	case ":trace":
		if s.interp.Tracing() {
			s.interp.SetTraceWriter(nil)
			s.printInfo("trace off")
		} else {
			s.interp.SetTraceWriter(s.out)
			s.printInfo("trace on")
		}
	case ":disasm":
		if strings.TrimSpace(arg) == "" {
			s.printError(errors.New("usage: :disasm <expression>"))
			return false
		}
		p, err := roxy.Compile(arg)
		if err != nil {
			s.printError(err)
			return false
		}
		if err := p.Disassemble(s.out); err != nil {
			s.printError(err)
		}
	default:
		fmt.Fprintln(s.out, "unknown command. Type :quit to exit.")
	}
	return false
}

func (s *Session) printError(err error) {
	fmt.Fprintln(s.errOut, FormatError(err, s.color))
}

func (s *Session) printInfo(msg string) {
	if s.color {
		msg = green(msg)
	}
	fmt.Fprintln(s.out, msg)
}

// Start runs a session on the process's standard streams. A terminal gets
// line editing and persistent history through liner; other input is read
// line by line.
func Start(cfg *config.Config) error {
	color := ColorEnabled(cfg.Color, os.Stderr.Fd())
	if !IsTerminal(os.Stdin.Fd()) {
		return NewSession(cfg, NewPlainReader(os.Stdin, os.Stdout), os.Stdout, os.Stderr, color).Run()
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryPath()
	if histPath != "" {
		loadHistory(ln, histPath)
		defer saveHistory(ln, histPath)
	}
	return NewSession(cfg, ln, os.Stdout, os.Stderr, color).Run()
}

func loadHistory(ln *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warningf("cannot open history %s: %s", path, err)
		}
		return
	}
	defer f.Close()
	if _, err := ln.ReadHistory(f); err != nil {
		log.Warningf("cannot read history %s: %s", path, err)
	}
}

func saveHistory(ln *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Warningf("cannot create history %s: %s", path, err)
		return
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		log.Warningf("cannot write history %s: %s", path, err)
	}
}
