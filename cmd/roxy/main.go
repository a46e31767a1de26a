// roxy CLI - runs a source file or starts the interactive shell
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/xirelogy/go-roxy"
	"github.com/xirelogy/go-roxy/internal/config"
	"github.com/xirelogy/go-roxy/internal/repl"
)

const exitUsage = 64

func main() {
	configPath := flag.String("config", "", "Configuration file (default: roxy.toml/roxy.yaml found upward from the working directory)")
	trace := flag.Bool("trace", false, "Disassemble each chunk and trace execution with the stack")
	verbosity := flag.Int("v", 0, "Log verbosity (0 = notice, 1 = info, 2 = debug; negative is quieter)")
	logFile := flag.String("log", "", "Log file (default: stderr)")
	color := flag.String("color", "", "Colored diagnostics: auto, always, never")
	stackLimit := flag.Int("stack", 0, "Operand stack slots (1-256)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: roxy [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a roxy source file, or starts the REPL when no file is given.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nREPL commands:\n")
		fmt.Fprintf(os.Stderr, "  q, :quit         leave the session\n")
		fmt.Fprintf(os.Stderr, "  :trace           toggle execution tracing\n")
		fmt.Fprintf(os.Stderr, "  :disasm <expr>   print the compiled chunk without running it\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(roxy.ExitIOError)
	}

	// Flags given explicitly override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			cfg.Trace = *trace
		case "v":
			cfg.Log.Verbosity = *verbosity
		case "log":
			cfg.Log.File = *logFile
		case "color":
			cfg.Color = *color
		case "stack":
			cfg.StackLimit = *stackLimit
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())
	if cfg.Path != "" {
		commonlog.GetLogger("roxy").Debugf("configuration loaded from %s", cfg.Path)
	}

	switch flag.NArg() {
	case 0:
		if err := repl.Start(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(roxy.ExitIOError)
		}
	case 1:
		os.Exit(runFile(cfg, flag.Arg(0)))
	default:
		flag.Usage()
		os.Exit(exitUsage)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Defaults(), nil
	}
	return config.FindAndLoad(wd)
}

func runFile(cfg *config.Config, path string) int {
	opts := []roxy.Option{roxy.WithStackLimit(cfg.StackLimit)}
	if cfg.Trace {
		opts = append(opts, roxy.WithTraceWriter(os.Stdout))
	}
	res, err := roxy.RunFile(path, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, repl.FormatError(err, repl.ColorEnabled(cfg.Color, os.Stderr.Fd())))
		return roxy.ExitCode(err)
	}
	if res.HasValue {
		fmt.Println(res.Value.String())
	}
	return roxy.ExitOK
}
