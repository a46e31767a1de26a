// Package config handles roxy.toml / roxy.yaml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Color modes for diagnostics.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultStackLimit matches the 8-bit operand width of the bytecode.
const DefaultStackLimit = 256

// FileNames lists the configuration files FindAndLoad looks for, in order.
var FileNames = []string{"roxy.toml", "roxy.yaml", "roxy.yml"}

// Config is the runtime configuration shared by the REPL and file runner.
type Config struct {
	Trace      bool   `toml:"trace" yaml:"trace"`
	Prompt     string `toml:"prompt" yaml:"prompt"`
	History    string `toml:"history" yaml:"history"`
	Color      string `toml:"color" yaml:"color"`
	StackLimit int    `toml:"stack_limit" yaml:"stack_limit"`
	Log        Log    `toml:"log" yaml:"log"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-" yaml:"-"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity" yaml:"verbosity"`
	File      string `toml:"file" yaml:"file"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Prompt:     "roxy:> ",
		History:    "~/.roxy_history",
		Color:      ColorAuto,
		StackLimit: DefaultStackLimit,
	}
}

// Load parses the configuration file at path. The format is chosen by
// extension: .toml, or .yaml / .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir looking for a configuration file and
// loads the first one found. Defaults are returned when there is none.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Defaults(), nil
		}
		dir = parent
	}
}

// Validate normalizes the configuration, clamping the stack limit and
// rejecting unknown color modes.
func (c *Config) Validate() error {
	if c.StackLimit < 1 || c.StackLimit > DefaultStackLimit {
		c.StackLimit = DefaultStackLimit
	}
	switch c.Color {
	case "":
		c.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", c.Color)
	}
	return nil
}

// HistoryPath returns the history file with a leading ~ expanded. An empty
// result disables history.
func (c *Config) HistoryPath() string {
	p := c.History
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// LogPath returns the log file for commonlog.Configure, or nil for stderr.
func (c *Config) LogPath() *string {
	if c.Log.File == "" {
		return nil
	}
	p := c.Log.File
	return &p
}
