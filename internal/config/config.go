package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the runtime settings read from rabbit.yaml or rabbit.toml.
// Command-line flags override these values.
type Config struct {
	// Trace prints the operand stack and the next instruction before each
	// dispatch step.
	Trace bool `yaml:"trace" toml:"trace"`

	// Disassemble prints the compiled chunk before running it.
	Disassemble bool `yaml:"disassemble" toml:"disassemble"`

	// Color is one of auto, always or never. auto colours diagnostics only
	// when stderr is a terminal.
	Color string `yaml:"color,omitempty" toml:"color,omitempty"`

	// LogLevel is the commonlog verbosity (0 = quiet).
	LogLevel int `yaml:"log_level,omitempty" toml:"log_level,omitempty"`

	// LogFile redirects log output; empty means stderr.
	LogFile string `yaml:"log_file,omitempty" toml:"log_file,omitempty"`

	// HistoryFile is where the REPL keeps its line history. Relative paths
	// are resolved against the home directory.
	HistoryFile string `yaml:"history_file,omitempty" toml:"history_file,omitempty"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	return &Config{
		Color:       ColorAuto,
		HistoryFile: HistoryFileName,
	}
}

// Load reads the config file at path. The format is chosen by extension:
// .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext on top of Default().
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Color {
	case "":
		c.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color must be %s, %s or %s, got %q", ErrInvalidConfig, ColorAuto, ColorAlways, ColorNever, c.Color)
	}
	if c.LogLevel < 0 {
		return fmt.Errorf("%w: log_level must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Discover returns the path of the first config file found in dir, or ""
// when there is none.
func Discover(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ResolveHistoryFile returns the absolute history path, or "" if history is
// disabled or the home directory is unknown.
func (c *Config) ResolveHistoryFile() string {
	if c.HistoryFile == "" {
		return ""
	}
	if filepath.IsAbs(c.HistoryFile) {
		return c.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, c.HistoryFile)
}
