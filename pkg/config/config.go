// Package config loads stepviz execution limits from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

// File names searched by Load.
const (
	ProjectFile = ".stepviz.yaml"
	UserDir     = ".stepviz"
	UserFile    = "config.yaml"
)

// Config holds execution limits.
type Config struct {
	MaxWhileIterations int      `yaml:"max_while_iterations"`
	MaxNestingDepth    int      `yaml:"max_nesting_depth"`
	MaxRangeIterations int      `yaml:"max_range_iterations"`
	Timeout            Duration `yaml:"timeout"`

	// Path is the file the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

// Duration is a time.Duration written as a Go duration string ("2s").
type Duration time.Duration

// UnmarshalYAML parses a duration string. An empty string means no timeout.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("line %d: timeout must not be negative", node.Line)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	if d == 0 {
		return "", nil
	}
	return time.Duration(d).String(), nil
}

// Default returns the built-in limits.
func Default() *Config {
	return &Config{
		MaxWhileIterations: evaluator.DefaultMaxWhileIterations,
		MaxNestingDepth:    evaluator.DefaultMaxNestingDepth,
	}
}

// Budget converts the config into evaluator limits.
func (c *Config) Budget() evaluator.Budget {
	return evaluator.Budget{
		MaxWhileIterations: c.MaxWhileIterations,
		MaxNestingDepth:    c.MaxNestingDepth,
		MaxRangeIterations: c.MaxRangeIterations,
	}
}

// Error reports an unreadable or invalid config file.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads the configuration.
// Precedence: project (.stepviz.yaml in projectDir) → user (~/.stepviz/config.yaml) → defaults.
// Only the first file found is used. A missing file is skipped; a file that
// exists but cannot be parsed is an error.
func Load(projectDir string) (*Config, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, UserDir, UserFile))
	}

	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Default(), nil
}

// LoadFile reads one config file. Fields the file omits keep their defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	cfg.Path = path
	return cfg, nil
}

// Decode parses YAML config from r, rejecting unknown keys.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var issues []string
	if c.MaxWhileIterations <= 0 {
		issues = append(issues, "max_while_iterations must be positive")
	}
	if c.MaxNestingDepth <= 0 {
		issues = append(issues, "max_nesting_depth must be positive")
	}
	if c.MaxRangeIterations < 0 {
		issues = append(issues, "max_range_iterations must not be negative")
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}
