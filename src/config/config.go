package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "xmledit.toml"

// ErrInvalid indicates a configuration value outside its allowed set.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full tool configuration.
type Config struct {
	Log       Log       `toml:"log"`
	Workspace Workspace `toml:"workspace"`
	Suggest   Suggest   `toml:"suggest"`
	Vars      Vars      `toml:"vars"`
}

// Log configures diagnostics.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Workspace configures workspace persistence.
type Workspace struct {
	StateFile string `toml:"state_file"`
}

// Suggest configures path suggestions.
type Suggest struct {
	Depth     int `toml:"depth"`
	Threshold int `toml:"threshold"`
	Max       int `toml:"max"`
}

// Vars configures variable resolution. An empty File disables it.
type Vars struct {
	File string `toml:"file"`
}

// ParseError reports a configuration file that is not valid TOML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:       Log{Level: "info", Format: "text"},
		Workspace: Workspace{StateFile: ".xmledit_workspace"},
		Suggest:   Suggest{Depth: 2, Threshold: 0, Max: 3},
	}
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated and numeric fields.
func (c Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	if c.Workspace.StateFile == "" {
		return fmt.Errorf("%w: empty workspace state file", ErrInvalid)
	}
	if c.Suggest.Depth < 0 || c.Suggest.Threshold < 0 || c.Suggest.Max < 0 {
		return fmt.Errorf("%w: negative suggest setting", ErrInvalid)
	}
	return nil
}

// SlogLevel converts the configured level name.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
	return level, nil
}
