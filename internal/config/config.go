// Package config loads tool-server settings from TOML or YAML files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the tool server configuration.
type Config struct {
	Server ServerConfig `toml:"server" yaml:"server"`
	Limits LimitsConfig `toml:"limits" yaml:"limits"`
	Eval   EvalConfig   `toml:"eval" yaml:"eval"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

type ServerConfig struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr              string   `toml:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `toml:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      Duration `toml:"write_timeout" yaml:"write_timeout"`
	IdleTimeout       Duration `toml:"idle_timeout" yaml:"idle_timeout"`
	MaxBodyBytes      int64    `toml:"max_body_bytes" yaml:"max_body_bytes"`
}

type LimitsConfig struct {
	// MaxPaths caps the chain-rule pairs one derivative request may emit.
	// Zero disables the check.
	MaxPaths int64 `toml:"max_paths" yaml:"max_paths"`
}

type EvalConfig struct {
	Cache bool `toml:"cache" yaml:"cache"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration(5 * time.Second),
			ReadTimeout:       Duration(15 * time.Second),
			WriteTimeout:      Duration(15 * time.Second),
			IdleTimeout:       Duration(60 * time.Second),
			MaxBodyBytes:      1 << 20,
		},
		Limits: LimitsConfig{MaxPaths: 1_000_000},
		Eval:   EvalConfig{Cache: true},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at startup.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Limits.MaxPaths < 0 {
		return fmt.Errorf("limits.max_paths must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Duration is a time.Duration written as a string ("15s") in config files.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
