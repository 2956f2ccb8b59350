// Package config loads the cwq tool configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = ".cwq.yaml"

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config represents the cwq configuration
type Config struct {
	Name              string          `yaml:"name"`
	Encoding          string          `yaml:"encoding"`
	Workers           int             `yaml:"workers"`
	ContinueOnFailure bool            `yaml:"continue_on_failure"`
	Extensions        []string        `yaml:"extensions"`
	MaxDepth          int             `yaml:"max_depth"`
	Log               LogConfig       `yaml:"log"`
	Variables         VariablesConfig `yaml:"variables"`
}

// LogConfig represents logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// VariablesConfig lists the content roots whose scripted-variable files
// form the global scope.
type VariablesConfig struct {
	OverrideOrder string `yaml:"override_order"`
	Roots         []Root `yaml:"roots"`
}

// Root is a game or mod directory set
type Root struct {
	Name  string   `yaml:"name"`
	Game  bool     `yaml:"game"`
	Paths []string `yaml:"paths"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Name:       "cwq",
		Encoding:   "auto",
		Workers:    runtime.NumCPU(),
		Extensions: []string{".txt"},
		MaxDepth:   64,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Variables: VariablesConfig{
			OverrideOrder: "game-first",
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults.
// A .env file in the working directory is loaded first, and CWQ_*
// environment variables override file values.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	expandConfigEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("%w: log.level '%s' must be one of debug, info, warn, error", ErrConfigValidation, c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format '%s' must be console or json", ErrConfigValidation, c.Log.Format)
	}

	validEncodings := map[string]bool{"auto": true, "utf-8": true, "utf8": true, "windows-1252": true, "cp1252": true, "ansi": true}
	if !validEncodings[c.Encoding] {
		return fmt.Errorf("%w: encoding '%s' is not supported", ErrConfigValidation, c.Encoding)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrConfigValidation, c.Workers)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max_depth must be positive, got %d", ErrConfigValidation, c.MaxDepth)
	}

	if o := c.Variables.OverrideOrder; o != "game-first" && o != "game-last" {
		return fmt.Errorf("%w: variables.override_order '%s' must be game-first or game-last", ErrConfigValidation, o)
	}
	seen := map[string]bool{}
	for i, r := range c.Variables.Roots {
		if r.Name == "" {
			return fmt.Errorf("%w: variables.roots[%d]: name is required", ErrConfigValidation, i)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: variables.roots: duplicate name '%s'", ErrConfigValidation, r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Write stores cfg as YAML at path.
func Write(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath
	}
	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}

func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CWQ_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CWQ_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CWQ_ENCODING"); v != "" {
		cfg.Encoding = v
	}
	if v := os.Getenv("CWQ_OVERRIDE_ORDER"); v != "" {
		cfg.Variables.OverrideOrder = v
	}
	if v := os.Getenv("CWQ_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CWQ_WORKERS: %v", ErrConfigValidation, err)
		}
		cfg.Workers = n
	}
	return nil
}

// expandConfigEnvVars expands ${VAR} and $VAR in root paths
func expandConfigEnvVars(cfg *Config) {
	for i, r := range cfg.Variables.Roots {
		for j, p := range r.Paths {
			cfg.Variables.Roots[i].Paths[j] = os.ExpandEnv(p)
		}
	}
}
