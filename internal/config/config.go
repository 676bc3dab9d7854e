// Package config loads the settings of the dirfile command line tool.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/arloliu/dirfile/internal/logging"
)

// Output formats of the get command.
const (
	OutputCSV  = "csv"
	OutputJSON = "json"
)

// Config holds the command line tool settings.
type Config struct {
	LogLevel zerolog.Level
	Output   string
	Workers  int
	// Precision is the number of digits after the decimal point in CSV
	// output; -1 selects the shortest exact representation.
	Precision int
}

type fileConfig struct {
	LogLevel  string `toml:"log_level"`
	Output    string `toml:"output"`
	Workers   int    `toml:"workers"`
	Precision int    `toml:"precision"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  zerolog.WarnLevel,
		Output:    OutputCSV,
		Workers:   runtime.NumCPU(),
		Precision: -1,
	}
}

// Load overlays the keys present in the TOML file at path on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		if err := cfg.SetLogLevel(raw.LogLevel); err != nil {
			return Config{}, err
		}
	}

	if meta.IsDefined("output") {
		if err := cfg.SetOutput(raw.Output); err != nil {
			return Config{}, err
		}
	}

	if meta.IsDefined("workers") {
		if err := cfg.SetWorkers(raw.Workers); err != nil {
			return Config{}, err
		}
	}

	if meta.IsDefined("precision") {
		if raw.Precision < -1 {
			return Config{}, fmt.Errorf("parse precision: %d is below -1", raw.Precision)
		}
		cfg.Precision = raw.Precision
	}

	return cfg, nil
}

// SetLogLevel sets the log level by name.
func (c *Config) SetLogLevel(name string) error {
	level, ok := logging.ParseLevel(name)
	if !ok {
		return fmt.Errorf("parse log_level: unknown level %q", name)
	}
	c.LogLevel = level

	return nil
}

// SetOutput sets the output format, "csv" or "json".
func (c *Config) SetOutput(name string) error {
	switch v := strings.ToLower(strings.TrimSpace(name)); v {
	case OutputCSV, OutputJSON:
		c.Output = v
		return nil
	default:
		return fmt.Errorf("parse output: unknown format %q", name)
	}
}

// SetWorkers sets the number of concurrent field fetches.
func (c *Config) SetWorkers(n int) error {
	if n <= 0 {
		return fmt.Errorf("parse workers: %d is not positive", n)
	}
	c.Workers = n

	return nil
}
