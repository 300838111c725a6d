// Package config loads the techjobs settings.
//
// Values come from built-in defaults, then an optional YAML file, then
// TECHJOBS_* environment variables. Command line flags are applied last by
// the binaries.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataFile  = "resources/job_data.csv"
	DefaultHTTPAddr  = "localhost:8080"
	DefaultLogLevel  = "info"
	DefaultSortField = "name"
)

type Config struct {
	DataFile    string `yaml:"data_file"`
	HTTPAddr    string `yaml:"http_addr"`
	LogLevel    string `yaml:"log_level"`
	SortField   string `yaml:"sort_field"`
	RowTemplate string `yaml:"row_template"`
}

func Default() *Config {
	return &Config{
		DataFile:  DefaultDataFile,
		HTTPAddr:  DefaultHTTPAddr,
		LogLevel:  DefaultLogLevel,
		SortField: DefaultSortField,
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := cfg.decode(raw); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("TECHJOBS_DATA_FILE"); ok && v != "" {
		c.DataFile = v
	}
	if v, ok := lookup("TECHJOBS_HTTP_ADDR"); ok && v != "" {
		c.HTTPAddr = v
	}
	if v, ok := lookup("TECHJOBS_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return errors.New("data_file is required")
	}
	if c.SortField == "" {
		return errors.New("sort_field is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
