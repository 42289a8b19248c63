// Package config reads FieldChart settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/FocuswithJustin/FieldChart/core/ingl"
	"github.com/FocuswithJustin/FieldChart/internal/archive"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
)

// Config holds settings shared by every command. CLI flags override them.
type Config struct {
	LogLevel    string `env:"FIELDCHART_LOG_LEVEL"     envDefault:"info"`
	LogFormat   string `env:"FIELDCHART_LOG_FORMAT"    envDefault:"text"`
	Catalog     string `env:"FIELDCHART_CATALOG"       envDefault:"fieldchart.db"`
	Snapshots   string `env:"FIELDCHART_SNAPSHOTS"     envDefault:".fieldchart/snapshots"`
	Compression string `env:"FIELDCHART_COMPRESSION"   envDefault:"xz"`
	MaxFileSize int64  `env:"FIELDCHART_MAX_FILE_SIZE" envDefault:"67108864"`
}

// Load parses the environment and checks enumerated values.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv fills target from its env struct tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("FIELDCHART_LOG_LEVEL: %w", err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("FIELDCHART_LOG_FORMAT: %w", err)
	}
	if _, err := archive.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("FIELDCHART_COMPRESSION: %w", err)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("FIELDCHART_MAX_FILE_SIZE: must be positive, got %d", c.MaxFileSize)
	}
	return nil
}

// Logging returns the parsed log level and format.
func (c Config) Logging() (logging.Level, logging.Format) {
	level, _ := logging.ParseLevel(c.LogLevel)
	format, _ := logging.ParseFormat(c.LogFormat)
	return level, format
}

// CompressionFormat returns the parsed compression, defaulting to none.
func (c Config) CompressionFormat() archive.Compression {
	comp, err := archive.ParseCompression(c.Compression)
	if err != nil {
		return archive.CompressionNone
	}
	return comp
}

// MaxSize returns the file size limit, falling back to the reader default.
func (c Config) MaxSize() int64 {
	if c.MaxFileSize <= 0 {
		return ingl.DefaultMaxFileSize
	}
	return c.MaxFileSize
}
