// Package config handles l5anim configuration loading and management.
package config

import (
	"fmt"
)

// Interchange formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all converter settings.
type Config struct {
	Interchange InterchangeConfig `yaml:"interchange"`
	Codec       CodecConfig       `yaml:"codec"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// InterchangeConfig controls the text form written when decoding.
type InterchangeConfig struct {
	Format string `yaml:"format"` // json or yaml
	Indent string `yaml:"indent"` // JSON indent string
}

// CodecConfig controls binary decoding and encoding.
type CodecConfig struct {
	Strict bool `yaml:"strict"` // check decompressed sizes against the headers
	Verify bool `yaml:"verify"` // decode encoded output again and compare
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Interchange: InterchangeConfig{
			Format: FormatJSON,
			Indent: "  ",
		},
		Codec: CodecConfig{
			Strict: false,
			Verify: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that have a fixed set of values.
func (c *Config) Validate() error {
	switch c.Interchange.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("interchange.format must be %q or %q, got %q", FormatJSON, FormatYAML, c.Interchange.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// Extension returns the file extension of the interchange format.
func (c *Config) Extension() string {
	if c.Interchange.Format == FormatYAML {
		return ".yaml"
	}
	return ".json"
}
