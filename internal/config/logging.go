package config

import (
	"fmt"
	"slices"
)

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty disables the file sink
}

func (c LoggingConfig) validate() error {
	if !slices.Contains(ValidLogLevels, c.Level) {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Level, ValidLogLevels)
	}
	return nil
}
