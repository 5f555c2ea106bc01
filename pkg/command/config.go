package command

import (
	"fmt"
	"strings"
)

// Config defines the configuration of a dispatcher
type Config struct {
	ProgName      string
	Version       string
	Description   string
	EnableMetrics bool
	// Suppressed lists packages, such as the program's entry point, whose
	// stack frames are hidden from failure reports along with the dispatcher's
	Suppressed []string
}

// DefaultConfig returns the default dispatcher configuration
func DefaultConfig() *Config {
	return &Config{
		ProgName:      "spectre",
		Version:       "dev",
		EnableMetrics: true,
	}
}

// ValidateConfig validates the configuration to ensure it is valid
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.ProgName == "" {
		return fmt.Errorf("ProgName cannot be empty")
	}
	if strings.ContainsAny(config.ProgName, " \t\n") {
		return fmt.Errorf("ProgName cannot contain whitespace")
	}
	if config.Version == "" {
		return fmt.Errorf("Version cannot be empty")
	}
	return nil
}

// description returns the text shown at the top of the help output
func (c *Config) description() string {
	if c.Description != "" {
		return c.Description
	}
	return fmt.Sprintf("SpECTRE version: %s", c.Version)
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	clone.Suppressed = append([]string(nil), c.Suppressed...)
	return &clone
}
