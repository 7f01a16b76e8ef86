// Package config holds the two implementation-defined VM limits named in
// spec.md §6 (MAX_CODE_LENGTH, MAX_STACK_HEIGHT), with built-in defaults
// overridable from an optional YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Default limits, per spec.md §6 ("typical 500"/"typical 2000").
const (
	DefaultMaxCodeLength  = 500
	DefaultMaxStackHeight = 2000
)

// Limits bounds the code image length and the VM's activation-record stack.
type Limits struct {
	MaxCodeLength  int `yaml:"max_code_length"`
	MaxStackHeight int `yaml:"max_stack_height"`
}

// DefaultLimits returns the compiled-in defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxCodeLength:  DefaultMaxCodeLength,
		MaxStackHeight: DefaultMaxStackHeight,
	}
}

// Load reads a YAML limits file, starting from DefaultLimits so a file that
// overrides only one field leaves the other at its built-in default.
func Load(path string) (Limits, error) {
	limits := DefaultLimits()

	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return Limits{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if limits.MaxCodeLength <= 0 {
		return Limits{}, fmt.Errorf("config: max_code_length must be positive, got %d", limits.MaxCodeLength)
	}
	if limits.MaxStackHeight <= 0 {
		return Limits{}, fmt.Errorf("config: max_stack_height must be positive, got %d", limits.MaxStackHeight)
	}
	return limits, nil
}
