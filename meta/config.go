// Package meta implements the production matcher driver.
//
// The engine folds the derivative operator over the input like the reference
// driver in package term, and adds the machinery a compiled regex needs:
//   - Strategy selection: empty language, exact literal lookup, prefiltered
//     derivation or plain derivation
//   - A bounded transition cache keyed by (term, byte class)
//   - Context-aware matching with a cap on the number of interned terms
//   - Execution statistics
//
// An Engine is safe for concurrent use.
package meta

import (
	"log/slog"
)

// Config controls engine behavior and resource limits.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.CacheSize = 0 // derive every byte, no memo
//	engine, err := meta.Compile(`[0-9]+`, config)
type Config struct {
	// EnablePrefilter enables literal-based input rejection.
	// Default: true
	EnablePrefilter bool

	// MaxLiterals limits the number of literals extracted per sequence.
	// Default: 64
	MaxLiterals int

	// MaxLiteralLen limits the length of an extracted literal in bytes.
	// Default: 64
	MaxLiteralLen int

	// MaxClassSize is the largest symbol set expanded into single-byte
	// literals during extraction.
	// Default: 10
	MaxClassSize int

	// CacheSize is the number of transitions kept in the LRU cache.
	// Zero disables the cache.
	// Default: 4096
	CacheSize int

	// MaxTerms caps the number of interned terms. IsMatchContext fails with
	// ErrTermLimitExceeded once the cap is exceeded. Zero means no cap.
	// Default: 0
	MaxTerms int

	// CheckInterval is the number of input bytes IsMatchContext consumes
	// between context and term limit checks.
	// Default: 4096
	CheckInterval int

	// Logger receives debug records about compilation. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnablePrefilter: true,
		MaxLiterals:     64,
		MaxLiteralLen:   64,
		MaxClassSize:    10,
		CacheSize:       4096,
		MaxTerms:        0,
		CheckInterval:   4096,
	}
}

// Validate checks if the configuration is valid.
// Returns a *ConfigError naming the first field out of range.
//
// Valid ranges:
//   - MaxLiterals: 1 to 1,000
//   - MaxLiteralLen: 1 to 1,024
//   - MaxClassSize: 1 to 256
//   - CacheSize: 0 to 16,777,216
//   - MaxTerms: 0 or more
//   - CheckInterval: 1 to 1,048,576
func (c Config) Validate() error {
	if c.EnablePrefilter {
		if c.MaxLiterals < 1 || c.MaxLiterals > 1_000 {
			return &ConfigError{
				Field:   "MaxLiterals",
				Message: "must be between 1 and 1,000",
			}
		}
		if c.MaxLiteralLen < 1 || c.MaxLiteralLen > 1_024 {
			return &ConfigError{
				Field:   "MaxLiteralLen",
				Message: "must be between 1 and 1,024",
			}
		}
		if c.MaxClassSize < 1 || c.MaxClassSize > 256 {
			return &ConfigError{
				Field:   "MaxClassSize",
				Message: "must be between 1 and 256",
			}
		}
	}

	if c.CacheSize < 0 || c.CacheSize > 1<<24 {
		return &ConfigError{
			Field:   "CacheSize",
			Message: "must be between 0 and 16,777,216",
		}
	}

	if c.MaxTerms < 0 {
		return &ConfigError{
			Field:   "MaxTerms",
			Message: "must not be negative",
		}
	}

	if c.CheckInterval < 1 || c.CheckInterval > 1<<20 {
		return &ConfigError{
			Field:   "CheckInterval",
			Message: "must be between 1 and 1,048,576",
		}
	}

	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "regexp: invalid config: " + e.Field + ": " + e.Message
}
