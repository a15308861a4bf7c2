// Package host implements the host-side runtime around a Basin machine:
// configuration, the run loop that batches steps and drains the serial
// ring, and post-mortem reporting.
package host

import (
	"errors"
	"fmt"

	"github.com/basinvm/basin/core/rv64"
)

// Config holds all host-side configuration for one VM run.
type Config struct {
	// Name is a human-readable instance identifier (used in logs).
	Name string

	// MemorySize is the guest RAM size in bytes.
	MemorySize uint64

	// MaxSteps bounds the instruction budget; 0 means unbounded. A guest
	// still running when the budget expires is reported, not killed
	// silently.
	MaxSteps uint64

	// StepBatch is how many instructions run between serial drains.
	StepBatch uint64

	// StrictAlign selects the strict alignment profile.
	StrictAlign bool

	// StrictDecode selects the strict decode profile.
	StrictDecode bool

	// NoFramePointerFallback disables the x8->x2 compatibility shim.
	NoFramePointerFallback bool

	// Debug enables the bounded instruction tracer.
	Debug bool

	// LogLevel controls log verbosity (debug, info, warn, error).
	LogLevel string

	// LogFormat selects the log output format (json, text).
	LogFormat string

	// Verbosity controls numeric log level (0-5; 0 and 1 = error, 2 = warn,
	// 3 = info, 4 and 5 = debug). When set, overrides LogLevel.
	Verbosity int

	// Metrics enables the metrics report at exit.
	Metrics bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:       "basin",
		MemorySize: rv64.DefaultMemorySize,
		MaxSteps:   0,
		StepBatch:  4096,
		LogLevel:   "info",
		LogFormat:  "json",
		Verbosity:  3,
	}
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("config: name must not be empty")
	}
	if c.MemorySize == 0 || c.MemorySize%rv64.PageSize != 0 {
		return fmt.Errorf("config: memory size must be a positive multiple of %d, got %d",
			rv64.PageSize, c.MemorySize)
	}
	if c.StepBatch == 0 {
		return errors.New("config: step batch must be greater than 0")
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("config: verbosity must be 0-5, got %d", c.Verbosity)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}
