package host

import (
	"fmt"
	"strconv"
	"strings"
)

// LoadConfig parses a TOML-like configuration from raw bytes. The parser
// handles key = value pairs and [section] headers; values may be quoted or
// unquoted strings, integers, or booleans.
func LoadConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	section := ""

	lines := strings.Split(string(data), "\n")
	for lineNum, raw := range lines {
		line := strings.TrimSpace(raw)

		// Skip empty lines and comments.
		if line == "" || line[0] == '#' {
			continue
		}

		// Section header.
		if line[0] == '[' {
			end := strings.Index(line, "]")
			if end < 0 {
				return nil, fmt.Errorf("line %d: unclosed section header", lineNum+1)
			}
			section = strings.TrimSpace(line[1:end])
			continue
		}

		// Key = value pair.
		eqIdx := strings.Index(line, "=")
		if eqIdx < 0 {
			return nil, fmt.Errorf("line %d: expected key = value", lineNum+1)
		}
		key := strings.TrimSpace(line[:eqIdx])
		val := strings.TrimSpace(line[eqIdx+1:])

		if err := applyConfigValue(&cfg, section, key, val, lineNum+1); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// applyConfigValue sets a single field based on section, key, value.
func applyConfigValue(cfg *Config, section, key, val string, lineNum int) error {
	switch section {
	case "":
		return applyTopLevel(cfg, key, val, lineNum)
	case "vm":
		return applyVM(cfg, key, val, lineNum)
	case "log":
		return applyLog(cfg, key, val, lineNum)
	case "metrics":
		return applyMetrics(cfg, key, val, lineNum)
	default:
		return fmt.Errorf("line %d: unknown section [%s]", lineNum, section)
	}
}

func applyTopLevel(cfg *Config, key, val string, lineNum int) error {
	switch key {
	case "name":
		cfg.Name = unquote(val)
	default:
		return fmt.Errorf("line %d: unknown key %q in top-level", lineNum, key)
	}
	return nil
}

func applyVM(cfg *Config, key, val string, lineNum int) error {
	switch key {
	case "memory_size":
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid memory_size: %w", lineNum, err)
		}
		cfg.MemorySize = n
	case "max_steps":
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid max_steps: %w", lineNum, err)
		}
		cfg.MaxSteps = n
	case "step_batch":
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid step_batch: %w", lineNum, err)
		}
		cfg.StepBatch = n
	case "strict_align":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("line %d: invalid strict_align: %w", lineNum, err)
		}
		cfg.StrictAlign = b
	case "strict_decode":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("line %d: invalid strict_decode: %w", lineNum, err)
		}
		cfg.StrictDecode = b
	case "frame_pointer_fallback":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("line %d: invalid frame_pointer_fallback: %w", lineNum, err)
		}
		cfg.NoFramePointerFallback = !b
	case "debug":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("line %d: invalid debug: %w", lineNum, err)
		}
		cfg.Debug = b
	default:
		return fmt.Errorf("line %d: unknown key %q in [vm]", lineNum, key)
	}
	return nil
}

func applyLog(cfg *Config, key, val string, lineNum int) error {
	switch key {
	case "level":
		cfg.LogLevel = unquote(val)
	case "format":
		cfg.LogFormat = unquote(val)
	case "verbosity":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("line %d: invalid verbosity: %w", lineNum, err)
		}
		cfg.Verbosity = n
	default:
		return fmt.Errorf("line %d: unknown key %q in [log]", lineNum, key)
	}
	return nil
}

func applyMetrics(cfg *Config, key, val string, lineNum int) error {
	switch key {
	case "enabled":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("line %d: invalid metrics enabled: %w", lineNum, err)
		}
		cfg.Metrics = b
	default:
		return fmt.Errorf("line %d: unknown key %q in [metrics]", lineNum, key)
	}
	return nil
}

// unquote strips surrounding double quotes from a string value.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
