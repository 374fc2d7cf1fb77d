package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// configSetter assigns one config file value.
type configSetter func(value any) error

func generateConfigSetters(cfg *GenerateConfig) map[string]configSetter {
	str := func(dst *string) configSetter {
		return func(v any) error {
			s, err := valueAsString(v)
			*dst = s
			return err
		}
	}
	list := func(dst *[]string) configSetter {
		return func(v any) error {
			l, err := valueAsStringSlice(v)
			*dst = sanitizePatterns(l)
			return err
		}
	}
	flag := func(dst *bool) configSetter {
		return func(v any) error {
			b, err := valueAsBool(v)
			*dst = b
			return err
		}
	}
	return map[string]configSetter{
		"input":         str(&cfg.Input),
		"out":           str(&cfg.Out),
		"packagename":   str(&cfg.PackageName),
		"runtimeimport": str(&cfg.RuntimeImport),
		"include":       list(&cfg.Include),
		"exclude":       list(&cfg.Exclude),
		"concurrency": func(v any) error {
			n, err := valueAsInt(v)
			cfg.Concurrency = n
			return err
		},
		"dryrun":    flag(&cfg.DryRun),
		"force":     flag(&cfg.Force),
		"verbose":   flag(&cfg.Verbose),
		"logformat": str(&cfg.LogFormat),
	}
}

// applyConfigFile decodes a YAML or TOML file (chosen by extension) and hands
// each value to the setter registered under its normalized key. Unknown keys
// are rejected.
func applyConfigFile(path string, setters map[string]configSetter) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
		}
	}

	for key, value := range raw {
		set, ok := setters[normalizeKey(key)]
		if !ok {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err := set(value); err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}
	return nil
}

// applyEnv overrides cfg with the APIGEN_* variables that are set.
func applyEnv(cfg *GenerateConfig) error {
	if err := env.Parse(cfg); err != nil {
		return newUsageError(fmt.Sprintf("environment: %v", err))
	}
	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// valueAsInt accepts the integer types produced by both decoders: int from
// yaml.v3 and int64 from toml.
func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value %q", val)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
