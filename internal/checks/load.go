package checks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDefaults reads the default check table from a YAML or JSON file.
func LoadDefaults(path string) (Defaults, error) {
	var defaults Defaults
	if err := decodeFile(path, &defaults); err != nil {
		return nil, fmt.Errorf("defaults table: %w", err)
	}
	for service, defs := range defaults {
		for i, d := range defs {
			if d.Type == "" {
				return nil, fmt.Errorf("defaults table: service %q check %d has no type", service, i)
			}
		}
	}
	return defaults, nil
}

// LoadOverrides reads the per-host override table from a YAML or JSON file.
func LoadOverrides(path string) (Overrides, error) {
	var overrides Overrides
	if err := decodeFile(path, &overrides); err != nil {
		return nil, fmt.Errorf("override table: %w", err)
	}
	for host, ov := range overrides {
		for service, defs := range ov.Services {
			for i, d := range defs {
				if d.Type == "" {
					return nil, fmt.Errorf("override table: host %q service %q check %d has no type", host, service, i)
				}
			}
		}
		for i, d := range ov.Extra {
			if d.Type == "" {
				return nil, fmt.Errorf("override table: host %q extra check %d has no type", host, i)
			}
		}
	}
	return overrides, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported file format: %s (use .yaml, .yml, or .json)", ext)
	}
	return nil
}
