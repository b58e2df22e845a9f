package assign

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the authored service assignment from a YAML or JSON file.
func Load(path string) (Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment: %w", err)
	}
	var a Assignment
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to parse YAML assignment: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to parse JSON assignment: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported assignment format: %s (use .yaml, .yml, or .json)", ext)
	}
	return a, nil
}
