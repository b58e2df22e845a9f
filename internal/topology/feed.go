package topology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFeed reads a pre-captured topology feed file, a flat list of
// (name, addr, role) entries, in YAML or JSON.
func LoadFeed(path string) ([]Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology feed: %w", err)
	}

	var feed []Host
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &feed); err != nil {
			return nil, fmt.Errorf("failed to parse YAML topology feed: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &feed); err != nil {
			return nil, fmt.Errorf("failed to parse JSON topology feed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported topology feed format: %s (use .yaml, .yml, or .json)", ext)
	}
	return feed, nil
}
