package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete tool configuration: where the authored inputs
// live, where the artifacts go, and the ambient watch/metrics/tracing
// settings.
type Config struct {
	// Inputs. Topology is a captured feed file; TofuDir reads the feed
	// live from the provisioning state instead.
	Topology   string `yaml:"topology" json:"topology"`
	TofuDir    string `yaml:"tofu_dir" json:"tofu_dir"`
	Assignment string `yaml:"assignment" json:"assignment"`
	Defaults   string `yaml:"defaults" json:"defaults"`
	Overrides  string `yaml:"overrides" json:"overrides"`

	// Outputs
	InventoryOut string `yaml:"inventory_out" json:"inventory_out"`
	ChecksOut    string `yaml:"checks_out" json:"checks_out"`
	RDPDir       string `yaml:"rdp_dir" json:"rdp_dir"`

	// Inventory connection vars
	LinuxUser       string `yaml:"linux_user" json:"linux_user"`
	LinuxPassword   string `yaml:"linux_password" json:"linux_password"`
	WindowsUser     string `yaml:"windows_user" json:"windows_user"`
	WindowsPassword string `yaml:"windows_password" json:"windows_password"`
	WinRMProxy      string `yaml:"winrm_proxy" json:"winrm_proxy"`

	// RDP files
	RDPGateway  string `yaml:"rdp_gateway" json:"rdp_gateway"`
	RDPUsername string `yaml:"rdp_username" json:"rdp_username"`

	// Watch mode
	Watch       bool   `yaml:"watch" json:"watch"`
	IntervalSec int    `yaml:"interval_sec" json:"interval_sec"`
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`

	// Observability
	OTELEndpoint string `yaml:"otel_endpoint" json:"otel_endpoint"`
	OTELInsecure bool   `yaml:"otel_insecure" json:"otel_insecure"`
	OTELService  string `yaml:"otel_service" json:"otel_service"`
}

// SetDefaults sets default values for the configuration.
func (c *Config) SetDefaults() {
	if c.InventoryOut == "" {
		c.InventoryOut = "out/inventory.ini"
	}
	if c.ChecksOut == "" {
		c.ChecksOut = "out/checks.toml"
	}
	if c.IntervalSec == 0 {
		c.IntervalSec = 60
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
	if c.OTELService == "" {
		c.OTELService = "checkgen"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Topology == "" && c.TofuDir == "" {
		return fmt.Errorf("either topology file or tofu_dir is required")
	}
	if c.Topology != "" && c.TofuDir != "" {
		return fmt.Errorf("topology and tofu_dir are mutually exclusive")
	}
	if c.Assignment == "" && c.TofuDir == "" {
		return fmt.Errorf("assignment file is required when not reading from tofu")
	}
	if c.IntervalSec < 1 {
		return fmt.Errorf("interval_sec must be at least 1")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	config.SetDefaults()
	return &config, nil
}

// LoadFromEnv loads credential overrides from environment variables, so
// the generated inventory's connection vars never have to live in a
// checked-in config file.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("CHECKGEN_LINUX_USER"); v != "" {
		c.LinuxUser = v
	}
	if v := os.Getenv("CHECKGEN_LINUX_PASSWORD"); v != "" {
		c.LinuxPassword = v
	}
	if v := os.Getenv("CHECKGEN_WINDOWS_USER"); v != "" {
		c.WindowsUser = v
	}
	if v := os.Getenv("CHECKGEN_WINDOWS_PASSWORD"); v != "" {
		c.WindowsPassword = v
	}
}

// MergeWithFlags merges command-line flags with file configuration.
// Command-line flags take precedence over file configuration.
func (c *Config) MergeWithFlags(flags map[string]interface{}) {
	if v, ok := flags["topology"].(string); ok && v != "" {
		c.Topology = v
	}
	if v, ok := flags["tofu_dir"].(string); ok && v != "" {
		c.TofuDir = v
	}
	if v, ok := flags["assignment"].(string); ok && v != "" {
		c.Assignment = v
	}
	if v, ok := flags["defaults"].(string); ok && v != "" {
		c.Defaults = v
	}
	if v, ok := flags["overrides"].(string); ok && v != "" {
		c.Overrides = v
	}
	if v, ok := flags["inventory_out"].(string); ok && v != "" {
		c.InventoryOut = v
	}
	if v, ok := flags["checks_out"].(string); ok && v != "" {
		c.ChecksOut = v
	}
	if v, ok := flags["rdp_dir"].(string); ok && v != "" {
		c.RDPDir = v
	}
	if v, ok := flags["watch"].(bool); ok {
		c.Watch = v
	}
	if v, ok := flags["interval_sec"].(int); ok && v > 0 {
		c.IntervalSec = v
	}
	if v, ok := flags["metrics_addr"].(string); ok && v != "" {
		c.MetricsAddr = v
	}
	if v, ok := flags["otel_endpoint"].(string); ok && v != "" {
		c.OTELEndpoint = v
	}
	if v, ok := flags["otel_insecure"].(bool); ok {
		c.OTELInsecure = v
	}
	if v, ok := flags["otel_service"].(string); ok && v != "" {
		c.OTELService = v
	}
}
