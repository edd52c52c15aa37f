package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const fileName = "sdfexport.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over discovery
	var configPath string
	if f != nil {
		configPath = f.Config
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg, f)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the exporter cannot act on.
func (c *Config) Validate() error {
	switch c.Export.MeshFormat {
	case "stl", "obj":
	default:
		return fmt.Errorf("export.mesh_format: unknown format %q (want stl or obj)", c.Export.MeshFormat)
	}
	if c.Export.OutputRoot == "" {
		return fmt.Errorf("export.output_root: must not be empty")
	}
	if c.Export.WorldName == "" {
		return fmt.Errorf("export.world_name: must not be empty")
	}
	if c.Collision.PollInterval <= 0 {
		return fmt.Errorf("collision.poll_interval: must be positive")
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./" + fileName,
		filepath.Join(ConfigDir(), fileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "sdfexport")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sdfexport")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "sdfexport")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sdfexport")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
