package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Map       MapConfig       `yaml:"map"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	MCP       MCPConfig       `yaml:"mcp"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	// Path is the SQLite file holding the persisted log.
	Path string `yaml:"path"`
	// Slot is the key the log is stored under.
	Slot string `yaml:"slot"`
}

type AuthConfig struct {
	// APIKey protects the event endpoints when set.
	APIKey string `yaml:"api_key"`
}

type MapConfig struct {
	ZoomLevel     int           `yaml:"zoom_level"`
	HideFormDelay time.Duration `yaml:"hide_form_delay"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used for anything the file leaves out.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage:   StorageConfig{Slot: "workouts"},
		Map:       MapConfig{ZoomLevel: 10, HideFormDelay: time.Second},
		Tailscale: TailscaleConfig{Hostname: "workoutmap"},
		MCP:       MCPConfig{Enabled: true},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. Env vars use the prefix WORKOUTMAP_ and
// underscore-separated paths:
//
//	WORKOUTMAP_SERVER_HOST, WORKOUTMAP_SERVER_PORT,
//	WORKOUTMAP_STORAGE_PATH, WORKOUTMAP_STORAGE_SLOT,
//	WORKOUTMAP_AUTH_API_KEY,
//	WORKOUTMAP_MAP_ZOOM_LEVEL, WORKOUTMAP_MAP_HIDE_FORM_DELAY,
//	WORKOUTMAP_TAILSCALE_ENABLED, WORKOUTMAP_TAILSCALE_HOSTNAME,
//	WORKOUTMAP_TAILSCALE_STATE_DIR, WORKOUTMAP_MCP_ENABLED
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WORKOUTMAP_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WORKOUTMAP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WORKOUTMAP_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("WORKOUTMAP_STORAGE_SLOT"); v != "" {
		cfg.Storage.Slot = v
	}
	if v := os.Getenv("WORKOUTMAP_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("WORKOUTMAP_MAP_ZOOM_LEVEL"); v != "" {
		if zoom, err := strconv.Atoi(v); err == nil {
			cfg.Map.ZoomLevel = zoom
		}
	}
	if v := os.Getenv("WORKOUTMAP_MAP_HIDE_FORM_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Map.HideFormDelay = d
		}
	}
	if v := os.Getenv("WORKOUTMAP_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("WORKOUTMAP_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("WORKOUTMAP_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("WORKOUTMAP_MCP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MCP.Enabled = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Storage.Slot == "" {
		return fmt.Errorf("storage.slot must not be empty")
	}
	if c.Map.ZoomLevel < 1 || c.Map.ZoomLevel > 20 {
		return fmt.Errorf("map.zoom_level must be between 1 and 20, got %d", c.Map.ZoomLevel)
	}
	if c.Map.HideFormDelay < 0 {
		return fmt.Errorf("map.hide_form_delay must not be negative")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
