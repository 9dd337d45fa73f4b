package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models taskguard.yml.
type Config struct {
	Auth struct {
		MinPasswordLength int `yaml:"min_password_length"`
		TokenTTLMinutes   int `yaml:"token_ttl_minutes"`
	} `yaml:"auth"`
	Notifications struct {
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
		PanelSize           int `yaml:"panel_size"`
	} `yaml:"notifications"`
	Bootstrap struct {
		BossName  string `yaml:"boss_name"`
		BossEmail string `yaml:"boss_email"`
	} `yaml:"bootstrap"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; run taskguard init to create it", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Auth.MinPasswordLength < 0 {
		return fmt.Errorf("config.auth.min_password_length must not be negative")
	}
	if c.Auth.TokenTTLMinutes < 0 {
		return fmt.Errorf("config.auth.token_ttl_minutes must not be negative")
	}
	if c.Notifications.PollIntervalSeconds < 0 {
		return fmt.Errorf("config.notifications.poll_interval_seconds must not be negative")
	}
	if c.Notifications.PanelSize < 0 {
		return fmt.Errorf("config.notifications.panel_size must not be negative")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "taskguard.yml")
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MinPasswordLength returns the configured minimum, defaulting to 6.
func (c *Config) MinPasswordLength() int {
	if c == nil || c.Auth.MinPasswordLength == 0 {
		return 6
	}
	return c.Auth.MinPasswordLength
}

// PollInterval returns the notification poll interval in seconds,
// defaulting to 10.
func (c *Config) PollInterval() int {
	if c == nil || c.Notifications.PollIntervalSeconds == 0 {
		return 10
	}
	return c.Notifications.PollIntervalSeconds
}

// PanelSize returns how many entries the notification panel shows,
// defaulting to 10.
func (c *Config) PanelSize() int {
	if c == nil || c.Notifications.PanelSize == 0 {
		return 10
	}
	return c.Notifications.PanelSize
}

const defaultTemplate = `auth:
  # Minimum length enforced on first-login password rotation.
  min_password_length: 6
  # Lifetime of issued session tokens.
  token_ttl_minutes: 720

notifications:
  # How often clients poll the activity log. Bounds staleness of the
  # notification bell; missed ticks are tolerated.
  poll_interval_seconds: 10
  panel_size: 10

bootstrap:
  boss_name: Boss
  boss_email: boss@example.com
`
