// Package config provides YAML-based configuration loading for SystemHause.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level SystemHause configuration, loaded from hause.yaml.
type Config struct {
	Company    string            `yaml:"company"`
	DB         DBConfig          `yaml:"db"`
	Portal     PortalConfig      `yaml:"portal"`
	Notify     NotifyConfig      `yaml:"notify"`
	Inspectors []InspectorConfig `yaml:"inspectors"`
	Builders   []BuilderConfig   `yaml:"builders"`
}

// DBConfig holds connection settings for the SQL server.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PortalConfig holds settings for the portal API server.
type PortalConfig struct {
	Port       int    `yaml:"port"`
	DigestCron string `yaml:"digest_cron"` // 5-field cron expression for the daily schedule digest
}

// NotifyConfig controls outbound notification delivery.
type NotifyConfig struct {
	Command string        `yaml:"command"` // shell command template, e.g. "notify-send 'SystemHause' '{{.Summary}}'"
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack credentials for the channel notifier.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig holds Discord credentials for the channel notifier.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// InspectorConfig seeds an inspector reference row.
type InspectorConfig struct {
	Name         string   `yaml:"name"`
	Phone        string   `yaml:"phone"`
	Email        string   `yaml:"email"`
	ServiceAreas []string `yaml:"service_areas"`
}

// BuilderConfig seeds a builder reference row.
type BuilderConfig struct {
	Name        string   `yaml:"name"`
	Company     string   `yaml:"company"`
	Phone       string   `yaml:"phone"`
	Email       string   `yaml:"email"`
	Communities []string `yaml:"communities"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	if c.DB.Database == "" && c.Company != "" {
		c.DB.Database = "systemhause_" + strings.ToLower(c.Company)
	}
	if c.Portal.Port == 0 {
		c.Portal.Port = 8080
	}
	if c.Portal.DigestCron == "" {
		c.Portal.DigestCron = "0 7 * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Company == "" {
		errs = append(errs, "company is required")
	}
	if c.DB.Database == "" {
		errs = append(errs, "db.database is required")
	}
	for i, ins := range c.Inspectors {
		if ins.Name == "" {
			errs = append(errs, fmt.Sprintf("inspectors[%d].name is required", i))
		}
	}
	for i, b := range c.Builders {
		if b.Name == "" {
			errs = append(errs, fmt.Sprintf("builders[%d].name is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
