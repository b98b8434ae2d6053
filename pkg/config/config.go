/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/factoryconfig/pkg/codec"
)

// Config represents the factoryconfig tool configuration
type Config struct {
	Medium  Medium  `yaml:"medium"`
	Archive Archive `yaml:"archive"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Medium describes where the factory configuration lives
type Medium struct {
	// Path is a sysfs EEPROM node or an image file. Empty selects an
	// in-memory medium.
	Path       string `yaml:"path"`
	Size       int64  `yaml:"size"`
	BaseOffset int64  `yaml:"base_offset"`
	Retries    int    `yaml:"retries"`
	Create     bool   `yaml:"create"`
}

// Archive contains snapshot archive configuration
type Archive struct {
	Dir string `yaml:"dir"`
}

// Server contains HTTP server configuration
type Server struct {
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Medium: Medium{
			Size:    256,
			Retries: 2,
		},
		Archive: Archive{
			Dir: "./snapshots",
		},
		Server: Server{
			Bind:   "127.0.0.1",
			Port:   8080,
			APIKey: "auto",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks the configuration for values the tool cannot work with
func (c *Config) Validate() error {
	minSize := int64(codec.LegacyV3Size + codec.BaseChecksumSize)
	if c.Medium.Size < minSize {
		return fmt.Errorf("medium.size %d is smaller than the largest base record (%d bytes)", c.Medium.Size, minSize)
	}
	if c.Medium.BaseOffset < 0 || c.Medium.BaseOffset >= c.Medium.Size {
		return fmt.Errorf("medium.base_offset %d outside medium of %d bytes", c.Medium.BaseOffset, c.Medium.Size)
	}
	if c.Medium.Size-c.Medium.BaseOffset < minSize {
		return fmt.Errorf("medium.base_offset %d leaves only %d bytes", c.Medium.BaseOffset, c.Medium.Size-c.Medium.BaseOffset)
	}
	if c.Medium.Retries < 0 {
		return fmt.Errorf("medium.retries must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// NewLogger returns a logrus logger writing to w at the configured level
func (c *Config) NewLogger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The API key lives in here.
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a new configuration for mediumPath with a generated
// API key
func BootstrapConfig(configPath string, mediumPath string) (*Config, error) {
	config := DefaultConfig()
	config.Medium.Path = mediumPath

	apiKey, err := GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./factoryconfig.yaml"
	}

	return filepath.Join(homeDir, ".config", "factoryconfig", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
