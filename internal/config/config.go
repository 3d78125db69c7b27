package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Oracle struct {
		URL string `yaml:"url"`
	} `yaml:"oracle"`
	RecordStore struct {
		URL string `yaml:"url"`
	} `yaml:"record_store"`
	LocalCache struct {
		Path string `yaml:"path"`
	} `yaml:"local_cache"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Auth.JWTSecret == "" {
		config.Auth.JWTSecret = os.Getenv("ROADWATCH_JWT_SECRET")
	}

	return config, nil
}
