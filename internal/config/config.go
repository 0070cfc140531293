package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults applied after loading.
const (
	DefaultReleaseTag  = "v1.0.0"
	DefaultMaxFeatures = 5000
)

type Config struct {
	TMDB   TMDBConfig   `toml:"tmdb"`
	GitHub GitHubConfig `toml:"github"`
	Data   DataConfig   `toml:"data"`
}

type TMDBConfig struct {
	APIKey string `toml:"api_key"`
}

type GitHubConfig struct {
	Token      string `toml:"token"`
	Repo       string `toml:"repo"`
	ReleaseTag string `toml:"release_tag"`
}

type DataConfig struct {
	Dir         string `toml:"dir"`
	MaxFeatures int    `toml:"max_features"`
}

func LoadConfig() (*Config, error) {
	config := &Config{}

	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	// Try to load config file
	configPath := filepath.Join(homeDir, ".reeldeal.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	// Environment variables override file values
	for _, override := range []struct {
		env  string
		dest *string
	}{
		{"TMDB_API_KEY", &config.TMDB.APIKey},
		{"GITHUB_TOKEN", &config.GitHub.Token},
		{"GITHUB_REPO", &config.GitHub.Repo},
		{"GITHUB_RELEASE_TAG", &config.GitHub.ReleaseTag},
		{"REELDEAL_DATA_DIR", &config.Data.Dir},
	} {
		if value := os.Getenv(override.env); value != "" {
			*override.dest = value
		}
	}

	if config.GitHub.ReleaseTag == "" {
		config.GitHub.ReleaseTag = DefaultReleaseTag
	}
	if config.Data.Dir == "" {
		config.Data.Dir = filepath.Join(homeDir, ".reeldeal", "data")
	}
	if config.Data.MaxFeatures <= 0 {
		config.Data.MaxFeatures = DefaultMaxFeatures
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".reeldeal.toml")
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
