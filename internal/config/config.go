package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidJSON = errors.New("invalid config JSON")
)

// Defaults match the shipped mobile build. The server URL can be pointed at a
// local backend for testing (e.g. "http://localhost:5000").
const (
	DefaultServerURL        = "https://red-velvet-connection.replit.app"
	DefaultUserAgent        = "RedVelvet-Android/1.0"
	DefaultPlatform         = "android"
	DefaultStartingDiamonds = 25
	DefaultWorkerPoolSize   = 4
)

// Config holds the global client configuration.
type Config struct {
	ServerURL        string `json:"server_url" validate:"required,url"`
	UserAgent        string `json:"user_agent" validate:"required"`
	Platform         string `json:"platform" validate:"required"`
	StartingDiamonds int    `json:"starting_diamonds" validate:"min=0"`
	WorkerPoolSize   int    `json:"worker_pool_size" validate:"min=1,max=64"`
}

// Load reads the config from ~/.config/redvelvet/config.json. A missing file
// is not an error; defaults apply.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(homeDir, ".config", "redvelvet", "config.json")
	return LoadFrom(configPath)
}

// LoadFrom reads the config from a specific path, then applies environment
// overrides and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		ServerURL:        DefaultServerURL,
		UserAgent:        DefaultUserAgent,
		Platform:         DefaultPlatform,
		StartingDiamonds: DefaultStartingDiamonds,
		WorkerPoolSize:   DefaultWorkerPoolSize,
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, ErrInvalidJSON
		}
	}

	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv lets environment variables override file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("REDVELVET_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("REDVELVET_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("REDVELVET_PLATFORM"); v != "" {
		cfg.Platform = v
	}
	if v := os.Getenv("REDVELVET_WORKER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerPoolSize = n
		}
	}
}
