package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the entire browser configuration.
type Config struct {
	Model struct {
		// Endpoint of the embeddings API; empty selects the public default.
		Endpoint string `yaml:"endpoint" json:"endpoint"`
		Name     string `yaml:"name" json:"name"`
		// APIKey is normally left empty in the file and supplied via the
		// EMBEDDINGS_API_KEY environment variable.
		APIKey             string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
		LoadTimeoutSeconds int    `yaml:"loadTimeoutSeconds" json:"loadTimeoutSeconds"`
	} `yaml:"model" json:"model"`

	Search struct {
		Threshold  float64 `yaml:"threshold" json:"threshold"`
		Precompute bool    `yaml:"precompute" json:"precompute"`
	} `yaml:"search" json:"search"`

	Cache struct {
		// Backend is "memory" or "sqlite".
		Backend    string `yaml:"backend" json:"backend"`
		Path       string `yaml:"path,omitempty" json:"path,omitempty"`
		FieldLimit int    `yaml:"fieldLimit,omitempty" json:"fieldLimit,omitempty"`
	} `yaml:"cache" json:"cache"`

	LogLevel string `yaml:"logLevel" json:"logLevel"`
}

// Provider is an interface for loading a configuration.
type Provider interface {
	LoadConfig(path string) (*Config, error)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Model.Name = "text-embedding-3-small"
	cfg.Model.LoadTimeoutSeconds = 15
	cfg.Search.Threshold = 0.4
	cfg.Cache.Backend = "memory"
	cfg.Cache.FieldLimit = 10
	cfg.LogLevel = "info"
	return cfg
}

// Load reads the configuration from path via the provider, falling back to
// defaults when the path is empty, then applies environment overrides.
// A .env file in the working directory is honored if present.
func Load(p Provider, path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if p == nil {
			return nil, fmt.Errorf("config: no provider set")
		}
		loaded, err := p.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyEnv(cfg)
	return cfg, nil
}

// Validate checks that required settings are present for a non-degraded run.
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return fmt.Errorf("config: model name is required")
	}
	if c.Cache.Backend == "sqlite" && c.Cache.Path == "" {
		return fmt.Errorf("config: cache path is required for the sqlite backend")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Model.APIKey = getEnv("EMBEDDINGS_API_KEY", cfg.Model.APIKey)
	cfg.Model.Endpoint = getEnv("EMBEDDINGS_ENDPOINT", cfg.Model.Endpoint)
	cfg.Model.Name = getEnv("EMBEDDINGS_MODEL", cfg.Model.Name)
	cfg.Model.LoadTimeoutSeconds = getEnvInt("MODEL_LOAD_TIMEOUT_SECONDS", cfg.Model.LoadTimeoutSeconds)
	cfg.Search.Threshold = getEnvFloat("SEARCH_THRESHOLD", cfg.Search.Threshold)
	cfg.Search.Precompute = getEnvBool("SEARCH_PRECOMPUTE", cfg.Search.Precompute)
	cfg.Cache.Backend = getEnv("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.Path = getEnv("CACHE_PATH", cfg.Cache.Path)
	cfg.Cache.FieldLimit = getEnvInt("CACHE_FIELD_LIMIT", cfg.Cache.FieldLimit)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value == "true" {
		return true
	}
	return defaultValue
}
