package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/prismtrade/prismtrade/internal/apperrors"
)

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MarketDataConfig controls the exchange data source.
type MarketDataConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Testnet   bool   `yaml:"testnet"`
	Category  string `yaml:"category"`
}

// HistoryConfig controls prediction snapshot persistence.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type Config struct {
	Environment string           `yaml:"environment"`
	LogLevel    string           `yaml:"log_level"`
	Server      ServerConfig     `yaml:"server"`
	MarketData  MarketDataConfig `yaml:"market_data"`
	History     HistoryConfig    `yaml:"history"`
}

func defaults() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		MarketData: MarketDataConfig{
			Category: "spot",
		},
		History: HistoryConfig{
			Enabled: true,
			Dir:     "data/predictions",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing precedence. A .env file in the
// working directory is read first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryConfig, "config", "load")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryConfig, "config", "load")
		}
	}

	cfg.Environment = getEnv("ENV", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.MarketData.APIKey = getEnv("BYBIT_API_KEY", cfg.MarketData.APIKey)
	cfg.MarketData.APISecret = getEnv("BYBIT_API_SECRET", cfg.MarketData.APISecret)
	cfg.MarketData.Testnet = getEnvBool("BYBIT_TESTNET", cfg.MarketData.Testnet)
	cfg.MarketData.Category = getEnv("BYBIT_CATEGORY", cfg.MarketData.Category)
	cfg.History.Enabled = getEnvBool("HISTORY_ENABLED", cfg.History.Enabled)
	cfg.History.Dir = getEnv("HISTORY_DIR", cfg.History.Dir)
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
