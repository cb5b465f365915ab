package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexanderramin/drip/internal/layout"
	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Layout  LayoutConfig
	Publish PublishConfig
	App     AppConfig
}

type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

type StorageConfig struct {
	Path string
}

type LayoutConfig struct {
	Engine string // a Graphviz layout program, dot by default
}

type PublishConfig struct {
	RedisAddr string // empty disables the Redis sink
	Channel   string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogUseCases bool
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching
// .env files.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:        getEnv("DRIP_ADDR", ":8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			Path: getEnv("DRIP_DB", defaultDBPath()),
		},
		Layout: LayoutConfig{
			Engine: getEnv("LAYOUT_ENGINE", layout.DefaultEngine),
		},
		Publish: PublishConfig{
			RedisAddr: getEnv("REDIS_ADDR", ""),
			Channel:   getEnv("REDIS_CHANNEL", "drip:plans"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogUseCases: getEnvAsBool("DRIP_LOG_USECASES", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("DRIP_DB is required")
	}
	if !layout.ValidEngine(c.Layout.Engine) {
		return fmt.Errorf("LAYOUT_ENGINE must be one of %s, got %q", strings.Join(layout.Engines(), ", "), c.Layout.Engine)
	}
	if c.Publish.RedisAddr != "" && c.Publish.Channel == "" {
		return fmt.Errorf("REDIS_CHANNEL is required when REDIS_ADDR is set")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// NewLogger builds the process logger writing text records at LOG_LEVEL.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "drip.db"
	}
	return filepath.Join(home, ".drip", "drip.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
