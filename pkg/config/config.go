package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Display   DisplayConfig   `mapstructure:"display"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

type AppConfig struct {
	Env string `mapstructure:"env"` // e.g., "local", "prod"
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FeedConfig describes the change-feed stream the store gateway writes to.
type FeedConfig struct {
	Stream string `mapstructure:"stream"`
	MaxLen int64  `mapstructure:"max_len"` // approximate retention bound
}

type GeneratorConfig struct {
	Interval time.Duration `mapstructure:"interval"` // sleep between workload cycles
}

type DisplayConfig struct {
	HighlightWindow time.Duration `mapstructure:"highlight_window"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Load .env file into System Environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Set Defaults (12-Factor App: Dev/Prod Parity)
	v.SetDefault("app.env", "local")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("feed.stream", "stocks:changes")
	v.SetDefault("feed.max_len", 10000)

	v.SetDefault("generator.interval", 250*time.Millisecond)

	v.SetDefault("display.highlight_window", time.Second)

	v.SetDefault("logger.level", "info")

	// 3. Configure Viper to read Environment Variables
	// This maps dot-notation to underscores (e.g., "redis.addr" -> "REDIS_ADDR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Explicitly Bind Env Vars to Keys
	bindEnv(v, "app.env")
	bindEnv(v, "redis.addr", "redis.password", "redis.db")
	bindEnv(v, "feed.stream", "feed.max_len")
	bindEnv(v, "generator.interval")
	bindEnv(v, "display.highlight_window")
	bindEnv(v, "logger.level")

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	// 6. Basic Validation
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis addr cannot be empty")
	}
	if cfg.Feed.Stream == "" {
		return nil, fmt.Errorf("feed stream name cannot be empty")
	}
	if cfg.Generator.Interval <= 0 {
		return nil, fmt.Errorf("generator interval must be positive")
	}
	if cfg.Display.HighlightWindow <= 0 {
		return nil, fmt.Errorf("display highlight window must be positive")
	}

	return &cfg, nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
