package config_test

import (
	"testing"
	"time"

	"github.com/pkdone/stockticker/pkg/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %s", cfg.Redis.Addr)
	}
	if cfg.Feed.Stream != "stocks:changes" {
		t.Errorf("feed stream = %s", cfg.Feed.Stream)
	}
	if cfg.Feed.MaxLen != 10000 {
		t.Errorf("feed max len = %d", cfg.Feed.MaxLen)
	}
	if cfg.Generator.Interval != 250*time.Millisecond {
		t.Errorf("generator interval = %s", cfg.Generator.Interval)
	}
	if cfg.Display.HighlightWindow != time.Second {
		t.Errorf("highlight window = %s", cfg.Display.HighlightWindow)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("logger level = %s", cfg.Logger.Level)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "10.0.0.5:6380")
	t.Setenv("FEED_STREAM", "ticks:feed")
	t.Setenv("GENERATOR_INTERVAL", "100ms")
	t.Setenv("LOGGER_LEVEL", "debug")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Redis.Addr != "10.0.0.5:6380" {
		t.Errorf("redis addr = %s", cfg.Redis.Addr)
	}
	if cfg.Feed.Stream != "ticks:feed" {
		t.Errorf("feed stream = %s", cfg.Feed.Stream)
	}
	if cfg.Generator.Interval != 100*time.Millisecond {
		t.Errorf("generator interval = %s", cfg.Generator.Interval)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("logger level = %s", cfg.Logger.Level)
	}
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	t.Setenv("GENERATOR_INTERVAL", "0s")

	if _, err := config.LoadConfig(); err == nil {
		t.Error("expected error for non-positive generator interval")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := config.NewLogger(config.LoggerConfig{Level: "info"}, "prod"); err != nil {
		t.Errorf("NewLogger(info) failed: %v", err)
	}
	if _, err := config.NewLogger(config.LoggerConfig{Level: "nope"}, "prod"); err == nil {
		t.Error("NewLogger accepted a bogus level")
	}
}
