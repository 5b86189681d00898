package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// watch.toml key mapping to watch runtime settings.
type fileConfig struct {
	Servers        []string `toml:"servers"`
	Interval       string   `toml:"interval"`
	Timeout        string   `toml:"timeout"`
	MaxConcurrency int      `toml:"max_concurrency"`
}

type watchConfig struct {
	Servers        []string
	Interval       time.Duration
	Timeout        time.Duration
	MaxConcurrency int
}

func defaultWatchConfig() watchConfig {
	return watchConfig{
		Interval:       30 * time.Second,
		Timeout:        5 * time.Second,
		MaxConcurrency: 8,
	}
}

// loadWatchConfig reads a TOML watch config with a default overlay.
func loadWatchConfig(path string) (watchConfig, error) {
	cfg := defaultWatchConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return watchConfig{}, fmt.Errorf("load watch config: %w", err)
	}

	if meta.IsDefined("servers") {
		cfg.Servers = raw.Servers
	}
	if meta.IsDefined("interval") {
		d, err := time.ParseDuration(raw.Interval)
		if err != nil {
			return watchConfig{}, fmt.Errorf("load watch config: invalid interval %q: %w", raw.Interval, err)
		}
		cfg.Interval = d
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return watchConfig{}, fmt.Errorf("load watch config: invalid timeout %q: %w", raw.Timeout, err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("max_concurrency") {
		if raw.MaxConcurrency < 1 {
			return watchConfig{}, fmt.Errorf("load watch config: max_concurrency must be positive")
		}
		cfg.MaxConcurrency = raw.MaxConcurrency
	}

	if len(cfg.Servers) == 0 {
		return watchConfig{}, fmt.Errorf("load watch config: no servers listed")
	}
	if cfg.Interval <= 0 {
		return watchConfig{}, fmt.Errorf("load watch config: interval must be positive")
	}

	return cfg, nil
}
