// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration management for the physdemo
// CLI, following perf-analysis's pkg/config/config.go: a viper-backed
// struct with mapstructure tags, defaults set before the file is read,
// and environment variables free to override either.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for a physdemo run.
type Config struct {
	World    WorldConfig    `mapstructure:"world"`
	Runtime  RuntimeConfig  `mapstructure:"runtime"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// WorldConfig controls the synthetic scene physdemo builds.
type WorldConfig struct {
	ChainCount  int   `mapstructure:"chain_count"`
	ChainLength int   `mapstructure:"chain_length"`
	RockPoints  int   `mapstructure:"rock_points"`
	RockRadius  float64 `mapstructure:"rock_radius"`
	Seed        int64 `mapstructure:"seed"`
}

// RuntimeConfig controls the deactivator/dispatcher tuning.
type RuntimeConfig struct {
	WorkerCount              int     `mapstructure:"worker_count"`
	Ticks                    int     `mapstructure:"ticks"`
	Deterministic            bool    `mapstructure:"deterministic"`
	TestedFractionPerFrame   float64 `mapstructure:"tested_fraction_per_frame"`
	TargetDeactivatedFraction float64 `mapstructure:"target_deactivated_fraction"`
	TargetTraversedFraction  float64 `mapstructure:"target_traversed_fraction"`
}

// TelemetryConfig controls where tick statistics and snapshots go.
type TelemetryConfig struct {
	Stage        string `mapstructure:"stage"` // "" disables AWS sinks, uses offline ones
	LiveFeedAddr string `mapstructure:"livefeed_addr"`
}

// Load reads configuration from configPath (or the standard search
// locations, if empty), falling back to defaults when no file is
// found, matching Load's tolerant-of-a-missing-file behavior in
// pkg/config/config.go.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("physdemo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("world.chain_count", 4)
	v.SetDefault("world.chain_length", 16)
	v.SetDefault("world.rock_points", 256)
	v.SetDefault("world.rock_radius", 5.0)
	v.SetDefault("world.seed", 1)

	v.SetDefault("runtime.worker_count", 4)
	v.SetDefault("runtime.ticks", 10)
	v.SetDefault("runtime.deterministic", false)
	v.SetDefault("runtime.tested_fraction_per_frame", 0.01)
	v.SetDefault("runtime.target_deactivated_fraction", 0.005)
	v.SetDefault("runtime.target_traversed_fraction", 0.02)

	v.SetDefault("telemetry.stage", "")
	v.SetDefault("telemetry.livefeed_addr", ":8766")
}

// Validate checks invariants Load can't express as viper defaults.
func (c *Config) Validate() error {
	if c.World.ChainCount < 0 {
		return fmt.Errorf("world.chain_count must be >= 0")
	}
	if c.World.ChainLength < 0 {
		return fmt.Errorf("world.chain_length must be >= 0")
	}
	if c.Runtime.WorkerCount < 1 {
		return fmt.Errorf("runtime.worker_count must be at least 1")
	}
	if c.Runtime.Ticks < 1 {
		return fmt.Errorf("runtime.ticks must be at least 1")
	}
	return nil
}
