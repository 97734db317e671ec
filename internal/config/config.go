// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

// Package config loads the optional tempguard configuration file: named
// device profiles so monitors can be addressed as --device lab-fridge
// instead of repeating host/port flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration file structure.
type Config struct {
	// Default names the profile used when no --device or --host is given.
	Default string `yaml:"default"`

	Devices map[string]DeviceConfig `yaml:"devices"`
}

// DeviceConfig is one device profile.
type DeviceConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Timeout returns the profile timeout, or zero when unset so the protocol
// default applies.
func (d DeviceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tempguard", "config.yaml")
}

// Load reads and validates a configuration file. A missing file at the
// default path is not an error; an empty Config is returned instead.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath() {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for name, dev := range c.Devices {
		if dev.Host == "" {
			return fmt.Errorf("device %q: host required", name)
		}
		if dev.Port < 0 || dev.Port > 65535 {
			return fmt.Errorf("device %q: invalid port %d", name, dev.Port)
		}
		if dev.TimeoutMs < 0 {
			return fmt.Errorf("device %q: negative timeout", name)
		}
	}
	if c.Default != "" {
		if _, ok := c.Devices[c.Default]; !ok {
			return fmt.Errorf("default device %q not defined", c.Default)
		}
	}
	return nil
}

// Lookup resolves a profile by name, falling back to the configured default
// when name is empty.
func (c *Config) Lookup(name string) (DeviceConfig, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" {
		return DeviceConfig{}, fmt.Errorf("no device profile requested and no default configured")
	}
	dev, ok := c.Devices[name]
	if !ok {
		return DeviceConfig{}, fmt.Errorf("device profile %q not found", name)
	}
	return dev, nil
}
