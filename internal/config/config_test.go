// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
default: lab-fridge
devices:
  lab-fridge:
    host: 10.0.0.20
    timeout_ms: 2500
  loading-dock:
    host: 10.0.0.21
    port: 10002
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dev, err := cfg.Lookup("")
	if err != nil {
		t.Fatalf("Lookup default failed: %v", err)
	}
	if dev.Host != "10.0.0.20" {
		t.Errorf("default host = %q, want 10.0.0.20", dev.Host)
	}
	if dev.Timeout() != 2500*time.Millisecond {
		t.Errorf("timeout = %v, want 2.5s", dev.Timeout())
	}

	dock, err := cfg.Lookup("loading-dock")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if dock.Port != 10002 {
		t.Errorf("port = %d, want 10002", dock.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing host", "devices:\n  a:\n    port: 10001\n"},
		{"bad port", "devices:\n  a:\n    host: h\n    port: 99999\n"},
		{"unknown default", "default: nope\ndevices:\n  a:\n    host: h\n"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	cfg := &Config{Devices: map[string]DeviceConfig{}}
	if _, err := cfg.Lookup("ghost"); err == nil {
		t.Error("Lookup succeeded for unknown profile")
	}
	if _, err := cfg.Lookup(""); err == nil {
		t.Error("Lookup succeeded with no default")
	}
}
