// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Broker.Addr != "localhost:1883" {
		t.Errorf("expected default broker addr localhost:1883, got %s", cfg.Broker.Addr)
	}
	if cfg.Broker.Transport != "tcp" {
		t.Errorf("expected default transport tcp, got %s", cfg.Broker.Transport)
	}
	if !cfg.Session.CleanSession {
		t.Error("expected clean session by default")
	}
	if cfg.Session.KeepAlive != 10*time.Second {
		t.Errorf("expected keep-alive 10s, got %v", cfg.Session.KeepAlive)
	}
	if cfg.Buffers.ReadSize != 128 || cfg.Buffers.WriteSize != 128 {
		t.Errorf("expected 128 byte buffers, got %d/%d", cfg.Buffers.ReadSize, cfg.Buffers.WriteSize)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config is valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty broker addr",
			modify:  func(c *Config) { c.Broker.Addr = "" },
			wantErr: true,
		},
		{
			name:    "unknown transport",
			modify:  func(c *Config) { c.Broker.Transport = "udp" },
			wantErr: true,
		},
		{
			name:    "zero read buffer",
			modify:  func(c *Config) { c.Buffers.ReadSize = 0 },
			wantErr: true,
		},
		{
			name:    "keep-alive over 16 bits of seconds",
			modify:  func(c *Config) { c.Session.KeepAlive = 20 * time.Hour },
			wantErr: true,
		},
		{
			name:    "non-positive timeout",
			modify:  func(c *Config) { c.Session.Timeout = 0 },
			wantErr: true,
		},
		{
			name: "will enabled without topic",
			modify: func(c *Config) {
				c.Will.Enabled = true
				c.Will.Topic = ""
			},
			wantErr: true,
		},
		{
			name: "will with invalid qos",
			modify: func(c *Config) {
				c.Will.Enabled = true
				c.Will.Topic = "status"
				c.Will.QoS = 3
			},
			wantErr: true,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Broker.Addr != "localhost:1883" {
		t.Errorf("expected defaults, got addr %s", cfg.Broker.Addr)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "litemq.yaml")
	data := []byte(`
broker:
  addr: broker.example.com:8883
  transport: tls
session:
  client_id: sensor-7
  keep_alive: 30s
buffers:
  read_size: 512
  drop_overflow: true
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Broker.Addr != "broker.example.com:8883" || cfg.Broker.Transport != "tls" {
		t.Errorf("broker overrides not applied: %+v", cfg.Broker)
	}
	if cfg.Session.ClientID != "sensor-7" || cfg.Session.KeepAlive != 30*time.Second {
		t.Errorf("session overrides not applied: %+v", cfg.Session)
	}
	if cfg.Buffers.ReadSize != 512 || !cfg.Buffers.DropOverflow {
		t.Errorf("buffer overrides not applied: %+v", cfg.Buffers)
	}
	if cfg.Buffers.WriteSize != 128 {
		t.Errorf("expected untouched default write size, got %d", cfg.Buffers.WriteSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log override not applied: %s", cfg.Log.Level)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("broker:\n  transport: udp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Session.ClientID = "device-42"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Session.ClientID != "device-42" {
		t.Errorf("expected round-tripped client id, got %s", loaded.Session.ClientID)
	}
}
