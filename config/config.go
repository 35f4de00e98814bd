// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the litemq command configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the litemq command.
type Config struct {
	Broker  BrokerConfig  `yaml:"broker"`
	Session SessionConfig `yaml:"session"`
	Buffers BuffersConfig `yaml:"buffers"`
	Will    WillConfig    `yaml:"will"`
	Log     LogConfig     `yaml:"log"`
}

// BrokerConfig describes how to reach the broker.
type BrokerConfig struct {
	Addr      string `yaml:"addr"`
	Transport string `yaml:"transport"` // tcp, tls, ws
	WSPath    string `yaml:"ws_path"`

	TLSCAFile   string `yaml:"tls_ca_file"`
	TLSCertFile string `yaml:"tls_cert_file"`
	TLSKeyFile  string `yaml:"tls_key_file"`
	TLSInsecure bool   `yaml:"tls_insecure"` // skip server certificate verification
}

// SessionConfig holds MQTT session settings.
type SessionConfig struct {
	ClientID     string        `yaml:"client_id"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	CleanSession bool          `yaml:"clean_session"`
	KeepAlive    time.Duration `yaml:"keep_alive"`
	Timeout      time.Duration `yaml:"timeout"`
}

// BuffersConfig sizes the fixed client buffers.
type BuffersConfig struct {
	ReadSize     int  `yaml:"read_size"`
	WriteSize    int  `yaml:"write_size"`
	DropOverflow bool `yaml:"drop_overflow"`
}

// WillConfig registers an optional last-will message.
type WillConfig struct {
	Enabled bool   `yaml:"enabled"`
	Topic   string `yaml:"topic"`
	Payload string `yaml:"payload"`
	QoS     byte   `yaml:"qos"`
	Retain  bool   `yaml:"retain"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Addr:      "localhost:1883",
			Transport: "tcp",
			WSPath:    "/mqtt",
		},
		Session: SessionConfig{
			CleanSession: true,
			KeepAlive:    10 * time.Second,
			Timeout:      time.Second,
		},
		Buffers: BuffersConfig{
			ReadSize:  128,
			WriteSize: 128,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
// If the file doesn't exist, returns default configuration.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Broker.Addr == "" {
		return fmt.Errorf("broker.addr cannot be empty")
	}
	switch c.Broker.Transport {
	case "tcp", "tls", "ws":
	default:
		return fmt.Errorf("broker.transport must be one of: tcp, tls, ws")
	}
	if c.Broker.Transport == "tls" && c.Broker.TLSCertFile != "" && c.Broker.TLSKeyFile == "" {
		return fmt.Errorf("broker.tls_key_file required when tls_cert_file is set")
	}

	if c.Buffers.ReadSize < 1 || c.Buffers.WriteSize < 1 {
		return fmt.Errorf("buffer sizes must be at least 1 byte")
	}
	if c.Session.KeepAlive < 0 || c.Session.KeepAlive/time.Second > 65535 {
		return fmt.Errorf("session.keep_alive must fit in 16 bits of seconds")
	}
	if c.Session.Timeout <= 0 {
		return fmt.Errorf("session.timeout must be positive")
	}

	if c.Will.Enabled {
		if c.Will.Topic == "" {
			return fmt.Errorf("will.topic required when the will is enabled")
		}
		if c.Will.QoS > 2 {
			return fmt.Errorf("will.qos must be 0, 1 or 2")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("log.format must be one of: text, json")
	}

	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
