// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

// litemq is a small publish/subscribe command built on the litemq client
// engine, useful for smoke-testing brokers and as a usage example.
package main

import (
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/litemq/litemq/client"
	"github.com/litemq/litemq/config"
	"github.com/litemq/litemq/transport"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	brokerAddr := flag.String("broker", "", "Broker address (overrides config)")
	mode := flag.String("mode", "sub", "Mode: pub or sub")
	topic := flag.String("topic", "litemq/test", "Topic to publish or subscribe to")
	message := flag.String("message", "", "Message payload for pub mode")
	qos := flag.Int("qos", 0, "QoS level (0, 1 or 2)")
	retain := flag.Bool("retain", false, "Set the retain flag on published messages")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *brokerAddr != "" {
		cfg.Broker.Addr = *brokerAddr
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	conn, err := newConn(cfg.Broker)
	if err != nil {
		slog.Error("Failed to set up transport", "error", err)
		os.Exit(1)
	}

	opts := client.NewOptions().
		SetBufferSizes(cfg.Buffers.ReadSize, cfg.Buffers.WriteSize).
		SetCredentials(cfg.Session.Username, cfg.Session.Password).
		SetCleanSession(cfg.Session.CleanSession).
		SetKeepAlive(cfg.Session.KeepAlive).
		SetTimeout(cfg.Session.Timeout).
		SetDropOverflow(cfg.Buffers.DropOverflow).
		SetLogger(logger)

	c, err := client.NewClient(conn, opts)
	if err != nil {
		slog.Error("Failed to create client", "error", err)
		os.Exit(1)
	}
	if cfg.Will.Enabled {
		if err := c.SetWill(cfg.Will.Topic, []byte(cfg.Will.Payload), cfg.Will.QoS, cfg.Will.Retain); err != nil {
			slog.Error("Failed to register will", "error", err)
			os.Exit(1)
		}
	}

	if err := c.Connect(cfg.Session.ClientID); err != nil {
		slog.Error("Failed to connect", "broker", cfg.Broker.Addr, "error", err)
		os.Exit(1)
	}
	defer c.Disconnect()

	switch *mode {
	case "pub":
		if err := c.Publish(*topic, []byte(*message), byte(*qos), *retain); err != nil {
			slog.Error("Publish failed", "topic", *topic, "error", err)
			os.Exit(1)
		}
		slog.Info("Published", "topic", *topic, "qos", *qos, "bytes", len(*message))

	case "sub":
		c.OnMessage(func(topic, payload []byte) {
			fmt.Printf("%s: %s\n", topic, payload)
		})
		if err := c.Subscribe(*topic, byte(*qos)); err != nil {
			slog.Error("Subscribe failed", "topic", *topic, "error", err)
			os.Exit(1)
		}
		slog.Info("Subscribed", "topic", *topic, "qos", *qos)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		for {
			select {
			case <-sig:
				slog.Info("Shutting down")
				return
			default:
			}
			if err := c.Loop(100 * time.Millisecond); err != nil {
				slog.Error("Session failed", "error", err)
				os.Exit(1)
			}
		}

	default:
		slog.Error("Unknown mode", "mode", *mode)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

func newConn(cfg config.BrokerConfig) (transport.Conn, error) {
	switch cfg.Transport {
	case "tcp":
		return transport.NewNetConn(cfg.Addr), nil

	case "tls":
		tlsCfg, err := newTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		return transport.NewTLSConn(cfg.Addr, tlsCfg), nil

	case "ws":
		url := "ws://" + cfg.Addr + cfg.WSPath
		return transport.NewWSConn(url), nil

	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func newTLSConfig(cfg config.BrokerConfig) (*tls.Config, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: cfg.TLSInsecure}

	if cfg.TLSCAFile != "" {
		pem, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.TLSCAFile)
		}
		tlsCfg.RootCAs = pool
	}
	if cfg.TLSCertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return tlsCfg, nil
}
