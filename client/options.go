// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/litemq/litemq/transport"
)

// Default values.
const (
	DefaultReadBufferSize  = 128
	DefaultWriteBufferSize = 128
	DefaultTimeout         = 1 * time.Second
	DefaultKeepAlive       = 10 * time.Second
)

// Configuration errors.
var (
	ErrInvalidBufferSize = errors.New("buffer sizes must be positive")
	ErrInvalidKeepAlive  = errors.New("keep-alive must fit in 16 bits of seconds")
)

// Options configures the client. Buffer capacities are fixed at
// construction and never resized; a packet that does not fit fails with
// codec.ErrBufferTooShort rather than growing anything.
type Options struct {
	// Buffers.
	ReadBufferSize  int // logical capacity; one extra physical byte is reserved
	WriteBufferSize int

	// Session.
	Username     string
	Password     string
	CleanSession bool
	KeepAlive    time.Duration // 0 disables keep-alive probes
	Timeout      time.Duration // per-operation window

	// Inbound messages that cannot be delivered are dropped and counted
	// instead of failing the read loop.
	DropOverflow bool

	// Plumbing.
	Clock         transport.Clock // nil means the monotonic millisecond clock
	Logger        *slog.Logger    // nil means no logging
	MeterProvider metric.MeterProvider
}

// NewOptions creates Options with sensible defaults.
func NewOptions() *Options {
	return &Options{
		ReadBufferSize:  DefaultReadBufferSize,
		WriteBufferSize: DefaultWriteBufferSize,
		CleanSession:    true,
		KeepAlive:       DefaultKeepAlive,
		Timeout:         DefaultTimeout,
	}
}

// SetBufferSizes sets the read and write buffer capacities.
func (o *Options) SetBufferSizes(read, write int) *Options {
	o.ReadBufferSize = read
	o.WriteBufferSize = write
	return o
}

// SetCredentials sets username and password.
func (o *Options) SetCredentials(username, password string) *Options {
	o.Username = username
	o.Password = password
	return o
}

// SetCleanSession sets the clean session flag.
func (o *Options) SetCleanSession(clean bool) *Options {
	o.CleanSession = clean
	return o
}

// SetKeepAlive sets the keep-alive interval.
func (o *Options) SetKeepAlive(d time.Duration) *Options {
	o.KeepAlive = d
	return o
}

// SetTimeout sets the per-operation timeout.
func (o *Options) SetTimeout(d time.Duration) *Options {
	o.Timeout = d
	return o
}

// SetDropOverflow enables or disables the drop-on-overflow policy.
func (o *Options) SetDropOverflow(enabled bool) *Options {
	o.DropOverflow = enabled
	return o
}

// SetClock sets the clock source used for all timers.
func (o *Options) SetClock(clock transport.Clock) *Options {
	o.Clock = clock
	return o
}

// SetLogger sets the structured logger.
func (o *Options) SetLogger(l *slog.Logger) *Options {
	o.Logger = l
	return o
}

// SetMeterProvider enables OpenTelemetry instrumentation.
func (o *Options) SetMeterProvider(mp metric.MeterProvider) *Options {
	o.MeterProvider = mp
	return o
}

// Validate checks the options for errors.
func (o *Options) Validate() error {
	if o.ReadBufferSize <= 0 || o.WriteBufferSize <= 0 {
		return ErrInvalidBufferSize
	}
	if o.KeepAlive < 0 || o.KeepAlive/time.Second > 65535 {
		return ErrInvalidKeepAlive
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}
