// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

// Package transport defines the byte-stream and clock contracts the
// session engine is built against, plus adapters for TCP/TLS sockets and
// websockets. The engine only ever sees Read/Write with a timeout, so any
// reliable ordered stream (a serial link included) can carry it.
package transport

import (
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when no data at all arrived within the
	// requested window. Not inherently fatal; the engine decides policy.
	ErrTimeout = errors.New("network timeout")

	// ErrFailedRead is returned when the stream reported closure before a
	// single byte was read.
	ErrFailedRead = errors.New("network failed read")

	// ErrFailedWrite is returned when the stream accepted zero bytes.
	ErrFailedWrite = errors.New("network failed write")

	// ErrNotOpen is returned when an operation is attempted on a
	// transport that has not been opened.
	ErrNotOpen = errors.New("transport not open")
)

// Conn is a reliable ordered byte stream with timeout-bounded transfers.
//
// Read fills p, looping until p is full or the timeout elapses and
// yielding cooperatively between poll attempts. A non-zero partial read
// before the deadline is a success. Zero bytes plus closure fails with
// ErrFailedRead; zero bytes plus expiry fails with ErrTimeout.
//
// Write makes a single best-effort attempt and fails with ErrFailedWrite
// when nothing was accepted.
type Conn interface {
	// Open establishes the stream. Opening an already open transport is
	// a no-op, which is how a caller signals a pre-established stream.
	Open(timeout time.Duration) error

	Read(p []byte, timeout time.Duration) (int, error)
	Write(p []byte, timeout time.Duration) (int, error)

	// Available reports how many buffered inbound bytes can be read
	// without blocking.
	Available() int

	IsOpen() bool
	Close() error
}
