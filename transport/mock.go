// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"runtime"
	"time"
)

// MockConn is a scripted in-memory transport for engine tests. Inbound
// bytes are served from a queue fed by Feed or by the Respond hook, which
// runs after every write and lets a test act as the remote peer.
type MockConn struct {
	inbound  []byte
	written  [][]byte
	open     bool
	failOpen error

	// Respond, when set, is invoked with each written packet; its return
	// value is queued as inbound bytes. A nil return queues nothing.
	Respond func(written []byte) []byte

	// Silent drops all writes without queueing responses, simulating a
	// peer that never answers.
	Silent bool

	// ClosedOnRead makes the next read report transport closure.
	ClosedOnRead bool

	// RefuseWrites makes writes fail with zero bytes accepted.
	RefuseWrites bool

	clock Clock
}

// NewMockConn returns a closed mock transport using clock to pace read
// timeouts, or Millis when nil.
func NewMockConn(clock Clock) *MockConn {
	if clock == nil {
		clock = Millis
	}
	return &MockConn{clock: clock}
}

// Feed queues bytes for subsequent reads.
func (c *MockConn) Feed(p []byte) {
	c.inbound = append(c.inbound, p...)
}

// Written returns every buffer passed to Write, in order.
func (c *MockConn) Written() [][]byte {
	return c.written
}

// LastWritten returns the most recent write, or nil.
func (c *MockConn) LastWritten() []byte {
	if len(c.written) == 0 {
		return nil
	}
	return c.written[len(c.written)-1]
}

// FailNextOpen makes the next Open return err.
func (c *MockConn) FailNextOpen(err error) {
	c.failOpen = err
}

// Open marks the transport open.
func (c *MockConn) Open(timeout time.Duration) error {
	if c.failOpen != nil {
		err := c.failOpen
		c.failOpen = nil
		return err
	}
	c.open = true
	return nil
}

// Read serves queued bytes, honouring the timeout contract: partial data
// is a success, closure with nothing read fails, expiry with nothing read
// times out. The poll loop yields between attempts like a real busy-wait
// transport would.
func (c *MockConn) Read(p []byte, timeout time.Duration) (int, error) {
	var timer Timer
	timer.SetClock(c.clock)
	timer.Set(timeout)

	total := 0
	for total < len(p) {
		if len(c.inbound) > 0 {
			n := copy(p[total:], c.inbound)
			c.inbound = c.inbound[n:]
			total += n
			continue
		}
		if c.ClosedOnRead || !c.open {
			c.open = false
			if total == 0 {
				return 0, ErrFailedRead
			}
			return total, nil
		}
		if timer.Expired() {
			if total == 0 {
				return 0, ErrTimeout
			}
			return total, nil
		}
		runtime.Gosched()
	}
	return total, nil
}

// Write records p and runs the Respond hook.
func (c *MockConn) Write(p []byte, timeout time.Duration) (int, error) {
	if !c.open || c.RefuseWrites {
		return 0, ErrFailedWrite
	}

	buf := make([]byte, len(p))
	copy(buf, p)
	c.written = append(c.written, buf)

	if c.Respond != nil && !c.Silent {
		if resp := c.Respond(buf); resp != nil {
			c.Feed(resp)
		}
	}
	return len(p), nil
}

// Available reports queued inbound bytes.
func (c *MockConn) Available() int {
	if !c.open {
		return 0
	}
	return len(c.inbound)
}

// IsOpen reports whether the transport is open.
func (c *MockConn) IsOpen() bool {
	return c.open
}

// Close marks the transport closed and drops any queued bytes.
func (c *MockConn) Close() error {
	c.open = false
	c.inbound = nil
	return nil
}
