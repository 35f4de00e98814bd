// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import "time"

// Clock returns a monotonic timestamp in milliseconds. The value wraps
// around at the uint32 boundary roughly every 49.7 days; all timer
// arithmetic tolerates the wrap.
type Clock func() uint32

var processStart = time.Now()

// Millis is the default clock source: milliseconds since process start,
// taken from the runtime's monotonic reading.
func Millis() uint32 {
	return uint32(time.Since(processStart) / time.Millisecond)
}

// Timer tracks a deadline against a Clock. The zero value is usable once
// a clock is assigned with NewTimer or SetClock.
type Timer struct {
	clock   Clock
	start   uint32
	timeout uint32
}

// NewTimer returns a timer reading from clock, or from Millis when clock
// is nil.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = Millis
	}
	return &Timer{clock: clock}
}

// SetClock replaces the timer's clock source.
func (t *Timer) SetClock(clock Clock) {
	t.clock = clock
}

// Set captures the current timestamp and arms the timer with timeout.
func (t *Timer) Set(timeout time.Duration) {
	t.timeout = uint32(timeout / time.Millisecond)
	t.start = t.clock()
}

// Remaining returns the milliseconds left before expiry, negative once
// expired. The unsigned subtraction keeps elapsed time correct across a
// clock wraparound; this modular arithmetic is load-bearing, not a
// stylistic choice.
func (t *Timer) Remaining() int32 {
	elapsed := t.clock() - t.start
	return int32(t.timeout - elapsed)
}

// Expired reports whether the timer has run out.
func (t *Timer) Expired() bool {
	return t.Remaining() <= 0
}

// RemainingDuration returns the time left clamped at zero, convenient for
// passing into Conn deadlines.
func (t *Timer) RemainingDuration() time.Duration {
	r := t.Remaining()
	if r <= 0 {
		return 0
	}
	return time.Duration(r) * time.Millisecond
}
