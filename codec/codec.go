// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the bounds-checked wire primitives the MQTT
// framing is built from: a cursor over a caller-owned byte range, big-endian
// 16-bit integers, variable byte integers and length-prefixed strings.
//
// Nothing in this package allocates. Decoded values are views into the
// buffer handed to the cursor and stay valid only as long as that buffer.
package codec

import "errors"

var (
	// ErrBufferTooShort is returned when a fixed buffer lacks capacity for
	// a read or write. Recoverable with a larger buffer; never retried.
	ErrBufferTooShort = errors.New("buffer too short")

	// ErrVarnumOverflow is returned when a variable byte integer exceeds
	// the four-byte wire format ceiling.
	ErrVarnumOverflow = errors.New("variable byte integer overflow")
)

// ReadBits extracts a num-bit field starting at bit pos of b.
// The caller guarantees pos+num <= 8.
func ReadBits(b byte, pos, num uint) byte {
	return (b >> pos) & byte(1<<num-1)
}

// WriteBits injects value as a num-bit field at bit pos of b and returns
// the result. The caller guarantees pos+num <= 8.
func WriteBits(b, value byte, pos, num uint) byte {
	mask := byte(1<<num-1) << pos
	return b&^mask | value<<pos&mask
}
