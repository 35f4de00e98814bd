// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package client

// State represents the client connection state. The engine is a two-state
// machine: every operation except Connect requires Connected, and any
// session failure drops straight back to Disconnected. There is no
// half-open recovery state; with fixed buffers and no heap there is no
// safe way to resynchronize a corrupted stream, so the engine always
// restarts from a known-good handshake.
type State uint8

// Client states.
const (
	StateDisconnected State = iota
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}
