// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package client

import "errors"

// Client errors. Wire-level failures surface as codec and transport
// errors unchanged; the engine adds exactly one layer of local recovery
// (closing the transport and resetting state) before returning them.
var (
	// Configuration errors.
	ErrNilOptions   = errors.New("options cannot be nil")
	ErrNilTransport = errors.New("transport cannot be nil")

	// Connection errors.
	ErrNotConnected  = errors.New("client not connected")
	ErrConnectFailed = errors.New("connection failed")

	// Operation errors.
	ErrInvalidQoS      = errors.New("invalid QoS level (must be 0, 1, or 2)")
	ErrInvalidTopic    = errors.New("invalid topic")
	ErrSubscribeFailed = errors.New("subscription failed")

	// Protocol errors.
	ErrUnexpectedPacket = errors.New("unexpected packet type")
)

// ConnackCode represents MQTT CONNACK return codes. The broker's verdict
// is preserved on the client for inspection after a rejected handshake.
type ConnackCode byte

// MQTT 3.1.1 CONNACK return codes.
const (
	ConnAccepted           ConnackCode = 0x00
	ConnRefusedProtocol    ConnackCode = 0x01
	ConnRefusedIDRejected  ConnackCode = 0x02
	ConnRefusedUnavailable ConnackCode = 0x03
	ConnRefusedBadAuth     ConnackCode = 0x04
	ConnRefusedNotAuth     ConnackCode = 0x05
)

// String returns a human-readable description of the CONNACK code.
func (c ConnackCode) String() string {
	switch c {
	case ConnAccepted:
		return "connection accepted"
	case ConnRefusedProtocol:
		return "unacceptable protocol version"
	case ConnRefusedIDRejected:
		return "client identifier rejected"
	case ConnRefusedUnavailable:
		return "server unavailable"
	case ConnRefusedBadAuth:
		return "bad username or password"
	case ConnRefusedNotAuth:
		return "not authorized"
	default:
		return "unknown error"
	}
}

// Error implements the error interface so a rejected handshake can be
// returned directly.
func (c ConnackCode) Error() string {
	return c.String()
}
