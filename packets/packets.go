// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

// Package packets encodes and decodes MQTT 3.1.1 control packets over
// fixed, caller-owned buffers. Encoders write into the client's write
// buffer and decoders return views into the client's read buffer; the
// package itself never allocates on the wire path.
package packets

import (
	"errors"

	"github.com/litemq/litemq/codec"
)

// Protocol identification for the CONNECT variable header.
const (
	ProtocolName  = "MQTT"
	ProtocolLevel = 4 // MQTT 3.1.1
)

// Packet type constants.
const (
	ConnectType byte = iota + 1 // 0 value is forbidden
	ConnackType
	PublishType
	PubackType
	PubrecType
	PubrelType
	PubcompType
	SubscribeType
	SubackType
	UnsubscribeType
	UnsubackType
	PingreqType
	PingrespType
	DisconnectType
)

// PacketNames maps packet type constants to string names.
var PacketNames = map[byte]string{
	ConnectType:     "CONNECT",
	ConnackType:     "CONNACK",
	PublishType:     "PUBLISH",
	PubackType:      "PUBACK",
	PubrecType:      "PUBREC",
	PubrelType:      "PUBREL",
	PubcompType:     "PUBCOMP",
	SubscribeType:   "SUBSCRIBE",
	SubackType:      "SUBACK",
	UnsubscribeType: "UNSUBSCRIBE",
	UnsubackType:    "UNSUBACK",
	PingreqType:     "PINGREQ",
	PingrespType:    "PINGRESP",
	DisconnectType:  "DISCONNECT",
}

var (
	// ErrInvalidPacketType indicates a type/flags byte outside the 3.1.1 range.
	ErrInvalidPacketType = errors.New("invalid packet type")

	// ErrMalformedPacket indicates a body that does not match its header.
	ErrMalformedPacket = errors.New("malformed packet")
)

// DetectPacketType extracts and validates the packet type from the first
// byte of the fixed header.
func DetectPacketType(b byte) (byte, error) {
	t := codec.ReadBits(b, 4, 4)
	if t < ConnectType || t > DisconnectType {
		return 0, ErrInvalidPacketType
	}
	return t, nil
}

// ControlPacket is the interface for outbound MQTT control packets.
// Encode serializes the packet into buf and returns the number of bytes
// written, failing with codec.ErrBufferTooShort when buf cannot hold it.
type ControlPacket interface {
	Type() byte
	Encode(buf []byte) (int, error)
	String() string
}

// totalLength returns the full on-wire size of a packet from its remaining
// length: one type/flags byte, the variable byte integer, then the body.
func totalLength(remaining int) (int, error) {
	n, err := codec.VarnumLength(uint32(remaining))
	if err != nil {
		return 0, err
	}
	return 1 + n + remaining, nil
}
