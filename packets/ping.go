// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import "github.com/litemq/litemq/codec"

// zeroLength encodes a bodyless packet: PINGREQ, PINGRESP and DISCONNECT.
func zeroLength(packetType byte, buf []byte) (int, error) {
	if len(buf) < 2 {
		return 0, codec.ErrBufferTooShort
	}
	c := codec.NewCursor(buf)
	fh := FixedHeader{PacketType: packetType}
	if err := fh.Encode(c); err != nil {
		return 0, err
	}
	return c.Pos(), nil
}

// Pingreq is the MQTT PINGREQ packet.
type Pingreq struct{}

// Type returns the packet type constant.
func (p *Pingreq) Type() byte {
	return PingreqType
}

func (p *Pingreq) String() string {
	return "PINGREQ"
}

// Encode serializes the packet into buf.
func (p *Pingreq) Encode(buf []byte) (int, error) {
	return zeroLength(PingreqType, buf)
}

// Pingresp is the MQTT PINGRESP packet.
type Pingresp struct{}

// Type returns the packet type constant.
func (p *Pingresp) Type() byte {
	return PingrespType
}

func (p *Pingresp) String() string {
	return "PINGRESP"
}

// Encode serializes the packet into buf.
func (p *Pingresp) Encode(buf []byte) (int, error) {
	return zeroLength(PingrespType, buf)
}

// Disconnect is the MQTT DISCONNECT packet.
type Disconnect struct{}

// Type returns the packet type constant.
func (p *Disconnect) Type() byte {
	return DisconnectType
}

func (p *Disconnect) String() string {
	return "DISCONNECT"
}

// Encode serializes the packet into buf.
func (p *Disconnect) Encode(buf []byte) (int, error) {
	return zeroLength(DisconnectType, buf)
}
