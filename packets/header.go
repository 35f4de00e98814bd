// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/litemq/litemq/codec"
)

const headerFormat = "type: %s dup: %t qos: %d retain: %t remaining_length: %d"

// FixedHeader represents the MQTT fixed header present in all packets:
// packet type and flags in one byte, then the variable byte integer
// remaining length.
type FixedHeader struct {
	PacketType      byte
	Dup             bool
	QoS             byte
	Retain          bool
	RemainingLength int
}

func (fh FixedHeader) String() string {
	return fmt.Sprintf(headerFormat, PacketNames[fh.PacketType], fh.Dup, fh.QoS, fh.Retain, fh.RemainingLength)
}

// Encode writes the fixed header through the cursor.
func (fh FixedHeader) Encode(c *codec.Cursor) error {
	var b byte
	b = codec.WriteBits(b, fh.PacketType, 4, 4)
	b = codec.WriteBits(b, flag(fh.Dup), 3, 1)
	b = codec.WriteBits(b, fh.QoS, 1, 2)
	b = codec.WriteBits(b, flag(fh.Retain), 0, 1)
	if err := c.WriteByte(b); err != nil {
		return err
	}
	return c.WriteVarnum(uint32(fh.RemainingLength))
}

// Decode parses the type/flags byte and reads the remaining length from
// the cursor.
func (fh *FixedHeader) Decode(typeAndFlags byte, c *codec.Cursor) error {
	fh.PacketType = codec.ReadBits(typeAndFlags, 4, 4)
	fh.Dup = codec.ReadBits(typeAndFlags, 3, 1) > 0
	fh.QoS = codec.ReadBits(typeAndFlags, 1, 2)
	fh.Retain = codec.ReadBits(typeAndFlags, 0, 1) > 0
	if fh.PacketType < ConnectType || fh.PacketType > DisconnectType {
		return ErrInvalidPacketType
	}

	rl, err := c.ReadVarnum()
	if err != nil {
		return err
	}
	fh.RemainingLength = int(rl)
	return nil
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
