// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/litemq/litemq/codec"
)

// Ack covers the four packet-identifier acknowledgements of the QoS 1 and
// QoS 2 flows: PUBACK, PUBREC, PUBREL and PUBCOMP. They share a two byte
// body holding the packet identifier; PUBREL additionally carries the
// reserved 0x02 flag bits.
type Ack struct {
	PacketType byte
	ID         uint16
}

// Type returns the packet type constant.
func (p *Ack) Type() byte {
	return p.PacketType
}

func (p *Ack) String() string {
	return fmt.Sprintf("%s id: %d", PacketNames[p.PacketType], p.ID)
}

// Encode serializes the packet into buf.
func (p *Ack) Encode(buf []byte) (int, error) {
	fh := FixedHeader{PacketType: p.PacketType, RemainingLength: 2}
	if p.PacketType == PubrelType {
		fh.QoS = 1 // reserved flag bits 0010
	}
	if len(buf) < 4 {
		return 0, codec.ErrBufferTooShort
	}

	c := codec.NewCursor(buf)
	if err := fh.Encode(c); err != nil {
		return 0, err
	}
	if err := c.WriteNum(p.ID); err != nil {
		return 0, err
	}
	return c.Pos(), nil
}

// Decode parses the packet body.
func (p *Ack) Decode(fh FixedHeader, body []byte) error {
	if fh.RemainingLength != 2 || len(body) != 2 {
		return ErrMalformedPacket
	}
	p.PacketType = fh.PacketType
	id, err := codec.NewCursor(body).ReadNum()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}
