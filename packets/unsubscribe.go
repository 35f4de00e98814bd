// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/litemq/litemq/codec"
)

// Unsubscribe is the MQTT UNSUBSCRIBE packet for a single topic filter.
type Unsubscribe struct {
	ID    uint16
	Topic string
}

// Type returns the packet type constant.
func (p *Unsubscribe) Type() byte {
	return UnsubscribeType
}

func (p *Unsubscribe) String() string {
	return fmt.Sprintf("UNSUBSCRIBE id: %d topic: %s", p.ID, p.Topic)
}

// Encode serializes the packet into buf.
func (p *Unsubscribe) Encode(buf []byte) (int, error) {
	fh := FixedHeader{
		PacketType:      UnsubscribeType,
		QoS:             1, // reserved flag bits 0010
		RemainingLength: 2 + 2 + len(p.Topic),
	}
	total, err := totalLength(fh.RemainingLength)
	if err != nil {
		return 0, err
	}
	if total > len(buf) {
		return 0, codec.ErrBufferTooShort
	}

	c := codec.NewCursor(buf)
	if err := fh.Encode(c); err != nil {
		return 0, err
	}
	if err := c.WriteNum(p.ID); err != nil {
		return 0, err
	}
	if err := c.WriteString(p.Topic); err != nil {
		return 0, err
	}
	return c.Pos(), nil
}

// Unsuback is the MQTT UNSUBACK packet.
type Unsuback struct {
	ID uint16
}

// Type returns the packet type constant.
func (p *Unsuback) Type() byte {
	return UnsubackType
}

func (p *Unsuback) String() string {
	return fmt.Sprintf("UNSUBACK id: %d", p.ID)
}

// Decode parses the packet body.
func (p *Unsuback) Decode(fh FixedHeader, body []byte) error {
	if fh.RemainingLength != 2 || len(body) != 2 {
		return ErrMalformedPacket
	}
	id, err := codec.NewCursor(body).ReadNum()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}
