// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/litemq/litemq/codec"
)

// Subscribe is the MQTT SUBSCRIBE packet for a single topic filter.
// Matching on the broker side is out of scope for this client, so the
// packet carries the filter opaquely.
type Subscribe struct {
	ID    uint16
	Topic string
	QoS   byte
}

// Type returns the packet type constant.
func (p *Subscribe) Type() byte {
	return SubscribeType
}

func (p *Subscribe) String() string {
	return fmt.Sprintf("SUBSCRIBE id: %d topic: %s qos: %d", p.ID, p.Topic, p.QoS)
}

// Encode serializes the packet into buf.
func (p *Subscribe) Encode(buf []byte) (int, error) {
	fh := FixedHeader{
		PacketType: SubscribeType,
		QoS:        1, // reserved flag bits 0010
		// Packet ID, then the length-prefixed filter and its requested QoS.
		RemainingLength: 2 + 2 + len(p.Topic) + 1,
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
	if err := c.WriteByte(p.QoS); err != nil {
		return 0, err
	}
	return c.Pos(), nil
}

// Suback is the MQTT SUBACK packet.
type Suback struct {
	ID          uint16
	ReturnCodes codec.View
}

// Type returns the packet type constant.
func (p *Suback) Type() byte {
	return SubackType
}

func (p *Suback) String() string {
	return fmt.Sprintf("SUBACK id: %d codes: %v", p.ID, []byte(p.ReturnCodes))
}

// Decode parses the packet body.
func (p *Suback) Decode(fh FixedHeader, body []byte) error {
	if fh.RemainingLength < 3 || len(body) != fh.RemainingLength {
		return ErrMalformedPacket
	}
	c := codec.NewCursor(body)
	id, err := c.ReadNum()
	if err != nil {
		return err
	}
	p.ID = id
	p.ReturnCodes, err = c.ReadData(c.Len())
	return err
}

// Failed reports whether any granted return code signals failure (0x80).
func (p *Suback) Failed() bool {
	for _, rc := range p.ReturnCodes {
		if rc == 0x80 {
			return true
		}
	}
	return false
}
