// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/litemq/litemq/codec"
)

// Publish is the MQTT PUBLISH packet. Outbound packets carry the topic as
// a string and the payload as caller bytes; decoded inbound packets hold
// views into the read buffer instead.
type Publish struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
	Dup     bool
	ID      uint16

	// Decoded views, valid until the next read into the buffer.
	TopicView   codec.View
	PayloadView codec.View
}

// Type returns the packet type constant.
func (p *Publish) Type() byte {
	return PublishType
}

func (p *Publish) String() string {
	return fmt.Sprintf("PUBLISH topic: %s qos: %d retain: %t dup: %t id: %d len: %d",
		p.Topic, p.QoS, p.Retain, p.Dup, p.ID, len(p.Payload))
}

func (p *Publish) remainingLength() int {
	n := 2 + len(p.Topic) + len(p.Payload)
	if p.QoS > 0 {
		n += 2
	}
	return n
}

// Encode serializes the packet into buf.
func (p *Publish) Encode(buf []byte) (int, error) {
	fh := FixedHeader{
		PacketType:      PublishType,
		Dup:             p.Dup,
		QoS:             p.QoS,
		Retain:          p.Retain,
		RemainingLength: p.remainingLength(),
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
	if err := c.WriteString(p.Topic); err != nil {
		return 0, err
	}
	if p.QoS > 0 {
		if err := c.WriteNum(p.ID); err != nil {
			return 0, err
		}
	}
	if err := c.WriteData(p.Payload); err != nil {
		return 0, err
	}
	return c.Pos(), nil
}

// Decode parses the packet body. Topic and payload come back as views into
// body; nothing is copied.
func (p *Publish) Decode(fh FixedHeader, body []byte) error {
	if len(body) != fh.RemainingLength {
		return ErrMalformedPacket
	}
	p.QoS = fh.QoS
	p.Dup = fh.Dup
	p.Retain = fh.Retain

	c := codec.NewCursor(body)
	topic, err := c.ReadString()
	if err != nil {
		return err
	}
	p.TopicView = topic

	if fh.QoS > 0 {
		p.ID, err = c.ReadNum()
		if err != nil {
			return err
		}
	}

	p.PayloadView, err = c.ReadData(c.Len())
	return err
}

// TopicOffset returns the offset of the decoded topic within the packet
// body. Used by in-place termination, which needs to know where a view
// ends relative to the owning buffer.
func (p *Publish) TopicOffset() int {
	return 2
}

// PayloadOffset returns the offset of the decoded payload within the
// packet body.
func (p *Publish) PayloadOffset() int {
	n := 2 + len(p.TopicView)
	if p.QoS > 0 {
		n += 2
	}
	return n
}
