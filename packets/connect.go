// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/litemq/litemq/codec"
)

// Connect is the MQTT CONNECT packet.
type Connect struct {
	ClientID     string
	KeepAlive    uint16
	CleanSession bool

	UsernameFlag bool
	Username     string
	PasswordFlag bool
	Password     string

	WillFlag    bool
	WillTopic   string
	WillPayload []byte
	WillQoS     byte
	WillRetain  bool
}

// Type returns the packet type constant.
func (p *Connect) Type() byte {
	return ConnectType
}

func (p *Connect) String() string {
	return fmt.Sprintf("CONNECT client_id: %s keep_alive: %d clean_session: %t will: %t",
		p.ClientID, p.KeepAlive, p.CleanSession, p.WillFlag)
}

func (p *Connect) remainingLength() int {
	// Protocol name, level, flags and keep-alive make a 10 byte variable
	// header, then the length-prefixed payload fields.
	n := 10 + 2 + len(p.ClientID)
	if p.WillFlag {
		n += 2 + len(p.WillTopic) + 2 + len(p.WillPayload)
	}
	if p.UsernameFlag {
		n += 2 + len(p.Username)
	}
	if p.PasswordFlag {
		n += 2 + len(p.Password)
	}
	return n
}

// Encode serializes the packet into buf.
func (p *Connect) Encode(buf []byte) (int, error) {
	fh := FixedHeader{PacketType: ConnectType, RemainingLength: p.remainingLength()}
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
	if err := c.WriteString(ProtocolName); err != nil {
		return 0, err
	}
	if err := c.WriteByte(ProtocolLevel); err != nil {
		return 0, err
	}

	var flags byte
	flags = codec.WriteBits(flags, flag(p.CleanSession), 1, 1)
	flags = codec.WriteBits(flags, flag(p.WillFlag), 2, 1)
	if p.WillFlag {
		flags = codec.WriteBits(flags, p.WillQoS, 3, 2)
		flags = codec.WriteBits(flags, flag(p.WillRetain), 5, 1)
	}
	flags = codec.WriteBits(flags, flag(p.PasswordFlag), 6, 1)
	flags = codec.WriteBits(flags, flag(p.UsernameFlag), 7, 1)
	if err := c.WriteByte(flags); err != nil {
		return 0, err
	}
	if err := c.WriteNum(p.KeepAlive); err != nil {
		return 0, err
	}

	if err := c.WriteString(p.ClientID); err != nil {
		return 0, err
	}
	if p.WillFlag {
		if err := c.WriteString(p.WillTopic); err != nil {
			return 0, err
		}
		if err := c.WriteView(codec.View(p.WillPayload)); err != nil {
			return 0, err
		}
	}
	if p.UsernameFlag {
		if err := c.WriteString(p.Username); err != nil {
			return 0, err
		}
	}
	if p.PasswordFlag {
		if err := c.WriteString(p.Password); err != nil {
			return 0, err
		}
	}
	return c.Pos(), nil
}
