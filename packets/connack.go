// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"fmt"

	"github.com/litemq/litemq/codec"
)

// Connack is the MQTT CONNACK packet.
type Connack struct {
	SessionPresent bool
	ReturnCode     byte
}

// Type returns the packet type constant.
func (p *Connack) Type() byte {
	return ConnackType
}

func (p *Connack) String() string {
	return fmt.Sprintf("CONNACK session_present: %t return_code: %d", p.SessionPresent, p.ReturnCode)
}

// Decode parses the packet body.
func (p *Connack) Decode(fh FixedHeader, body []byte) error {
	if fh.RemainingLength != 2 || len(body) != 2 {
		return ErrMalformedPacket
	}
	c := codec.NewCursor(body)
	flags, err := c.ReadByte()
	if err != nil {
		return err
	}
	p.SessionPresent = codec.ReadBits(flags, 0, 1) > 0
	p.ReturnCode, err = c.ReadByte()
	return err
}
