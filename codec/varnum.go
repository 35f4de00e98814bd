// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

// MaxVarnum is the largest value representable by a four-byte variable
// byte integer. The encoder and decoder both reject anything above it, so
// every decoded value is representable by the encoder and vice versa.
const MaxVarnum = 268435455

// VarnumLength returns the exact encoded byte count (1 to 4) for v.
func VarnumLength(v uint32) (int, error) {
	switch {
	case v < 128:
		return 1, nil
	case v < 16384:
		return 2, nil
	case v < 2097152:
		return 3, nil
	case v <= MaxVarnum:
		return 4, nil
	default:
		return 0, ErrVarnumOverflow
	}
}

// ReadVarnum decodes a variable byte integer: seven payload bits per byte,
// least significant group first, high bit as continuation. It fails with
// ErrBufferTooShort if the range ends before a terminating byte and with
// ErrVarnumOverflow if a fifth byte would be required, so a corrupt stream
// that never terminates cannot run away.
func (c *Cursor) ReadVarnum() (uint32, error) {
	var v uint32
	var shift uint
	for {
		if shift >= 28 {
			return 0, ErrVarnumOverflow
		}
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}

// WriteVarnum encodes v as a variable byte integer.
func (c *Cursor) WriteVarnum(v uint32) error {
	if v > MaxVarnum {
		return ErrVarnumOverflow
	}
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v > 0 {
			b |= 0x80
		}
		if err := c.WriteByte(b); err != nil {
			return err
		}
		if v == 0 {
			return nil
		}
	}
}
