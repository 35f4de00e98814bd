// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorByte(t *testing.T) {
	buf := make([]byte, 2)
	c := NewCursor(buf)

	require.NoError(t, c.WriteByte(0xab))
	require.NoError(t, c.WriteByte(0xcd))
	assert.Equal(t, ErrBufferTooShort, c.WriteByte(0xef))
	assert.Equal(t, []byte{0xab, 0xcd}, buf)

	r := NewCursor(buf)
	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), b)
	b, err = r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xcd), b)

	b, err = r.ReadByte()
	assert.Equal(t, ErrBufferTooShort, err)
	assert.Equal(t, byte(0), b, "failed read must yield a defined zero value")
}

func TestCursorNum(t *testing.T) {
	buf := make([]byte, 2)
	require.NoError(t, NewCursor(buf).WriteNum(0x1234))
	assert.Equal(t, []byte{0x12, 0x34}, buf, "16-bit integers are big-endian")

	n, err := NewCursor(buf).ReadNum()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), n)

	short := NewCursor(make([]byte, 1))
	_, err = short.ReadNum()
	assert.Equal(t, ErrBufferTooShort, err)
	assert.Equal(t, ErrBufferTooShort, short.WriteNum(1))
	assert.Equal(t, 0, short.Pos(), "position must not advance on failure")
}

func TestCursorData(t *testing.T) {
	buf := make([]byte, 4)
	c := NewCursor(buf)

	require.NoError(t, c.WriteData([]byte("abcd")))
	assert.Equal(t, ErrBufferTooShort, c.WriteData([]byte{1}))
	// Zero-length transfers always succeed, even with nothing left.
	require.NoError(t, c.WriteData(nil))

	r := NewCursor(buf)
	v, err := r.ReadData(0)
	require.NoError(t, err)
	assert.Nil(t, v, "zero-length read yields an absent view, not an empty allocation")

	v, err = r.ReadData(4)
	require.NoError(t, err)
	assert.Equal(t, View("abcd"), v)

	_, err = r.ReadData(1)
	assert.Equal(t, ErrBufferTooShort, err)
}

func TestCursorDataNoPartialTransfer(t *testing.T) {
	buf := make([]byte, 2)
	c := NewCursor(buf)
	assert.Equal(t, ErrBufferTooShort, c.WriteData([]byte("abc")))
	assert.Equal(t, 0, c.Pos())
	assert.Equal(t, []byte{0, 0}, buf)

	_, err := c.ReadData(3)
	assert.Equal(t, ErrBufferTooShort, err)
	assert.Equal(t, 0, c.Pos())
}

func TestCursorDataIsView(t *testing.T) {
	buf := []byte("hello")
	v, err := NewCursor(buf).ReadData(5)
	require.NoError(t, err)

	buf[0] = 'j'
	assert.Equal(t, View("jello"), v, "views alias the buffer, no copy is made")
}

func TestReadWriteBits(t *testing.T) {
	// PUBLISH type/flags byte: type 3, dup 1, qos 2, retain 1.
	var b byte
	b = WriteBits(b, 3, 4, 4)
	b = WriteBits(b, 1, 3, 1)
	b = WriteBits(b, 2, 1, 2)
	b = WriteBits(b, 1, 0, 1)
	assert.Equal(t, byte(0x3d), b)

	assert.Equal(t, byte(3), ReadBits(b, 4, 4))
	assert.Equal(t, byte(1), ReadBits(b, 3, 1))
	assert.Equal(t, byte(2), ReadBits(b, 1, 2))
	assert.Equal(t, byte(1), ReadBits(b, 0, 1))
}

func TestWriteBitsPreservesNeighbours(t *testing.T) {
	b := byte(0xff)
	b = WriteBits(b, 0, 1, 2)
	assert.Equal(t, byte(0xf9), b)
}
