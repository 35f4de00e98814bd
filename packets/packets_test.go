// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package packets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litemq/litemq/codec"
)

func TestDetectPacketType(t *testing.T) {
	pt, err := DetectPacketType(0x30)
	require.NoError(t, err)
	assert.Equal(t, PublishType, pt)

	pt, err = DetectPacketType(0xe0)
	require.NoError(t, err)
	assert.Equal(t, DisconnectType, pt)

	_, err = DetectPacketType(0x00)
	assert.Equal(t, ErrInvalidPacketType, err)

	_, err = DetectPacketType(0xf0)
	assert.Equal(t, ErrInvalidPacketType, err)
}

func TestFixedHeaderRoundTrip(t *testing.T) {
	fh := FixedHeader{PacketType: PublishType, Dup: true, QoS: 1, Retain: true, RemainingLength: 321}

	buf := make([]byte, 8)
	c := codec.NewCursor(buf)
	require.NoError(t, fh.Encode(c))
	assert.Equal(t, []byte{0x3b, 0xc1, 0x02}, buf[:c.Pos()])

	var got FixedHeader
	r := codec.NewCursor(buf[1:c.Pos()])
	require.NoError(t, got.Decode(buf[0], r))
	assert.Equal(t, fh, got)
}

func TestConnectEncode(t *testing.T) {
	p := &Connect{ClientID: "device-1", KeepAlive: 10, CleanSession: true}

	buf := make([]byte, 64)
	n, err := p.Encode(buf)
	require.NoError(t, err)

	want := []byte{
		0x10, 0x14,
		0x00, 0x04, 'M', 'Q', 'T', 'T', 0x04, 0x02, 0x00, 0x0a,
		0x00, 0x08, 'd', 'e', 'v', 'i', 'c', 'e', '-', '1',
	}
	assert.Equal(t, want, buf[:n])
}

func TestConnectEncodeFull(t *testing.T) {
	p := &Connect{
		ClientID:     "c",
		KeepAlive:    30,
		CleanSession: true,
		UsernameFlag: true,
		Username:     "u",
		PasswordFlag: true,
		Password:     "p",
		WillFlag:     true,
		WillTopic:    "w",
		WillPayload:  []byte("gone"),
		WillQoS:      1,
		WillRetain:   true,
	}

	buf := make([]byte, 64)
	n, err := p.Encode(buf)
	require.NoError(t, err)

	// Flags: username, password, will retain, will qos 1, will, clean session.
	assert.Equal(t, byte(0xee), buf[9])
	// Payload order: client id, will topic, will message, username, password.
	want := []byte{
		0x00, 0x01, 'c',
		0x00, 0x01, 'w',
		0x00, 0x04, 'g', 'o', 'n', 'e',
		0x00, 0x01, 'u',
		0x00, 0x01, 'p',
	}
	assert.Equal(t, want, buf[n-len(want):n])
}

func TestConnectEncodeBufferTooShort(t *testing.T) {
	p := &Connect{ClientID: "device-1", KeepAlive: 10, CleanSession: true}
	buf := make([]byte, 8)
	_, err := p.Encode(buf)
	assert.Equal(t, codec.ErrBufferTooShort, err)
	assert.Equal(t, make([]byte, 8), buf, "short destination is rejected before any bytes are written")
}

func TestConnackDecode(t *testing.T) {
	var p Connack
	fh := FixedHeader{PacketType: ConnackType, RemainingLength: 2}
	require.NoError(t, p.Decode(fh, []byte{0x01, 0x00}))
	assert.True(t, p.SessionPresent)
	assert.Equal(t, byte(0x00), p.ReturnCode)

	require.NoError(t, p.Decode(fh, []byte{0x00, 0x05}))
	assert.False(t, p.SessionPresent)
	assert.Equal(t, byte(0x05), p.ReturnCode)

	assert.Equal(t, ErrMalformedPacket, p.Decode(fh, []byte{0x00}))
}

func TestPublishEncodeQoS0(t *testing.T) {
	p := &Publish{Topic: "a/b", Payload: []byte("hello")}

	buf := make([]byte, 32)
	n, err := p.Encode(buf)
	require.NoError(t, err)

	want := []byte{0x30, 0x0a, 0x00, 0x03, 'a', '/', 'b', 'h', 'e', 'l', 'l', 'o'}
	assert.Equal(t, want, buf[:n])
}

func TestPublishEncodeQoS1DupRetain(t *testing.T) {
	p := &Publish{Topic: "a", Payload: []byte("x"), QoS: 1, Dup: true, Retain: true, ID: 10}

	buf := make([]byte, 32)
	n, err := p.Encode(buf)
	require.NoError(t, err)

	want := []byte{0x3b, 0x06, 0x00, 0x01, 'a', 0x00, 0x0a, 'x'}
	assert.Equal(t, want, buf[:n])
}

func TestPublishDecode(t *testing.T) {
	body := []byte{0x00, 0x03, 'a', '/', 'b', 0x00, 0x07, 'h', 'i'}
	fh := FixedHeader{PacketType: PublishType, QoS: 1, RemainingLength: len(body)}

	var p Publish
	require.NoError(t, p.Decode(fh, body))
	assert.True(t, p.TopicView.Equal("a/b"))
	assert.Equal(t, uint16(7), p.ID)
	assert.Equal(t, codec.View("hi"), p.PayloadView)
	assert.Equal(t, 2, p.TopicOffset())
	assert.Equal(t, 7, p.PayloadOffset())

	// Views alias the body buffer.
	body[7] = 'H'
	assert.Equal(t, codec.View("Hi"), p.PayloadView)
}

func TestPublishDecodeEmptyPayload(t *testing.T) {
	body := []byte{0x00, 0x01, 't'}
	fh := FixedHeader{PacketType: PublishType, RemainingLength: len(body)}

	var p Publish
	require.NoError(t, p.Decode(fh, body))
	assert.True(t, p.TopicView.Equal("t"))
	assert.Nil(t, p.PayloadView, "absent payload decodes as a nil view")
}

func TestPublishEncodeTooLarge(t *testing.T) {
	p := &Publish{Topic: "t", Payload: make([]byte, 100)}
	_, err := p.Encode(make([]byte, 64))
	assert.Equal(t, codec.ErrBufferTooShort, err)
}

func TestAckRoundTrip(t *testing.T) {
	for _, pt := range []byte{PubackType, PubrecType, PubrelType, PubcompType} {
		p := &Ack{PacketType: pt, ID: 5}
		buf := make([]byte, 4)
		n, err := p.Encode(buf)
		require.NoError(t, err)
		require.Equal(t, 4, n)

		first := pt << 4
		if pt == PubrelType {
			first |= 0x02
		}
		assert.Equal(t, []byte{first, 0x02, 0x00, 0x05}, buf, PacketNames[pt])

		var got Ack
		fh := FixedHeader{PacketType: pt, RemainingLength: 2}
		require.NoError(t, got.Decode(fh, buf[2:]))
		assert.Equal(t, uint16(5), got.ID)
	}
}

func TestSubscribeEncode(t *testing.T) {
	p := &Subscribe{ID: 2, Topic: "a/#", QoS: 1}

	buf := make([]byte, 32)
	n, err := p.Encode(buf)
	require.NoError(t, err)

	want := []byte{0x82, 0x08, 0x00, 0x02, 0x00, 0x03, 'a', '/', '#', 0x01}
	assert.Equal(t, want, buf[:n])
}

func TestSubackDecode(t *testing.T) {
	fh := FixedHeader{PacketType: SubackType, RemainingLength: 3}

	var p Suback
	require.NoError(t, p.Decode(fh, []byte{0x00, 0x02, 0x01}))
	assert.Equal(t, uint16(2), p.ID)
	assert.False(t, p.Failed())

	require.NoError(t, p.Decode(fh, []byte{0x00, 0x02, 0x80}))
	assert.True(t, p.Failed())

	assert.Equal(t, ErrMalformedPacket, p.Decode(fh, []byte{0x00, 0x02}))
}

func TestUnsubscribeEncode(t *testing.T) {
	p := &Unsubscribe{ID: 3, Topic: "a/#"}

	buf := make([]byte, 32)
	n, err := p.Encode(buf)
	require.NoError(t, err)

	want := []byte{0xa2, 0x07, 0x00, 0x03, 0x00, 0x03, 'a', '/', '#'}
	assert.Equal(t, want, buf[:n])
}

func TestUnsubackDecode(t *testing.T) {
	var p Unsuback
	fh := FixedHeader{PacketType: UnsubackType, RemainingLength: 2}
	require.NoError(t, p.Decode(fh, []byte{0x00, 0x09}))
	assert.Equal(t, uint16(9), p.ID)
}

func TestZeroLengthPackets(t *testing.T) {
	tests := []struct {
		pkt   ControlPacket
		first byte
	}{
		{&Pingreq{}, 0xc0},
		{&Pingresp{}, 0xd0},
		{&Disconnect{}, 0xe0},
	}
	for _, tt := range tests {
		buf := make([]byte, 2)
		n, err := tt.pkt.Encode(buf)
		require.NoError(t, err)
		assert.Equal(t, []byte{tt.first, 0x00}, buf[:n], tt.pkt.String())

		_, err = tt.pkt.Encode(make([]byte, 1))
		assert.Equal(t, codec.ErrBufferTooShort, err)
	}
}
