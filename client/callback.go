// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package client

import "github.com/litemq/litemq/codec"

// Message is an inbound application message handed to an advanced
// handler. Topic and Payload are views into the client's read buffer and
// are only valid for the duration of the callback.
type Message struct {
	Topic   codec.View
	Payload codec.View
	QoS     byte
	Retain  bool
	Dup     bool
	ID      uint16
}

// Handler styles. Exactly one handler is active at a time; registering a
// new one replaces the previous regardless of style.
type (
	// BytesHandler receives the raw topic and payload views.
	BytesHandler func(topic, payload []byte)

	// StringHandler receives the topic and payload terminated in place,
	// so legacy code expecting C strings can consume them without copies.
	StringHandler func(topic, payload string)

	// AdvancedHandler receives full message metadata.
	AdvancedHandler func(msg Message)
)

type callbackKind uint8

const (
	callbackNone callbackKind = iota
	callbackBytes
	callbackString
	callbackAdvanced
)

type callback struct {
	kind     callbackKind
	bytes    BytesHandler
	str      StringHandler
	advanced AdvancedHandler
}

// OnMessage registers a byte-slice handler for inbound messages.
func (c *Client) OnMessage(h BytesHandler) {
	c.cb = callback{kind: callbackBytes, bytes: h}
}

// OnMessageString registers a string handler. The topic and payload are
// zero-terminated in place inside the read buffer before the call; the
// strings alias the buffer and must not be retained.
func (c *Client) OnMessageString(h StringHandler) {
	c.cb = callback{kind: callbackString, str: h}
}

// OnMessageAdvanced registers a handler that receives full message
// metadata.
func (c *Client) OnMessageAdvanced(h AdvancedHandler) {
	c.cb = callback{kind: callbackAdvanced, advanced: h}
}

// ClearHandler removes any registered message handler. Inbound messages
// arriving with no handler are dropped.
func (c *Client) ClearHandler() {
	c.cb = callback{}
}
