// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package client

// Will is the last-will message registered during the handshake. The
// broker stores it and publishes it on the client's behalf if the session
// ends without a clean DISCONNECT.
type Will struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// SetWill registers a last-will message for the next Connect. The payload
// is copied so the caller's buffer can be reused immediately. Calling
// SetWill again replaces any previous will.
func (c *Client) SetWill(topic string, payload []byte, qos byte, retain bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > 2 {
		return ErrInvalidQoS
	}
	owned := make([]byte, len(payload))
	copy(owned, payload)
	c.will = &Will{Topic: topic, Payload: owned, QoS: qos, Retain: retain}
	return nil
}

// ClearWill removes any registered will. Clearing when none is set is a
// no-op.
func (c *Client) ClearWill() {
	c.will = nil
}

// Will returns the currently registered will, or nil.
func (c *Client) Will() *Will {
	return c.will
}
