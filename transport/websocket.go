// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn adapts a websocket session to the Conn contract. MQTT over
// websockets travels in binary frames with the "mqtt" subprotocol; frame
// boundaries carry no meaning for the engine, so inbound frames are
// flattened into one ordered byte stream.
type WSConn struct {
	url       string
	tlsConfig *tls.Config
	header    http.Header

	ws   *websocket.Conn
	buf  bytes.Buffer
	open bool
}

// NewWSConn returns an unopened websocket transport for url
// (ws://host/mqtt or wss://host/mqtt).
func NewWSConn(url string) *WSConn {
	return &WSConn{url: url}
}

// NewWSConnTLS returns an unopened websocket transport with a TLS
// configuration for wss endpoints.
func NewWSConnTLS(url string, cfg *tls.Config) *WSConn {
	return &WSConn{url: url, tlsConfig: cfg}
}

// Open performs the websocket handshake.
func (c *WSConn) Open(timeout time.Duration) error {
	if c.open {
		return nil
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: timeout,
		TLSClientConfig:  c.tlsConfig,
		Subprotocols:     []string{"mqtt"},
	}
	ws, _, err := dialer.Dial(c.url, c.header)
	if err != nil {
		return err
	}

	c.ws = ws
	c.buf.Reset()
	c.open = true
	return nil
}

// Read fills p from the flattened frame stream until full or timeout.
func (c *WSConn) Read(p []byte, timeout time.Duration) (int, error) {
	if !c.open {
		return 0, ErrFailedRead
	}

	deadline := time.Now().Add(timeout)
	total := 0
	for total < len(p) {
		if c.buf.Len() > 0 {
			n, _ := c.buf.Read(p[total:])
			total += n
			continue
		}
		if err := c.fill(deadline); err != nil {
			if err == ErrTimeout {
				if total == 0 {
					return 0, ErrTimeout
				}
				return total, nil
			}
			c.open = false
			if total == 0 {
				return 0, ErrFailedRead
			}
			return total, nil
		}
	}
	return total, nil
}

// fill reads the next binary frame into the local buffer.
func (c *WSConn) fill(deadline time.Time) error {
	c.ws.SetReadDeadline(deadline)
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if isTimeout(err) {
			return ErrTimeout
		}
		return err
	}
	c.buf.Write(data)
	return nil
}

// Write sends p as one binary frame.
func (c *WSConn) Write(p []byte, timeout time.Duration) (int, error) {
	if !c.open {
		return 0, ErrFailedWrite
	}

	c.ws.SetWriteDeadline(time.Now().Add(timeout))
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		if !isTimeout(err) {
			c.open = false
		}
		return 0, ErrFailedWrite
	}
	return len(p), nil
}

// Available reports unread bytes of already received frames, probing for
// the next frame briefly when empty.
func (c *WSConn) Available() int {
	if !c.open {
		return 0
	}
	if c.buf.Len() > 0 {
		return c.buf.Len()
	}
	if err := c.fill(time.Now().Add(probeInterval)); err != nil && err != ErrTimeout {
		c.open = false
	}
	return c.buf.Len()
}

// IsOpen reports whether the session is believed open.
func (c *WSConn) IsOpen() bool {
	return c.open && c.ws != nil
}

// Close tears the session down.
func (c *WSConn) Close() error {
	c.open = false
	if c.ws == nil {
		return nil
	}
	return c.ws.Close()
}
