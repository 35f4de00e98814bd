// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bufio"
	"crypto/tls"
	"errors"
	"net"
	"os"
	"time"
)

// probeInterval bounds how long Available blocks while probing the socket
// for buffered data.
const probeInterval = time.Millisecond

// NetConn adapts a net.Conn to the Conn contract. It carries plain TCP or,
// when a tls.Config is supplied, a TLS session; the adapter itself never
// touches the handshake beyond dialing.
type NetConn struct {
	address   string
	tlsConfig *tls.Config

	conn net.Conn
	r    *bufio.Reader
	open bool
}

// NewNetConn returns an unopened TCP transport for address (host:port).
func NewNetConn(address string) *NetConn {
	return &NetConn{address: address}
}

// NewTLSConn returns an unopened TLS transport for address.
func NewTLSConn(address string, cfg *tls.Config) *NetConn {
	return &NetConn{address: address, tlsConfig: cfg}
}

// FromConn wraps an already established stream. Open becomes a no-op,
// which is how a caller hands the engine a pre-opened connection.
func FromConn(conn net.Conn) *NetConn {
	return &NetConn{conn: conn, r: bufio.NewReader(conn), open: true}
}

// Open dials the configured address.
func (c *NetConn) Open(timeout time.Duration) error {
	if c.open {
		return nil
	}

	dialer := &net.Dialer{Timeout: timeout}
	var conn net.Conn
	var err error
	if c.tlsConfig != nil {
		conn, err = tls.DialWithDialer(dialer, "tcp", c.address, c.tlsConfig)
	} else {
		conn, err = dialer.Dial("tcp", c.address)
	}
	if err != nil {
		return err
	}

	c.conn = conn
	c.r = bufio.NewReader(conn)
	c.open = true
	return nil
}

// Read fills p until full or the timeout elapses. The blocking read hands
// control to the runtime scheduler, so concurrent work keeps making
// progress while this call waits.
func (c *NetConn) Read(p []byte, timeout time.Duration) (int, error) {
	if !c.open {
		return 0, ErrFailedRead
	}

	c.conn.SetReadDeadline(time.Now().Add(timeout))
	defer c.conn.SetReadDeadline(time.Time{})

	total := 0
	for total < len(p) {
		n, err := c.r.Read(p[total:])
		total += n
		if err == nil {
			continue
		}
		if isTimeout(err) {
			if total == 0 {
				return 0, ErrTimeout
			}
			return total, nil
		}
		// Stream closed underneath us.
		c.open = false
		if total == 0 {
			return 0, ErrFailedRead
		}
		return total, nil
	}
	return total, nil
}

// Write makes a single best-effort write bounded by timeout.
func (c *NetConn) Write(p []byte, timeout time.Duration) (int, error) {
	if !c.open {
		return 0, ErrFailedWrite
	}

	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	defer c.conn.SetWriteDeadline(time.Time{})

	n, err := c.conn.Write(p)
	if n == 0 {
		if err != nil && !isTimeout(err) {
			c.open = false
		}
		return 0, ErrFailedWrite
	}
	return n, nil
}

// Available reports buffered inbound bytes, probing the socket briefly
// when the local buffer is empty.
func (c *NetConn) Available() int {
	if !c.open {
		return 0
	}
	if c.r.Buffered() > 0 {
		return c.r.Buffered()
	}

	c.conn.SetReadDeadline(time.Now().Add(probeInterval))
	_, err := c.r.Peek(1)
	c.conn.SetReadDeadline(time.Time{})
	if err != nil && !isTimeout(err) {
		c.open = false
		return 0
	}
	return c.r.Buffered()
}

// IsOpen reports whether the stream is believed open. A transport-level
// close observed during any transfer flips this to false even when no
// protocol-level disconnect was exchanged.
func (c *NetConn) IsOpen() bool {
	return c.open && c.conn != nil
}

// Close tears the stream down.
func (c *NetConn) Close() error {
	c.open = false
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func isTimeout(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
