// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

// Package client implements a single-connection MQTT 3.1.1 client engine
// designed for fixed memory: two caller-sized buffers, no allocation on
// the wire path, and a fail-closed session policy. The engine is
// single-threaded; the owning goroutine drives it through Connect,
// Publish, Subscribe, Loop and Disconnect.
package client

import (
	"errors"
	"io"
	"log/slog"
	"time"
	"unsafe"

	"github.com/google/uuid"

	"github.com/litemq/litemq/codec"
	"github.com/litemq/litemq/packets"
	"github.com/litemq/litemq/transport"
)

// Client is the MQTT session engine. Not safe for concurrent use; all
// methods must run on one goroutine.
type Client struct {
	opts   *Options
	conn   transport.Conn
	logger *slog.Logger
	m      *metrics

	// readBuf carries one extra physical byte past the logical capacity
	// so in-place termination of a full-length payload stays in bounds.
	readBuf  []byte
	writeBuf []byte

	state          State
	clientID       string
	sessionPresent bool
	returnCode     ConnackCode
	lastError      error

	lastPacketID uint16
	dupArmed     bool
	dupID        uint16

	will *Will
	cb   callback

	dropOverflow bool
	droppedCount uint32

	keepAlive       transport.Timer
	pingOutstanding bool

	// Scratch decode targets, reused across packets to keep the wire
	// path allocation free.
	inPublish packets.Publish
	inAck     packets.Ack
	inSuback  packets.Suback
	inUnsub   packets.Unsuback
}

// NewClient creates a client over conn with the given options. Buffers
// are allocated once here and never grown.
func NewClient(conn transport.Conn, opts *Options) (*Client, error) {
	if opts == nil {
		return nil, ErrNilOptions
	}
	if conn == nil {
		return nil, ErrNilTransport
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}
	m, err := newMetrics(opts.MeterProvider)
	if err != nil {
		return nil, err
	}

	c := &Client{
		opts:         opts,
		conn:         conn,
		logger:       logger,
		m:            m,
		readBuf:      make([]byte, opts.ReadBufferSize+1),
		writeBuf:     make([]byte, opts.WriteBufferSize),
		dropOverflow: opts.DropOverflow,
	}
	c.keepAlive.SetClock(c.clock())
	return c, nil
}

func (c *Client) clock() transport.Clock {
	if c.opts.Clock != nil {
		return c.opts.Clock
	}
	return transport.Millis
}

// State returns the current connection state.
func (c *Client) State() State {
	return c.state
}

// ID returns the client identifier used by the last Connect.
func (c *Client) ID() string {
	return c.clientID
}

// SessionPresent reports whether the broker resumed a stored session in
// the last handshake.
func (c *Client) SessionPresent() bool {
	return c.sessionPresent
}

// ReturnCode returns the broker's verdict from the last handshake.
func (c *Client) ReturnCode() ConnackCode {
	return c.returnCode
}

// LastError returns the error that most recently closed the session, or
// nil.
func (c *Client) LastError() error {
	return c.lastError
}

// DropOverflow switches the overflow policy at runtime and resets the
// dropped-message counter.
func (c *Client) DropOverflow(enabled bool) {
	c.dropOverflow = enabled
	c.droppedCount = 0
}

// DroppedMessages returns the number of inbound messages dropped since
// the counter was last reset.
func (c *Client) DroppedMessages() uint32 {
	return c.droppedCount
}

// LastPacketID returns the most recently assigned outbound packet
// identifier, for callers that track retransmission across sessions.
func (c *Client) LastPacketID() uint16 {
	return c.lastPacketID
}

// PrepareDuplicate arms the next Publish to go out as a retransmission:
// the DUP flag is set and id is used instead of a fresh packet
// identifier. The arming is consumed by the next Publish call whether or
// not it succeeds.
func (c *Client) PrepareDuplicate(id uint16) {
	c.dupArmed = true
	c.dupID = id
}

// fail closes the transport and resets the session. Every error on the
// wire path funnels through here; there is no partial recovery.
func (c *Client) fail(err error) error {
	c.lastError = err
	c.state = StateDisconnected
	c.pingOutstanding = false
	if c.conn.IsOpen() {
		c.conn.Close()
	}
	c.m.fail()
	c.logger.Error("session failed", "client_id", c.clientID, "error", err)
	return err
}

func (c *Client) nextPacketID() uint16 {
	c.lastPacketID++
	if c.lastPacketID == 0 {
		c.lastPacketID = 1
	}
	return c.lastPacketID
}

// send encodes pkt into the write buffer and writes it within the
// timer's remaining window. Any outbound traffic restarts the keep-alive
// countdown.
func (c *Client) send(pkt packets.ControlPacket, timer *transport.Timer) error {
	n, err := pkt.Encode(c.writeBuf)
	if err != nil {
		return c.fail(err)
	}
	written, err := c.conn.Write(c.writeBuf[:n], timer.RemainingDuration())
	if err != nil {
		return c.fail(err)
	}
	if written != n {
		return c.fail(transport.ErrFailedWrite)
	}
	if c.opts.KeepAlive > 0 {
		c.keepAlive.Set(c.opts.KeepAlive)
	}
	c.m.sent(packets.PacketNames[pkt.Type()], n)
	c.logger.Debug("packet sent", "packet", pkt.String())
	return nil
}

func (c *Client) newTimer() *transport.Timer {
	t := transport.NewTimer(c.clock())
	t.Set(c.opts.Timeout)
	return t
}

// Connect opens the transport if needed, performs the CONNECT/CONNACK
// handshake and moves the engine to Connected. An empty clientID gets a
// generated one. A broker rejection is returned as its ConnackCode.
func (c *Client) Connect(clientID string) error {
	if c.state == StateConnected {
		return nil
	}
	if clientID == "" {
		clientID = "litemq-" + uuid.NewString()[:8]
	}
	c.clientID = clientID
	c.lastError = nil
	c.sessionPresent = false
	c.returnCode = ConnAccepted

	timer := c.newTimer()
	if !c.conn.IsOpen() {
		if err := c.conn.Open(timer.RemainingDuration()); err != nil {
			return c.fail(err)
		}
	}

	pkt := packets.Connect{
		ClientID:     clientID,
		KeepAlive:    uint16(c.opts.KeepAlive / time.Second),
		CleanSession: c.opts.CleanSession,
	}
	if c.opts.Username != "" {
		pkt.UsernameFlag = true
		pkt.Username = c.opts.Username
		if c.opts.Password != "" {
			pkt.PasswordFlag = true
			pkt.Password = c.opts.Password
		}
	}
	if c.will != nil {
		pkt.WillFlag = true
		pkt.WillTopic = c.will.Topic
		pkt.WillPayload = c.will.Payload
		pkt.WillQoS = c.will.QoS
		pkt.WillRetain = c.will.Retain
	}
	if err := c.send(&pkt, timer); err != nil {
		return err
	}

	fh, body, err := c.readPacket(timer)
	if err != nil {
		return c.fail(err)
	}
	if fh.PacketType != packets.ConnackType {
		return c.fail(ErrUnexpectedPacket)
	}
	var connack packets.Connack
	if err := connack.Decode(fh, body); err != nil {
		return c.fail(err)
	}

	c.sessionPresent = connack.SessionPresent
	c.returnCode = ConnackCode(connack.ReturnCode)
	if c.returnCode != ConnAccepted {
		return c.fail(c.returnCode)
	}

	c.state = StateConnected
	c.pingOutstanding = false
	if c.opts.KeepAlive > 0 {
		c.keepAlive.Set(c.opts.KeepAlive)
	}
	c.logger.Info("connected", "client_id", clientID, "session_present", c.sessionPresent)
	return nil
}

// Publish sends an application message. QoS 0 returns after the write,
// QoS 1 after PUBACK, QoS 2 after the full PUBREC/PUBREL/PUBCOMP
// exchange. A pending PrepareDuplicate is consumed by this call.
func (c *Client) Publish(topic string, payload []byte, qos byte, retain bool) error {
	dup := c.dupArmed
	dupID := c.dupID
	c.dupArmed = false

	if qos > 2 {
		return ErrInvalidQoS
	}
	if topic == "" {
		return ErrInvalidTopic
	}
	if c.state != StateConnected {
		return ErrNotConnected
	}

	pkt := packets.Publish{
		Topic:   topic,
		Payload: payload,
		QoS:     qos,
		Retain:  retain,
		Dup:     dup,
	}
	if qos > 0 {
		if dup {
			pkt.ID = dupID
		} else {
			pkt.ID = c.nextPacketID()
		}
	}

	timer := c.newTimer()
	if err := c.send(&pkt, timer); err != nil {
		return err
	}

	switch qos {
	case 1:
		return c.awaitAck(packets.PubackType, pkt.ID, timer)
	case 2:
		if err := c.awaitAck(packets.PubrecType, pkt.ID, timer); err != nil {
			return err
		}
		rel := packets.Ack{PacketType: packets.PubrelType, ID: pkt.ID}
		if err := c.send(&rel, timer); err != nil {
			return err
		}
		return c.awaitAck(packets.PubcompType, pkt.ID, timer)
	}
	return nil
}

// Subscribe registers a topic filter at the requested QoS and waits for
// the broker's SUBACK. A 0x80 return code fails with ErrSubscribeFailed.
func (c *Client) Subscribe(topic string, qos byte) error {
	if qos > 2 {
		return ErrInvalidQoS
	}
	if topic == "" {
		return ErrInvalidTopic
	}
	if c.state != StateConnected {
		return ErrNotConnected
	}

	pkt := packets.Subscribe{ID: c.nextPacketID(), Topic: topic, QoS: qos}
	timer := c.newTimer()
	if err := c.send(&pkt, timer); err != nil {
		return err
	}
	if err := c.awaitAck(packets.SubackType, pkt.ID, timer); err != nil {
		return err
	}
	if c.inSuback.Failed() {
		return c.fail(ErrSubscribeFailed)
	}
	return nil
}

// GrantedQoS returns the return codes of the most recent SUBACK. The
// view is only valid until the next packet is read.
func (c *Client) GrantedQoS() codec.View {
	return c.inSuback.ReturnCodes
}

// Unsubscribe removes a topic filter and waits for UNSUBACK.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if c.state != StateConnected {
		return ErrNotConnected
	}

	pkt := packets.Unsubscribe{ID: c.nextPacketID(), Topic: topic}
	timer := c.newTimer()
	if err := c.send(&pkt, timer); err != nil {
		return err
	}
	return c.awaitAck(packets.UnsubackType, pkt.ID, timer)
}

// Ping sends a PINGREQ and waits for the PINGRESP.
func (c *Client) Ping() error {
	if c.state != StateConnected {
		return ErrNotConnected
	}
	timer := c.newTimer()
	if err := c.send(&packets.Pingreq{}, timer); err != nil {
		return err
	}
	c.pingOutstanding = true
	for c.pingOutstanding {
		if timer.Expired() {
			return c.fail(transport.ErrTimeout)
		}
		if _, err := c.cycle(timer); err != nil {
			return err
		}
	}
	return nil
}

// Loop processes inbound traffic for up to d, delivering messages to
// the registered handler and answering QoS handshakes, then runs the
// keep-alive check. It returns early once no more data is pending.
func (c *Client) Loop(d time.Duration) error {
	if c.state != StateConnected {
		return ErrNotConnected
	}
	timer := transport.NewTimer(c.clock())
	timer.Set(d)

	for c.conn.Available() > 0 && !timer.Expired() {
		if _, err := c.cycle(timer); err != nil {
			return err
		}
	}
	return c.maybePing()
}

// maybePing sends a keep-alive probe once less than a quarter of the
// interval remains. The response is collected by a later cycle; a probe
// still outstanding when the full interval expires fails the session.
func (c *Client) maybePing() error {
	if c.opts.KeepAlive == 0 || c.state != StateConnected {
		return nil
	}
	remaining := c.keepAlive.Remaining()
	if c.pingOutstanding && remaining <= 0 {
		return c.fail(transport.ErrTimeout)
	}
	interval := int32(c.opts.KeepAlive / time.Millisecond)
	if c.pingOutstanding || remaining > interval/4 {
		return nil
	}

	timer := c.newTimer()
	if err := c.send(&packets.Pingreq{}, timer); err != nil {
		return err
	}
	c.pingOutstanding = true
	return nil
}

// Disconnect sends DISCONNECT and closes the transport. The close
// happens regardless of whether the send got through.
func (c *Client) Disconnect() error {
	var sendErr error
	if c.state == StateConnected && c.conn.IsOpen() {
		timer := c.newTimer()
		n, err := (&packets.Disconnect{}).Encode(c.writeBuf)
		if err == nil {
			_, err = c.conn.Write(c.writeBuf[:n], timer.RemainingDuration())
		}
		sendErr = err
	}
	c.state = StateDisconnected
	c.pingOutstanding = false
	if c.conn.IsOpen() {
		c.conn.Close()
	}
	c.logger.Info("disconnected", "client_id", c.clientID)
	return sendErr
}

// readPacket reads one complete control packet: the type/flags byte, the
// remaining length one byte at a time, then the body into the read
// buffer. An oversized body is either drained and counted (drop policy)
// or fails the read.
func (c *Client) readPacket(timer *transport.Timer) (packets.FixedHeader, []byte, error) {
	var one [1]byte
	if _, err := c.conn.Read(one[:], timer.RemainingDuration()); err != nil {
		return packets.FixedHeader{}, nil, err
	}
	typeAndFlags := one[0]

	// The variable byte integer is at most four bytes; read until the
	// continuation bit clears.
	var lenBytes [4]byte
	n := 0
	for {
		if n == len(lenBytes) {
			return packets.FixedHeader{}, nil, codec.ErrVarnumOverflow
		}
		if _, err := c.conn.Read(lenBytes[n:n+1], timer.RemainingDuration()); err != nil {
			return packets.FixedHeader{}, nil, err
		}
		n++
		if lenBytes[n-1]&0x80 == 0 {
			break
		}
	}

	var fh packets.FixedHeader
	cur := codec.NewCursor(lenBytes[:n])
	if err := fh.Decode(typeAndFlags, cur); err != nil {
		return packets.FixedHeader{}, nil, err
	}

	if fh.RemainingLength > c.opts.ReadBufferSize {
		if !c.dropOverflow {
			return packets.FixedHeader{}, nil, codec.ErrBufferTooShort
		}
		if err := c.drain(fh.RemainingLength, timer); err != nil {
			return packets.FixedHeader{}, nil, err
		}
		c.droppedCount++
		c.m.drop()
		c.logger.Warn("oversized packet dropped",
			"packet_type", packets.PacketNames[fh.PacketType], "length", fh.RemainingLength)
		return fh, nil, errDropped
	}

	body := c.readBuf[:fh.RemainingLength]
	got := 0
	for got < len(body) {
		r, err := c.conn.Read(body[got:], timer.RemainingDuration())
		if err != nil {
			return packets.FixedHeader{}, nil, err
		}
		got += r
	}
	c.m.received(packets.PacketNames[fh.PacketType], 1+n+fh.RemainingLength)
	return fh, body, nil
}

// errDropped is an internal marker: the packet was consumed off the wire
// and discarded under the overflow policy. It never escapes the engine.
var errDropped = errors.New("packet dropped")

// drain consumes and discards n body bytes through the read buffer.
func (c *Client) drain(n int, timer *transport.Timer) error {
	for n > 0 {
		chunk := n
		if chunk > c.opts.ReadBufferSize {
			chunk = c.opts.ReadBufferSize
		}
		r, err := c.conn.Read(c.readBuf[:chunk], timer.RemainingDuration())
		if err != nil {
			return err
		}
		n -= r
	}
	return nil
}

// cycle reads and handles exactly one inbound packet. PUBLISH is
// delivered and acknowledged, PUBREL answered with PUBCOMP, PINGRESP
// clears the outstanding probe; acknowledgement packets are decoded into
// the scratch fields for awaitAck to inspect. Returns the packet type.
func (c *Client) cycle(timer *transport.Timer) (byte, error) {
	fh, body, err := c.readPacket(timer)
	if err == errDropped {
		return 0, nil
	}
	if err != nil {
		return 0, c.fail(err)
	}

	switch fh.PacketType {
	case packets.PublishType:
		if err := c.inPublish.Decode(fh, body); err != nil {
			return 0, c.fail(err)
		}
		if err := c.handlePublish(&c.inPublish, timer); err != nil {
			return 0, err
		}

	case packets.PubrelType:
		if err := c.inAck.Decode(fh, body); err != nil {
			return 0, c.fail(err)
		}
		comp := packets.Ack{PacketType: packets.PubcompType, ID: c.inAck.ID}
		if err := c.send(&comp, timer); err != nil {
			return 0, err
		}

	case packets.PubackType, packets.PubrecType, packets.PubcompType:
		if err := c.inAck.Decode(fh, body); err != nil {
			return 0, c.fail(err)
		}

	case packets.SubackType:
		if err := c.inSuback.Decode(fh, body); err != nil {
			return 0, c.fail(err)
		}

	case packets.UnsubackType:
		if err := c.inUnsub.Decode(fh, body); err != nil {
			return 0, c.fail(err)
		}

	case packets.PingrespType:
		c.pingOutstanding = false

	default:
		return 0, c.fail(ErrUnexpectedPacket)
	}
	return fh.PacketType, nil
}

// awaitAck drives cycle until the wanted acknowledgement for id arrives
// or the timer runs out. Unrelated inbound traffic (messages, other QoS
// flows) is handled along the way.
func (c *Client) awaitAck(wantType byte, id uint16, timer *transport.Timer) error {
	for {
		if timer.Expired() {
			return c.fail(transport.ErrTimeout)
		}
		got, err := c.cycle(timer)
		if err != nil {
			return err
		}
		switch got {
		case wantType:
			switch wantType {
			case packets.SubackType:
				if c.inSuback.ID == id {
					return nil
				}
			case packets.UnsubackType:
				if c.inUnsub.ID == id {
					return nil
				}
			default:
				if c.inAck.ID == id {
					return nil
				}
			}
		}
	}
}

// handlePublish delivers an inbound message and completes its QoS
// handshake. QoS 1 is acknowledged after delivery; for QoS 2 the engine
// answers PUBREC and treats the later PUBREL/PUBCOMP exchange as the
// completion, so a retransmitted PUBLISH before PUBREL is delivered
// again (the broker owns exactly-once bookkeeping on this path).
func (c *Client) handlePublish(pub *packets.Publish, timer *transport.Timer) error {
	c.deliver(pub)

	switch pub.QoS {
	case 1:
		ack := packets.Ack{PacketType: packets.PubackType, ID: pub.ID}
		return c.send(&ack, timer)
	case 2:
		rec := packets.Ack{PacketType: packets.PubrecType, ID: pub.ID}
		return c.send(&rec, timer)
	}
	return nil
}

// deliver hands the message to the registered handler. With no handler
// the message is dropped, counted only under the overflow policy.
func (c *Client) deliver(pub *packets.Publish) {
	switch c.cb.kind {
	case callbackBytes:
		c.cb.bytes(pub.TopicView, pub.PayloadView)

	case callbackString:
		topic, payload := c.terminate(pub)
		c.cb.str(topic, payload)

	case callbackAdvanced:
		c.cb.advanced(Message{
			Topic:   pub.TopicView,
			Payload: pub.PayloadView,
			QoS:     pub.QoS,
			Retain:  pub.Retain,
			Dup:     pub.Dup,
			ID:      pub.ID,
		})

	default:
		if c.dropOverflow {
			c.droppedCount++
			c.m.drop()
		}
	}
}

// terminate zero-terminates the decoded topic and payload in place and
// returns strings aliasing the read buffer, valid only for the duration
// of the callback. The payload terminator always fits thanks to the
// extra headroom byte. The topic terminator would land on the first
// payload byte when there is no packet identifier between them, so it is
// skipped whenever that would corrupt a non-empty payload.
func (c *Client) terminate(pub *packets.Publish) (topic, payload string) {
	payloadEnd := pub.PayloadOffset() + len(pub.PayloadView)
	c.readBuf[payloadEnd] = 0

	topicEnd := pub.TopicOffset() + len(pub.TopicView)
	if topicEnd != pub.PayloadOffset() || len(pub.PayloadView) == 0 {
		c.readBuf[topicEnd] = 0
	}

	if len(pub.TopicView) > 0 {
		topic = unsafe.String(&pub.TopicView[0], len(pub.TopicView))
	}
	if len(pub.PayloadView) > 0 {
		payload = unsafe.String(&pub.PayloadView[0], len(pub.PayloadView))
	}
	return topic, payload
}
