// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the client's OpenTelemetry instruments. All methods are
// safe on the zero value so instrumentation stays optional; without a
// MeterProvider every record call is a no-op.
type metrics struct {
	packetsSent     metric.Int64Counter
	packetsReceived metric.Int64Counter
	bytesSent       metric.Int64Counter
	bytesReceived   metric.Int64Counter
	dropped         metric.Int64Counter
	errors          metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	m := &metrics{}
	if mp == nil {
		return m, nil
	}
	meter := mp.Meter("github.com/litemq/litemq")

	var err error
	if m.packetsSent, err = meter.Int64Counter("litemq.client.packets.sent",
		metric.WithDescription("Control packets written to the transport")); err != nil {
		return nil, err
	}
	if m.packetsReceived, err = meter.Int64Counter("litemq.client.packets.received",
		metric.WithDescription("Control packets read from the transport")); err != nil {
		return nil, err
	}
	if m.bytesSent, err = meter.Int64Counter("litemq.client.bytes.sent",
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.bytesReceived, err = meter.Int64Counter("litemq.client.bytes.received",
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.dropped, err = meter.Int64Counter("litemq.client.messages.dropped",
		metric.WithDescription("Inbound messages dropped by the overflow policy")); err != nil {
		return nil, err
	}
	if m.errors, err = meter.Int64Counter("litemq.client.errors",
		metric.WithDescription("Session failures that closed the connection")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *metrics) sent(packetType string, n int) {
	if m.packetsSent == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("packet.type", packetType))
	m.packetsSent.Add(context.Background(), 1, attrs)
	m.bytesSent.Add(context.Background(), int64(n), attrs)
}

func (m *metrics) received(packetType string, n int) {
	if m.packetsReceived == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("packet.type", packetType))
	m.packetsReceived.Add(context.Background(), 1, attrs)
	m.bytesReceived.Add(context.Background(), int64(n), attrs)
}

func (m *metrics) drop() {
	if m.dropped == nil {
		return
	}
	m.dropped.Add(context.Background(), 1)
}

func (m *metrics) fail() {
	if m.errors == nil {
		return
	}
	m.errors.Add(context.Background(), 1)
}
