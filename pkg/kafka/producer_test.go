package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	metrics := NewProducerMetrics(prometheus.NewRegistry())
	p := newProducer(w, []string{"localhost:9092"}, testLogger(), metrics)

	event, err := NewEvent("evcatalog.ev.created", "ev-42", "ev", "evcatalog", evPayload{ID: "ev-42"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	require.NoError(t, p.Publish(context.Background(), "evcatalog.ev.created", event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "evcatalog.ev.created", msg.Topic)
	assert.Equal(t, "ev-42", string(msg.Key))
	assert.Equal(t, "evcatalog.ev.created", header(msg, "event_type"))
	assert.Equal(t, "evcatalog", header(msg, "source"))
	assert.Equal(t, "corr-9", header(msg, "correlation_id"))

	decoded, err := UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.published.WithLabelValues("evcatalog.ev.created")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.failed.WithLabelValues("evcatalog.ev.created")))
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	metrics := NewProducerMetrics(nil)
	p := newProducer(w, nil, testLogger(), metrics)

	event, err := NewEvent("evcatalog.ev.deleted", "ev-1", "ev", "evcatalog", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "evcatalog.ev.deleted", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failed.WithLabelValues("evcatalog.ev.deleted")))
}

func TestProducer_PublishInjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := newProducer(w, nil, testLogger(), nil)
	event, err := NewEvent("evcatalog.review.created", "r-1", "review", "evcatalog", nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, "evcatalog.review.created", event))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", header(w.msgs[0], "traceparent"))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, testLogger(), nil)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"kafka:9092"})
	assert.Equal(t, []string{"kafka:9092"}, cfg.Brokers)
	assert.False(t, cfg.Async)
	assert.Positive(t, cfg.WriteTimeout)
}
