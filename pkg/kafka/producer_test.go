package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *Producer {
	return &Producer{writer: w, logger: logger.Discard()}
}

// --- Event tests ---

func TestNewEvent_Fields(t *testing.T) {
	type countChanged struct {
		Count int `json:"count"`
	}

	event, err := NewEvent("cart.count_changed", "cartItems:abc", "cart", "storefront", countChanged{Count: 3})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "cart.count_changed", event.EventType)
	assert.Equal(t, "cartItems:abc", event.AggregateID)
	assert.Equal(t, "cart", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Metadata)

	var payload countChanged
	require.NoError(t, event.UnmarshalData(&payload))
	assert.Equal(t, 3, payload.Count)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("cart.item_added", "k", "cart", "storefront", make(chan int))
	require.Error(t, err)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	original, err := NewEvent("cart.item_added", "cartItems", "cart", "storefront", map[string]string{"name": "Elegant Dress"})
	require.NoError(t, err)
	original.WithCorrelationID("corr-abc").WithMetadata("cart_session", "s-1")

	raw, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, "corr-abc", restored.CorrelationID)
	assert.Equal(t, "s-1", restored.Metadata["cart_session"])
	assert.JSONEq(t, string(original.Data), string(restored.Data))
}

func TestEvent_WithMetadata_NilMetadataMap(t *testing.T) {
	event := &Event{EventID: "id"}
	assert.Same(t, event, event.WithMetadata("key", "value"))
	assert.Equal(t, "value", event.Metadata["key"])
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{broken json`))
	require.Error(t, err)

	_, err = UnmarshalEvent(nil)
	require.Error(t, err)

	err = (&Event{Data: json.RawMessage(`nope`)}).UnmarshalData(&map[string]string{})
	require.Error(t, err)
}

// --- Topic tests ---

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront", TopicPrefix)
	assert.Equal(t, "storefront.cart.count_changed", Topic("cart", "count_changed"))
	assert.Equal(t, "storefront.cart.item_added", Topic("cart", "item_added"))
}

// --- Producer tests ---

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestNewProducer_NilLoggerAndClose(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPublish_BuildsKeyedMessageWithHeaders(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	event, err := NewEvent("cart.item_added", "cartItems:s1", "cart", "storefront", map[string]string{"name": "Silk Blouse"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1")

	require.NoError(t, p.Publish(context.Background(), Topic("cart", "item_added"), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	carrier := NewHeaderCarrier(&msg)
	assert.Equal(t, "storefront.cart.item_added", msg.Topic)
	assert.Equal(t, "cartItems:s1", string(msg.Key))
	assert.Equal(t, "cart.item_added", carrier.Get("event_type"))
	assert.Equal(t, "storefront", carrier.Get("source"))
	assert.Equal(t, "corr-1", carrier.Get("correlation_id"))

	decoded, err := UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
}

func TestPublish_InjectsTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	event, err := NewEvent("cart.count_changed", "cartItems", "cart", "storefront", map[string]int{"count": 1})
	require.NoError(t, err)
	require.NoError(t, newTestProducer(w).Publish(ctx, "t", event))

	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", NewHeaderCarrier(&w.msgs[0]).Get("traceparent"))
}

func TestPublish_WriterErrorIsWrappedAndCounted(t *testing.T) {
	topic := "publish-error-topic"
	before := getCounterValue(t, "kafka_producer_publish_errors_total", topic)

	w := &fakeWriter{err: errors.New("leader not available")}
	event, err := NewEvent("cart.count_changed", "cartItems", "cart", "storefront", nil)
	require.NoError(t, err)

	err = newTestProducer(w).Publish(context.Background(), topic, event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to "+topic)
	assert.InDelta(t, before+1, getCounterValue(t, "kafka_producer_publish_errors_total", topic), 0.001)
}

func TestCompletion_AsyncCountsOutcome(t *testing.T) {
	topic := "async-completion-topic"
	p := &Producer{async: true, logger: logger.Discard()}
	before := getCounterValue(t, "kafka_producer_messages_published_total", topic)
	beforeErr := getCounterValue(t, "kafka_producer_publish_errors_total", topic)

	p.completion([]kafka.Message{{Topic: topic}, {Topic: topic}}, nil)
	p.completion([]kafka.Message{{Topic: topic}}, errors.New("timeout"))

	assert.InDelta(t, before+2, getCounterValue(t, "kafka_producer_messages_published_total", topic), 0.001)
	assert.InDelta(t, beforeErr+1, getCounterValue(t, "kafka_producer_publish_errors_total", topic), 0.001)
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newTestProducer(w).Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
