package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type MockWriter struct {
	Messages []kafkaGo.Message
	Err      error
	Closed   bool
}

func (m *MockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockWriter) Close() error {
	m.Closed = true
	return nil
}

func TestPublish_KeyHeaderAndPayload(t *testing.T) {
	writer := &MockWriter{}
	p := &KafkaPublisher{writer: writer}

	err := p.Publish(context.Background(), Event{
		Type:      TypeOrderCreated,
		Workspace: "sess-1",
		UserID:    7,
		OrderID:   42,
		Amount:    3500,
	})
	require.NoError(t, err)
	require.Len(t, writer.Messages, 1)

	msg := writer.Messages[0]
	assert.Equal(t, "sess-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "order.created", string(msg.Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, int64(42), got.OrderID)
	assert.Equal(t, 3500.0, got.Amount)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestPublish_WriterError(t *testing.T) {
	p := &KafkaPublisher{writer: &MockWriter{Err: errors.New("broker down")}}

	err := p.Publish(context.Background(), Event{Type: TypeLoggedIn, Workspace: "sess-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish session.logged_in event")
}

func TestClose_ClosesWriter(t *testing.T) {
	writer := &MockWriter{}
	p := &KafkaPublisher{writer: writer}

	require.NoError(t, p.Close())
	assert.True(t, writer.Closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeLoggedOut}))
	assert.NoError(t, p.Close())
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestKafkaPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	topic := "storefront-events-test"
	createTopic(t, brokerAddr, topic)
	time.Sleep(5 * time.Second)

	p := NewKafkaPublisher(topic, brokerAddr)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	err := p.Publish(ctx, Event{Type: TypeCheckoutCompleted, Workspace: "sess-9", OrderID: 5})
	require.NoError(t, err)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    topic,
		GroupID:  "storefront-test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess-9", string(msg.Key))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, TypeCheckoutCompleted, got.Type)
	assert.Equal(t, int64(5), got.OrderID)
}
