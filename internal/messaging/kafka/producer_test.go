package kafka

import (
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

func newMockProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()
	mock := mocks.NewSyncProducer(t, nil)
	return NewProducerFromSync(mock, log.WithField("component", "kafka-producer-test")), mock
}

func TestProducer_Send(t *testing.T) {
	producer, mock := newMockProducer(t)
	mock.ExpectSendMessageAndSucceed()

	if err := producer.Send(TopicLedgerEvents, "order-1", []byte(`{}`), nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := producer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Send_Error(t *testing.T) {
	producer, mock := newMockProducer(t)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.Send(TopicLedgerEvents, "order-1", []byte(`{}`), nil)
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	if err := producer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewProducer_InvalidBroker(t *testing.T) {
	if _, err := NewProducer([]string{"invalid-broker:9092"}); err == nil {
		t.Fatal("expected error for unreachable broker")
	}
}

func TestTopicPublisher_Publish(t *testing.T) {
	producer, mock := newMockProducer(t)

	payload := []byte(`{"event_type":"order.created","order_id":"order-7"}`)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "custom.topic" {
			return fmt.Errorf("unexpected topic %s", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "order-7" {
			return fmt.Errorf("unexpected key %s", key)
		}
		value, _ := msg.Value.Encode()
		if string(value) != string(payload) {
			return fmt.Errorf("unexpected value %s", value)
		}
		headers := make(map[string]string)
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		if headers[HeaderEventType] != "order.created" {
			return fmt.Errorf("unexpected event-type header %q", headers[HeaderEventType])
		}
		if headers[HeaderOutboxID] != "msg-1" {
			return fmt.Errorf("unexpected outbox-id header %q", headers[HeaderOutboxID])
		}
		return nil
	})

	publisher := NewTopicPublisher(producer, "custom.topic")
	err := publisher.Publish(domain.OutboxMessage{
		ID:            "msg-1",
		AggregateType: domain.AggregateOrder,
		AggregateID:   "order-7",
		EventType:     string(domain.EventOrderCreated),
		Payload:       payload,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := producer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTopicPublisher_DefaultsAndNil(t *testing.T) {
	if got := NewTopicPublisher(nil, "").Topic(); got != TopicLedgerEvents {
		t.Fatalf("expected default topic, got %s", got)
	}

	var publisher *TopicPublisher
	if err := publisher.Publish(domain.OutboxMessage{}); err == nil {
		t.Fatal("expected error from nil publisher")
	}
	if err := NewTopicPublisher(nil, "").Publish(domain.OutboxMessage{}); err == nil {
		t.Fatal("expected error from publisher without producer")
	}
}

func TestParseLedgerEvent(t *testing.T) {
	msg := &sarama.ConsumerMessage{
		Key:   []byte("order-9"),
		Value: []byte(`{"customer_name":"Ana"}`),
		Headers: []*sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte("order.deleted")},
		},
	}

	event, err := ParseLedgerEvent(msg)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if event.Type != domain.EventOrderDeleted || event.OrderID != "order-9" || event.CustomerName != "Ana" {
		t.Fatalf("unexpected event: %+v", event)
	}

	if _, err := ParseLedgerEvent(&sarama.ConsumerMessage{Value: []byte("not-json")}); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}
