package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

type mockConsumerGroup struct {
	consumeFn func(context.Context, []string, sarama.ConsumerGroupHandler) error
	errorsCh  chan error
	closeFn   func() error
}

func (m *mockConsumerGroup) Consume(ctx context.Context, topics []string, handler sarama.ConsumerGroupHandler) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, topics, handler)
	}
	return nil
}

func (m *mockConsumerGroup) Errors() <-chan error { return m.errorsCh }

func (m *mockConsumerGroup) Close() error {
	if m.closeFn != nil {
		return m.closeFn()
	}
	if m.errorsCh != nil {
		close(m.errorsCh)
	}
	return nil
}

func (m *mockConsumerGroup) Pause(map[string][]int32)  {}
func (m *mockConsumerGroup) Resume(map[string][]int32) {}
func (m *mockConsumerGroup) PauseAll()                 {}
func (m *mockConsumerGroup) ResumeAll()                {}

type mockSession struct {
	ctx    context.Context
	marked []*sarama.ConsumerMessage
}

func (m *mockSession) Claims() map[string][]int32               { return nil }
func (m *mockSession) MemberID() string                         { return "member" }
func (m *mockSession) GenerationID() int32                      { return 1 }
func (m *mockSession) MarkOffset(string, int32, int64, string)  {}
func (m *mockSession) Commit()                                  {}
func (m *mockSession) ResetOffset(string, int32, int64, string) {}
func (m *mockSession) Context() context.Context                 { return m.ctx }
func (m *mockSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	m.marked = append(m.marked, msg)
}

type mockClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (m *mockClaim) Topic() string                            { return TopicLedgerEvents }
func (m *mockClaim) Partition() int32                         { return 0 }
func (m *mockClaim) InitialOffset() int64                     { return 0 }
func (m *mockClaim) HighWaterMarkOffset() int64               { return 0 }
func (m *mockClaim) Messages() <-chan *sarama.ConsumerMessage { return m.messages }

func claimWith(values ...string) *mockClaim {
	claim := &mockClaim{messages: make(chan *sarama.ConsumerMessage, len(values))}
	for i, v := range values {
		claim.messages <- &sarama.ConsumerMessage{Topic: TopicLedgerEvents, Offset: int64(i), Value: []byte(v)}
	}
	close(claim.messages)
	return claim
}

func TestNewConsumer_InvalidBroker(t *testing.T) {
	handler := func(context.Context, domain.LedgerEvent) error { return nil }
	if _, err := NewConsumer([]string{"invalid-broker:9092"}, "group", []string{TopicLedgerEvents}, handler); err == nil {
		t.Fatal("expected new consumer error")
	}
}

func TestConsumer_StartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumeCalls := 0
	errorsCh := make(chan error, 1)
	group := &mockConsumerGroup{
		errorsCh: errorsCh,
		consumeFn: func(context.Context, []string, sarama.ConsumerGroupHandler) error {
			consumeCalls++
			cancel()
			return nil
		},
	}

	consumer := &Consumer{group: group, topics: []string{TopicLedgerEvents}, logger: log.WithField("test", "consumer")}

	errorsCh <- errors.New("background error")
	consumer.Start(ctx)
	time.Sleep(10 * time.Millisecond)
	if err := consumer.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if consumeCalls == 0 {
		t.Fatal("expected consume call")
	}
}

func TestConsumer_StopError(t *testing.T) {
	group := &mockConsumerGroup{closeFn: func() error { return errors.New("close failed") }}
	consumer := &Consumer{group: group, logger: log.WithField("test", "stop")}
	if err := consumer.Stop(); err == nil {
		t.Fatal("expected stop error")
	}
}

func TestConsumeClaim_HandlesEvents(t *testing.T) {
	var got []domain.LedgerEvent
	consumer := &Consumer{
		handler: func(_ context.Context, event domain.LedgerEvent) error {
			got = append(got, event)
			return nil
		},
		logger: log.WithField("test", "claim"),
	}
	session := &mockSession{ctx: context.Background()}

	claim := claimWith(`{"event_type":"order.created","order_id":"o-1"}`, "garbage")
	if err := consumer.ConsumeClaim(session, claim); err != nil {
		t.Fatalf("ConsumeClaim failed: %v", err)
	}
	if len(got) != 1 || got[0].OrderID != "o-1" {
		t.Fatalf("unexpected events: %+v", got)
	}
	// нечитаемое сообщение тоже помечается, чтобы не блокировать партицию
	if len(session.marked) != 2 {
		t.Fatalf("expected two marked messages, got %d", len(session.marked))
	}
}

func TestConsumeClaim_HandlerErrorIsNotMarked(t *testing.T) {
	consumer := &Consumer{
		handler: func(context.Context, domain.LedgerEvent) error { return errors.New("failed") },
		logger:  log.WithField("test", "claim-fail"),
	}
	session := &mockSession{ctx: context.Background()}

	if err := consumer.ConsumeClaim(session, claimWith(`{"event_type":"order.updated","order_id":"o-2"}`)); err != nil {
		t.Fatalf("ConsumeClaim failed: %v", err)
	}
	if len(session.marked) != 0 {
		t.Fatalf("failed message should not be marked, got %d", len(session.marked))
	}
}

func TestConsumeClaim_StopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumer := &Consumer{
		handler: func(context.Context, domain.LedgerEvent) error { return nil },
		logger:  log.WithField("test", "claim-stop"),
	}
	session := &mockSession{ctx: ctx}
	claim := &mockClaim{messages: make(chan *sarama.ConsumerMessage)}

	done := make(chan struct{})
	go func() {
		_ = consumer.ConsumeClaim(session, claim)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ConsumeClaim did not stop after context cancellation")
	}
}
