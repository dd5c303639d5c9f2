package kafka

import (
	"errors"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

// TopicPublisher публикует сообщения outbox в один topic.
// Ключ сообщения - ID заказа, чтобы события одного заказа попадали в одну партицию.
type TopicPublisher struct {
	producer *Producer
	topic    string
}

// NewTopicPublisher создаёт публикатор событий реестра.
func NewTopicPublisher(producer *Producer, topic string) *TopicPublisher {
	if topic == "" {
		topic = TopicLedgerEvents
	}
	return &TopicPublisher{producer: producer, topic: topic}
}

// Topic возвращает topic назначения.
func (p *TopicPublisher) Topic() string {
	return p.topic
}

// Publish отправляет payload события как есть, тип события уходит в заголовке.
func (p *TopicPublisher) Publish(msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka publisher is not initialized")
	}

	key := msg.AggregateID
	if key == "" {
		key = msg.ID
	}
	return p.producer.Send(p.topic, key, msg.Payload, map[string]string{
		HeaderEventType:     msg.EventType,
		HeaderAggregateType: msg.AggregateType,
		HeaderOutboxID:      msg.ID,
	})
}

var _ domain.OutboxPublisher = (*TopicPublisher)(nil)
