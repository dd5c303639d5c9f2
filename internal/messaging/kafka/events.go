package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

// Topics по умолчанию.
const (
	TopicLedgerEvents = "sabor.orders.events"
	TopicDeadLetter   = "sabor.orders.dlq"
)

// Заголовки сообщений с событиями реестра.
const (
	HeaderEventType     = "event-type"
	HeaderAggregateType = "aggregate-type"
	HeaderOutboxID      = "outbox-id"
)

// ParseLedgerEvent разбирает событие реестра из сообщения Kafka.
func ParseLedgerEvent(message *sarama.ConsumerMessage) (domain.LedgerEvent, error) {
	var event domain.LedgerEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return domain.LedgerEvent{}, fmt.Errorf("failed to unmarshal ledger event: %w", err)
	}
	if event.Type == "" {
		event.Type = domain.LedgerEventType(headerValue(message.Headers, HeaderEventType))
	}
	if event.OrderID == "" {
		event.OrderID = string(message.Key)
	}
	return event, nil
}

func headerValue(headers []*sarama.RecordHeader, key string) string {
	for _, h := range headers {
		if h != nil && string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}
