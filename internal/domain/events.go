package domain

import "time"

// LedgerEventType - тип изменения реестра.
type LedgerEventType string

const (
	EventOrderCreated LedgerEventType = "order.created"
	EventOrderUpdated LedgerEventType = "order.updated"
	EventOrderDeleted LedgerEventType = "order.deleted"
)

// AggregateOrder - тип агрегата для сообщений outbox.
const AggregateOrder = "order"

// LedgerEvent описывает применённое и сохранённое изменение реестра.
type LedgerEvent struct {
	Type         LedgerEventType `json:"event_type"`
	OrderID      string          `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	Products     []string        `json:"products,omitempty"`
	Quantities   []int           `json:"quantities,omitempty"`
	Occurred     time.Time       `json:"occurred_at"`
}
