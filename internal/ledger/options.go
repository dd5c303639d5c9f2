package ledger

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/metrics"
)

// Option настраивает Ledger.
type Option func(*Ledger)

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics включает метрики операций.
func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// WithOutbox включает публикацию событий об изменениях заказов через outbox.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(l *Ledger) {
		l.outbox = outbox
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов (для тестов).
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) {
		if newID != nil {
			l.newID = newID
		}
	}
}

func defaultNow() time.Time {
	return time.Now().UTC()
}

func defaultID() string {
	return uuid.NewString()
}
