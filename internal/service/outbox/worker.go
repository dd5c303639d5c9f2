// Package outbox доставляет события изменения реестра заказов из outbox в брокер.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/metrics"
)

const (
	defaultPollInterval   = time.Second
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
	maxRetryDelay         = 30 * time.Second
)

// Результаты попыток публикации для метрик.
const (
	resultSent          = "sent"
	resultRetry         = "retry_error"
	resultFailed        = "failed"
	resultDeadLetter    = "dead_letter"
	resultDeadLetterErr = "dead_letter_failed"
)

type config struct {
	logger         *log.Entry
	deadLetter     domain.OutboxPublisher
	registerer     prometheus.Registerer
	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

// Option настраивает Worker.
type Option func(*config)

// WithLogger задаёт логгер воркера.
func WithLogger(logger *log.Entry) Option {
	return func(c *config) { c.logger = logger }
}

// WithDeadLetterPublisher задаёт получателя событий, которые не удалось доставить за все попытки.
func WithDeadLetterPublisher(publisher domain.OutboxPublisher) Option {
	return func(c *config) { c.deadLetter = publisher }
}

// WithRegisterer задаёт реестр Prometheus для метрик воркера.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(c *config) { c.registerer = registerer }
}

// WithPollInterval задаёт частоту опроса outbox.
func WithPollInterval(interval time.Duration) Option {
	return func(c *config) { c.pollInterval = interval }
}

// WithBatchSize задаёт число сообщений за один цикл.
func WithBatchSize(size int) Option {
	return func(c *config) { c.batchSize = size }
}

// WithMaxAttempts задаёт число попыток публикации одного сообщения.
func WithMaxAttempts(attempts int) Option {
	return func(c *config) { c.maxAttempts = attempts }
}

// WithRetryBaseDelay задаёт начальную паузу экспоненциального backoff. Ноль отключает паузы.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(c *config) { c.retryBaseDelay = delay }
}

// Result - итог одного цикла обработки.
type Result struct {
	Sent   int
	Failed int
}

// Worker публикует pending-события реестра и помечает их отправленными или сбойными.
type Worker struct {
	repo       domain.OutboxRepository
	publisher  domain.OutboxPublisher
	deadLetter domain.OutboxPublisher
	logger     *log.Entry
	metrics    *metrics.OutboxMetrics
	cfg        config
}

// NewWorker создаёт воркер. Некорректные значения опций заменяются значениями по умолчанию.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, options ...Option) *Worker {
	cfg := config{
		pollInterval:   defaultPollInterval,
		batchSize:      defaultBatchSize,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = log.WithField("component", "outbox-worker")
	}
	if cfg.pollInterval <= 0 {
		cfg.pollInterval = defaultPollInterval
	}
	if cfg.batchSize <= 0 {
		cfg.batchSize = defaultBatchSize
	}
	if cfg.maxAttempts <= 0 {
		cfg.maxAttempts = defaultMaxAttempts
	}
	if cfg.retryBaseDelay < 0 {
		cfg.retryBaseDelay = 0
	}

	return &Worker{
		repo:       repo,
		publisher:  publisher,
		deadLetter: cfg.deadLetter,
		logger:     cfg.logger,
		metrics:    metrics.NewOutboxMetrics(cfg.registerer),
		cfg:        cfg,
	}
}

// Run опрашивает outbox до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("outbox worker is disabled: repo or publisher is nil")
		return
	}

	w.logger.WithFields(log.Fields{
		"poll_interval": w.cfg.pollInterval,
		"batch_size":    w.cfg.batchSize,
	}).Info("outbox worker started")

	ticker := time.NewTicker(w.cfg.pollInterval)
	defer ticker.Stop()

	w.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce забирает одну пачку pending-событий и пытается их опубликовать.
func (w *Worker) ProcessOnce(ctx context.Context) Result {
	var res Result
	if ctx.Err() != nil {
		return res
	}

	w.refreshBacklog()
	defer w.refreshBacklog()

	batch, err := w.repo.PullPending(w.cfg.batchSize)
	if err != nil {
		w.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return res
	}

	for _, msg := range batch {
		if ctx.Err() != nil {
			return res
		}

		entry := w.logger.WithFields(log.Fields{
			"outbox_id":  msg.ID,
			"order_id":   msg.AggregateID,
			"event_type": msg.EventType,
		})

		if err := w.publishWithRetry(ctx, msg); err != nil {
			res.Failed++
			w.metrics.RecordPublish(resultFailed)
			entry.WithError(err).Error("ledger event was not delivered")

			w.sendDeadLetter(entry, msg, err)
			if markErr := w.repo.MarkFailed(msg.ID); markErr != nil {
				entry.WithError(markErr).Warn("failed to mark outbox message as failed")
			}
			continue
		}

		res.Sent++
		if err := w.repo.MarkSent(msg.ID); err != nil {
			entry.WithError(err).Warn("failed to mark outbox message as sent")
		}
	}

	return res
}

func (w *Worker) publishWithRetry(ctx context.Context, msg domain.OutboxMessage) error {
	var lastErr error
	for attempt := 1; attempt <= w.cfg.maxAttempts; attempt++ {
		lastErr = w.publisher.Publish(msg)
		if lastErr == nil {
			w.metrics.RecordPublish(resultSent)
			return nil
		}
		w.metrics.RecordPublish(resultRetry)

		if attempt == w.cfg.maxAttempts {
			break
		}
		delay := backoff(w.cfg.retryBaseDelay, attempt)
		if delay == 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w: %d attempts: %v", domain.ErrOutboxPublish, w.cfg.maxAttempts, lastErr)
}

// backoff удваивает base на каждую следующую попытку и ограничивает паузу maxRetryDelay.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

func (w *Worker) refreshBacklog() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}

	var age time.Duration
	if stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() {
		age = time.Since(stats.OldestPendingAt)
	}
	w.metrics.SetBacklog(stats.PendingCount, age)
}

// deadLetterEnvelope - исходное событие и причина, по которой его не удалось доставить.
type deadLetterEnvelope struct {
	OutboxID     string          `json:"outbox_id"`
	OrderID      string          `json:"order_id"`
	EventType    string          `json:"event_type"`
	Event        json.RawMessage `json:"event"`
	PublishError string          `json:"publish_error"`
	FailedAt     time.Time       `json:"failed_at"`
}

func (w *Worker) sendDeadLetter(entry *log.Entry, msg domain.OutboxMessage, cause error) {
	if w.deadLetter == nil {
		return
	}

	event := json.RawMessage(msg.Payload)
	if !json.Valid(event) {
		event = nil
	}
	payload, err := json.Marshal(deadLetterEnvelope{
		OutboxID:     msg.ID,
		OrderID:      msg.AggregateID,
		EventType:    msg.EventType,
		Event:        event,
		PublishError: cause.Error(),
		FailedAt:     time.Now().UTC(),
	})
	if err == nil {
		dead := msg
		dead.Payload = payload
		err = w.deadLetter.Publish(dead)
	}
	if err != nil {
		w.metrics.RecordPublish(resultDeadLetterErr)
		entry.WithError(err).Warn("failed to publish dead letter")
		return
	}
	w.metrics.RecordPublish(resultDeadLetter)
}
