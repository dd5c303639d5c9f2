package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/sabor/internal/service/outbox"
)

// newOutboxWorker собирает воркер, публикующий события реестра в cfg.KafkaTopic.
// Без producer воркер не нужен и возвращается nil.
func newOutboxWorker(cfg Config, repo domain.OutboxRepository, producer *kafka.Producer, logger *log.Entry) *outbox.Worker {
	if producer == nil || repo == nil {
		return nil
	}

	opts := []outbox.Option{
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	}
	if cfg.KafkaDLQTopic != "" {
		opts = append(opts, outbox.WithDeadLetterPublisher(kafka.NewTopicPublisher(producer, cfg.KafkaDLQTopic)))
	}

	return outbox.NewWorker(repo, kafka.NewTopicPublisher(producer, cfg.KafkaTopic), opts...)
}
