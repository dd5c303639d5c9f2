package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

// EventHandler обрабатывает одно событие реестра.
type EventHandler func(ctx context.Context, event domain.LedgerEvent) error

// Consumer читает события реестра из consumer group.
// Нечитаемые сообщения пропускаются, сообщения с ошибкой обработчика не коммитятся.
type Consumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler EventHandler
	logger  *log.Entry
	wg      sync.WaitGroup
}

// NewConsumer подключается к брокерам как участник группы groupID.
func NewConsumer(brokers []string, groupID string, topics []string, handler EventHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.ClientID = "sabor-ledger-watch"
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &Consumer{
		group:   group,
		topics:  topics,
		handler: handler,
		logger:  log.WithField("component", "kafka-consumer"),
	}, nil
}

// Start запускает чтение в фоне до отмены ctx или вызова Stop.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		for {
			// Consume завершается при каждом rebalance
			if err := c.group.Consume(ctx, c.topics, c); err != nil {
				c.logger.WithError(err).Error("error from consumer")
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.logger.WithError(err).Error("consumer error")
		}
	}()

	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
}

// Stop закрывает группу и дожидается фоновых горутин.
func (c *Consumer) Stop() error {
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim передаёт события партиции обработчику.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			entry := c.logger.WithFields(log.Fields{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			})

			event, err := ParseLedgerEvent(message)
			if err != nil {
				entry.WithError(err).Warn("skipping unreadable ledger event")
				session.MarkMessage(message, "")
				continue
			}
			if err := c.handler(session.Context(), event); err != nil {
				entry.WithError(err).Error("ledger event handler failed")
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
