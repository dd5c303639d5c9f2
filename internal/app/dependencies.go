package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/ledger"
	"github.com/vladislavdragonenkov/sabor/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/sabor/internal/metrics"
	"github.com/vladislavdragonenkov/sabor/internal/service/outbox"
)

// Dependencies - собранный реестр с хранилищем и, если настроен Kafka, доставкой событий.
// Используется и сервисом, и ledgerctl.
type Dependencies struct {
	Config Config
	Logger *log.Entry

	Store  domain.SnapshotStore
	Ledger *ledger.Ledger
	// Outbox и Worker равны nil, когда уведомления выключены.
	Outbox domain.OutboxRepository
	Worker *outbox.Worker

	producer     *kafka.Producer
	closeStorage func() error
}

// NewDependencies открывает хранилище, подключает Kafka и загружает реестр.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Config:       cfg,
		Logger:       logger,
		Store:        st.snapshots,
		closeStorage: st.closeFn,
	}

	// Ошибка Kafka не мешает работе реестра: события просто не публикуются.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	deps.producer = producer

	opts := []ledger.Option{
		ledger.WithLogger(logger.WithField("component", "ledger")),
		ledger.WithMetrics(metrics.NewLedgerMetrics()),
	}
	if producer != nil {
		deps.Outbox = st.outbox
		deps.Worker = newOutboxWorker(cfg, st.outbox, producer, logger)
		opts = append(opts, ledger.WithOutbox(st.outbox))
	}
	deps.Ledger = ledger.New(st.snapshots, opts...)

	if err := deps.Ledger.Load(ctx); err != nil {
		_ = deps.Close()
		return nil, err
	}
	return deps, nil
}

// Flush публикует накопленные события за один проход; для коротких процессов вроде CLI.
func (d *Dependencies) Flush(ctx context.Context) outbox.Result {
	if d == nil || d.Worker == nil {
		return outbox.Result{}
	}
	return d.Worker.ProcessOnce(ctx)
}

// Close закрывает producer и хранилище.
func (d *Dependencies) Close() error {
	if d == nil {
		return nil
	}
	closeKafka(d.producer, d.Logger)
	d.producer = nil

	if d.closeStorage == nil {
		return nil
	}
	closeFn := d.closeStorage
	d.closeStorage = nil
	return closeFn()
}
