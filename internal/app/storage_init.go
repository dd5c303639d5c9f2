package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/storage/csvfile"
	"github.com/vladislavdragonenkov/sabor/internal/storage/memory"
	"github.com/vladislavdragonenkov/sabor/internal/storage/postgres"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
)

// storage - хранилище таблицы заказов и outbox выбранного драйвера.
type storage struct {
	snapshots domain.SnapshotStore
	outbox    domain.OutboxRepository
	closeFn   func() error
}

// openStorage открывает хранилище по cfg.StorageDriver.
func openStorage(ctx context.Context, cfg Config, logger *log.Entry) (storage, error) {
	opts := tabular.DefaultOptions()
	opts.IncludeAddress = cfg.IncludeAddress

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.Info("storage: memory")
		return storage{
			snapshots: memory.NewSnapshotStore(opts),
			outbox:    memory.NewOutboxRepository(),
		}, nil

	case StorageDriverCSV:
		store, err := csvfile.New(cfg.StoragePath, opts, logger.WithField("layer", "csvfile"))
		if err != nil {
			return storage{}, err
		}
		logger.WithField("path", store.Path()).Info("storage: csv file")
		return storage{
			snapshots: store,
			outbox:    memory.NewOutboxRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return storage{}, fmt.Errorf("postgres dsn is required for the postgres driver")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return storage{}, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return storage{}, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		logger.Info("storage: postgres")
		return storage{
			snapshots: postgres.NewSnapshotStore(store),
			outbox:    postgres.NewOutboxRepository(store),
			closeFn:   store.Close,
		}, nil

	default:
		return storage{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
