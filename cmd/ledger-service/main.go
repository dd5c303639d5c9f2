package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/app"
	"github.com/vladislavdragonenkov/sabor/internal/version"
)

// startupFields - сводка конфигурации для стартового лога.
func startupFields(cfg app.Config) log.Fields {
	fields := log.Fields{
		"grpc_addr":     cfg.GRPCAddr,
		"metrics_addr":  cfg.MetricsAddr,
		"storage":       cfg.StorageDriver,
		"notifications": cfg.NotificationsEnabled(),
	}
	if cfg.StorageDriver == app.StorageDriverCSV {
		fields["storage_path"] = cfg.StoragePath
	}
	for k, v := range version.Fields() {
		fields[k] = v
	}
	return fields
}

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("некорректная конфигурация")
	}
	app.ConfigureLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(startupFields(cfg)).Info("запускаем LedgerService")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("LedgerService остановлен")
}
