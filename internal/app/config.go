package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	log "github.com/sirupsen/logrus"
)

// Драйверы хранилища реестра.
const (
	StorageDriverMemory   = "memory"
	StorageDriverCSV      = "csv"
	StorageDriverPostgres = "postgres"
)

// EnvPrefix - префикс переменных окружения (SABOR_GRPC_ADDR и т.д.).
const EnvPrefix = "SABOR"

// DefaultConfigFiles просматриваются по порядку; отсутствующие файлы пропускаются.
var DefaultConfigFiles = []string{"sabor.yaml", "/etc/sabor/sabor.yaml"}

// Config описывает настройки сервиса и CLI.
// Значения по умолчанию в тегах должны совпадать с DefaultConfig.
type Config struct {
	GRPCAddr    string `default:":50051" env:"GRPC_ADDR" yaml:"grpc_addr" usage:"gRPC listen address"`
	MetricsAddr string `default:":9090" env:"METRICS_ADDR" yaml:"metrics_addr" usage:"HTTP address for /metrics and health probes"`
	LogLevel    string `default:"info" env:"LOG_LEVEL" yaml:"log_level" usage:"logrus level"`

	StorageDriver       string `default:"csv" env:"STORAGE_DRIVER" yaml:"storage_driver" usage:"memory|csv|postgres"`
	StoragePath         string `default:"dados/pedidos.csv" env:"STORAGE_PATH" yaml:"storage_path" usage:"CSV file for the csv driver"`
	IncludeAddress      bool   `default:"true" env:"INCLUDE_ADDRESS" yaml:"include_address" usage:"write the address column"`
	PostgresDSN         string `env:"POSTGRES_DSN" yaml:"postgres_dsn" usage:"PostgreSQL DSN for the postgres driver"`
	PostgresAutoMigrate bool   `default:"true" env:"POSTGRES_AUTO_MIGRATE" yaml:"postgres_auto_migrate" usage:"apply embedded migrations on start"`

	KafkaBrokers  []string `env:"KAFKA_BROKERS" yaml:"kafka_brokers" usage:"comma separated brokers; empty disables notifications"`
	KafkaTopic    string   `default:"sabor.orders.events" env:"KAFKA_TOPIC" yaml:"kafka_topic" usage:"topic for ledger events"`
	KafkaDLQTopic string   `default:"sabor.orders.dlq" env:"KAFKA_DLQ_TOPIC" yaml:"kafka_dlq_topic" usage:"dead letter topic; empty disables it"`

	OutboxPollInterval time.Duration `default:"1s" env:"OUTBOX_POLL_INTERVAL" yaml:"outbox_poll_interval"`
	OutboxBatchSize    int           `default:"100" env:"OUTBOX_BATCH_SIZE" yaml:"outbox_batch_size"`
	OutboxMaxAttempts  int           `default:"3" env:"OUTBOX_MAX_ATTEMPTS" yaml:"outbox_max_attempts"`
	OutboxRetryDelay   time.Duration `default:"200ms" env:"OUTBOX_RETRY_DELAY" yaml:"outbox_retry_delay"`

	ExportDir       string        `default:"exports" env:"EXPORT_DIR" yaml:"export_dir" usage:"directory for ledgerctl exports"`
	ShutdownTimeout time.Duration `default:"5s" env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

// DefaultConfig возвращает значения по умолчанию, не читая окружение.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		LogLevel:            "info",
		StorageDriver:       StorageDriverCSV,
		StoragePath:         "dados/pedidos.csv",
		IncludeAddress:      true,
		PostgresAutoMigrate: true,
		KafkaTopic:          "sabor.orders.events",
		KafkaDLQTopic:       "sabor.orders.dlq",
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    200 * time.Millisecond,
		ExportDir:           "exports",
		ShutdownTimeout:     5 * time.Second,
	}
}

// LoadConfig читает YAML-файлы и переменные SABOR_*; окружение важнее файлов.
// Без аргументов используются DefaultConfigFiles.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = DefaultConfigFiles
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:        EnvPrefix,
		SkipFlags:        true,
		AllowUnknownEnvs: true,
		Files:            files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.PostgresDSN = strings.TrimSpace(c.PostgresDSN)

	brokers := c.KafkaBrokers[:0]
	for _, b := range c.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.KafkaBrokers = brokers
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverCSV:
		if strings.TrimSpace(c.StoragePath) == "" {
			errs = append(errs, errors.New("storage path is required for the csv driver"))
		}
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q (use memory|csv|postgres)", c.StorageDriver))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if len(c.KafkaBrokers) > 0 && strings.TrimSpace(c.KafkaTopic) == "" {
		errs = append(errs, errors.New("kafka topic is required when brokers are set"))
	}
	if c.OutboxBatchSize <= 0 {
		errs = append(errs, errors.New("outbox batch size must be positive"))
	}
	if c.OutboxMaxAttempts <= 0 {
		errs = append(errs, errors.New("outbox max attempts must be positive"))
	}
	if c.OutboxPollInterval <= 0 {
		errs = append(errs, errors.New("outbox poll interval must be positive"))
	}

	return errors.Join(errs...)
}

// NotificationsEnabled - настроены ли брокеры Kafka.
func (c Config) NotificationsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ConfigureLogger настраивает глобальный logrus по конфигурации.
func ConfigureLogger(c Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
