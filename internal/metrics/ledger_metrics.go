package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций реестра для label result.
const (
	ResultSuccess     = "success"
	ResultValidation  = "validation_error"
	ResultNotFound    = "not_found"
	ResultPersistence = "persistence_error"
)

// LedgerMetrics содержит метрики операций реестра заказов.
// Методы безопасно вызывать на nil.
type LedgerMetrics struct {
	operations         *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec
	orders             prometheus.Gauge
	persistFailures    prometheus.Counter
	notifyFailures     prometheus.Counter
}

// NewLedgerMetrics регистрирует метрики в стандартном реестре Prometheus.
func NewLedgerMetrics() *LedgerMetrics {
	return NewLedgerMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewLedgerMetricsWithRegisterer регистрирует метрики в переданном реестре.
func NewLedgerMetricsWithRegisterer(registerer prometheus.Registerer) *LedgerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &LedgerMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sabor_ledger_operations_total",
			Help: "Total number of order ledger operations by result",
		}, []string{"operation", "result"}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "sabor_ledger_operation_duration_seconds",
			Help:    "Duration of order ledger operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"}),
		validationFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sabor_ledger_validation_failures_total",
			Help: "Total number of rejected order candidates by violation kind",
		}, []string{"kind"}),
		orders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "sabor_ledger_orders",
			Help: "Number of orders currently held by the ledger",
		}),
		persistFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sabor_ledger_persistence_failures_total",
			Help: "Total number of failed snapshot loads and saves",
		}),
		notifyFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sabor_ledger_notification_failures_total",
			Help: "Total number of ledger events that could not be enqueued",
		}),
	}
}

// RecordOperation учитывает завершённую операцию и её длительность.
func (m *LedgerMetrics) RecordOperation(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if result == ResultPersistence {
		m.persistFailures.Inc()
	}
}

// SetOrders выставляет текущее число заказов.
func (m *LedgerMetrics) SetOrders(n int) {
	if m == nil {
		return
	}
	m.orders.Set(float64(n))
}

// RecordNotificationFailure учитывает событие, не попавшее в outbox.
func (m *LedgerMetrics) RecordNotificationFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}

// RecordValidationFailure учитывает отклонённого кандидата.
func (m *LedgerMetrics) RecordValidationFailure(kind string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}
