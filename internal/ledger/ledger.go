// Package ledger - реестр заказов: хранит записи, валидирует изменения и сохраняет таблицу.
//
// Каждая мутация выполняется как один шаг: валидация, применение к копии набора,
// сохранение в хранилище и только затем замена набора в памяти.
// Если хранилище вернуло ошибку, набор в памяти остаётся прежним.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/metrics"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
	opLoad   = "load"
	opSave   = "save"
)

// Ledger - единственный владелец записей заказов.
type Ledger struct {
	mu      sync.RWMutex
	records []domain.OrderRecord
	// issued - все ID, выданные или загруженные за время жизни реестра, включая удалённые.
	issued  map[string]struct{}

	store   domain.SnapshotStore
	outbox  domain.OutboxRepository
	metrics *metrics.LedgerMetrics
	logger  *log.Entry
	now     func() time.Time
	newID   func() string
}

// New создаёт пустой реестр поверх хранилища. Для чтения сохранённых данных вызовите Load.
func New(store domain.SnapshotStore, opts ...Option) *Ledger {
	l := &Ledger{
		records: []domain.OrderRecord{},
		issued:  make(map[string]struct{}),
		store:   store,
		logger:  log.WithField("component", "ledger"),
		now:     defaultNow,
		newID:   defaultID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create валидирует кандидата, назначает ID и время создания, добавляет запись в конец и сохраняет.
func (l *Ledger) Create(ctx context.Context, candidate domain.Candidate) (rec domain.OrderRecord, err error) {
	defer l.observe(opCreate, time.Now(), &err)

	valid, err := candidate.Validate()
	if err != nil {
		return domain.OrderRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec = domain.OrderRecord{
		ID:           l.uniqueID(),
		CustomerName: valid.CustomerName,
		Address:      valid.Address,
		Products:     valid.Products,
		Quantities:   valid.Quantities,
		CreatedAt:    l.now().UTC().Truncate(time.Second),
	}

	next := make([]domain.OrderRecord, 0, len(l.records)+1)
	next = append(next, l.records...)
	next = append(next, rec)

	if err := l.commit(ctx, opCreate, next); err != nil {
		return domain.OrderRecord{}, err
	}

	l.logger.WithFields(log.Fields{"order_id": rec.ID, "operation": opCreate}).Info("order created")
	l.notify(domain.EventOrderCreated, rec)
	return rec.Clone(), nil
}

// Update целиком заменяет запись с указанным ID, сохраняя ID, CreatedAt и позицию.
func (l *Ledger) Update(ctx context.Context, id string, candidate domain.Candidate) (rec domain.OrderRecord, err error) {
	defer l.observe(opUpdate, time.Now(), &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	pos := l.indexOf(id)
	if pos < 0 {
		return domain.OrderRecord{}, &domain.NotFoundError{ID: id}
	}

	valid, err := candidate.Validate()
	if err != nil {
		return domain.OrderRecord{}, err
	}

	prev := l.records[pos]
	rec = domain.OrderRecord{
		ID:           prev.ID,
		CustomerName: valid.CustomerName,
		Address:      valid.Address,
		Products:     valid.Products,
		Quantities:   valid.Quantities,
		CreatedAt:    prev.CreatedAt,
	}

	next := append([]domain.OrderRecord(nil), l.records...)
	next[pos] = rec

	if err := l.commit(ctx, opUpdate, next); err != nil {
		return domain.OrderRecord{}, err
	}

	l.logger.WithFields(log.Fields{"order_id": rec.ID, "operation": opUpdate}).Info("order updated")
	l.notify(domain.EventOrderUpdated, rec)
	return rec.Clone(), nil
}

// Delete удаляет запись. Позиции последующих записей сдвигаются, их ID не меняются.
func (l *Ledger) Delete(ctx context.Context, id string) (err error) {
	defer l.observe(opDelete, time.Now(), &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	pos := l.indexOf(id)
	if pos < 0 {
		return &domain.NotFoundError{ID: id}
	}
	removed := l.records[pos]

	next := make([]domain.OrderRecord, 0, len(l.records)-1)
	next = append(next, l.records[:pos]...)
	next = append(next, l.records[pos+1:]...)

	if err := l.commit(ctx, opDelete, next); err != nil {
		return err
	}

	l.logger.WithFields(log.Fields{"order_id": removed.ID, "operation": opDelete}).Info("order deleted")
	l.notify(domain.EventOrderDeleted, removed)
	return nil
}

// Get возвращает запись по ID.
func (l *Ledger) Get(id string) (domain.OrderRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pos := l.indexOf(id)
	if pos < 0 {
		return domain.OrderRecord{}, &domain.NotFoundError{ID: id}
	}
	return l.records[pos].Clone(), nil
}

// Search возвращает ленивую последовательность записей, имя клиента которых содержит query
// без учёта регистра. Пустой query даёт все записи.
// Каждый проход читает текущее состояние реестра, поэтому последовательность можно перезапускать.
func (l *Ledger) Search(query string) iter.Seq[domain.OrderRecord] {
	needle := strings.ToLower(query)
	return func(yield func(domain.OrderRecord) bool) {
		for _, rec := range l.All() {
			if needle != "" && !strings.Contains(strings.ToLower(rec.CustomerName), needle) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// All возвращает копию всех записей в порядке реестра.
func (l *Ledger) All() []domain.OrderRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.OrderRecord, len(l.records))
	for i, rec := range l.records {
		out[i] = rec.Clone()
	}
	return out
}

// Len возвращает число записей.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Load заменяет набор в памяти содержимым хранилища.
// Записи без ID и с повторяющимся ID получают новый идентификатор.
// При ошибке чтения набор в памяти не меняется.
func (l *Ledger) Load(ctx context.Context) (err error) {
	defer l.observe(opLoad, time.Now(), &err)

	loaded, err := l.store.Load(ctx)
	if err != nil {
		l.logger.WithError(err).Error("failed to load orders")
		return &domain.PersistenceError{Op: opLoad, Cause: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(loaded))
	records := make([]domain.OrderRecord, 0, len(loaded))
	for _, rec := range loaded {
		if rec.ID == "" {
			rec.ID = l.freshID(seen)
		} else if _, dup := seen[rec.ID]; dup {
			fresh := l.freshID(seen)
			l.logger.WithFields(log.Fields{"order_id": rec.ID, "new_id": fresh}).Warn("duplicate order id in snapshot, reassigned")
			rec.ID = fresh
		}
		seen[rec.ID] = struct{}{}
		l.issued[rec.ID] = struct{}{}
		records = append(records, rec.Clone())
	}

	l.records = records
	l.metrics.SetOrders(len(records))
	l.logger.WithField("records", len(records)).Info("orders loaded")
	return nil
}

// Save записывает текущий набор в хранилище целиком.
func (l *Ledger) Save(ctx context.Context) (err error) {
	defer l.observe(opSave, time.Now(), &err)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.store.Save(ctx, l.records); err != nil {
		l.logger.WithError(err).Error("failed to save orders")
		return &domain.PersistenceError{Op: opSave, Cause: err}
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// commit сохраняет next и заменяет им набор в памяти. Вызывается под l.mu.
func (l *Ledger) commit(ctx context.Context, op string, next []domain.OrderRecord) error {
	if err := l.store.Save(ctx, next); err != nil {
		l.logger.WithError(err).WithField("operation", op).Error("failed to persist orders")
		return &domain.PersistenceError{Op: op, Cause: err}
	}
	l.records = next
	l.metrics.SetOrders(len(next))
	return nil
}

func (l *Ledger) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range l.records {
		if l.records[i].ID == id {
			return i
		}
	}
	return -1
}

// uniqueID выдаёт ID, который реестр ещё не выдавал, в том числе удалённым заказам.
// Вызывается под l.mu.
func (l *Ledger) uniqueID() string {
	for {
		id := l.newID()
		if _, used := l.issued[id]; id != "" && !used {
			l.issued[id] = struct{}{}
			return id
		}
	}
}

func (l *Ledger) freshID(seen map[string]struct{}) string {
	for {
		id := l.newID()
		if _, ok := seen[id]; ok {
			continue
		}
		if _, used := l.issued[id]; id != "" && !used {
			l.issued[id] = struct{}{}
			return id
		}
	}
}

// notify ставит событие в outbox. Ошибка только логируется: заказ уже сохранён.
func (l *Ledger) notify(eventType domain.LedgerEventType, rec domain.OrderRecord) {
	if l.outbox == nil {
		return
	}

	payload, err := json.Marshal(domain.LedgerEvent{
		Type:         eventType,
		OrderID:      rec.ID,
		CustomerName: rec.CustomerName,
		Products:     rec.Products,
		Quantities:   rec.Quantities,
		Occurred:     l.now().UTC(),
	})
	if err == nil {
		_, err = l.outbox.Enqueue(domain.OutboxMessage{
			AggregateType: domain.AggregateOrder,
			AggregateID:   rec.ID,
			EventType:     string(eventType),
			Payload:       payload,
		})
	}
	if err != nil {
		l.metrics.RecordNotificationFailure()
		l.logger.WithError(err).WithFields(log.Fields{
			"order_id":   rec.ID,
			"event_type": eventType,
		}).Warn("failed to enqueue ledger event")
	}
}

func (l *Ledger) observe(op string, started time.Time, errp *error) {
	l.metrics.RecordOperation(op, resultOf(*errp), time.Since(started))
	if kind, ok := domain.ValidationKindOf(*errp); ok {
		l.metrics.RecordValidationFailure(string(kind))
	}
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, domain.ErrValidation):
		return metrics.ResultValidation
	case errors.Is(err, domain.ErrOrderNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultPersistence
	}
}
