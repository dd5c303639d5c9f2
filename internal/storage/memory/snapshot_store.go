package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
)

// SnapshotStore держит таблицу заказов в памяти в том же табличном виде, что и файл.
// Используется для локальной разработки и тестов.
type SnapshotStore struct {
	mu      sync.RWMutex
	data    []byte
	opts    tabular.Options
	saveErr error
	saves   int
}

// NewSnapshotStore создаёт пустое in-memory хранилище.
func NewSnapshotStore(opts tabular.Options) *SnapshotStore {
	return &SnapshotStore{opts: opts}
}

// Load декодирует сохранённую таблицу. Пока ничего не сохранено, возвращает пустой набор.
func (s *SnapshotStore) Load(_ context.Context) ([]domain.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return tabular.Decode(bytes.NewReader(s.data), s.opts)
}

// Save кодирует набор целиком и заменяет сохранённую таблицу только при успехе.
func (s *SnapshotStore) Save(_ context.Context, records []domain.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}

	var buf bytes.Buffer
	if err := tabular.Encode(&buf, records, s.opts); err != nil {
		return err
	}
	s.data = buf.Bytes()
	s.saves++
	return nil
}

// Ping всегда успешен для in-memory хранилища.
func (s *SnapshotStore) Ping(_ context.Context) error {
	return nil
}

// SetSaveError заставляет последующие Save возвращать err (nil снимает сбой).
func (s *SnapshotStore) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Bytes возвращает копию сохранённой таблицы.
func (s *SnapshotStore) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// SaveCount возвращает число успешных сохранений.
func (s *SnapshotStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)
