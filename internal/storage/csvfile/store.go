// Package csvfile хранит таблицу заказов в CSV-файле на диске.
package csvfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
)

const filePerm = 0o644

// Store читает и пишет таблицу заказов целиком.
// Запись идёт во временный файл рядом с основным и заменяет его через rename.
type Store struct {
	path   string
	opts   tabular.Options
	logger *log.Entry
}

// New создаёт файловое хранилище. Файл может ещё не существовать.
func New(path string, opts tabular.Options, logger *log.Entry) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("csv storage path is required")
	}
	if logger == nil {
		logger = log.WithField("component", "csv-store")
	}
	return &Store{path: path, opts: opts, logger: logger.WithField("path", path)}, nil
}

// Path возвращает путь к файлу таблицы.
func (s *Store) Path() string {
	return s.path
}

// Load читает таблицу. Отсутствующий или пустой файл - пустой реестр.
func (s *Store) Load(_ context.Context) ([]domain.OrderRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("orders file does not exist yet, starting empty")
		return []domain.OrderRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open orders file: %w", err)
	}
	defer f.Close()

	records, err := tabular.Decode(bufio.NewReader(f), s.opts)
	if err != nil {
		return nil, fmt.Errorf("decode orders file: %w", err)
	}
	return records, nil
}

// Save атомарно заменяет файл: при ошибке прежний файл остаётся нетронутым.
func (s *Store) Save(_ context.Context, records []domain.OrderRecord) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create orders dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = tabular.Encode(w, records, s.opts); err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err = tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace orders file: %w", err)
	}

	s.logger.WithField("records", len(records)).Debug("orders file saved")
	return nil
}

// Ping проверяет, что каталог таблицы существует или может быть создан.
func (s *Store) Ping(_ context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat orders dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("orders dir %s is not a directory", dir)
	}
	return nil
}

var _ domain.SnapshotStore = (*Store)(nil)
