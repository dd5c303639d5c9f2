package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
)

// SnapshotStore хранит таблицу заказов в таблице orders.
// Ячейки продуктов и количеств лежат в том же текстовом виде, что и в CSV.
type SnapshotStore struct {
	store *Store
}

// NewSnapshotStore создаёт хранилище снимков поверх подключения.
func NewSnapshotStore(store *Store) *SnapshotStore {
	return &SnapshotStore{store: store}
}

// Load читает заказы в порядке position и валидирует каждую строку.
func (s *SnapshotStore) Load(ctx context.Context) ([]domain.OrderRecord, error) {
	if s.store == nil || s.store.db == nil {
		return nil, errNotInitialized
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, customer_name, address, products, quantities, created_at
		FROM orders
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	records := make([]domain.OrderRecord, 0)
	for rows.Next() {
		var (
			row     tabular.Row
			created time.Time
		)
		if err := rows.Scan(&row.ID, &row.CustomerName, &row.Address, &row.Products, &row.Quantities, &created); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		row.CreatedAt = tabular.FormatTime(created)

		rec, err := row.Record()
		if err != nil {
			return nil, fmt.Errorf("%w: order %s: %v", domain.ErrCorruptSnapshot, row.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return records, nil
}

// Save заменяет содержимое таблицы orders в одной транзакции.
func (s *SnapshotStore) Save(ctx context.Context, records []domain.OrderRecord) (err error) {
	if s.store == nil || s.store.db == nil {
		return errNotInitialized
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO orders (id, position, customer_name, address, products, quantities, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert order: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		row := tabular.RowFromRecord(rec)
		if _, err = stmt.ExecContext(ctx,
			row.ID, i, row.CustomerName, row.Address, row.Products, row.Quantities, rec.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert order %s: %w", rec.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

// Ping проверяет соединение с базой.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)
