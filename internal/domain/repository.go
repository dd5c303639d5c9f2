package domain

import "context"

// SnapshotStore хранит таблицу заказов целиком.
// Save заменяет таблицу атомарно: после ошибки прежнее содержимое остаётся доступным.
type SnapshotStore interface {
	// Load возвращает все записи в порядке реестра. Отсутствующий источник - пустой результат без ошибки.
	Load(ctx context.Context) ([]OrderRecord, error)
	// Save перезаписывает таблицу переданным набором записей.
	Save(ctx context.Context, records []OrderRecord) error
	// Ping проверяет доступность хранилища для health checks.
	Ping(ctx context.Context) error
}
