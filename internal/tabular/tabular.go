// Package tabular кодирует реестр заказов в табличную форму (CSV с заголовком).
//
// Списки продуктов и количеств хранятся в одной ячейке через ", ".
// Чтение опирается на заголовок: порядок колонок произвольный,
// необязательные колонки (id, address) могут отсутствовать.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

// Имена колонок сохранённой таблицы.
const (
	ColumnID           = "id"
	ColumnCustomerName = "customerName"
	ColumnAddress      = "address"
	ColumnProducts     = "products"
	ColumnQuantities   = "quantities"
	ColumnCreatedAt    = "createdAt"
)

// TimeLayout - формат createdAt: YYYY-MM-DD HH:MM:SS в UTC.
const TimeLayout = "2006-01-02 15:04:05"

const utf8BOM = "\ufeff"

// ErrMissingColumn - в заголовке нет обязательной колонки.
var ErrMissingColumn = errors.New("required column is missing")

// Options управляет форматом таблицы.
type Options struct {
	// Comma - разделитель ячеек. Ноль означает ','.
	Comma rune
	// IncludeAddress включает колонку address при записи.
	IncludeAddress bool
}

// DefaultOptions - формат основного хранилища: запятая, колонка адреса включена.
func DefaultOptions() Options {
	return Options{Comma: ',', IncludeAddress: true}
}

func (o Options) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

// Columns возвращает заголовок в каноническом порядке.
func Columns(opts Options) []string {
	cols := []string{ColumnID, ColumnCustomerName}
	if opts.IncludeAddress {
		cols = append(cols, ColumnAddress)
	}
	return append(cols, ColumnProducts, ColumnQuantities, ColumnCreatedAt)
}

// Row - строка таблицы в текстовом виде, как она лежит в хранилище.
type Row struct {
	ID           string
	CustomerName string
	Address      string
	Products     string
	Quantities   string
	CreatedAt    string
}

// RowFromRecord переводит запись в текстовые ячейки.
func RowFromRecord(rec domain.OrderRecord) Row {
	return Row{
		ID:           rec.ID,
		CustomerName: rec.CustomerName,
		Address:      rec.Address,
		Products:     domain.JoinList(rec.Products),
		Quantities:   QuantitiesCell(rec.Quantities),
		CreatedAt:    FormatTime(rec.CreatedAt),
	}
}

// Record разбирает ячейки и прогоняет их через ту же валидацию, что и Create.
// ID может быть пустым: его назначает реестр при загрузке.
func (r Row) Record() (domain.OrderRecord, error) {
	candidate := domain.ParseCandidate(r.CustomerName, r.Address, r.Products, r.Quantities)
	valid, err := candidate.Validate()
	if err != nil {
		return domain.OrderRecord{}, err
	}
	createdAt, err := ParseTime(r.CreatedAt)
	if err != nil {
		return domain.OrderRecord{}, err
	}
	return domain.OrderRecord{
		ID:           strings.TrimSpace(r.ID),
		CustomerName: valid.CustomerName,
		Address:      valid.Address,
		Products:     valid.Products,
		Quantities:   valid.Quantities,
		CreatedAt:    createdAt,
	}, nil
}

func (r Row) cells(opts Options) []string {
	cells := []string{r.ID, r.CustomerName}
	if opts.IncludeAddress {
		cells = append(cells, r.Address)
	}
	return append(cells, r.Products, r.Quantities, r.CreatedAt)
}

// QuantitiesCell склеивает количества тем же разделителем, что и продукты.
func QuantitiesCell(quantities []int) string {
	parts := make([]string, len(quantities))
	for i, q := range quantities {
		parts[i] = strconv.Itoa(q)
	}
	return domain.JoinList(parts)
}

// FormatTime форматирует момент создания для таблицы.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime разбирает createdAt, записанный FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", ColumnCreatedAt, err)
	}
	return t, nil
}

// Encode пишет заголовок и по строке на запись. Пустой набор даёт только заголовок.
func Encode(w io.Writer, records []domain.OrderRecord, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = opts.comma()

	if err := cw.Write(Columns(opts)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(RowFromRecord(rec).cells(opts)); err != nil {
			return fmt.Errorf("write order %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

// Decode читает таблицу. Пустой источник даёт пустой набор без ошибки.
// Строка, нарушающая инварианты заказа, возвращает ErrCorruptSnapshot с номером строки.
func Decode(r io.Reader, opts Options) ([]domain.OrderRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.comma()
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.OrderRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColumnCustomerName, ColumnProducts, ColumnQuantities, ColumnCreatedAt} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	records := make([]domain.OrderRecord, 0)
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if isBlank(cells) {
			continue
		}

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(cells) {
				return ""
			}
			return cells[i]
		}
		row := Row{
			ID:           cell(ColumnID),
			CustomerName: cell(ColumnCustomerName),
			Address:      cell(ColumnAddress),
			Products:     cell(ColumnProducts),
			Quantities:   cell(ColumnQuantities),
			CreatedAt:    cell(ColumnCreatedAt),
		}
		rec, err := row.Record()
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrCorruptSnapshot, line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
