// Package export строит документы из записей реестра: CSV, XLSX и DOCX.
// Экспорт только читает записи и ничего не меняет в реестре.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

// Format - вид выгрузки.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatDocxSlip Format = "docx-slip"
	FormatDocxAll  Format = "docx-all"
)

// MIME-типы артефактов.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrUnknownFormat - запрошен неподдерживаемый формат.
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrSingleRecord - ficha строится ровно по одной записи.
	ErrSingleRecord = errors.New("slip export requires exactly one order")
)

// Formats перечисляет поддерживаемые форматы.
func Formats() []Format {
	return []Format{FormatCSV, FormatXLSX, FormatDocxSlip, FormatDocxAll}
}

// ParseFormat разбирает имя формата без учёта регистра.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Artifact - готовый файл выгрузки.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render строит артефакт указанного формата.
func Render(format Format, records []domain.OrderRecord) (Artifact, error) {
	switch format {
	case FormatCSV:
		data, err := CSV(records)
		return Artifact{Name: "pedidos.csv", ContentType: ContentTypeCSV, Data: data}, err
	case FormatXLSX:
		data, err := XLSX(records)
		return Artifact{Name: "pedidos.xlsx", ContentType: ContentTypeXLSX, Data: data}, err
	case FormatDocxSlip:
		if len(records) != 1 {
			return Artifact{}, ErrSingleRecord
		}
		data, err := Slip(records[0])
		return Artifact{Name: SlipFileName(records[0]), ContentType: ContentTypeDOCX, Data: data}, err
	case FormatDocxAll:
		data, err := Consolidated(records)
		return Artifact{Name: "todos_os_pedidos.docx", ContentType: ContentTypeDOCX, Data: data}, err
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// SlipFileName возвращает имя файла фичи заказа.
func SlipFileName(rec domain.OrderRecord) string {
	return "pedido_" + sanitizeFileName(rec.ID) + ".docx"
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
