package export

import (
	"bytes"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
)

// CSVOptions - формат выгрузки для таблиц: точка с запятой, чтобы ", " внутри ячеек не мешал.
func CSVOptions() tabular.Options {
	return tabular.Options{Comma: ';', IncludeAddress: true}
}

// CSV выгружает записи в тех же колонках, что и основное хранилище.
func CSV(records []domain.OrderRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := tabular.Encode(&buf, records, CSVOptions()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
