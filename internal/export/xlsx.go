package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
)

// SheetName - лист с заказами.
const SheetName = "Pedidos"

var columnWidths = map[string]float64{
	tabular.ColumnID:           38,
	tabular.ColumnCustomerName: 28,
	tabular.ColumnAddress:      36,
	tabular.ColumnProducts:     40,
	tabular.ColumnQuantities:   16,
	tabular.ColumnCreatedAt:    20,
}

// XLSX строит книгу с одним листом: заголовок и по строке на заказ.
func XLSX(records []domain.OrderRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	columns := tabular.Columns(tabular.DefaultOptions())
	header := make([]any, len(columns))
	for i, name := range columns {
		header[i] = name
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, columnWidths[name]); err != nil {
			return nil, fmt.Errorf("set width for %s: %w", name, err)
		}
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, rec := range records {
		row := tabular.RowFromRecord(rec)
		values := []any{row.ID, row.CustomerName, row.Address, row.Products, row.Quantities, row.CreatedAt}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write order %s: %w", rec.ID, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
