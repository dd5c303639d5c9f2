package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
)

const (
	consolidatedTitle = "Todos os Pedidos - Sabor da Feira"
	separator         = "---------------------------"
	slipTableStyle    = "LightList-Accent1"
)

// Slip строит фичу одного заказа: заголовок, реквизиты и таблицу продукт/количество.
func Slip(rec domain.OrderRecord) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new docx: %w", err)
	}
	if _, err := doc.AddHeading("Ficha do Pedido - Cliente "+rec.CustomerName, 1); err != nil {
		return nil, fmt.Errorf("add heading: %w", err)
	}
	doc.AddParagraph("Data: " + tabular.FormatTime(rec.CreatedAt))
	doc.AddParagraph("Cliente: " + rec.CustomerName)
	doc.AddParagraph("Endereço: " + rec.Address)
	doc.AddParagraph("Pedido: " + rec.ID)

	table := doc.AddTable()
	table.Style(slipTableStyle)
	addRow(table, "Produto", "Quantidade")
	for _, line := range rec.Lines() {
		addRow(table, line.Product, strconv.Itoa(line.Quantity))
	}
	addRow(table, "Total", strconv.Itoa(rec.TotalUnits()))

	return pack(doc)
}

// Consolidated строит один документ со всеми заказами в порядке реестра.
func Consolidated(records []domain.OrderRecord) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new docx: %w", err)
	}
	if _, err := doc.AddHeading(consolidatedTitle, 0); err != nil {
		return nil, fmt.Errorf("add heading: %w", err)
	}
	if len(records) == 0 {
		doc.AddParagraph("Nenhum pedido registrado.")
	}
	for i, rec := range records {
		row := tabular.RowFromRecord(rec)
		doc.AddParagraph(separator)
		doc.AddParagraph(fmt.Sprintf("Pedido #%d", i+1))
		doc.AddParagraph("Data: " + row.CreatedAt)
		doc.AddParagraph("Cliente: " + row.CustomerName)
		doc.AddParagraph("Endereço: " + row.Address)
		doc.AddParagraph("Produtos: " + row.Products)
		doc.AddParagraph("Quantidades: " + row.Quantities)
	}
	return pack(doc)
}

func addRow(table *docx.Table, cells ...string) {
	row := table.AddRow()
	for _, text := range cells {
		row.AddCell().AddParagraph(text)
	}
}

func pack(doc *docx.RootDoc) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}
