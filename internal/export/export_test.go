package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

func sampleOrders() []domain.OrderRecord {
	created := time.Date(2025, 3, 14, 9, 30, 5, 0, time.UTC)
	return []domain.OrderRecord{
		{
			ID:           "order-1",
			CustomerName: "Ana & Filhos",
			Address:      "Rua das Flores, 10",
			Products:     []string{"Pão", "Bolo"},
			Quantities:   []int{2, 1},
			CreatedAt:    created,
		},
		{
			ID:           "order-2",
			CustomerName: "João",
			Products:     []string{"Queijo"},
			Quantities:   []int{3},
			CreatedAt:    created.Add(time.Hour),
		},
	}
}

func documentXML(t *testing.T, data []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool)
	var body string
	for _, f := range zr.File {
		names[f.Name] = true
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		body = string(raw)
	}
	for _, part := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml", "word/document.xml"} {
		require.True(t, names[part], "missing part %s", part)
	}
	return body
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRender_CSVUsesSemicolon(t *testing.T) {
	artifact, err := Render(FormatCSV, sampleOrders())
	require.NoError(t, err)

	assert.Equal(t, "pedidos.csv", artifact.Name)
	assert.Equal(t, ContentTypeCSV, artifact.ContentType)

	lines := strings.Split(strings.TrimSpace(string(artifact.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id;customerName;address;products;quantities;createdAt", lines[0])
	assert.Equal(t, "order-1;Ana & Filhos;Rua das Flores, 10;Pão, Bolo;2, 1;2025-03-14 09:30:05", lines[1])
}

func TestRender_XLSX(t *testing.T) {
	artifact, err := Render(FormatXLSX, sampleOrders())
	require.NoError(t, err)
	assert.Equal(t, "pedidos.xlsx", artifact.Name)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "customerName", "address", "products", "quantities", "createdAt"}, rows[0])
	assert.Equal(t, "Pão, Bolo", rows[1][3])
	assert.Equal(t, "2, 1", rows[1][4])
	assert.Equal(t, "João", rows[2][1])
}

func TestRender_XLSXEmptyLedger(t *testing.T) {
	artifact, err := Render(FormatXLSX, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRender_Slip(t *testing.T) {
	orders := sampleOrders()

	artifact, err := Render(FormatDocxSlip, orders[:1])
	require.NoError(t, err)
	assert.Equal(t, "pedido_order-1.docx", artifact.Name)
	assert.Equal(t, ContentTypeDOCX, artifact.ContentType)

	body := documentXML(t, artifact.Data)
	assert.Contains(t, body, "Ficha do Pedido - Cliente Ana &amp; Filhos")
	assert.Contains(t, body, "Data: 2025-03-14 09:30:05")
	assert.Contains(t, body, "<w:tbl")
	assert.Contains(t, body, ">Pão<")
	assert.Contains(t, body, ">Bolo<")
	assert.Contains(t, body, ">Total<")
	assert.Contains(t, body, ">3<")

	_, err = Render(FormatDocxSlip, orders)
	assert.ErrorIs(t, err, ErrSingleRecord)
	_, err = Render(FormatDocxSlip, nil)
	assert.ErrorIs(t, err, ErrSingleRecord)
}

func TestRender_Consolidated(t *testing.T) {
	artifact, err := Render(FormatDocxAll, sampleOrders())
	require.NoError(t, err)
	assert.Equal(t, "todos_os_pedidos.docx", artifact.Name)

	body := documentXML(t, artifact.Data)
	assert.Contains(t, body, consolidatedTitle)
	assert.Contains(t, body, "Pedido #1")
	assert.Contains(t, body, "Pedido #2")
	assert.Contains(t, body, "Produtos: Pão, Bolo")
	assert.Contains(t, body, "Quantidades: 2, 1")
	assert.Less(t, strings.Index(body, "Pedido #1"), strings.Index(body, "Pedido #2"))
}

func TestRender_ConsolidatedEmpty(t *testing.T) {
	artifact, err := Render(FormatDocxAll, nil)
	require.NoError(t, err)
	assert.Contains(t, documentXML(t, artifact.Data), "Nenhum pedido registrado.")
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render(Format("pdf"), sampleOrders())
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestSlipFileName_Sanitizes(t *testing.T) {
	assert.Equal(t, "pedido_a_b_c.docx", SlipFileName(domain.OrderRecord{ID: "a/b c"}))
}

func TestWriteSlips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fichas")

	paths, err := WriteSlips(context.Background(), dir, sampleOrders())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "pedido_order-1.docx"), paths[0])
	assert.Equal(t, filepath.Join(dir, "pedido_order-2.docx"), paths[1])

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Contains(t, documentXML(t, data), "Ficha do Pedido")
	}
}

func TestWriteSlips_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := WriteSlips(ctx, t.TempDir(), sampleOrders())
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, paths)
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteArtifact(dir, Artifact{Name: "pedidos.csv", Data: []byte("x")})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
