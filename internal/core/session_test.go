package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cargue/internal/catalog"
	"cargue/internal/ingest"
)

// buildWorkbook writes the source layout in memory: header row at index 5
// followed by the duplicated-header artifact row, then the data rows.
func buildWorkbook(t *testing.T, records []ingest.Record) []byte {
	t.Helper()
	cat := testCatalog()
	headers := cat.Headers()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Hoja_Cargue"))
	require.NoError(t, f.SetCellValue("Hoja_Cargue", "A1", "FORMATO CARGUE DE CONSUMIBLES"))

	writeRow := func(excelRow int, values []string) {
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		start, err := excelize.CoordinatesToCellName(1, excelRow)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Hoja_Cargue", start, &cells))
	}

	writeRow(6, headers)
	writeRow(7, headers) // duplicated-header artifact row
	for i, rec := range records {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = rec[h]
		}
		writeRow(8+i, row)
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newTestSession() *Session {
	return NewSession(testCatalog(), SessionOptions{})
}

func TestSessionLoadFile(t *testing.T) {
	s := newTestSession()
	data := buildWorkbook(t, []ingest.Record{
		record(nil),
		record(map[string]string{"NOMBRE": "Tuerca M8", "CATEGORIA": "99", "NUMERO DE FACTURA": "FAC#002"}),
	})

	summary, err := s.LoadFile("cargue.xlsx", data)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.DatasetID)
	assert.Equal(t, "Hoja_Cargue", summary.Sheet)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 1, summary.ErrorRows)

	require.True(t, s.Loaded())
	assert.Equal(t, summary.DatasetID, s.ID())
	require.Len(t, s.Rows(), 2)

	// Row 0 is clean, row 1 carries exactly the category and invoice errors.
	errs := s.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, 1, errs[0].Row)
	assert.Equal(t, catalog.KeyCategory, errs[0].Field)
	assert.Equal(t, 1, errs[1].Row)
	assert.Equal(t, catalog.KeyInvoice, errs[1].Field)
	assert.False(t, s.Rows()[0].HasErrors())

	display := s.DisplayErrors()
	assert.Equal(t, "CATEGORIA", display[0].Field)
	assert.Equal(t, "NUMERO DE FACTURA", display[1].Field)

	byRow := s.ErrorsByRow()
	assert.Equal(t, 1, byRow.RowCount())
	assert.True(t, byRow.HasRow(1))
}

func TestSessionRejectsUnknownExtension(t *testing.T) {
	s := newTestSession()

	_, err := s.LoadFile("cargue.csv", []byte("a,b,c"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file type ".csv"`)
	assert.False(t, s.Loaded())
}

func TestSessionKeepsStateOnFailedLoad(t *testing.T) {
	s := newTestSession()
	data := buildWorkbook(t, []ingest.Record{record(nil)})

	summary, err := s.LoadFile("cargue.xlsx", data)
	require.NoError(t, err)
	id := summary.DatasetID

	_, err = s.LoadFile("roto.xlsx", []byte("garbage"))
	require.Error(t, err)

	assert.True(t, s.Loaded())
	assert.Equal(t, id, s.ID())
	assert.Len(t, s.Rows(), 1)
}

func TestSessionReloadReplacesDataset(t *testing.T) {
	s := newTestSession()

	first, err := s.LoadFile("a.xlsx", buildWorkbook(t, []ingest.Record{record(nil)}))
	require.NoError(t, err)

	second, err := s.LoadFile("b.xlsx", buildWorkbook(t, []ingest.Record{
		record(nil),
		record(map[string]string{"NOMBRE": "Tuerca"}),
	}))
	require.NoError(t, err)

	assert.NotEqual(t, first.DatasetID, second.DatasetID)
	assert.Len(t, s.Rows(), 2)
}

func TestExportUsesValidatorParsedDate(t *testing.T) {
	s := newTestSession()
	_, err := s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{record(nil)}))
	require.NoError(t, err)

	// A date only the validator's DD/MM/YYYY re-parse accepts must still
	// export as the parsed date, not a zero time.
	require.NoError(t, s.CommitCell(0, catalog.KeyPurchaseDate, "+1/01/2025"))
	require.True(t, s.Ready())

	records, err := s.Export()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "01/01/2025", records[0].PurchaseDate)
}

func TestSessionClear(t *testing.T) {
	s := newTestSession()
	_, err := s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{record(nil)}))
	require.NoError(t, err)

	s.Clear()

	assert.False(t, s.Loaded())
	assert.Empty(t, s.ID())
	assert.Nil(t, s.Summary())
	assert.Nil(t, s.Rows())
	assert.Empty(t, s.Errors())
	assert.False(t, s.Ready())
}

func TestEditFixesValidationError(t *testing.T) {
	s := newTestSession()
	_, err := s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{
		record(map[string]string{"CANTIDAD": "5", "CANTIDAD MINIMA": "10"}),
		record(map[string]string{"NOMBRE": "Tuerca"}),
	}))
	require.NoError(t, err)
	require.Len(t, s.Errors(), 1)

	require.NoError(t, s.CommitCell(0, catalog.KeyQuantity, "20"))

	assert.Empty(t, s.Errors())
	assert.Equal(t, 20, s.Rows()[0].Quantity.Value)
	// The untouched row is unaffected.
	assert.Equal(t, "Tuerca", s.Rows()[1].Name)
}

func TestEditIntroducesValidationError(t *testing.T) {
	s := newTestSession()
	_, err := s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{record(nil)}))
	require.NoError(t, err)
	require.Empty(t, s.Errors())

	require.NoError(t, s.CommitCell(0, catalog.KeyPurchaseDate, "31/04/2025"))

	errs := s.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, catalog.KeyPurchaseDate, errs[0].Field)
	assert.Equal(t, "invalid date format, use DD/MM/YYYY", errs[0].Message)
}

func TestEditCursorLifecycle(t *testing.T) {
	s := newTestSession()
	_, err := s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{record(nil)}))
	require.NoError(t, err)

	require.NoError(t, s.StartEdit(0, catalog.KeyName))
	cursor := s.Cursor()
	require.NotNil(t, cursor)
	assert.Equal(t, EditCursor{Row: 0, Field: catalog.KeyName}, *cursor)

	require.NoError(t, s.SetValue("Tornillo M10"))
	require.NoError(t, s.FinishEdit())

	assert.Nil(t, s.Cursor())
	assert.Equal(t, "Tornillo M10", s.Rows()[0].Name)
}

func TestStartEditCommitsOpenEdit(t *testing.T) {
	s := newTestSession()
	_, err := s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{
		record(map[string]string{"NUMERO DE FACTURA": "FAC#002"}),
	}))
	require.NoError(t, err)
	require.Len(t, s.Errors(), 1)

	var commits []string
	s.OnCommit(func(row int, field string) { commits = append(commits, field) })

	require.NoError(t, s.StartEdit(0, catalog.KeyInvoice))
	require.NoError(t, s.SetValue("FAC-2025-002"))

	// Switching cells commits the open edit first.
	require.NoError(t, s.StartEdit(0, catalog.KeyName))

	assert.Empty(t, s.Errors())
	assert.Equal(t, []string{catalog.KeyInvoice}, commits)
	cursor := s.Cursor()
	require.NotNil(t, cursor)
	assert.Equal(t, catalog.KeyName, cursor.Field)

	s.CancelEdit()
	assert.Nil(t, s.Cursor())
}

func TestCancelEditKeepsValueAndRevalidates(t *testing.T) {
	s := newTestSession()
	_, err := s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{record(nil)}))
	require.NoError(t, err)

	var commits int
	s.OnCommit(func(int, string) { commits++ })

	require.NoError(t, s.StartEdit(0, catalog.KeyQuantity))
	require.NoError(t, s.SetValue("0"))
	s.CancelEdit()

	// The written value stays and its error surfaces, but the commit
	// callback does not fire.
	require.Len(t, s.Errors(), 1)
	assert.Equal(t, catalog.KeyQuantity, s.Errors()[0].Field)
	assert.Zero(t, commits)

	// Cancel while idle is a no-op.
	s.CancelEdit()
}

func TestEditErrors(t *testing.T) {
	s := newTestSession()

	assert.ErrorIs(t, s.StartEdit(0, catalog.KeyName), ErrNoDataset)

	_, err := s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{record(nil)}))
	require.NoError(t, err)

	err = s.StartEdit(5, catalog.KeyName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = s.StartEdit(-1, catalog.KeyName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = s.StartEdit(0, "no-such-field")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown catalog field")

	assert.ErrorIs(t, s.SetValue("x"), ErrNoEdit)
	assert.ErrorIs(t, s.FinishEdit(), ErrNoEdit)
}

func TestExport(t *testing.T) {
	s := newTestSession()

	_, err := s.Export()
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = s.LoadFile("cargue.xlsx", buildWorkbook(t, []ingest.Record{
		record(nil),
		record(map[string]string{"CATEGORIA": "99"}),
	}))
	require.NoError(t, err)
	assert.False(t, s.Ready())

	_, err = s.Export()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit blocked: 1 validation errors")

	require.NoError(t, s.CommitCell(1, catalog.KeyCategory, "3"))
	require.True(t, s.Ready())

	records, err := s.Export()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, Consumable{
		Name:         "Tornillo hexagonal M8",
		Category:     1,
		Quantity:     10,
		MinQuantity:  2,
		Manufacturer: 1,
		Model:        "THX-M8-50",
		Supplier:     1,
		Invoice:      "FAC-2025-001",
		Cost:         1500.5,
		PurchaseDate: "01/01/2025",
		Notes:        "importación inicial",
	}, records[0])
	assert.Equal(t, 3, records[1].Category)
}
