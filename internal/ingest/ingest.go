// Package ingest reads a binary .xlsx workbook into an untyped row table.
//
// Ingestion is deliberately dumb: it locates the data sheet, checks the
// header row against the field catalog, and extracts everything below it
// as strings. All value interpretation belongs to the transformer and the
// validation engine.
package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"cargue/internal/catalog"
)

// ErrorKind classifies ingestion failures. All of them abort the import;
// nothing reaches the dataset.
type ErrorKind int

const (
	// Unreadable: the payload is not a parseable workbook.
	Unreadable ErrorKind = iota + 1
	// NoValidSheet: neither the first sheet nor the configured target
	// sheet is usable.
	NoValidSheet
	// MissingColumns: the header row lacks required columns.
	MissingColumns
	// NoData: no data rows remain after filtering.
	NoData
)

// Error is the typed ingestion failure. Callers branch on Kind; Missing
// carries the absent headers for MissingColumns.
type Error struct {
	Kind    ErrorKind
	Missing []string
	cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case Unreadable:
		if e.cause != nil {
			return fmt.Sprintf("unreadable workbook: %v", e.cause)
		}
		return "unreadable workbook"
	case NoValidSheet:
		return "no valid sheet with the required layout"
	case MissingColumns:
		return "missing required columns: " + strings.Join(e.Missing, ", ")
	case NoData:
		return "no data rows found in the sheet"
	default:
		return "ingest error"
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Record is one extracted row, keyed by the required spreadsheet headers.
// Every key is present; absent cells are empty strings.
type Record map[string]string

// Table is the ordered result of ingestion.
type Table struct {
	Sheet   string
	Records []Record
}

// Options configures sheet and header location.
type Options struct {
	// TargetSheet is the fallback sheet name when the first sheet is
	// unusable (default "Hoja_Cargue").
	TargetSheet string
	// HeaderRow is the 0-based index of the header row (default 5,
	// i.e. the 6th row of the source layout).
	HeaderRow int
}

// DefaultOptions returns the source-layout defaults.
func DefaultOptions() Options {
	return Options{TargetSheet: "Hoja_Cargue", HeaderRow: 5}
}

// Read parses workbook bytes into a Table. It is deterministic for
// identical bytes and options, and has no side effects. All failures are
// *Error values.
func Read(data []byte, cat *catalog.Catalog, opts Options) (*Table, error) {
	if opts.TargetSheet == "" {
		opts.TargetSheet = "Hoja_Cargue"
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: Unreadable, cause: err}
	}
	defer f.Close()

	sheet, err := pickSheet(f, opts.TargetSheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &Error{Kind: Unreadable, cause: err}
	}

	required := cat.Headers()
	if err := checkHeaders(rows, opts.HeaderRow, required); err != nil {
		return nil, err
	}

	records := extract(rows, opts.HeaderRow, required)
	// The source layout repeats the header text as the first data row;
	// drop that artifact. Fewer than two remaining rows means the sheet
	// holds nothing but the artifact (or less).
	if len(records) < 2 {
		return nil, &Error{Kind: NoData}
	}
	return &Table{Sheet: sheet, Records: records[1:]}, nil
}

// pickSheet returns the first sheet when it has a defined cell range,
// otherwise falls back to the configured target sheet.
func pickSheet(f *excelize.File, target string) (string, error) {
	first := f.GetSheetName(0)
	if first != "" && sheetUsable(f, first) {
		return first, nil
	}
	for _, name := range f.GetSheetList() {
		if name == target {
			return name, nil
		}
	}
	return "", &Error{Kind: NoValidSheet}
}

// sheetUsable reports whether the sheet has a defined cell range beyond a
// single empty origin cell.
func sheetUsable(f *excelize.File, sheet string) bool {
	dim, err := f.GetSheetDimension(sheet)
	return err == nil && dim != "" && dim != "A1"
}

// checkHeaders validates the row at headerRow against the required
// headers, order-insensitively.
func checkHeaders(rows [][]string, headerRow int, required []string) error {
	present := make(map[string]bool)
	if headerRow < len(rows) {
		for _, cell := range rows[headerRow] {
			if h := catalog.NormalizeHeader(cell); h != "" {
				present[h] = true
			}
		}
	}

	var missing []string
	for _, h := range required {
		if !present[catalog.NormalizeHeader(h)] {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return &Error{Kind: MissingColumns, Missing: missing}
	}
	return nil
}

// extract reads every row below the header into records keyed by the
// required headers in column order, coercing cells to strings and
// dropping rows that are empty in every field.
func extract(rows [][]string, headerRow int, required []string) []Record {
	var out []Record
	for r := headerRow + 1; r < len(rows); r++ {
		row := rows[r]
		rec := make(Record, len(required))
		empty := true
		for i, header := range required {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			rec[header] = val
			if strings.TrimSpace(val) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		out = append(out, rec)
	}
	return out
}
