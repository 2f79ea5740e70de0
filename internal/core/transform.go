package core

// transform.go converts untyped ingest records into canonical rows.
//
// The transformer is total: malformed values degrade to type-appropriate
// defaults instead of erroring, so the validation engine stays the single
// source of "this value is wrong". Raw cell text is preserved alongside
// every coerced value.

import (
	"math"
	"strconv"
	"strings"
	"time"

	"cargue/internal/catalog"
	"cargue/internal/ingest"
)

// dateLayouts are tried in order for direct date parsing. The source
// workbooks write dates day-first; ISO shows up when cells were typed by
// hand.
var dateLayouts = []string{"02/01/2006", "2/1/2006", "2006-01-02"}

// Transform converts an ingested table into canonical rows, in the same
// order. It never fails.
func Transform(t *ingest.Table, cat *catalog.Catalog) []*Row {
	rows := make([]*Row, 0, len(t.Records))
	for _, rec := range t.Records {
		row := &Row{}
		for _, fd := range cat.Fields() {
			applyRaw(row, fd, rec[fd.Header])
		}
		rows = append(rows, row)
	}
	return rows
}

// applyRaw coerces one raw cell into its field on the row. It is also the
// write path for edit commits, so a single coercion policy covers both
// the initial import and later corrections.
func applyRaw(row *Row, fd catalog.FieldDescriptor, raw string) {
	switch fd.Key {
	case catalog.KeyName:
		row.Name = raw
	case catalog.KeyModel:
		row.Model = raw
	case catalog.KeyInvoice:
		row.Invoice = raw
	case catalog.KeyNotes:
		row.Notes = raw
	case catalog.KeyQuantity:
		row.Quantity = coerceInt(raw)
	case catalog.KeyMinQuantity:
		row.MinQuantity = coerceInt(raw)
	case catalog.KeyCost:
		row.Cost = coerceMoney(raw)
	case catalog.KeyPurchaseDate:
		row.PurchaseDate = coerceDate(raw)
	case catalog.KeyCategory, catalog.KeyManufacturer, catalog.KeySupplier:
		*row.refCell(fd.Key) = RefCell{Raw: strings.TrimSpace(raw)}
	}
}

// coerceInt parses an integer, defaulting to zero on anything that is not
// a whole number. The raw text is kept for requiredness detection.
func coerceInt(raw string) IntCell {
	cell := IntCell{Raw: strings.TrimSpace(raw)}
	f, err := strconv.ParseFloat(cell.Raw, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return cell
	}
	cell.Value = int(f)
	cell.Valid = true
	return cell
}

// coerceMoney parses the decimal cost value, defaulting to zero.
func coerceMoney(raw string) MoneyCell {
	cell := MoneyCell{Raw: strings.TrimSpace(raw)}
	f, err := strconv.ParseFloat(cell.Raw, 64)
	if err != nil {
		return cell
	}
	cell.Value = f
	cell.Valid = true
	return cell
}

// coerceDate interprets a date cell. Direct day-first parsing is tried
// first; failing that, the value is split on "-" or "/" and read as
// [year, month, day], promoting two-digit years past 2000. Values that
// survive neither stay as raw text for validation to flag.
func coerceDate(raw string) DateCell {
	cell := DateCell{Raw: strings.TrimSpace(raw)}
	if cell.Raw == "" {
		return cell
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell.Raw); err == nil {
			cell.Value = t
			cell.Parsed = true
			return cell
		}
	}

	parts := strings.FieldsFunc(cell.Raw, func(r rune) bool {
		return r == '-' || r == '/'
	})
	if len(parts) != 3 {
		return cell
	}
	year, errY := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	day, errD := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errY != nil || errM != nil || errD != nil {
		return cell
	}
	if year < 100 {
		year += 2000
	}
	if t, ok := buildDate(year, month, day); ok {
		cell.Value = t
		cell.Parsed = true
	}
	return cell
}

// buildDate constructs a calendar date, rejecting impossible component
// combinations (time.Date would silently normalize them).
func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
