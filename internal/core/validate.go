package core

// validate.go is the per-cell rule engine.
//
// Every row is evaluated independently, every field in catalog order, and
// at most one error is recorded per field per row: the first failing rule
// wins. Re-running validation fully replaces the previous error set and
// every row's annotation map; nothing is merged incrementally.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cargue/internal/catalog"
)

// invoicePattern is the allowed shape of invoice numbers.
var invoicePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Rule messages. Kept as constants so the web layer and tests agree on
// exact text.
const (
	msgRequired      = "field is required"
	msgInvalidDate   = "invalid date format, use DD/MM/YYYY"
	msgCostPositive  = "must be a number greater than 0"
	msgInvoiceChars  = "only letters, numbers and hyphens are allowed"
	msgQuantityBelow = "quantity cannot be less than minimum quantity"
)

// Limits carries the configurable validation bounds.
type Limits struct {
	QuantityMin int // inclusive lower bound for quantity fields
	QuantityMax int // inclusive upper bound for quantity fields
	YearMin     int // inclusive lower bound for purchase-date years
	YearMax     int // inclusive upper bound for purchase-date years
}

// DefaultLimits returns the stock bounds: quantities 1-1000, years
// 2000-2100.
func DefaultLimits() Limits {
	return Limits{QuantityMin: 1, QuantityMax: 1000, YearMin: 2000, YearMax: 2100}
}

// Validator evaluates canonical rows against the catalog's rules and the
// injected reference sets.
type Validator struct {
	cat    *catalog.Catalog
	refs   *catalog.References
	limits Limits
}

// NewValidator builds a validator over the catalog's field table and
// reference sets.
func NewValidator(cat *catalog.Catalog, limits Limits) *Validator {
	return &Validator{cat: cat, refs: cat.References(), limits: limits}
}

// Validate checks every cell of every row, annotates rows in place and
// returns the flat error list ordered by row index, then catalog column
// order. Idempotent for an unchanged dataset.
func (v *Validator) Validate(rows []*Row) []ValidationError {
	var out []ValidationError
	for i, row := range rows {
		row.resetErrors()
		for _, fd := range v.cat.Fields() {
			msg, example := v.checkField(row, fd)
			if msg == "" {
				continue
			}
			row.setError(fd.Key, msg)
			out = append(out, ValidationError{
				Row:     i,
				Field:   fd.Key,
				Message: msg,
				Example: example,
			})
		}
	}
	return out
}

// checkField applies the rule chain for one cell. The returned example is
// non-empty only for required-field violations, the one place the UI
// shows a sample value.
func (v *Validator) checkField(row *Row, fd catalog.FieldDescriptor) (msg, example string) {
	// Values that survived ingestion as numeric-looking strings become
	// ids before any rule runs.
	if fd.Type == catalog.TypeReference {
		coerceRefID(row.refCell(fd.Key))
	}

	if strings.TrimSpace(row.raw(fd.Key)) == "" {
		if !fd.Required {
			return "", ""
		}
		if fd.Example != nil {
			example = fd.Example()
		}
		return msgRequired, example
	}

	switch fd.Type {
	case catalog.TypeReference:
		return v.checkReference(row, fd), ""
	case catalog.TypeDate:
		return v.checkDate(&row.PurchaseDate), ""
	case catalog.TypeInteger:
		return v.checkInteger(row, fd), ""
	case catalog.TypeCurrency:
		return v.checkCost(row.Cost), ""
	case catalog.TypeText:
		return v.checkText(row, fd), ""
	}
	return "", ""
}

// coerceRefID turns a numeric-looking raw value into an id, in place.
func coerceRefID(cell *RefCell) {
	if cell == nil || cell.IsID {
		return
	}
	if id, err := strconv.Atoi(cell.Raw); err == nil {
		cell.ID = id
		cell.IsID = true
	}
}

func (v *Validator) checkReference(row *Row, fd catalog.FieldDescriptor) string {
	cell := row.refCell(fd.Key)
	set, ok := v.refs.Set(fd.RefSet)
	if !ok {
		// Catalog and reference table disagree; a wiring bug, not user input.
		panic(fmt.Sprintf("catalog field %q names unknown reference set %q", fd.Key, fd.RefSet))
	}
	if !cell.IsID || !set.Contains(cell.ID) {
		return "invalid " + fd.Key + " id"
	}
	return ""
}

// checkDate accepts dates the transformer already parsed (year bounds
// still apply) and re-parses raw survivors under the strict DD/MM/YYYY
// slash format with a round-trip check for impossible dates. An accepted
// survivor is stored back into the cell, like reference ids, so display
// and export always see the parsed date.
func (v *Validator) checkDate(cell *DateCell) string {
	if cell.Parsed {
		if y := cell.Value.Year(); y < v.limits.YearMin || y > v.limits.YearMax {
			return msgInvalidDate
		}
		return ""
	}

	parts := strings.Split(cell.Raw, "/")
	if len(parts) != 3 {
		return msgInvalidDate
	}
	day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errD != nil || errM != nil || errY != nil {
		return msgInvalidDate
	}
	if year < v.limits.YearMin || year > v.limits.YearMax {
		return msgInvalidDate
	}
	t, ok := buildDate(year, month, day)
	if !ok {
		return msgInvalidDate
	}
	cell.Value = t
	cell.Parsed = true
	return ""
}

// checkInteger validates quantity-like fields against the configured
// bounds, and for the quantity field applies the cross-field minimum
// rule when the row's minimum quantity is itself a usable integer.
func (v *Validator) checkInteger(row *Row, fd catalog.FieldDescriptor) string {
	var cell IntCell
	switch fd.Key {
	case catalog.KeyQuantity:
		cell = row.Quantity
	case catalog.KeyMinQuantity:
		cell = row.MinQuantity
	}

	if !cell.Valid || cell.Value < v.limits.QuantityMin || cell.Value > v.limits.QuantityMax {
		return fmt.Sprintf("must be an integer between %d and %d", v.limits.QuantityMin, v.limits.QuantityMax)
	}
	if fd.Key == catalog.KeyQuantity && row.MinQuantity.Valid && cell.Value < row.MinQuantity.Value {
		return msgQuantityBelow
	}
	return ""
}

func (v *Validator) checkCost(cell MoneyCell) string {
	if !cell.Valid || cell.Value <= 0 {
		return msgCostPositive
	}
	return ""
}

// checkText applies the invoice character pattern and the per-field
// length bounds. Pattern violations win over length. The pattern tests
// the stored value as-is: surrounding whitespace is invalid too.
func (v *Validator) checkText(row *Row, fd catalog.FieldDescriptor) string {
	value := row.raw(fd.Key)
	if fd.Key == catalog.KeyInvoice && !invoicePattern.MatchString(value) {
		return msgInvoiceChars
	}
	if fd.MaxLen > 0 && len([]rune(value)) > fd.MaxLen {
		return fmt.Sprintf("must be at most %d characters", fd.MaxLen)
	}
	return ""
}

// DisplayErrors re-keys a flat error list from canonical field keys to
// spreadsheet headers for user-facing presentation.
func DisplayErrors(errs []ValidationError, cat *catalog.Catalog) []ValidationError {
	out := make([]ValidationError, len(errs))
	for i, e := range errs {
		e.Field = cat.Header(e.Field)
		out[i] = e
	}
	return out
}
