// Package core implements the consumable import pipeline: raw-table
// transformation into typed rows, the validation engine, the error index
// and the edit session. It has no HTTP or UI dependencies.
package core

import (
	"time"

	"cargue/internal/catalog"
)

// IntCell holds an integer field together with the raw spreadsheet text
// it came from. Value is 0-defaulted when Raw does not parse; Valid marks
// whether Raw parses as an integer. Raw is kept so that requiredness can
// be told apart from an explicit zero.
type IntCell struct {
	Raw   string
	Value int
	Valid bool
}

// MoneyCell holds the decimal currency field (cost).
type MoneyCell struct {
	Raw   string
	Value float64
	Valid bool
}

// DateCell holds the purchase date. Parsed marks whether the transformer
// managed to interpret Raw; when it did not, Raw carries the original
// trimmed text for the validation engine to flag.
type DateCell struct {
	Raw    string
	Value  time.Time
	Parsed bool
}

// RefCell holds a bounded-reference field (category, manufacturer,
// supplier). The transformer stores whatever was present; the validation
// engine coerces numeric-looking values to ids in place.
type RefCell struct {
	Raw  string
	ID   int
	IsID bool
}

// Row is the canonical shape of one imported consumable record. Fields
// are fixed by the catalog; nothing untyped crosses the transformer
// boundary. Rows are mutated in place by edits and never reordered, so a
// row's index in the dataset is its stable identity.
type Row struct {
	Name         string
	Category     RefCell
	Quantity     IntCell
	MinQuantity  IntCell
	Manufacturer RefCell
	Model        string
	Supplier     RefCell
	Cost         MoneyCell
	Invoice      string
	PurchaseDate DateCell
	Notes        string

	// errs is the derived per-field annotation, fully rebuilt on every
	// validation pass.
	errs map[string]string
}

// FieldErrors returns the row's current per-field error messages keyed by
// canonical field key. The map is owned by the validation pass; treat it
// as read-only.
func (r *Row) FieldErrors() map[string]string {
	return r.errs
}

// HasErrors reports whether any field of the row is currently flagged.
func (r *Row) HasErrors() bool {
	return len(r.errs) > 0
}

// ErrorAt returns the error message for one field, if any.
func (r *Row) ErrorAt(key string) (string, bool) {
	msg, ok := r.errs[key]
	return msg, ok
}

func (r *Row) resetErrors() {
	r.errs = make(map[string]string)
}

func (r *Row) setError(key, msg string) {
	r.errs[key] = msg
}

// raw returns the original cell text for a field, used for requiredness
// checks and re-validation of unparsed values.
func (r *Row) raw(key string) string {
	switch key {
	case catalog.KeyName:
		return r.Name
	case catalog.KeyCategory:
		return r.Category.Raw
	case catalog.KeyQuantity:
		return r.Quantity.Raw
	case catalog.KeyMinQuantity:
		return r.MinQuantity.Raw
	case catalog.KeyManufacturer:
		return r.Manufacturer.Raw
	case catalog.KeyModel:
		return r.Model
	case catalog.KeySupplier:
		return r.Supplier.Raw
	case catalog.KeyCost:
		return r.Cost.Raw
	case catalog.KeyInvoice:
		return r.Invoice
	case catalog.KeyPurchaseDate:
		return r.PurchaseDate.Raw
	case catalog.KeyNotes:
		return r.Notes
	default:
		return ""
	}
}

// refCell returns a pointer to the reference cell for key, or nil for
// non-reference fields.
func (r *Row) refCell(key string) *RefCell {
	switch key {
	case catalog.KeyCategory:
		return &r.Category
	case catalog.KeyManufacturer:
		return &r.Manufacturer
	case catalog.KeySupplier:
		return &r.Supplier
	default:
		return nil
	}
}

// ValidationError is one cell-level finding. Ephemeral: the whole set is
// recomputed on every validation pass. Row is the index into the dataset;
// Field is the canonical key (or the spreadsheet header in display lists).
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Example string `json:"example,omitempty"`
}

// EditCursor names the single cell currently open for interactive
// editing. At most one exists per session.
type EditCursor struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
}

// Consumable is one clean, validated record ready for a downstream
// submission client, stripped of internal annotations.
type Consumable struct {
	Name         string  `json:"nombre"`
	Category     int     `json:"categoria"`
	Quantity     int     `json:"cantidad"`
	MinQuantity  int     `json:"cantidadMinima"`
	Manufacturer int     `json:"fabricante"`
	Model        string  `json:"modelo"`
	Supplier     int     `json:"proveedor"`
	Invoice      string  `json:"numeroFactura"`
	Cost         float64 `json:"costo"`
	PurchaseDate string  `json:"fechaCompra"`
	Notes        string  `json:"observaciones,omitempty"`
}
