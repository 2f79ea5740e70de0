// Package catalog defines the canonical consumable fields: the mapping
// between field keys, spreadsheet headers and per-field rules, plus the
// reference sets that bound the category/manufacturer/supplier fields.
// A Catalog is immutable once built; construct it at startup and inject
// it wherever field metadata is needed.
package catalog

import (
	"fmt"
	"strings"
)

// FieldType classifies the semantic type of a canonical field.
type FieldType int

const (
	TypeText FieldType = iota
	TypeInteger
	TypeCurrency
	TypeDate
	TypeReference
)

// Canonical field keys. The spreadsheet-facing headers live in the
// descriptors; internal code always speaks in these keys.
const (
	KeyName         = "name"
	KeyCategory     = "category"
	KeyQuantity     = "quantity"
	KeyMinQuantity  = "minimum-quantity"
	KeyManufacturer = "manufacturer"
	KeyModel        = "model"
	KeySupplier     = "supplier"
	KeyCost         = "cost"
	KeyInvoice      = "invoice-number"
	KeyPurchaseDate = "purchase-date"
	KeyNotes        = "notes"
)

// FieldDescriptor describes one canonical field.
type FieldDescriptor struct {
	Key      string
	Header   string    // spreadsheet column title
	Type     FieldType
	Required bool
	MaxLen   int    // 0 means unbounded
	RefSet   string // reference set name, TypeReference only

	// Example produces a sample value shown next to required-field
	// errors. Nil when the field has no useful example.
	Example func() string
}

// Options tunes catalog construction.
type Options struct {
	// CostHeader selects the header variant for the cost column.
	// Older workbook layouts use "VALOR", newer ones "VALOR/COSTO".
	CostHeader string
}

// Catalog is the ordered field table. Field order defines column order
// end to end: ingestion, validation and display all iterate it.
type Catalog struct {
	fields   []FieldDescriptor
	byKey    map[string]int
	byHeader map[string]string // normalized header -> key
	refs     *References
}

// New builds the catalog for the 11 consumable fields.
func New(refs *References, opts Options) *Catalog {
	costHeader := opts.CostHeader
	if costHeader == "" {
		costHeader = "VALOR"
	}

	static := func(s string) func() string { return func() string { return s } }
	refExample := func(set string) func() string {
		return func() string {
			rs, ok := refs.Set(set)
			if !ok {
				return ""
			}
			first := rs.First()
			return fmt.Sprintf("%d (%s)", first.ID, first.Name)
		}
	}

	fields := []FieldDescriptor{
		{Key: KeyName, Header: "NOMBRE", Type: TypeText, Required: true, MaxLen: 50,
			Example: static("Tornillo hexagonal M8")},
		{Key: KeyCategory, Header: "CATEGORIA", Type: TypeReference, Required: true, RefSet: SetCategories,
			Example: refExample(SetCategories)},
		{Key: KeyQuantity, Header: "CANTIDAD", Type: TypeInteger, Required: true,
			Example: static("1")},
		{Key: KeyMinQuantity, Header: "CANTIDAD MINIMA", Type: TypeInteger, Required: true,
			Example: static("1")},
		{Key: KeyManufacturer, Header: "FABRICANTE", Type: TypeReference, Required: true, RefSet: SetManufacturers,
			Example: refExample(SetManufacturers)},
		{Key: KeyModel, Header: "MODELO", Type: TypeText, Required: true, MaxLen: 50,
			Example: static("THX-M8-50")},
		{Key: KeySupplier, Header: "PROVEEDOR", Type: TypeReference, Required: true, RefSet: SetSuppliers,
			Example: refExample(SetSuppliers)},
		{Key: KeyCost, Header: costHeader, Type: TypeCurrency, Required: true,
			Example: static("1000")},
		{Key: KeyInvoice, Header: "NUMERO DE FACTURA", Type: TypeText, Required: true, MaxLen: 50,
			Example: static("FAC-2025-001")},
		{Key: KeyPurchaseDate, Header: "FECHA DE COMPRA", Type: TypeDate, Required: true,
			Example: static("01/01/2025")},
		{Key: KeyNotes, Header: "OBSERVACIONES", Type: TypeText, Required: true, MaxLen: 200},
	}

	c := &Catalog{
		fields:   fields,
		byKey:    make(map[string]int, len(fields)),
		byHeader: make(map[string]string, len(fields)),
		refs:     refs,
	}
	for i, f := range fields {
		c.byKey[f.Key] = i
		c.byHeader[NormalizeHeader(f.Header)] = f.Key
	}
	return c
}

// Fields returns the descriptors in canonical column order.
func (c *Catalog) Fields() []FieldDescriptor {
	return c.fields
}

// Headers returns the required spreadsheet headers in column order.
func (c *Catalog) Headers() []string {
	out := make([]string, len(c.fields))
	for i, f := range c.fields {
		out[i] = f.Header
	}
	return out
}

// Describe returns the descriptor for a canonical key. An unknown key is
// a catalog/transform mismatch, not user input; callers treat it as fatal.
func (c *Catalog) Describe(key string) (FieldDescriptor, error) {
	i, ok := c.byKey[key]
	if !ok {
		return FieldDescriptor{}, fmt.Errorf("unknown catalog field %q", key)
	}
	return c.fields[i], nil
}

// MustDescribe is Describe for wiring paths where an unknown key means a
// programming error. It panics rather than defaulting.
func (c *Catalog) MustDescribe(key string) FieldDescriptor {
	d, err := c.Describe(key)
	if err != nil {
		panic(err)
	}
	return d
}

// Header returns the spreadsheet header for a canonical key.
func (c *Catalog) Header(key string) string {
	return c.MustDescribe(key).Header
}

// Reverse maps a spreadsheet header (any spacing/casing) back to its
// canonical key. It is the exact inverse of Header for every key.
func (c *Catalog) Reverse(header string) (string, bool) {
	key, ok := c.byHeader[NormalizeHeader(header)]
	return key, ok
}

// References returns the reference table the catalog was built with.
func (c *Catalog) References() *References {
	return c.refs
}

// NormalizeHeader canonicalizes a header cell for comparison: trimmed,
// uppercased, internal whitespace collapsed to single spaces.
func NormalizeHeader(h string) string {
	return strings.ToUpper(strings.Join(strings.Fields(h), " "))
}
