package core

// session.go owns the mutable dataset and the edit state machine.
//
// A session holds at most one dataset at a time; loading a new file
// replaces it wholesale (row indices are only stable within one load).
// Edits follow an explicit command model: start-edit opens the single
// cursor, set-value writes the cell, finish-edit commits and re-validates.
// Starting an edit while another cell is open commits the open one first
// (commit-on-switch). Cancel closes the cursor and re-validates too, so
// row annotations can never go stale relative to cell values.

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cargue/internal/catalog"
	"cargue/internal/ingest"
)

// Sentinel errors for session misuse. MapError turns these into user
// messages.
var (
	ErrNoDataset = errors.New("no dataset loaded")
	ErrNoEdit    = errors.New("no cell is being edited")
)

// LoadSummary reports the outcome of a successful load.
type LoadSummary struct {
	DatasetID string `json:"datasetId"`
	Sheet     string `json:"sheet"`
	Rows      int    `json:"rows"`
	ErrorRows int    `json:"errorRows"`
}

// SessionOptions bundles the configuration a session needs.
type SessionOptions struct {
	Ingest     ingest.Options
	Limits     Limits
	Extensions []string // allowed file extensions, lowercase with dot
}

// Session is the single-owner import/validate/edit pipeline instance.
// It is not safe for concurrent use; callers serialize access.
type Session struct {
	cat       *catalog.Catalog
	validator *Validator
	opts      SessionOptions

	id     uuid.UUID
	sheet  string
	rows   []*Row
	errors []ValidationError
	cursor *EditCursor

	onCommit func(row int, field string)
}

// NewSession builds a session over an immutable catalog. Zero-value
// options fall back to the stock extension list and limits.
func NewSession(cat *catalog.Catalog, opts SessionOptions) *Session {
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".xlsx"}
	}
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}
	if opts.Ingest == (ingest.Options{}) {
		opts.Ingest = ingest.DefaultOptions()
	}
	return &Session{
		cat:       cat,
		validator: NewValidator(cat, opts.Limits),
		opts:      opts,
	}
}

// OnCommit registers a callback invoked exactly once per committed edit,
// after re-validation. Used by callers that need change notification.
func (s *Session) OnCommit(fn func(row int, field string)) {
	s.onCommit = fn
}

// LoadFile checks the file extension, then loads the workbook bytes.
func (s *Session) LoadFile(name string, data []byte) (*LoadSummary, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range s.opts.Extensions {
		if ext == allowed {
			return s.Load(data)
		}
	}
	return nil, fmt.Errorf("unsupported file type %q, use %s", ext, strings.Join(s.opts.Extensions, ", "))
}

// Load runs ingest, transform and validate over workbook bytes. On
// success the previous dataset, errors and cursor are replaced and a new
// dataset id is minted. On failure the session keeps its prior state so
// the caller can retry with a different file.
func (s *Session) Load(data []byte) (*LoadSummary, error) {
	table, err := ingest.Read(data, s.cat, s.opts.Ingest)
	if err != nil {
		return nil, err
	}

	s.id = uuid.New()
	s.sheet = table.Sheet
	s.rows = Transform(table, s.cat)
	s.cursor = nil
	s.revalidate()

	return s.Summary(), nil
}

// Clear drops the dataset, errors and cursor. A new explicit load is
// required afterwards.
func (s *Session) Clear() {
	s.id = uuid.UUID{}
	s.sheet = ""
	s.rows = nil
	s.errors = nil
	s.cursor = nil
}

// Loaded reports whether a dataset is present.
func (s *Session) Loaded() bool { return s.rows != nil }

// ID returns the current dataset id, empty when nothing is loaded.
func (s *Session) ID() string {
	if !s.Loaded() {
		return ""
	}
	return s.id.String()
}

// Rows exposes the canonical dataset in spreadsheet order.
func (s *Session) Rows() []*Row { return s.rows }

// Errors returns the current flat error list, keyed by canonical field.
func (s *Session) Errors() []ValidationError { return s.errors }

// DisplayErrors returns the error list re-keyed to spreadsheet headers.
func (s *Session) DisplayErrors() []ValidationError {
	return DisplayErrors(s.errors, s.cat)
}

// ErrorsByRow groups the display errors per row for summary panels.
func (s *Session) ErrorsByRow() Index {
	return ByRow(s.DisplayErrors())
}

// Summary describes the loaded dataset.
func (s *Session) Summary() *LoadSummary {
	if !s.Loaded() {
		return nil
	}
	return &LoadSummary{
		DatasetID: s.id.String(),
		Sheet:     s.sheet,
		Rows:      len(s.rows),
		ErrorRows: ByRow(s.errors).RowCount(),
	}
}

// Cursor returns a copy of the open edit cursor, nil when idle.
func (s *Session) Cursor() *EditCursor {
	if s.cursor == nil {
		return nil
	}
	c := *s.cursor
	return &c
}

// StartEdit opens the cursor on one cell. If another cell is open its
// edit is committed first; if multiple starts race, the last one wins.
func (s *Session) StartEdit(row int, field string) error {
	if !s.Loaded() {
		return ErrNoDataset
	}
	if row < 0 || row >= len(s.rows) {
		return fmt.Errorf("row %d out of range (dataset has %d rows)", row, len(s.rows))
	}
	if _, err := s.cat.Describe(field); err != nil {
		return err
	}
	if s.cursor != nil {
		if err := s.FinishEdit(); err != nil {
			return err
		}
	}
	s.cursor = &EditCursor{Row: row, Field: field}
	return nil
}

// SetValue writes a raw value into the cell under the cursor, applying
// the same per-field coercion as the initial import. Only the cell named
// by the cursor is touched.
func (s *Session) SetValue(raw string) error {
	if s.cursor == nil {
		return ErrNoEdit
	}
	fd := s.cat.MustDescribe(s.cursor.Field)
	applyRaw(s.rows[s.cursor.Row], fd, raw)
	return nil
}

// FinishEdit commits the row's current in-memory value: the full dataset
// is re-validated, the cursor clears, and the commit callback fires once.
func (s *Session) FinishEdit() error {
	if s.cursor == nil {
		return ErrNoEdit
	}
	row, field := s.cursor.Row, s.cursor.Field
	s.cursor = nil
	s.revalidate()
	if s.onCommit != nil {
		s.onCommit(row, field)
	}
	return nil
}

// CancelEdit closes the cursor without firing the commit callback. Any
// value already written through SetValue stays, so the dataset is
// re-validated to keep annotations consistent. A cancel while idle is a
// no-op.
func (s *Session) CancelEdit() {
	if s.cursor == nil {
		return
	}
	s.cursor = nil
	s.revalidate()
}

// CommitCell is the one-shot edit path: start, write, finish.
func (s *Session) CommitCell(row int, field, raw string) error {
	if err := s.StartEdit(row, field); err != nil {
		return err
	}
	if err := s.SetValue(raw); err != nil {
		return err
	}
	return s.FinishEdit()
}

// Ready reports whether the dataset is loaded and free of validation
// errors, i.e. whether submission may proceed.
func (s *Session) Ready() bool {
	return s.Loaded() && len(s.errors) == 0
}

// Export returns the clean, validated records stripped of internal
// annotations. It refuses while validation errors are outstanding.
func (s *Session) Export() ([]Consumable, error) {
	if !s.Loaded() {
		return nil, ErrNoDataset
	}
	if len(s.errors) > 0 {
		return nil, fmt.Errorf("submit blocked: %d validation errors outstanding", len(s.errors))
	}

	out := make([]Consumable, len(s.rows))
	for i, r := range s.rows {
		out[i] = Consumable{
			Name:         r.Name,
			Category:     r.Category.ID,
			Quantity:     r.Quantity.Value,
			MinQuantity:  r.MinQuantity.Value,
			Manufacturer: r.Manufacturer.ID,
			Model:        r.Model,
			Supplier:     r.Supplier.ID,
			Invoice:      r.Invoice,
			Cost:         r.Cost.Value,
			PurchaseDate: r.PurchaseDate.Value.Format("02/01/2006"),
			Notes:        r.Notes,
		}
	}
	return out, nil
}

func (s *Session) revalidate() {
	s.errors = s.validator.Validate(s.rows)
}
