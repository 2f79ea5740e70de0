package core

// errorindex.go derives the per-row error grouping consumers query
// against. The index is built fresh from the flat validation output on
// every call; it caches nothing across validation passes.

import "sort"

// RowErrors groups the errors of one row.
type RowErrors struct {
	Row    int               `json:"row"`
	Errors []ValidationError `json:"errors"`
}

// Index is the per-row view over a flat error list, ascending by row.
type Index []RowErrors

// ByRow groups a flat error list by row index.
func ByRow(errs []ValidationError) Index {
	grouped := make(map[int][]ValidationError)
	for _, e := range errs {
		grouped[e.Row] = append(grouped[e.Row], e)
	}

	out := make(Index, 0, len(grouped))
	for row, rowErrs := range grouped {
		out = append(out, RowErrors{Row: row, Errors: rowErrs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// HasRow reports whether the row has any error.
func (ix Index) HasRow(row int) bool {
	for _, g := range ix {
		if g.Row == row {
			return true
		}
	}
	return false
}

// Cell returns the error for one cell, if any.
func (ix Index) Cell(row int, field string) (ValidationError, bool) {
	for _, g := range ix {
		if g.Row != row {
			continue
		}
		for _, e := range g.Errors {
			if e.Field == field {
				return e, true
			}
		}
	}
	return ValidationError{}, false
}

// Message returns the error message for one cell, empty when clean.
func (ix Index) Message(row int, field string) string {
	e, ok := ix.Cell(row, field)
	if !ok {
		return ""
	}
	return e.Message
}

// RowCount returns the number of distinct rows carrying errors.
func (ix Index) RowCount() int {
	return len(ix)
}
