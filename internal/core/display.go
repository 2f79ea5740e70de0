package core

// display.go renders row values for user-facing tables: reference ids
// resolve to their names, parsed dates print day-first, and anything the
// pipeline could not interpret falls back to the raw cell text.

import (
	"strconv"

	"cargue/internal/catalog"
)

// Display returns the row's values keyed by spreadsheet header.
func (r *Row) Display(cat *catalog.Catalog) map[string]string {
	out := make(map[string]string, len(cat.Fields()))
	for _, fd := range cat.Fields() {
		out[fd.Header] = r.displayValue(cat, fd)
	}
	return out
}

func (r *Row) displayValue(cat *catalog.Catalog, fd catalog.FieldDescriptor) string {
	switch fd.Type {
	case catalog.TypeReference:
		cell := *r.refCell(fd.Key)
		if cell.IsID {
			if set, ok := cat.References().Set(fd.RefSet); ok {
				if name, ok := set.Name(cell.ID); ok {
					return name
				}
			}
			return strconv.Itoa(cell.ID)
		}
		return cell.Raw
	case catalog.TypeInteger:
		cell := r.Quantity
		if fd.Key == catalog.KeyMinQuantity {
			cell = r.MinQuantity
		}
		if cell.Valid {
			return strconv.Itoa(cell.Value)
		}
		return cell.Raw
	case catalog.TypeCurrency:
		if r.Cost.Valid {
			return strconv.FormatFloat(r.Cost.Value, 'f', -1, 64)
		}
		return r.Cost.Raw
	case catalog.TypeDate:
		if r.PurchaseDate.Parsed {
			return r.PurchaseDate.Value.Format("02/01/2006")
		}
		return r.PurchaseDate.Raw
	default:
		return r.raw(fd.Key)
	}
}
