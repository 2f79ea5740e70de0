package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Reference set names used by the bounded-reference fields.
const (
	SetCategories    = "categories"
	SetManufacturers = "manufacturers"
	SetSuppliers     = "suppliers"
)

// Entry is a single valid value in a reference set.
type Entry struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// ReferenceSet is a closed enumeration of valid ids for a bounded-reference
// field. The order is meaningful: the first entry seeds example values.
type ReferenceSet []Entry

// Contains reports whether id is a valid member of the set.
func (rs ReferenceSet) Contains(id int) bool {
	for _, e := range rs {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Name returns the display name for id.
func (rs ReferenceSet) Name(id int) (string, bool) {
	for _, e := range rs {
		if e.ID == id {
			return e.Name, true
		}
	}
	return "", false
}

// First returns the first entry of the set. Reference sets are never empty.
func (rs ReferenceSet) First() Entry {
	return rs[0]
}

// References is the immutable lookup table shared by the transformer and
// the validation engine. Build one at startup and inject it; it is not
// safe to mutate afterwards.
type References struct {
	sets map[string]ReferenceSet
}

// Set returns the reference set registered under name.
func (r *References) Set(name string) (ReferenceSet, bool) {
	rs, ok := r.sets[name]
	return rs, ok
}

// Sets returns all reference sets keyed by name.
func (r *References) Sets() map[string]ReferenceSet {
	out := make(map[string]ReferenceSet, len(r.sets))
	for k, v := range r.sets {
		out[k] = v
	}
	return out
}

// DefaultReferences returns the built-in category, manufacturer and
// supplier lists.
func DefaultReferences() *References {
	return &References{sets: map[string]ReferenceSet{
		SetCategories: {
			{ID: 1, Name: "Ferretería"},
			{ID: 2, Name: "Herramientas"},
			{ID: 3, Name: "Materiales de Construcción"},
			{ID: 4, Name: "Eléctricos"},
			{ID: 5, Name: "Plomería"},
			{ID: 6, Name: "Pintura"},
			{ID: 7, Name: "Seguridad"},
			{ID: 8, Name: "Jardinería"},
			{ID: 9, Name: "Iluminación"},
			{ID: 10, Name: "Otros"},
		},
		SetManufacturers: {
			{ID: 1, Name: "ACME Tools"},
			{ID: 2, Name: "DeWalt"},
			{ID: 3, Name: "Bosch"},
			{ID: 4, Name: "Stanley"},
			{ID: 5, Name: "Black & Decker"},
			{ID: 6, Name: "Makita"},
			{ID: 7, Name: "Milwaukee"},
			{ID: 8, Name: "Hilti"},
			{ID: 9, Name: "Craftsman"},
			{ID: 10, Name: "Otros"},
		},
		SetSuppliers: {
			{ID: 1, Name: "Ferretería Central"},
			{ID: 2, Name: "Distribuidora Industrial"},
			{ID: 3, Name: "Materiales Express"},
			{ID: 4, Name: "Herramientas Pro"},
			{ID: 5, Name: "Suministros Técnicos"},
			{ID: 6, Name: "Importadora Nacional"},
			{ID: 7, Name: "Comercial Ferretera"},
			{ID: 8, Name: "Otros"},
		},
	}}
}

// referenceFile is the YAML shape of a reference-set overlay file.
type referenceFile struct {
	Categories    []Entry `yaml:"categories"`
	Manufacturers []Entry `yaml:"manufacturers"`
	Suppliers     []Entry `yaml:"suppliers"`
}

// LoadReferences reads a YAML overlay file and merges it over the built-in
// defaults. Sets absent from the file keep their default entries; sets
// present must be non-empty.
func LoadReferences(path string) (*References, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file: %w", err)
	}

	var file referenceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse reference file %s: %w", path, err)
	}

	refs := DefaultReferences()
	for name, entries := range map[string][]Entry{
		SetCategories:    file.Categories,
		SetManufacturers: file.Manufacturers,
		SetSuppliers:     file.Suppliers,
	} {
		if entries == nil {
			continue
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("reference file %s: set %q is empty", path, name)
		}
		seen := make(map[int]bool, len(entries))
		for _, e := range entries {
			if e.Name == "" {
				return nil, fmt.Errorf("reference file %s: set %q has an entry without a name", path, name)
			}
			if seen[e.ID] {
				return nil, fmt.Errorf("reference file %s: set %q repeats id %d", path, name, e.ID)
			}
			seen[e.ID] = true
		}
		refs.sets[name] = entries
	}

	return refs, nil
}
