// Package crosswalk resolves free-text insurer names against the static
// payer crosswalk lookup.
package crosswalk

import (
	"github.com/clinicops/refclean/internal/model"
	"github.com/clinicops/refclean/internal/normalize"
)

// Table is an in-memory crosswalk keyed by the normalized insurer name.
type Table struct {
	byKey map[string]model.CrosswalkEntry
}

// New builds a Table from crosswalk rows. Later duplicates win, matching
// the load order of the source spreadsheet.
func New(entries []model.CrosswalkEntry) *Table {
	byKey := make(map[string]model.CrosswalkEntry, len(entries))
	for _, e := range entries {
		key := normalize.InsurerKey(e.ProductDetail)
		if key == "" {
			continue
		}
		byKey[key] = e
	}
	return &Table{byKey: byKey}
}

// Lookup resolves an insurer name. A miss is not an error: unmatched names
// are expected and surface downstream as null enrichment fields.
func (t *Table) Lookup(name string) (model.CrosswalkEntry, bool) {
	e, ok := t.byKey[normalize.InsurerKey(name)]
	return e, ok
}

// Len returns the number of distinct crosswalk keys.
func (t *Table) Len() int {
	return len(t.byKey)
}
