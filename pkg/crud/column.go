// Package crud is the core of the grid toolkit: column declarations,
// per-user session state and the manager that folds both into a query.
package crud

import (
	"fmt"

	"crudgrid/pkg/apperror"
)

// Column declares one grid column. Immutable after registration.
type Column struct {
	// ID is the column identifier, unique within a grid.
	ID string

	// SortExpr is the underlying sortable SQL expression, e.g. "u.username".
	SortExpr string

	// Label is the display label; empty falls back to the id.
	Label string

	// Sortable marks the column as a valid sort target.
	Sortable bool

	// DefaultDisplayed shows the column when the user has no preference.
	DefaultDisplayed bool

	// Mandatory columns cannot be hidden.
	Mandatory bool
}

// Registry holds a grid's declared columns. Registration order is display
// order. Read-only after grid configuration, safe for concurrent reads.
type Registry struct {
	order []string
	cols  map[string]Column
}

// NewRegistry creates an empty column registry.
func NewRegistry() *Registry {
	return &Registry{cols: make(map[string]Column)}
}

// Register adds a column. A duplicate or empty id is a configuration error.
func (r *Registry) Register(c Column) error {
	if c.ID == "" {
		return apperror.NewConfiguration("column id must not be empty")
	}
	if _, exists := r.cols[c.ID]; exists {
		return apperror.NewConfiguration(fmt.Sprintf("duplicate column id %q", c.ID))
	}
	if c.Mandatory {
		c.DefaultDisplayed = true
	}
	r.cols[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

// Get returns a registered column.
func (r *Registry) Get(id string) (Column, error) {
	c, ok := r.cols[id]
	if !ok {
		return Column{}, apperror.NewUnknownColumn(id)
	}
	return c, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.cols[id]
	return ok
}

// IsSortable reports whether id is registered and sortable.
func (r *Registry) IsSortable(id string) bool {
	c, ok := r.cols[id]
	return ok && c.Sortable
}

// Columns returns all columns in registration order.
func (r *Registry) Columns() []Column {
	out := make([]Column, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.cols[id])
	}
	return out
}

// Len returns the number of registered columns.
func (r *Registry) Len() int {
	return len(r.order)
}

// DefaultSortField returns the first sortable column id, or empty when the
// grid has none.
func (r *Registry) DefaultSortField() string {
	for _, id := range r.order {
		if r.cols[id].Sortable {
			return id
		}
	}
	return ""
}

// DefaultDisplayedColumns returns the ids displayed without a user
// preference, in registration order.
func (r *Registry) DefaultDisplayedColumns() []string {
	var out []string
	for _, id := range r.order {
		if c := r.cols[id]; c.DefaultDisplayed || c.Mandatory {
			out = append(out, id)
		}
	}
	return out
}

// ValidateDisplayed checks a requested visible-column set: every id must be
// registered and no mandatory column may be missing.
func (r *Registry) ValidateDisplayed(ids []string) error {
	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !r.Has(id) {
			return apperror.NewUnknownColumn(id)
		}
		requested[id] = struct{}{}
	}
	for _, id := range r.order {
		if r.cols[id].Mandatory {
			if _, ok := requested[id]; !ok {
				return apperror.NewValidation(
					fmt.Sprintf("mandatory column %q cannot be hidden", id))
			}
		}
	}
	return nil
}

// NormalizeDisplayed filters ids to registered columns in registration
// order, mandatory columns always included.
func (r *Registry) NormalizeDisplayed(ids []string) []string {
	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}
	var out []string
	for _, id := range r.order {
		_, wanted := requested[id]
		if wanted || r.cols[id].Mandatory {
			out = append(out, id)
		}
	}
	return out
}
