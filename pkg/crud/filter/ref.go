package filter

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"crudgrid/pkg/apperror"
)

// RefResolver answers whether a referenced entity id is known. Supplied by
// the integrating application, typically backed by a repository lookup.
type RefResolver func(id uuid.UUID) bool

// EntityRef filters rows by a related entity's identifier.
type EntityRef struct {
	field    string
	column   string
	label    string
	resolver RefResolver

	initialized bool
}

// NewEntityRef creates an entity reference filter. The resolver is a
// required collaborator; Init fails fast without it.
func NewEntityRef(field, column string, resolver RefResolver) *EntityRef {
	return &EntityRef{field: field, column: column, resolver: resolver}
}

// WithLabel sets the label used in violation messages.
func (r *EntityRef) WithLabel(label string) *EntityRef {
	r.label = label
	return r
}

func (r *EntityRef) Field() string { return r.field }

// Init verifies the resolver collaborator was supplied. Idempotent.
func (r *EntityRef) Init() error {
	if r.initialized {
		return nil
	}
	if r.resolver == nil {
		return apperror.NewConfiguration(
			fmt.Sprintf("entity reference filter %q has no resolver", r.field))
	}
	r.initialized = true
	return nil
}

func (r *EntityRef) ParseValue(raw any) (any, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		if val == uuid.Nil {
			return nil, nil
		}
		return val, nil
	case string:
		if val == "" {
			return nil, nil
		}
		id, err := uuid.Parse(val)
		if err != nil {
			return nil, fmt.Errorf("invalid reference id %q", val)
		}
		return id, nil
	}
	return nil, fmt.Errorf("unsupported reference value type %T", raw)
}

func (r *EntityRef) ApplyToQuery(q sq.SelectBuilder, value any) (sq.SelectBuilder, error) {
	if value == nil {
		return q, nil
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return q, fmt.Errorf("entity reference filter %q: unexpected value type %T", r.field, value)
	}
	return q.Where(sq.Eq{r.column: id}), nil
}

func (r *EntityRef) AutoValidate(s Searcher, v *Violations) {
	val := s.Get(r.field)
	if val == nil {
		return
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		v.Add(r.field, "invalid reference value")
		return
	}
	if r.resolver != nil && !r.resolver(id) {
		v.Add(r.field, fmt.Sprintf("%s: unknown reference", labelOr(r.label, r.field)))
	}
}
