// Package filter declares searchable grid fields and folds their values
// into query constraints.
package filter

import (
	sq "github.com/Masterminds/squirrel"
)

// Values is the typed bag of search field values keyed by field id.
// It replaces dynamic property access: every read goes through an explicit
// accessor and only declared fields survive storage.
type Values map[string]any

// Violation is one reported auto-validation failure. Violations are data,
// never errors: the caller re-renders the form with the messages.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations collects per-field validation failures.
type Violations []Violation

// Add appends a violation for field.
func (v *Violations) Add(field, message string) {
	*v = append(*v, Violation{Field: field, Message: message})
}

// Empty reports whether no violations were collected.
func (v Violations) Empty() bool {
	return len(v) == 0
}

// ByField groups messages by field id for form rendering.
func (v Violations) ByField() map[string][]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string][]string, len(v))
	for _, item := range v {
		out[item.Field] = append(out[item.Field], item.Message)
	}
	return out
}

// Filterer declares one searchable field: where its value comes from, how
// it constrains the query and how it validates itself.
type Filterer interface {
	// Field returns the form field id, unique within a searcher.
	Field() string

	// Init resolves lazy collaborators. Idempotent; called once before
	// first use. Returns a configuration error when a required
	// collaborator was never supplied.
	Init() error

	// ParseValue normalizes raw input (request parameter or storage
	// payload) into the filter's value type. (nil, nil) means empty.
	ParseValue(raw any) (any, error)

	// ApplyToQuery extends q with the constraint for value.
	// Must be a no-op when value is nil.
	ApplyToQuery(q sq.SelectBuilder, value any) (sq.SelectBuilder, error)

	// AutoValidate reports shape violations of the searcher's current
	// value into v. It never returns an error.
	AutoValidate(s Searcher, v *Violations)
}

// Searcher is one grid's search form: a bag of field values plus the
// declaration of which filters apply to them.
type Searcher interface {
	// ConfigureFieldFilters returns the ordered filter declarations.
	// Pure; the manager memoizes the result and runs Init on each.
	ConfigureFieldFilters() []Filterer

	// Get returns the current value of a field, nil when unset or unknown.
	Get(field string) any

	// Set stores a field value. Unknown fields are kept in the bag but
	// never reach storage or the query.
	Set(field string, value any)

	// StorageFields lists extra storage-eligible fields beyond the
	// declared filter fields. Usually nil.
	StorageFields() []string

	// IsSubmitted reports whether the form was submitted this request.
	IsSubmitted() bool

	// SetSubmitted marks the form as submitted.
	SetSubmitted(submitted bool)

	// GlobalChangeQuery is the grid-wide query hook, applied after all
	// field filters. Default implementation returns q unchanged.
	GlobalChangeQuery(q sq.SelectBuilder) sq.SelectBuilder

	// AutoValidationEnabled reports whether the filters' AutoValidate
	// pass runs on form processing. Default true.
	AutoValidationEnabled() bool

	// DisplayLabelInErrors is a rendering hint for error messages.
	DisplayLabelInErrors() bool
}

// Base is the default Searcher state. Concrete searchers embed it and add
// ConfigureFieldFilters; transient collaborators live on the concrete type
// and never enter the value bag.
type Base struct {
	values    Values
	submitted bool
}

// Get returns the current value of a field or nil.
func (b *Base) Get(field string) any {
	if b.values == nil {
		return nil
	}
	return b.values[field]
}

// Set stores a field value. A nil value removes the field.
func (b *Base) Set(field string, value any) {
	if b.values == nil {
		b.values = Values{}
	}
	if value == nil {
		delete(b.values, field)
		return
	}
	b.values[field] = value
}

// StorageFields defaults to none beyond the declared filter fields.
func (b *Base) StorageFields() []string { return nil }

// IsSubmitted reports whether the form was submitted.
func (b *Base) IsSubmitted() bool { return b.submitted }

// SetSubmitted marks the form as submitted.
func (b *Base) SetSubmitted(submitted bool) { b.submitted = submitted }

// GlobalChangeQuery returns q unchanged by default.
func (b *Base) GlobalChangeQuery(q sq.SelectBuilder) sq.SelectBuilder { return q }

// AutoValidationEnabled defaults to true.
func (b *Base) AutoValidationEnabled() bool { return true }

// DisplayLabelInErrors defaults to false.
func (b *Base) DisplayLabelInErrors() bool { return false }

// StorageValues is the storage-safe projection of s: only non-empty values
// of declared filter fields and explicitly marked storage fields survive.
// Everything else on the searcher (open connections, caches) is left behind.
func StorageValues(s Searcher, filters []Filterer) Values {
	out := Values{}
	for _, f := range filters {
		if v := s.Get(f.Field()); !IsEmpty(v) {
			out[f.Field()] = v
		}
	}
	for _, name := range s.StorageFields() {
		if v := s.Get(name); !IsEmpty(v) {
			out[name] = v
		}
	}
	return out
}

// Bind parses raw values into s through each filter's ParseValue.
// Unknown keys are dropped. Parse failures are reported as violations for
// the offending field, not as errors.
func Bind(s Searcher, filters []Filterer, raw Values) Violations {
	var violations Violations
	for _, f := range filters {
		rawVal, ok := raw[f.Field()]
		if !ok {
			s.Set(f.Field(), nil)
			continue
		}
		val, err := f.ParseValue(rawVal)
		if err != nil {
			violations.Add(f.Field(), err.Error())
			s.Set(f.Field(), nil)
			continue
		}
		s.Set(f.Field(), val)
	}
	return violations
}

// Validate runs the auto-validation pass across all filters when the
// searcher has it enabled.
func Validate(s Searcher, filters []Filterer) Violations {
	var violations Violations
	if !s.AutoValidationEnabled() {
		return violations
	}
	for _, f := range filters {
		f.AutoValidate(s, &violations)
	}
	return violations
}

// IsEmpty reports whether a search value counts as unset. Empty filters
// are optional: they never constrain the query.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case Values:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
