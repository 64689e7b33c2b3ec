package filter

import (
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"crudgrid/pkg/apperror"
)

// DefaultTextMaxLength bounds text filter input when no explicit limit is set.
const DefaultTextMaxLength = 255

// Text filters a column by exact or partial (ILIKE) string match.
type Text struct {
	field     string
	column    string
	label     string
	exact     bool
	maxLength int
}

// NewText creates a partial-match (ILIKE %value%) text filter.
func NewText(field, column string) *Text {
	return &Text{field: field, column: column, maxLength: DefaultTextMaxLength}
}

// NewTextExact creates an exact-match text filter.
func NewTextExact(field, column string) *Text {
	return &Text{field: field, column: column, exact: true, maxLength: DefaultTextMaxLength}
}

// WithLabel sets the label used in violation messages.
func (t *Text) WithLabel(label string) *Text {
	t.label = label
	return t
}

// WithMaxLength overrides the input length bound. Zero disables the check.
func (t *Text) WithMaxLength(n int) *Text {
	t.maxLength = n
	return t
}

func (t *Text) Field() string { return t.field }

func (t *Text) Init() error { return nil }

func (t *Text) ParseValue(raw any) (any, error) {
	s, err := stringValue(raw)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return s, nil
}

func (t *Text) ApplyToQuery(q sq.SelectBuilder, value any) (sq.SelectBuilder, error) {
	if IsEmpty(value) {
		return q, nil
	}
	s, err := stringValue(value)
	if err != nil {
		return q, err
	}
	if t.exact {
		return q.Where(sq.Eq{t.column: s}), nil
	}
	return q.Where(sq.ILike{t.column: "%" + s + "%"}), nil
}

func (t *Text) AutoValidate(s Searcher, v *Violations) {
	val := s.Get(t.field)
	if IsEmpty(val) {
		return
	}
	str, err := stringValue(val)
	if err != nil {
		v.Add(t.field, "must be text")
		return
	}
	if t.maxLength > 0 && len(str) > t.maxLength {
		v.Add(t.field, fmt.Sprintf("%s must be at most %d characters", labelOr(t.label, t.field), t.maxLength))
	}
}

// ChoiceProvider supplies choice lists lazily (e.g. from a registry that is
// not available at declaration time).
type ChoiceProvider func() ([]string, error)

// Choice filters a column against an enumerated list of allowed values,
// single or multi select.
type Choice struct {
	field    string
	column   string
	label    string
	multiple bool
	choices  []string
	provider ChoiceProvider

	initialized bool
	allowed     map[string]struct{}
}

// NewChoice creates a single-select choice filter over a static list.
// Pass no choices and attach a provider for lazily resolved lists.
func NewChoice(field, column string, choices ...string) *Choice {
	return &Choice{field: field, column: column, choices: choices}
}

// WithProvider attaches a lazy choice source resolved once during Init.
func (c *Choice) WithProvider(p ChoiceProvider) *Choice {
	c.provider = p
	return c
}

// WithLabel sets the label used in violation messages.
func (c *Choice) WithLabel(label string) *Choice {
	c.label = label
	return c
}

// Multiple switches the filter to multi-select.
func (c *Choice) Multiple() *Choice {
	c.multiple = true
	return c
}

func (c *Choice) Field() string { return c.field }

// Init resolves the provider-backed choice list. Fails fast when the
// filter has neither static choices nor a provider.
func (c *Choice) Init() error {
	if c.initialized {
		return nil
	}
	if len(c.choices) == 0 && c.provider == nil {
		return apperror.NewConfiguration(
			fmt.Sprintf("choice filter %q has no choices and no provider", c.field))
	}
	if c.provider != nil {
		resolved, err := c.provider()
		if err != nil {
			return apperror.NewConfiguration(
				fmt.Sprintf("choice filter %q provider failed", c.field)).WithCause(err)
		}
		c.choices = append(c.choices, resolved...)
	}
	c.allowed = make(map[string]struct{}, len(c.choices))
	for _, choice := range c.choices {
		c.allowed[choice] = struct{}{}
	}
	c.initialized = true
	return nil
}

func (c *Choice) ParseValue(raw any) (any, error) {
	if c.multiple {
		switch val := raw.(type) {
		case nil:
			return nil, nil
		case []string:
			if len(val) == 0 {
				return nil, nil
			}
			return val, nil
		case []any:
			out := make([]string, 0, len(val))
			for _, item := range val {
				s, err := stringValue(item)
				if err != nil {
					return nil, err
				}
				if s != "" {
					out = append(out, s)
				}
			}
			if len(out) == 0 {
				return nil, nil
			}
			return out, nil
		case string:
			if val == "" {
				return nil, nil
			}
			return []string{val}, nil
		}
		return nil, fmt.Errorf("unsupported choice value type %T", raw)
	}

	s, err := stringValue(raw)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return s, nil
}

func (c *Choice) ApplyToQuery(q sq.SelectBuilder, value any) (sq.SelectBuilder, error) {
	if IsEmpty(value) {
		return q, nil
	}
	// squirrel renders slices as IN (...)
	return q.Where(sq.Eq{c.column: value}), nil
}

func (c *Choice) AutoValidate(s Searcher, v *Violations) {
	val := s.Get(c.field)
	if IsEmpty(val) {
		return
	}
	var selected []string
	switch typed := val.(type) {
	case string:
		selected = []string{typed}
	case []string:
		selected = typed
	default:
		v.Add(c.field, "invalid choice value")
		return
	}
	for _, item := range selected {
		if _, ok := c.allowed[item]; !ok {
			v.Add(c.field, fmt.Sprintf("%q is not a valid choice for %s", item, labelOr(c.label, c.field)))
		}
	}
}

// Bool filters a column by a boolean value. Unset means "no constraint",
// so tri-state semantics come for free.
type Bool struct {
	field  string
	column string
}

// NewBool creates a boolean filter.
func NewBool(field, column string) *Bool {
	return &Bool{field: field, column: column}
}

func (b *Bool) Field() string { return b.field }

func (b *Bool) Init() error { return nil }

func (b *Bool) ParseValue(raw any) (any, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return val, nil
	case string:
		if val == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value %q", val)
		}
		return parsed, nil
	}
	return nil, fmt.Errorf("unsupported boolean value type %T", raw)
}

func (b *Bool) ApplyToQuery(q sq.SelectBuilder, value any) (sq.SelectBuilder, error) {
	if value == nil {
		return q, nil
	}
	flag, ok := value.(bool)
	if !ok {
		return q, fmt.Errorf("bool filter %q: unexpected value type %T", b.field, value)
	}
	return q.Where(sq.Eq{b.column: flag}), nil
}

func (b *Bool) AutoValidate(s Searcher, v *Violations) {
	val := s.Get(b.field)
	if val == nil {
		return
	}
	if _, ok := val.(bool); !ok {
		v.Add(b.field, "must be a boolean")
	}
}

// stringValue coerces scalar raw input to a string.
func stringValue(raw any) (string, error) {
	switch val := raw.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case fmt.Stringer:
		return val.String(), nil
	case int, int64, float64, bool:
		return fmt.Sprint(val), nil
	}
	return "", fmt.Errorf("unsupported value type %T", raw)
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
