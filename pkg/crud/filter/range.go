package filter

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

// NumberRangeValue holds the parsed bounds of a numeric range search.
// Decimal bounds keep money columns exact.
type NumberRangeValue struct {
	From *decimal.Decimal `json:"from,omitempty"`
	To   *decimal.Decimal `json:"to,omitempty"`
}

// NumberRange filters a numeric column by an inclusive [from, to] range.
// Either bound may be open.
type NumberRange struct {
	field  string
	column string
	label  string
}

// NewNumberRange creates a numeric range filter.
func NewNumberRange(field, column string) *NumberRange {
	return &NumberRange{field: field, column: column}
}

// WithLabel sets the label used in violation messages.
func (n *NumberRange) WithLabel(label string) *NumberRange {
	n.label = label
	return n
}

func (n *NumberRange) Field() string { return n.field }

func (n *NumberRange) Init() error { return nil }

func (n *NumberRange) ParseValue(raw any) (any, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case NumberRangeValue:
		if val.From == nil && val.To == nil {
			return nil, nil
		}
		return val, nil
	case map[string]any:
		from, err := parseDecimal(val["from"])
		if err != nil {
			return nil, err
		}
		to, err := parseDecimal(val["to"])
		if err != nil {
			return nil, err
		}
		if from == nil && to == nil {
			return nil, nil
		}
		return NumberRangeValue{From: from, To: to}, nil
	}
	return nil, fmt.Errorf("unsupported number range value type %T", raw)
}

func (n *NumberRange) ApplyToQuery(q sq.SelectBuilder, value any) (sq.SelectBuilder, error) {
	if value == nil {
		return q, nil
	}
	rng, ok := value.(NumberRangeValue)
	if !ok {
		return q, fmt.Errorf("number range filter %q: unexpected value type %T", n.field, value)
	}
	if rng.From != nil {
		q = q.Where(sq.GtOrEq{n.column: *rng.From})
	}
	if rng.To != nil {
		q = q.Where(sq.LtOrEq{n.column: *rng.To})
	}
	return q, nil
}

func (n *NumberRange) AutoValidate(s Searcher, v *Violations) {
	val := s.Get(n.field)
	if val == nil {
		return
	}
	rng, ok := val.(NumberRangeValue)
	if !ok {
		v.Add(n.field, "invalid range value")
		return
	}
	if rng.From != nil && rng.To != nil && rng.From.GreaterThan(*rng.To) {
		v.Add(n.field, fmt.Sprintf("%s: lower bound exceeds upper bound", labelOr(n.label, n.field)))
	}
}

// DateRangeValue holds the parsed bounds of a date range search.
type DateRangeValue struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// DateRange filters a timestamp column by an inclusive [from, to] range.
type DateRange struct {
	field  string
	column string
	label  string
}

// NewDateRange creates a date range filter.
func NewDateRange(field, column string) *DateRange {
	return &DateRange{field: field, column: column}
}

// WithLabel sets the label used in violation messages.
func (d *DateRange) WithLabel(label string) *DateRange {
	d.label = label
	return d
}

func (d *DateRange) Field() string { return d.field }

func (d *DateRange) Init() error { return nil }

func (d *DateRange) ParseValue(raw any) (any, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case DateRangeValue:
		if val.From == nil && val.To == nil {
			return nil, nil
		}
		return val, nil
	case map[string]any:
		from, err := parseTime(val["from"])
		if err != nil {
			return nil, err
		}
		to, err := parseTime(val["to"])
		if err != nil {
			return nil, err
		}
		if from == nil && to == nil {
			return nil, nil
		}
		return DateRangeValue{From: from, To: to}, nil
	}
	return nil, fmt.Errorf("unsupported date range value type %T", raw)
}

func (d *DateRange) ApplyToQuery(q sq.SelectBuilder, value any) (sq.SelectBuilder, error) {
	if value == nil {
		return q, nil
	}
	rng, ok := value.(DateRangeValue)
	if !ok {
		return q, fmt.Errorf("date range filter %q: unexpected value type %T", d.field, value)
	}
	if rng.From != nil {
		q = q.Where(sq.GtOrEq{d.column: *rng.From})
	}
	if rng.To != nil {
		q = q.Where(sq.LtOrEq{d.column: *rng.To})
	}
	return q, nil
}

func (d *DateRange) AutoValidate(s Searcher, v *Violations) {
	val := s.Get(d.field)
	if val == nil {
		return
	}
	rng, ok := val.(DateRangeValue)
	if !ok {
		v.Add(d.field, "invalid range value")
		return
	}
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		v.Add(d.field, fmt.Sprintf("%s: start date is after end date", labelOr(d.label, d.field)))
	}
}

func parseDecimal(raw any) (*decimal.Decimal, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return &val, nil
	case *decimal.Decimal:
		return val, nil
	case float64:
		d := decimal.NewFromFloat(val)
		return &d, nil
	case int:
		d := decimal.NewFromInt(int64(val))
		return &d, nil
	case int64:
		d := decimal.NewFromInt(val)
		return &d, nil
	case string:
		if val == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(val)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val)
		}
		return &d, nil
	}
	return nil, fmt.Errorf("unsupported number value type %T", raw)
}

// parseTime accepts RFC 3339 timestamps and bare dates.
func parseTime(raw any) (*time.Time, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &val, nil
	case *time.Time:
		return val, nil
	case string:
		if val == "" {
			return nil, nil
		}
		if ts, err := time.Parse(time.RFC3339, val); err == nil {
			return &ts, nil
		}
		if ts, err := time.Parse("2006-01-02", val); err == nil {
			return &ts, nil
		}
		return nil, fmt.Errorf("invalid date %q", val)
	}
	return nil, fmt.Errorf("unsupported date value type %T", raw)
}
