package filter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberRange_ParseValue(t *testing.T) {
	f := NewNumberRange("price", "p.price")

	val, err := f.ParseValue(map[string]any{"from": 10.5, "to": "99.99"})
	require.NoError(t, err)
	rng, ok := val.(NumberRangeValue)
	require.True(t, ok)
	assert.True(t, rng.From.Equal(decimal.NewFromFloat(10.5)))
	assert.True(t, rng.To.Equal(decimal.RequireFromString("99.99")))

	val, err = f.ParseValue(map[string]any{"from": "", "to": nil})
	require.NoError(t, err)
	assert.Nil(t, val)

	_, err = f.ParseValue(map[string]any{"from": "abc"})
	require.Error(t, err)
}

func TestNumberRange_ApplyToQuery(t *testing.T) {
	f := NewNumberRange("price", "p.price")
	from := decimal.NewFromInt(10)
	to := decimal.NewFromInt(20)

	q, err := f.ApplyToQuery(baseQuery(), NumberRangeValue{From: &from, To: &to})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users u WHERE p.price >= ? AND p.price <= ?", sql)
	assert.Len(t, args, 2)
}

func TestNumberRange_OpenBound(t *testing.T) {
	f := NewNumberRange("price", "p.price")
	from := decimal.NewFromInt(10)

	q, err := f.ApplyToQuery(baseQuery(), NumberRangeValue{From: &from})
	require.NoError(t, err)

	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users u WHERE p.price >= ?", sql)
}

func TestNumberRange_AutoValidate_InvertedBounds(t *testing.T) {
	f := NewNumberRange("price", "p.price")
	from := decimal.NewFromInt(20)
	to := decimal.NewFromInt(10)

	s := &formSearcher{filters: []Filterer{f}}
	s.Set("price", NumberRangeValue{From: &from, To: &to})

	var v Violations
	f.AutoValidate(s, &v)
	require.Len(t, v, 1)
	assert.Equal(t, "price", v[0].Field)
}

func TestDateRange_ParseValue(t *testing.T) {
	f := NewDateRange("created", "u.created_at")

	val, err := f.ParseValue(map[string]any{"from": "2026-01-01", "to": "2026-06-30T12:00:00Z"})
	require.NoError(t, err)
	rng, ok := val.(DateRangeValue)
	require.True(t, ok)
	assert.Equal(t, 2026, rng.From.Year())
	assert.Equal(t, time.June, rng.To.Month())

	_, err = f.ParseValue(map[string]any{"from": "not-a-date"})
	require.Error(t, err)
}

func TestDateRange_AutoValidate_StartAfterEnd(t *testing.T) {
	f := NewDateRange("created", "u.created_at")
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s := &formSearcher{filters: []Filterer{f}}
	s.Set("created", DateRangeValue{From: &from, To: &to})

	var v Violations
	f.AutoValidate(s, &v)
	require.Len(t, v, 1)
}
