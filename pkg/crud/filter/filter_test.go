package filter

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formSearcher is a minimal searcher for tests.
type formSearcher struct {
	Base
	filters []Filterer
	extra   []string
}

func (s *formSearcher) ConfigureFieldFilters() []Filterer { return s.filters }

func (s *formSearcher) StorageFields() []string { return s.extra }

func baseQuery() sq.SelectBuilder {
	return sq.Select("*").From("users u")
}

func TestText_ApplyToQuery(t *testing.T) {
	tests := []struct {
		name     string
		filterer Filterer
		value    any
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "partial match",
			filterer: NewText("username", "u.username"),
			value:    "ada",
			wantSQL:  "SELECT * FROM users u WHERE u.username ILIKE ?",
			wantArgs: []any{"%ada%"},
		},
		{
			name:     "exact match",
			filterer: NewTextExact("username", "u.username"),
			value:    "ada",
			wantSQL:  "SELECT * FROM users u WHERE u.username = ?",
			wantArgs: []any{"ada"},
		},
		{
			name:     "empty value adds no constraint",
			filterer: NewText("username", "u.username"),
			value:    nil,
			wantSQL:  "SELECT * FROM users u",
			wantArgs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tt.filterer.ApplyToQuery(baseQuery(), tt.value)
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestText_AutoValidate_MaxLength(t *testing.T) {
	f := NewText("username", "u.username").WithMaxLength(5)
	s := &formSearcher{filters: []Filterer{f}}
	s.Set("username", "toolongvalue")

	var v Violations
	f.AutoValidate(s, &v)
	require.Len(t, v, 1)
	assert.Equal(t, "username", v[0].Field)
}

func TestChoice_InitRequiresChoicesOrProvider(t *testing.T) {
	f := NewChoice("role", "u.role")
	err := f.Init()
	require.Error(t, err)
}

func TestChoice_ProviderResolvedOnce(t *testing.T) {
	calls := 0
	f := NewChoice("role", "u.role").WithProvider(func() ([]string, error) {
		calls++
		return []string{"admin", "viewer"}, nil
	})
	require.NoError(t, f.Init())
	require.NoError(t, f.Init())
	assert.Equal(t, 1, calls)

	s := &formSearcher{filters: []Filterer{f}}
	s.Set("role", "editor")
	var v Violations
	f.AutoValidate(s, &v)
	require.Len(t, v, 1)
}

func TestChoice_MultipleRendersIn(t *testing.T) {
	f := NewChoice("role", "u.role", "admin", "viewer").Multiple()
	require.NoError(t, f.Init())

	val, err := f.ParseValue([]any{"admin", "viewer"})
	require.NoError(t, err)

	q, err := f.ApplyToQuery(baseQuery(), val)
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users u WHERE u.role IN (?,?)", sql)
	assert.Equal(t, []any{"admin", "viewer"}, args)
}

func TestBool_ParseValue(t *testing.T) {
	f := NewBool("enabled", "u.enabled")

	val, err := f.ParseValue("true")
	require.NoError(t, err)
	assert.Equal(t, true, val)

	val, err = f.ParseValue("")
	require.NoError(t, err)
	assert.Nil(t, val)

	_, err = f.ParseValue("maybe")
	require.Error(t, err)
}

func TestBind_DropsUnknownAndReportsParseFailures(t *testing.T) {
	filters := []Filterer{
		NewText("username", "u.username"),
		NewBool("enabled", "u.enabled"),
	}
	s := &formSearcher{filters: filters}

	violations := Bind(s, filters, Values{
		"username": "ada",
		"enabled":  "maybe",
		"rogue":    "ignored",
	})

	require.Len(t, violations, 1)
	assert.Equal(t, "enabled", violations[0].Field)
	assert.Equal(t, "ada", s.Get("username"))
	assert.Nil(t, s.Get("enabled"))
	assert.Nil(t, s.Get("rogue"))
}

func TestBind_MissingFieldClearsPreviousValue(t *testing.T) {
	filters := []Filterer{NewText("username", "u.username")}
	s := &formSearcher{filters: filters}
	s.Set("username", "stale")

	Bind(s, filters, Values{})
	assert.Nil(t, s.Get("username"))
}

func TestStorageValues_AllowList(t *testing.T) {
	filters := []Filterer{NewText("username", "u.username")}
	s := &formSearcher{filters: filters, extra: []string{"note"}}
	s.Set("username", "ada")
	s.Set("note", "kept")
	s.Set("connection", "never stored")
	s.Set("blank", "")

	vals := StorageValues(s, filters)
	assert.Equal(t, Values{"username": "ada", "note": "kept"}, vals)
}

func TestValidate_RespectsAutoValidationToggle(t *testing.T) {
	f := NewText("username", "u.username").WithMaxLength(3)
	s := &formSearcher{filters: []Filterer{f}}
	s.Set("username", "toolong")

	require.Len(t, Validate(s, s.filters), 1)

	disabled := &noValidationSearcher{formSearcher{filters: s.filters}}
	disabled.Set("username", "toolong")
	assert.Empty(t, Validate(disabled, s.filters))
}

type noValidationSearcher struct {
	formSearcher
}

func (s *noValidationSearcher) AutoValidationEnabled() bool { return false }
