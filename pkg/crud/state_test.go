package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGridConfig(t *testing.T) GridConfig {
	t.Helper()
	cfg := GridConfig{
		Name:                  "users",
		Columns:               testRegistry(t),
		DefaultSort:           "username",
		DefaultSortDirection:  ASC,
		DefaultResultsPerPage: 10,
		AllowedResultsPerPage: []int{5, 10, 25, 50},
	}
	return cfg.withDefaults()
}

func TestGridConfig_Validate(t *testing.T) {
	cfg := testGridConfig(t)
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Name = ""
	require.Error(t, bad.Validate())

	bad = cfg
	bad.DefaultSort = "role"
	require.Error(t, bad.Validate(), "unsortable default sort")

	bad = cfg
	bad.DefaultResultsPerPage = 7
	require.Error(t, bad.Validate(), "page size outside allowed list")
}

func TestGridConfig_Defaults(t *testing.T) {
	cfg := GridConfig{Name: "users", Columns: testRegistry(t)}.withDefaults()
	assert.Equal(t, "username", cfg.DefaultSort)
	assert.Equal(t, ASC, cfg.DefaultSortDirection)
	assert.Equal(t, DefaultResultsPerPage, cfg.DefaultResultsPerPage)
}

func TestSessionState_Defaults(t *testing.T) {
	cfg := testGridConfig(t)
	s := NewSessionState(&cfg, "u1")

	assert.Equal(t, "username", s.SortField)
	assert.Equal(t, ASC, s.SortDirection)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 10, s.ResultsPerPage)
	assert.Equal(t, []string{"username", "first_name", "last_name"}, s.DisplayedColumns)
}

func TestSessionState_InvalidOverridesKeepPreviousValue(t *testing.T) {
	cfg := testGridConfig(t)
	s := NewSessionState(&cfg, "u1")

	assert.False(t, s.ApplySort("ghost"))
	assert.False(t, s.ApplySort("role"), "unsortable column")
	assert.Equal(t, "username", s.SortField)

	assert.False(t, s.ApplySortDirection("sideways"))
	assert.Equal(t, ASC, s.SortDirection)

	assert.False(t, s.ApplyPage(0))
	assert.Equal(t, 1, s.Page)

	assert.False(t, s.ApplyResultsPerPage(7))
	assert.Equal(t, 10, s.ResultsPerPage)

	assert.False(t, s.ApplyDisplayedColumns([]string{"role"}), "mandatory column hidden")
	assert.Equal(t, []string{"username", "first_name", "last_name"}, s.DisplayedColumns)
}

func TestSessionState_ValidOverrides(t *testing.T) {
	cfg := testGridConfig(t)
	s := NewSessionState(&cfg, "u1")

	assert.True(t, s.ApplySort("first_name"))
	assert.True(t, s.ApplySortDirection("desc"))
	assert.True(t, s.ApplyPage(3))
	assert.True(t, s.ApplyResultsPerPage(25))
	assert.True(t, s.ApplyDisplayedColumns([]string{"username", "role"}))

	assert.Equal(t, "first_name", s.SortField)
	assert.Equal(t, DESC, s.SortDirection)
	assert.Equal(t, 3, s.Page)
	assert.Equal(t, 25, s.ResultsPerPage)
	assert.Equal(t, []string{"username", "role"}, s.DisplayedColumns)
}

func TestSessionState_RecordRoundTrip(t *testing.T) {
	cfg := testGridConfig(t)
	s := NewSessionState(&cfg, "u1")
	s.ApplySort("last_name")
	s.ApplySortDirection("desc")
	s.ApplyResultsPerPage(50)
	s.ApplyDisplayedColumns([]string{"username", "last_name"})
	s.ApplyPage(4)

	rec := s.ToRecord()

	restored := NewSessionState(&cfg, "u1")
	restored.ApplyRecord(rec)

	// persisting then reloading reproduces the same view, except Page and
	// Search which are never part of the durable record
	assert.Equal(t, s.SortField, restored.SortField)
	assert.Equal(t, s.SortDirection, restored.SortDirection)
	assert.Equal(t, s.ResultsPerPage, restored.ResultsPerPage)
	assert.Equal(t, s.DisplayedColumns, restored.DisplayedColumns)
	assert.Equal(t, 1, restored.Page)
}

func TestSessionState_ApplyRecordWithStaleColumns(t *testing.T) {
	cfg := testGridConfig(t)
	s := NewSessionState(&cfg, "u1")

	// record from an older grid revision referencing a removed column
	s.ApplyRecord(Record{
		SortField:        "removed",
		SortDirection:    "DESC",
		ResultsPerPage:   25,
		DisplayedColumns: []string{"username", "removed"},
	})

	assert.Equal(t, "username", s.SortField, "stale sort falls back to default")
	assert.Equal(t, DESC, s.SortDirection)
	assert.Equal(t, 25, s.ResultsPerPage)
	assert.Equal(t, []string{"username", "first_name", "last_name"}, s.DisplayedColumns)
}

func TestSessionState_Reset(t *testing.T) {
	cfg := testGridConfig(t)
	s := NewSessionState(&cfg, "u1")
	s.ApplySort("last_name")
	s.ApplyPage(5)
	s.Search = map[string]any{"username": "ada"}

	s.Reset()

	assert.Equal(t, "username", s.SortField)
	assert.Equal(t, 1, s.Page)
	assert.Nil(t, s.Search)
}

func TestParseSortDirection(t *testing.T) {
	dir, ok := ParseSortDirection(" desc ")
	assert.True(t, ok)
	assert.Equal(t, DESC, dir)

	_, ok = ParseSortDirection("up")
	assert.False(t, ok)
}
