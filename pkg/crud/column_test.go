package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudgrid/pkg/apperror"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	cols := []Column{
		{ID: "username", SortExpr: "u.username", Sortable: true, Mandatory: true},
		{ID: "first_name", SortExpr: "u.first_name", Sortable: true, DefaultDisplayed: true},
		{ID: "last_name", SortExpr: "u.last_name", Sortable: true, DefaultDisplayed: true},
		{ID: "role"},
	}
	for _, c := range cols {
		require.NoError(t, r.Register(c))
	}
	return r
}

func TestRegistry_Register(t *testing.T) {
	r := testRegistry(t)

	err := r.Register(Column{ID: "username"})
	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))

	err = r.Register(Column{})
	require.Error(t, err)
}

func TestRegistry_MandatoryImpliesDisplayed(t *testing.T) {
	r := testRegistry(t)
	c, err := r.Get("username")
	require.NoError(t, err)
	assert.True(t, c.DefaultDisplayed)
}

func TestRegistry_UnknownColumn(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Get("ghost")
	require.Error(t, err)
	assert.True(t, apperror.IsUnknownColumn(err))
}

func TestRegistry_DefaultSortField(t *testing.T) {
	r := testRegistry(t)
	assert.Equal(t, "username", r.DefaultSortField())

	empty := NewRegistry()
	require.NoError(t, empty.Register(Column{ID: "role"}))
	assert.Equal(t, "", empty.DefaultSortField())
}

func TestRegistry_DefaultDisplayedColumns(t *testing.T) {
	r := testRegistry(t)
	assert.Equal(t, []string{"username", "first_name", "last_name"}, r.DefaultDisplayedColumns())
}

func TestRegistry_ValidateDisplayed(t *testing.T) {
	r := testRegistry(t)

	assert.NoError(t, r.ValidateDisplayed([]string{"username", "role"}))

	err := r.ValidateDisplayed([]string{"username", "ghost"})
	require.Error(t, err)
	assert.True(t, apperror.IsUnknownColumn(err))

	// hiding the mandatory column is rejected
	err = r.ValidateDisplayed([]string{"role"})
	require.Error(t, err)
}

func TestRegistry_NormalizeDisplayed(t *testing.T) {
	r := testRegistry(t)

	// registration order wins, mandatory always included
	got := r.NormalizeDisplayed([]string{"role", "first_name"})
	assert.Equal(t, []string{"username", "first_name", "role"}, got)
}
