package filter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudgrid/pkg/apperror"
)

func TestEntityRef_InitRequiresResolver(t *testing.T) {
	f := NewEntityRef("department", "u.department_id", nil)
	err := f.Init()
	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestEntityRef_ParseValue(t *testing.T) {
	f := NewEntityRef("department", "u.department_id", func(uuid.UUID) bool { return true })
	require.NoError(t, f.Init())

	id := uuid.New()
	val, err := f.ParseValue(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, val)

	val, err = f.ParseValue("")
	require.NoError(t, err)
	assert.Nil(t, val)

	_, err = f.ParseValue("not-a-uuid")
	require.Error(t, err)
}

func TestEntityRef_AutoValidate_UnknownReference(t *testing.T) {
	known := uuid.New()
	f := NewEntityRef("department", "u.department_id", func(id uuid.UUID) bool { return id == known })
	require.NoError(t, f.Init())

	s := &formSearcher{filters: []Filterer{f}}
	s.Set("department", uuid.New())

	var v Violations
	f.AutoValidate(s, &v)
	require.Len(t, v, 1)

	s.Set("department", known)
	v = nil
	f.AutoValidate(s, &v)
	assert.Empty(t, v)
}
