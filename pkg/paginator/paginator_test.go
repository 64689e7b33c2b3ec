package paginator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_Clamping(t *testing.T) {
	tests := []struct {
		name          string
		totalItems    int64
		pageSize      int
		requestedPage int
		wantPage      int
		wantLastPage  int
	}{
		{"first page", 25, 10, 1, 1, 3},
		{"middle page", 25, 10, 2, 2, 3},
		{"exact last page", 25, 10, 3, 3, 3},
		{"past the end", 25, 10, 99, 3, 3},
		{"zero page", 25, 10, 0, 1, 3},
		{"negative page", 25, 10, -5, 1, 3},
		{"no items", 0, 10, 4, 1, 1},
		{"exact multiple", 30, 10, 3, 3, 3},
		{"single item", 1, 10, 7, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Compute(tt.totalItems, tt.pageSize, tt.requestedPage)
			assert.Equal(t, tt.wantPage, st.Page)
			assert.Equal(t, tt.wantLastPage, st.LastPage)
		})
	}
}

func TestCompute_InvalidPageSize(t *testing.T) {
	st := Compute(25, 0, 1)
	assert.Equal(t, 1, st.PageSize)
	assert.Equal(t, 25, st.LastPage)
}

func TestState_Offset(t *testing.T) {
	st := Compute(25, 10, 2)
	assert.Equal(t, 10, st.Offset())

	st = Compute(25, 10, 1)
	assert.Equal(t, 0, st.Offset())
}

func TestState_PageWindow(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int64
		page       int
		maxBefore  int
		maxAfter   int
		want       []int
	}{
		{"centered", 100, 5, 2, 2, []int{3, 4, 5, 6, 7}},
		{"clipped at start", 100, 1, 2, 2, []int{1, 2, 3}},
		{"clipped at end", 100, 10, 2, 2, []int{8, 9, 10}},
		{"window wider than pages", 20, 1, 5, 5, []int{1, 2}},
		{"no neighbors", 100, 4, 0, 0, []int{4}},
		{"negative bounds treated as zero", 100, 4, -1, -1, []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Compute(tt.totalItems, 10, tt.page)
			assert.Equal(t, tt.want, st.PageWindow(tt.maxBefore, tt.maxAfter))
		})
	}
}

func TestState_Navigation(t *testing.T) {
	st := Compute(25, 10, 2)
	assert.True(t, st.HasPrevious())
	assert.True(t, st.HasNext())

	st = Compute(25, 10, 1)
	assert.False(t, st.HasPrevious())

	st = Compute(25, 10, 3)
	assert.False(t, st.HasNext())
}
