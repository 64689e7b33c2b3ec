// Package paginator computes page metadata for grid rendering.
package paginator

// State describes one page of a result set. Derived, never persisted.
type State struct {
	TotalItems int64 `json:"totalItems"`
	PageSize   int   `json:"pageSize"`
	Page       int   `json:"page"`
	LastPage   int   `json:"lastPage"`
}

// Compute clamps requestedPage into [1, lastPage] where
// lastPage = max(1, ceil(totalItems/pageSize)).
func Compute(totalItems int64, pageSize, requestedPage int) State {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}

	lastPage := int(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		lastPage++
	}
	if lastPage < 1 {
		lastPage = 1
	}

	page := requestedPage
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}

	return State{
		TotalItems: totalItems,
		PageSize:   pageSize,
		Page:       page,
		LastPage:   lastPage,
	}
}

// Offset calculates the SQL offset for the current page.
func (s State) Offset() int {
	return (s.Page - 1) * s.PageSize
}

// HasPrevious reports whether a previous page exists.
func (s State) HasPrevious() bool {
	return s.Page > 1
}

// HasNext reports whether a next page exists.
func (s State) HasNext() bool {
	return s.Page < s.LastPage
}

// PageWindow returns the ordered page numbers to render as navigation
// links: up to maxBefore pages before the current page and maxAfter after,
// clipped to [1, lastPage], ascending, without duplicates.
func (s State) PageWindow(maxBefore, maxAfter int) []int {
	if maxBefore < 0 {
		maxBefore = 0
	}
	if maxAfter < 0 {
		maxAfter = 0
	}

	first := s.Page - maxBefore
	if first < 1 {
		first = 1
	}
	last := s.Page + maxAfter
	if last > s.LastPage {
		last = s.LastPage
	}

	window := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		window = append(window, p)
	}
	return window
}
