package crud

import (
	"fmt"
	"strings"

	"crudgrid/pkg/apperror"
	"crudgrid/pkg/crud/filter"
)

// SortDirection is the sort sense of a grid.
type SortDirection string

const (
	ASC  SortDirection = "ASC"
	DESC SortDirection = "DESC"
)

// ParseSortDirection parses a request-supplied sense value.
func ParseSortDirection(raw string) (SortDirection, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ASC":
		return ASC, true
	case "DESC":
		return DESC, true
	}
	return "", false
}

// DefaultResultsPerPage applies when a grid declares no page size.
const DefaultResultsPerPage = 20

// GridConfig is one named, reusable grid declaration: columns plus
// defaults. Immutable after Configure; shared across requests.
type GridConfig struct {
	Name                  string
	Columns               *Registry
	DefaultSort           string
	DefaultSortDirection  SortDirection
	DefaultResultsPerPage int

	// AllowedResultsPerPage restricts page sizes; empty allows any
	// positive value.
	AllowedResultsPerPage []int
}

// withDefaults fills derivable zero fields.
func (c GridConfig) withDefaults() GridConfig {
	if c.DefaultSort == "" && c.Columns != nil {
		c.DefaultSort = c.Columns.DefaultSortField()
	}
	if c.DefaultSortDirection == "" {
		c.DefaultSortDirection = ASC
	}
	if c.DefaultResultsPerPage <= 0 {
		c.DefaultResultsPerPage = DefaultResultsPerPage
	}
	return c
}

// Validate checks the declaration. Configuration errors are fatal and
// surface at setup time.
func (c GridConfig) Validate() error {
	if c.Name == "" {
		return apperror.NewConfiguration("grid name must not be empty")
	}
	if c.Columns == nil || c.Columns.Len() == 0 {
		return apperror.NewConfiguration(
			fmt.Sprintf("grid %q has no columns", c.Name))
	}
	if !c.Columns.IsSortable(c.DefaultSort) {
		return apperror.NewConfiguration(
			fmt.Sprintf("grid %q default sort %q is not a sortable column", c.Name, c.DefaultSort))
	}
	if len(c.AllowedResultsPerPage) > 0 && !c.resultsPerPageAllowed(c.DefaultResultsPerPage) {
		return apperror.NewConfiguration(
			fmt.Sprintf("grid %q default page size %d is not in the allowed list", c.Name, c.DefaultResultsPerPage))
	}
	return nil
}

func (c GridConfig) resultsPerPageAllowed(n int) bool {
	if n <= 0 {
		return false
	}
	if len(c.AllowedResultsPerPage) == 0 {
		return true
	}
	for _, allowed := range c.AllowedResultsPerPage {
		if n == allowed {
			return true
		}
	}
	return false
}

// SessionState is the per-user, per-grid display state: sort, page, page
// size, visible columns and the applied search values. Request-scoped;
// never shared across concurrent requests.
type SessionState struct {
	GridName string
	UserID   string

	SortField        string
	SortDirection    SortDirection
	Page             int
	ResultsPerPage   int
	DisplayedColumns []string

	// Search holds the applied, storage-safe search values.
	Search filter.Values

	cfg *GridConfig
}

// NewSessionState creates a fresh state holding the grid defaults.
func NewSessionState(cfg *GridConfig, userID string) *SessionState {
	s := &SessionState{
		GridName: cfg.Name,
		UserID:   userID,
		cfg:      cfg,
	}
	s.Reset()
	return s
}

// Reset returns the state to the grid defaults, dropping any persisted or
// request-supplied overrides including search values.
func (s *SessionState) Reset() {
	s.SortField = s.cfg.DefaultSort
	s.SortDirection = s.cfg.DefaultSortDirection
	s.Page = 1
	s.ResultsPerPage = s.cfg.DefaultResultsPerPage
	s.DisplayedColumns = append([]string(nil), s.cfg.Columns.DefaultDisplayedColumns()...)
	s.Search = nil
}

// ApplySort requests a new sort column. Unknown or unsortable fields are
// rejected, keeping the previous valid value.
func (s *SessionState) ApplySort(field string) bool {
	if !s.cfg.Columns.IsSortable(field) {
		return false
	}
	s.SortField = field
	return true
}

// ApplySortDirection requests a new sort sense ("asc"/"desc").
func (s *SessionState) ApplySortDirection(raw string) bool {
	dir, ok := ParseSortDirection(raw)
	if !ok {
		return false
	}
	s.SortDirection = dir
	return true
}

// ApplyPage requests a page number. Clamping against the result count
// happens later, at pagination time.
func (s *SessionState) ApplyPage(page int) bool {
	if page < 1 {
		return false
	}
	s.Page = page
	return true
}

// ApplyResultsPerPage requests a page size from the allowed list.
func (s *SessionState) ApplyResultsPerPage(n int) bool {
	if !s.cfg.resultsPerPageAllowed(n) {
		return false
	}
	s.ResultsPerPage = n
	return true
}

// ApplyDisplayedColumns requests a visible-column set. Sets naming unknown
// columns or hiding a mandatory column are rejected whole.
func (s *SessionState) ApplyDisplayedColumns(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	if err := s.cfg.Columns.ValidateDisplayed(ids); err != nil {
		return false
	}
	s.DisplayedColumns = s.cfg.Columns.NormalizeDisplayed(ids)
	return true
}

// ToRecord extracts the durable projection of the state. Search values are
// never persisted durably; they live in transient session storage only.
func (s *SessionState) ToRecord() Record {
	return Record{
		UserID:           s.UserID,
		GridName:         s.GridName,
		ResultsPerPage:   s.ResultsPerPage,
		DisplayedColumns: append([]string(nil), s.DisplayedColumns...),
		SortField:        s.SortField,
		SortDirection:    s.SortDirection,
	}
}

// ApplyRecord hydrates the state from a persisted record, leaving Search
// and Page untouched. Fields invalidated by a grid reconfiguration fall
// back to the defaults silently.
func (s *SessionState) ApplyRecord(rec Record) {
	s.ApplySort(rec.SortField)
	s.ApplySortDirection(string(rec.SortDirection))
	s.ApplyResultsPerPage(rec.ResultsPerPage)
	s.ApplyDisplayedColumns(rec.DisplayedColumns)
}

// Record is the durable projection of a SessionState for one
// (user, grid name) pair.
type Record struct {
	UserID           string        `db:"user_id" json:"userId"`
	GridName         string        `db:"crud_name" json:"gridName"`
	ResultsPerPage   int           `db:"results_displayed" json:"resultsPerPage"`
	DisplayedColumns []string      `db:"displayed_columns" json:"displayedColumns"`
	SortField        string        `db:"sort" json:"sortField"`
	SortDirection    SortDirection `db:"sense" json:"sortDirection"`
}

// Params carries the recognized request parameters for one grid render.
type Params struct {
	Sort             string
	Sense            string
	Page             int
	ResultsPerPage   int
	DisplayedColumns []string

	// Reset discards persisted and request overrides back to defaults.
	Reset bool

	// Submitted marks a search form submission carrying Search values.
	Submitted bool
	Search    filter.Values
}
