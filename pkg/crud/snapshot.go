package crud

import (
	"crudgrid/pkg/paginator"
)

// ColumnHeader is the per-column render metadata of one grid snapshot.
type ColumnHeader struct {
	ID            string        `json:"id"`
	Label         string        `json:"label"`
	Sortable      bool          `json:"sortable"`
	Displayed     bool          `json:"displayed"`
	IsCurrentSort bool          `json:"isCurrentSort"`
	SortDirection SortDirection `json:"sortDirection,omitempty"`
}

// Snapshot is the grid state exposed to rendering: current sort, visible
// columns, pagination metadata and header metadata per column.
type Snapshot struct {
	GridName         string          `json:"gridName"`
	SortField        string          `json:"sortField"`
	SortDirection    SortDirection   `json:"sortDirection"`
	DisplayedColumns []string        `json:"displayedColumns"`
	Paginator        paginator.State `json:"paginator"`
	Columns          []ColumnHeader  `json:"columns"`
	Search           map[string]any  `json:"search,omitempty"`
	PageWindow       []int           `json:"pageWindow"`
}

// snapshot assembles the render snapshot for the current state.
func (m *Manager) snapshot(pg paginator.State) Snapshot {
	displayed := make(map[string]struct{}, len(m.state.DisplayedColumns))
	for _, id := range m.state.DisplayedColumns {
		displayed[id] = struct{}{}
	}

	headers := make([]ColumnHeader, 0, m.cfg.Columns.Len())
	for _, col := range m.cfg.Columns.Columns() {
		header := ColumnHeader{
			ID:       col.ID,
			Label:    m.columnLabel(col),
			Sortable: col.Sortable,
		}
		if _, ok := displayed[col.ID]; ok {
			header.Displayed = true
		}
		if col.ID == m.state.SortField {
			header.IsCurrentSort = true
			header.SortDirection = m.state.SortDirection
		}
		headers = append(headers, header)
	}

	return Snapshot{
		GridName:         m.cfg.Name,
		SortField:        m.state.SortField,
		SortDirection:    m.state.SortDirection,
		DisplayedColumns: append([]string(nil), m.state.DisplayedColumns...),
		Paginator:        pg,
		Columns:          headers,
		Search:           m.state.Search,
		PageWindow:       pg.PageWindow(2, 2),
	}
}

// columnLabel resolves and caches the display label for a column.
func (m *Manager) columnLabel(col Column) string {
	if m.labelCache == nil {
		m.labelCache = make(map[string]string, m.cfg.Columns.Len())
	}
	if label, ok := m.labelCache[col.ID]; ok {
		return label
	}
	label := col.Label
	if label == "" {
		label = col.ID
	}
	m.labelCache[col.ID] = label
	return label
}
