package crud

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"crudgrid/pkg/apperror"
	"crudgrid/pkg/crud/filter"
	"crudgrid/pkg/identity"
	"crudgrid/pkg/logger"
	"crudgrid/pkg/paginator"
)

var tracer = otel.Tracer("crudgrid/crud")

// Manager orchestrates one grid render: it merges session state, binds and
// validates the search form, folds filters and sort into the base query
// and exposes the snapshot renderers need.
//
// Lifecycle: NewManager -> Configure -> Load -> (ProcessForm)? -> Run.
// A Manager instance is request-scoped once Load has run.
type Manager struct {
	cfg      GridConfig
	searcher filter.Searcher
	filters  []filter.Filterer
	base     sq.SelectBuilder

	settings SettingsStore
	searches SearchStore

	state      *SessionState
	configured bool
	loaded     bool

	// render-only label cache, reset by ClearTemplate
	labelCache map[string]string
}

// Option configures a Manager.
type Option func(*Manager)

// WithSettingsStore attaches durable preference storage.
func WithSettingsStore(s SettingsStore) Option {
	return func(m *Manager) { m.settings = s }
}

// WithSearchStore attaches transient search-value storage.
func WithSearchStore(s SearchStore) Option {
	return func(m *Manager) { m.searches = s }
}

// NewManager creates a manager for one grid declaration.
func NewManager(cfg GridConfig, opts ...Option) *Manager {
	m := &Manager{cfg: cfg.withDefaults()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configure binds the searcher and the base query. It validates the grid
// declaration, memoizes the filter list and runs each filter's Init.
// Calling Configure twice is a configuration error.
func (m *Manager) Configure(searcher filter.Searcher, base sq.SelectBuilder) error {
	if m.configured {
		return apperror.NewConfiguration(
			fmt.Sprintf("grid %q is already configured", m.cfg.Name))
	}
	if err := m.cfg.Validate(); err != nil {
		return err
	}
	if searcher == nil {
		return apperror.NewConfiguration(
			fmt.Sprintf("grid %q has no searcher", m.cfg.Name))
	}

	filters := searcher.ConfigureFieldFilters()
	seen := make(map[string]struct{}, len(filters))
	for _, f := range filters {
		if _, dup := seen[f.Field()]; dup {
			return apperror.NewConfiguration(
				fmt.Sprintf("duplicate filter field %q in grid %q", f.Field(), m.cfg.Name))
		}
		seen[f.Field()] = struct{}{}
		if err := f.Init(); err != nil {
			return err
		}
	}

	m.searcher = searcher
	m.filters = filters
	m.base = base
	m.configured = true
	return nil
}

// Load builds the session state for this request: grid defaults, then the
// persisted user settings, then the request overrides — highest wins. An
// explicit reset discards everything back to the defaults. Invalid
// overrides are corrected silently (stale links and bookmarks are
// expected) and logged at debug level.
func (m *Manager) Load(ctx context.Context, params Params) error {
	if !m.configured {
		return apperror.NewIllegalState("grid is not configured")
	}

	userID := identity.GetUserID(ctx)
	state := NewSessionState(&m.cfg, userID)

	if m.settings != nil && userID != "" {
		rec, err := m.settings.Load(ctx, userID, m.cfg.Name)
		if err != nil {
			return apperror.NewInternal(err).WithDetail("grid", m.cfg.Name)
		}
		if rec != nil {
			state.ApplyRecord(*rec)
		}
	}

	m.state = state
	m.loaded = true

	if err := m.hydrateSearch(ctx); err != nil {
		return err
	}

	if params.Reset {
		state.Reset()
		if m.searches != nil {
			if err := m.searches.ClearSearch(ctx, userID, m.cfg.Name); err != nil {
				return apperror.NewInternal(err).WithDetail("grid", m.cfg.Name)
			}
		}
		return nil
	}

	m.applyOverrides(ctx, params)
	return nil
}

// hydrateSearch restores the stored search values through each filter's
// ParseValue. Values that no longer parse (grid reconfiguration) are
// dropped silently.
func (m *Manager) hydrateSearch(ctx context.Context) error {
	if m.searches == nil {
		return nil
	}
	stored, err := m.searches.LoadSearch(ctx, m.state.UserID, m.cfg.Name)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("grid", m.cfg.Name)
	}
	if len(stored) == 0 {
		return nil
	}
	if violations := filter.Bind(m.searcher, m.filters, stored); !violations.Empty() {
		logger.Debug(ctx, "dropped stale search values",
			"grid", m.cfg.Name, "fields", violations.ByField())
	}
	m.state.Search = filter.StorageValues(m.searcher, m.filters)
	return nil
}

func (m *Manager) applyOverrides(ctx context.Context, params Params) {
	if params.Sort != "" && !m.state.ApplySort(params.Sort) {
		logger.Debug(ctx, "ignored invalid sort override",
			"grid", m.cfg.Name, "sort", params.Sort)
	}
	if params.Sense != "" && !m.state.ApplySortDirection(params.Sense) {
		logger.Debug(ctx, "ignored invalid sense override",
			"grid", m.cfg.Name, "sense", params.Sense)
	}
	if params.Page != 0 && !m.state.ApplyPage(params.Page) {
		logger.Debug(ctx, "ignored invalid page override",
			"grid", m.cfg.Name, "page", params.Page)
	}
	if params.ResultsPerPage != 0 && !m.state.ApplyResultsPerPage(params.ResultsPerPage) {
		logger.Debug(ctx, "ignored invalid page size override",
			"grid", m.cfg.Name, "resultsPerPage", params.ResultsPerPage)
	}
	if len(params.DisplayedColumns) > 0 && !m.state.ApplyDisplayedColumns(params.DisplayedColumns) {
		logger.Debug(ctx, "ignored invalid column visibility override",
			"grid", m.cfg.Name, "columns", params.DisplayedColumns)
	}
}

// ProcessForm binds the submitted search values into the searcher and runs
// the auto-validation pass. On violations the previous search state stays
// applied and the violations are returned as data for form re-rendering.
// On success the storage-safe values replace the search state and a new
// search starts back at page one.
func (m *Manager) ProcessForm(ctx context.Context, params Params) (filter.Violations, error) {
	if !m.loaded {
		return nil, apperror.NewIllegalState("load the grid state before processing the form")
	}
	if !params.Submitted {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "crud.process_form")
	defer span.End()
	span.SetAttributes(attribute.String("grid", m.cfg.Name))

	m.searcher.SetSubmitted(true)
	violations := filter.Bind(m.searcher, m.filters, params.Search)
	violations = append(violations, filter.Validate(m.searcher, m.filters)...)
	if !violations.Empty() {
		return violations, nil
	}

	m.state.Search = filter.StorageValues(m.searcher, m.filters)
	m.state.Page = 1

	if m.searches != nil {
		if err := m.searches.SaveSearch(ctx, m.state.UserID, m.cfg.Name, m.state.Search); err != nil {
			return nil, apperror.NewInternal(err).WithDetail("grid", m.cfg.Name)
		}
	}
	return nil, nil
}

// buildFiltered folds the field filters and the global query hook into the
// base query, without sort or pagination. Used for counting.
func (m *Manager) buildFiltered() (sq.SelectBuilder, error) {
	q := m.base
	for _, f := range m.filters {
		value := m.state.Search[f.Field()]
		next, err := f.ApplyToQuery(q, value)
		if err != nil {
			return q, apperror.NewQueryBuild(
				fmt.Sprintf("filter %q cannot be applied", f.Field())).WithCause(err)
		}
		q = next
	}
	return m.searcher.GlobalChangeQuery(q), nil
}

// BuildQuery produces the final query: filters, global hook, sort and
// pagination bounds. Building twice without re-processing the form yields
// the same query; the base builder is never mutated.
func (m *Manager) BuildQuery() (sq.SelectBuilder, error) {
	if !m.loaded {
		return sq.SelectBuilder{}, apperror.NewIllegalState("load the grid state before building the query")
	}

	q, err := m.buildFiltered()
	if err != nil {
		return q, err
	}

	col, err := m.cfg.Columns.Get(m.state.SortField)
	if err != nil {
		return q, apperror.NewQueryBuild(
			fmt.Sprintf("sort column %q is not registered", m.state.SortField)).WithCause(err)
	}
	if col.SortExpr == "" {
		return q, apperror.NewQueryBuild(
			fmt.Sprintf("column %q has no sort expression", col.ID))
	}

	q = q.OrderBy(col.SortExpr + " " + string(m.state.SortDirection))
	q = q.Limit(uint64(m.state.ResultsPerPage)).
		Offset(uint64((m.state.Page - 1) * m.state.ResultsPerPage))
	return q, nil
}

// Run executes the grid: counts the filtered rows, clamps the page,
// selects the page slice into dest and returns the render snapshot.
func (m *Manager) Run(ctx context.Context, provider QueryProvider, dest any) (Snapshot, error) {
	if !m.loaded {
		return Snapshot{}, apperror.NewIllegalState("load the grid state before running the grid")
	}

	ctx, span := tracer.Start(ctx, "crud.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("grid", m.cfg.Name),
		attribute.String("sort", m.state.SortField),
	)

	filtered, err := m.buildFiltered()
	if err != nil {
		return Snapshot{}, err
	}
	total, err := provider.Count(ctx, filtered)
	if err != nil {
		return Snapshot{}, apperror.NewInternal(err).WithDetail("grid", m.cfg.Name)
	}

	pg := paginator.Compute(total, m.state.ResultsPerPage, m.state.Page)
	m.state.Page = pg.Page

	q, err := m.BuildQuery()
	if err != nil {
		return Snapshot{}, err
	}
	if err := provider.Select(ctx, q, dest); err != nil {
		return Snapshot{}, apperror.NewInternal(err).WithDetail("grid", m.cfg.Name)
	}

	return m.snapshot(pg), nil
}

// SaveSettings persists the current display preferences as the user's
// durable settings for this grid.
func (m *Manager) SaveSettings(ctx context.Context) error {
	if !m.loaded {
		return apperror.NewIllegalState("load the grid state before saving settings")
	}
	if m.settings == nil {
		return apperror.NewConfiguration(
			fmt.Sprintf("grid %q has no settings store", m.cfg.Name))
	}
	if m.state.UserID == "" {
		return apperror.NewUnauthorized("anonymous users cannot save grid settings")
	}

	ctx, span := tracer.Start(ctx, "crud.save_settings")
	defer span.End()

	if err := m.settings.Save(ctx, m.state.ToRecord()); err != nil {
		return apperror.NewInternal(err).WithDetail("grid", m.cfg.Name)
	}
	return nil
}

// State exposes the merged session state for query construction and
// rendering.
func (m *Manager) State() *SessionState {
	return m.state
}

// Searcher returns the bound form searcher.
func (m *Manager) Searcher() filter.Searcher {
	return m.searcher
}

// ClearTemplate resets render-only transient accumulation between uses of
// the same manager instance. Session state is untouched.
func (m *Manager) ClearTemplate() {
	m.labelCache = nil
}
