package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crudgrid/internal/demo"
	"crudgrid/internal/http/v1/dto"
	"crudgrid/internal/storage/postgres"
	"crudgrid/pkg/apperror"
	"crudgrid/pkg/crud"
)

// GridHandler serves the user directory grid: list, search, settings.
type GridHandler struct {
	*BaseHandler
	cfg      crud.GridConfig
	db       postgres.Querier
	settings *postgres.SettingsRepo
	searches *postgres.SearchRepo
	provider *postgres.Provider
}

// NewGridHandler creates the grid handler and validates the grid
// declaration once at startup.
func NewGridHandler(base *BaseHandler, db postgres.Querier) (*GridHandler, error) {
	cfg, err := demo.UsersGrid()
	if err != nil {
		return nil, err
	}
	searches, err := postgres.NewSearchRepo(db)
	if err != nil {
		return nil, err
	}
	return &GridHandler{
		BaseHandler: base,
		cfg:         cfg,
		db:          db,
		settings:    postgres.NewSettingsRepo(db),
		searches:    searches,
		provider:    postgres.NewProvider(db),
	}, nil
}

// newManager builds a request-scoped manager bound to the user directory
// searcher and base query.
func (h *GridHandler) newManager(c *gin.Context) (*crud.Manager, error) {
	mgr := crud.NewManager(h.cfg,
		crud.WithSettingsStore(h.settings),
		crud.WithSearchStore(h.searches),
	)
	searcher := demo.NewUsersSearcher(demo.DepartmentExists(c.Request.Context(), h.db))
	if err := mgr.Configure(searcher, demo.BaseQuery()); err != nil {
		return nil, err
	}
	return mgr, nil
}

// run executes the grid and writes the page response.
func (h *GridHandler) run(c *gin.Context, mgr *crud.Manager) {
	var rows []demo.UserRow
	snap, err := mgr.Run(c.Request.Context(), h.provider, &rows)
	if err != nil {
		h.Error(c, err)
		return
	}
	if rows == nil {
		rows = []demo.UserRow{}
	}
	c.JSON(http.StatusOK, dto.GridResponse{Grid: snap, Rows: rows})
}

// List handles GET /grids/users
func (h *GridHandler) List(c *gin.Context) {
	var query dto.GridQuery
	if !h.BindQuery(c, &query) {
		return
	}

	mgr, err := h.newManager(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := mgr.Load(c.Request.Context(), query.ToParams()); err != nil {
		h.Error(c, err)
		return
	}
	h.run(c, mgr)
}

// Search handles POST /grids/users/search
func (h *GridHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	mgr, err := h.newManager(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := mgr.Load(c.Request.Context(), crud.Params{}); err != nil {
		h.Error(c, err)
		return
	}

	violations, err := mgr.ProcessForm(c.Request.Context(), crud.Params{
		Submitted: true,
		Search:    req.ToValues(),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	if !violations.Empty() {
		c.JSON(http.StatusUnprocessableEntity, dto.ViolationsResponse{
			Violations: violations.ByField(),
		})
		return
	}
	h.run(c, mgr)
}

// Reset handles POST /grids/users/reset
// Drops the stored search values and renders the grid back at its defaults.
func (h *GridHandler) Reset(c *gin.Context) {
	mgr, err := h.newManager(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := mgr.Load(c.Request.Context(), crud.Params{Reset: true}); err != nil {
		h.Error(c, err)
		return
	}
	h.run(c, mgr)
}

// SaveSettings handles PUT /grids/users/settings
func (h *GridHandler) SaveSettings(c *gin.Context) {
	var req dto.SettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	mgr, err := h.newManager(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := mgr.Load(c.Request.Context(), req.ToParams()); err != nil {
		h.Error(c, err)
		return
	}
	if err := mgr.SaveSettings(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, mgr.State().ToRecord())
}

// DeleteSettings handles DELETE /grids/settings
// Removes every persisted grid preference of the current user.
func (h *GridHandler) DeleteSettings(c *gin.Context) {
	userID := h.GetUserID(c)
	if userID == "" {
		h.Error(c, apperror.NewUnauthorized("anonymous users have no saved settings"))
		return
	}
	if err := h.settings.DeleteForUser(c.Request.Context(), userID); err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Columns handles GET /grids/users/columns
// Exposes the column declarations for building the grid UI.
func (h *GridHandler) Columns(c *gin.Context) {
	cols := h.cfg.Columns.Columns()
	out := make([]gin.H, 0, len(cols))
	for _, col := range cols {
		out = append(out, gin.H{
			"id":               col.ID,
			"label":            col.Label,
			"sortable":         col.Sortable,
			"defaultDisplayed": col.DefaultDisplayed,
			"mandatory":        col.Mandatory,
		})
	}
	c.JSON(http.StatusOK, gin.H{"columns": out, "filters": h.filterFields()})
}

// filterFields lists the declared search field ids.
func (h *GridHandler) filterFields() []string {
	searcher := demo.NewUsersSearcher(func(uuid.UUID) bool { return true })
	fields := make([]string, 0)
	for _, f := range searcher.ConfigureFieldFilters() {
		fields = append(fields, f.Field())
	}
	return fields
}
