// Package demo declares the reference grid shipped with the server: a
// paginated, sortable, filterable user directory.
package demo

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"crudgrid/internal/storage/postgres"
	"crudgrid/pkg/crud"
	"crudgrid/pkg/crud/filter"
)

// GridName identifies the user directory grid in settings storage.
const GridName = "users"

// Roles selectable in the role filter.
var Roles = []string{"admin", "manager", "viewer"}

// UserRow is one row of the user directory.
type UserRow struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	FirstName      string    `db:"first_name" json:"firstName"`
	LastName       string    `db:"last_name" json:"lastName"`
	Role           string    `db:"role" json:"role"`
	Enabled        bool      `db:"enabled" json:"enabled"`
	DepartmentName *string   `db:"department_name" json:"departmentName,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// UsersGrid declares the user directory grid: columns, defaults and the
// allowed page sizes.
func UsersGrid() (crud.GridConfig, error) {
	registry := crud.NewRegistry()
	cols := []crud.Column{
		{ID: "username", SortExpr: "u.username", Label: "Username", Sortable: true, Mandatory: true},
		{ID: "first_name", SortExpr: "u.first_name", Label: "First name", Sortable: true, DefaultDisplayed: true},
		{ID: "last_name", SortExpr: "u.last_name", Label: "Last name", Sortable: true, DefaultDisplayed: true},
		{ID: "role", Label: "Role", DefaultDisplayed: true},
		{ID: "department", SortExpr: "d.name", Label: "Department", Sortable: true},
		{ID: "created_at", SortExpr: "u.created_at", Label: "Created", Sortable: true, DefaultDisplayed: true},
	}
	for _, col := range cols {
		if err := registry.Register(col); err != nil {
			return crud.GridConfig{}, err
		}
	}

	return crud.GridConfig{
		Name:                  GridName,
		Columns:               registry,
		DefaultSort:           "username",
		DefaultSortDirection:  crud.ASC,
		DefaultResultsPerPage: 10,
		AllowedResultsPerPage: []int{5, 10, 25, 50},
	}, nil
}

// BaseQuery is the unconstrained user directory query. Filters, sort and
// pagination are folded in per request.
func BaseQuery() sq.SelectBuilder {
	return postgres.Builder().
		Select(
			"u.id",
			"u.username",
			"u.first_name",
			"u.last_name",
			"u.role",
			"u.enabled",
			"d.name AS department_name",
			"u.created_at",
		).
		From("users u").
		LeftJoin("departments d ON d.id = u.department_id")
}

// UsersSearcher is the user directory search form.
type UsersSearcher struct {
	filter.Base

	departmentExists filter.RefResolver
}

// NewUsersSearcher creates the search form. departmentExists answers
// whether a department id is known; it is a required collaborator of the
// department filter.
func NewUsersSearcher(departmentExists filter.RefResolver) *UsersSearcher {
	return &UsersSearcher{departmentExists: departmentExists}
}

// ConfigureFieldFilters declares the searchable fields.
func (s *UsersSearcher) ConfigureFieldFilters() []filter.Filterer {
	return []filter.Filterer{
		filter.NewText("username", "u.username").WithLabel("Username"),
		filter.NewText("lastName", "u.last_name").WithLabel("Last name"),
		filter.NewChoice("role", "u.role", Roles...).WithLabel("Role").Multiple(),
		filter.NewBool("enabled", "u.enabled"),
		filter.NewEntityRef("department", "u.department_id", s.departmentExists),
		filter.NewDateRange("created", "u.created_at"),
	}
}
