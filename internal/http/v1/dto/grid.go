// Package dto defines request and response shapes for the v1 API.
package dto

import (
	"time"

	"crudgrid/internal/demo"
	"crudgrid/pkg/crud"
	"crudgrid/pkg/crud/filter"
)

// GridQuery carries the recognized grid query parameters. Unknown values
// are corrected to the last valid state, never rejected.
type GridQuery struct {
	Sort             string   `form:"sort"`
	Sense            string   `form:"sense"`
	Page             int      `form:"page"`
	ResultsPerPage   int      `form:"resultsPerPage"`
	DisplayedColumns []string `form:"displayedColumns"`
	Reset            bool     `form:"reset"`
}

// ToParams converts the query to grid parameters.
func (q GridQuery) ToParams() crud.Params {
	return crud.Params{
		Sort:             q.Sort,
		Sense:            q.Sense,
		Page:             q.Page,
		ResultsPerPage:   q.ResultsPerPage,
		DisplayedColumns: q.DisplayedColumns,
		Reset:            q.Reset,
	}
}

// SearchRequest is a search form submission: raw field values keyed by
// field id. Unknown fields are dropped during binding.
type SearchRequest map[string]any

// ToValues converts the submission to filter values.
func (r SearchRequest) ToValues() filter.Values {
	return filter.Values(r)
}

// SettingsRequest carries display preferences to persist.
type SettingsRequest struct {
	Sort             string   `json:"sort"`
	Sense            string   `json:"sense"`
	ResultsPerPage   int      `json:"resultsPerPage"`
	DisplayedColumns []string `json:"displayedColumns"`
}

// ToParams converts the request to grid parameters.
func (r SettingsRequest) ToParams() crud.Params {
	return crud.Params{
		Sort:             r.Sort,
		Sense:            r.Sense,
		ResultsPerPage:   r.ResultsPerPage,
		DisplayedColumns: r.DisplayedColumns,
	}
}

// GridResponse is one rendered grid page.
type GridResponse struct {
	Grid crud.Snapshot  `json:"grid"`
	Rows []demo.UserRow `json:"rows"`
}

// ViolationsResponse reports search form validation failures.
type ViolationsResponse struct {
	Violations map[string][]string `json:"violations"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Username    string    `json:"username"`
}
