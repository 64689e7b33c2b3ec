package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"crudgrid/pkg/crud"
)

const settingsTable = "crud_user_settings"

// settingsRow mirrors the crud_user_settings table. displayed_columns is a
// JSON-encoded list.
type settingsRow struct {
	UserID           string `db:"user_id"`
	CrudName         string `db:"crud_name"`
	ResultsDisplayed int    `db:"results_displayed"`
	DisplayedColumns string `db:"displayed_columns"`
	Sort             string `db:"sort"`
	Sense            string `db:"sense"`
}

// SettingsRepo is the PostgreSQL implementation of crud.SettingsStore: one
// row per (user_id, crud_name), upserted on save. Last write wins; the
// database's own consistency guarantees are relied upon.
type SettingsRepo struct {
	db Querier
}

// NewSettingsRepo creates a settings repository over db.
func NewSettingsRepo(db Querier) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Load returns the settings record for (userID, gridName), nil when absent.
func (r *SettingsRepo) Load(ctx context.Context, userID, gridName string) (*crud.Record, error) {
	q := Builder().
		Select("user_id", "crud_name", "results_displayed", "displayed_columns", "sort", "sense").
		From(settingsTable).
		Where(squirrel.Eq{"user_id": userID, "crud_name": gridName}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build settings query: %w", err)
	}

	var row settingsRow
	if err := pgxscan.Get(ctx, r.db, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return rowToRecord(row)
}

// Save upserts the settings record.
func (r *SettingsRepo) Save(ctx context.Context, rec crud.Record) error {
	columns, err := json.Marshal(rec.DisplayedColumns)
	if err != nil {
		return fmt.Errorf("encode displayed columns: %w", err)
	}

	q := Builder().
		Insert(settingsTable).
		Columns("user_id", "crud_name", "results_displayed", "displayed_columns", "sort", "sense").
		Values(rec.UserID, rec.GridName, rec.ResultsPerPage, string(columns), rec.SortField, string(rec.SortDirection)).
		Suffix(`ON CONFLICT (user_id, crud_name) DO UPDATE SET
			results_displayed = EXCLUDED.results_displayed,
			displayed_columns = EXCLUDED.displayed_columns,
			sort = EXCLUDED.sort,
			sense = EXCLUDED.sense`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build settings upsert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// DeleteForUser removes all settings of a user. Called from the user
// deletion cascade.
func (r *SettingsRepo) DeleteForUser(ctx context.Context, userID string) error {
	q := Builder().
		Delete(settingsTable).
		Where(squirrel.Eq{"user_id": userID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build settings delete: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

func rowToRecord(row settingsRow) (*crud.Record, error) {
	var columns []string
	if row.DisplayedColumns != "" {
		if err := json.Unmarshal([]byte(row.DisplayedColumns), &columns); err != nil {
			return nil, fmt.Errorf("decode displayed columns: %w", err)
		}
	}
	return &crud.Record{
		UserID:           row.UserID,
		GridName:         row.CrudName,
		ResultsPerPage:   row.ResultsDisplayed,
		DisplayedColumns: columns,
		SortField:        row.Sort,
		SortDirection:    crud.SortDirection(row.Sense),
	}, nil
}
