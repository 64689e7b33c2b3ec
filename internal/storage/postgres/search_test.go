package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudgrid/pkg/crud"
	"crudgrid/pkg/crud/filter"
)

// fakeQuerier records executed statements.
type fakeQuerier struct {
	sql  string
	args []any
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql = sql
	q.args = args
	return pgconn.CommandTag{}, nil
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}

type errRow struct{}

func (errRow) Scan(...any) error { return errors.New("not implemented") }

func TestBuilder_DollarPlaceholders(t *testing.T) {
	sql, args, err := Builder().
		Select("id").
		From("users").
		Where("username = ?", "ada").
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE username = $1", sql)
	assert.Equal(t, []any{"ada"}, args)
}

func TestSearchRepo_SaveSmallPayloadUncompressed(t *testing.T) {
	db := &fakeQuerier{}
	repo, err := NewSearchRepo(db)
	require.NoError(t, err)

	vals := filter.Values{"username": "ada"}
	require.NoError(t, repo.SaveSearch(context.Background(), "u1", "users", vals))

	assert.Contains(t, db.sql, "INSERT INTO crud_search_session")
	assert.Contains(t, db.sql, "ON CONFLICT (user_id, crud_name)")
	require.Len(t, db.args, 4)
	assert.Equal(t, "u1", db.args[0])
	assert.Equal(t, "users", db.args[1])
	assert.Equal(t, false, db.args[3])

	payload, ok := db.args[2].([]byte)
	require.True(t, ok)
	var decoded filter.Values
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, vals, decoded)
}

func TestSearchRepo_LargePayloadCompressed(t *testing.T) {
	db := &fakeQuerier{}
	repo, err := NewSearchRepo(db)
	require.NoError(t, err)

	vals := filter.Values{"notes": strings.Repeat("searchable text ", 200)}
	require.NoError(t, repo.SaveSearch(context.Background(), "u1", "users", vals))

	require.Len(t, db.args, 4)
	assert.Equal(t, true, db.args[3])

	payload, ok := db.args[2].([]byte)
	require.True(t, ok)

	raw, err := repo.decoder.DecodeAll(payload, nil)
	require.NoError(t, err)
	var decoded filter.Values
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, vals, decoded)
}

func TestSearchRepo_ClearSearch(t *testing.T) {
	db := &fakeQuerier{}
	repo, err := NewSearchRepo(db)
	require.NoError(t, err)

	require.NoError(t, repo.ClearSearch(context.Background(), "u1", "users"))
	assert.Contains(t, db.sql, "DELETE FROM crud_search_session")
	assert.ElementsMatch(t, []any{"u1", "users"}, db.args)
}

func TestSettingsRepo_SaveUpsert(t *testing.T) {
	db := &fakeQuerier{}
	repo := NewSettingsRepo(db)

	rec := crud.Record{
		UserID:           "u1",
		GridName:         "users",
		ResultsPerPage:   25,
		DisplayedColumns: []string{"username", "last_name"},
		SortField:        "last_name",
		SortDirection:    crud.DESC,
	}
	require.NoError(t, repo.Save(context.Background(), rec))

	assert.Contains(t, db.sql, "INSERT INTO crud_user_settings")
	assert.Contains(t, db.sql, "ON CONFLICT (user_id, crud_name)")
	require.Len(t, db.args, 6)
	assert.Equal(t, "u1", db.args[0])
	assert.Equal(t, "users", db.args[1])
	assert.Equal(t, 25, db.args[2])
	assert.Equal(t, `["username","last_name"]`, db.args[3])
	assert.Equal(t, "last_name", db.args[4])
	assert.Equal(t, "DESC", db.args[5])
}

func TestSettingsRepo_DeleteForUser(t *testing.T) {
	db := &fakeQuerier{}
	repo := NewSettingsRepo(db)

	require.NoError(t, repo.DeleteForUser(context.Background(), "u1"))
	assert.Contains(t, db.sql, "DELETE FROM crud_user_settings")
	assert.Equal(t, []any{"u1"}, db.args)
}

func TestRowToRecord(t *testing.T) {
	rec, err := rowToRecord(settingsRow{
		UserID:           "u1",
		CrudName:         "users",
		ResultsDisplayed: 10,
		DisplayedColumns: `["username"]`,
		Sort:             "username",
		Sense:            "ASC",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"username"}, rec.DisplayedColumns)
	assert.Equal(t, crud.ASC, rec.SortDirection)

	rec, err = rowToRecord(settingsRow{UserID: "u1", CrudName: "users"})
	require.NoError(t, err)
	assert.Nil(t, rec.DisplayedColumns)

	_, err = rowToRecord(settingsRow{DisplayedColumns: "not json"})
	require.Error(t, err)
}
