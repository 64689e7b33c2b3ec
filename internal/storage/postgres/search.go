package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"crudgrid/pkg/crud/filter"
)

const searchTable = "crud_search_session"

// compressThreshold is the payload size above which search values are
// zstd-compressed before storage.
const compressThreshold = 1024

// searchRow mirrors the crud_search_session table.
type searchRow struct {
	UserID     string `db:"user_id"`
	CrudName   string `db:"crud_name"`
	Payload    []byte `db:"payload"`
	Compressed bool   `db:"compressed"`
}

// SearchRepo is the PostgreSQL implementation of crud.SearchStore. Search
// values are transient per-session data: serialized to JSON and, above the
// threshold, zstd-compressed.
type SearchRepo struct {
	db      Querier
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewSearchRepo creates a search-session repository over db.
func NewSearchRepo(db Querier) (*SearchRepo, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &SearchRepo{db: db, encoder: encoder, decoder: decoder}, nil
}

// LoadSearch returns the stored search values, nil when absent.
func (r *SearchRepo) LoadSearch(ctx context.Context, userID, gridName string) (filter.Values, error) {
	q := Builder().
		Select("user_id", "crud_name", "payload", "compressed").
		From(searchTable).
		Where(squirrel.Eq{"user_id": userID, "crud_name": gridName}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	var row searchRow
	if err := pgxscan.Get(ctx, r.db, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load search values: %w", err)
	}

	payload := row.Payload
	if row.Compressed {
		payload, err = r.decoder.DecodeAll(row.Payload, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress search values: %w", err)
		}
	}

	var vals filter.Values
	if err := json.Unmarshal(payload, &vals); err != nil {
		return nil, fmt.Errorf("decode search values: %w", err)
	}
	return vals, nil
}

// SaveSearch upserts the search values for (userID, gridName).
func (r *SearchRepo) SaveSearch(ctx context.Context, userID, gridName string, vals filter.Values) error {
	payload, err := json.Marshal(vals)
	if err != nil {
		return fmt.Errorf("encode search values: %w", err)
	}

	compressed := false
	if len(payload) > compressThreshold {
		payload = r.encoder.EncodeAll(payload, nil)
		compressed = true
	}

	q := Builder().
		Insert(searchTable).
		Columns("user_id", "crud_name", "payload", "compressed", "updated_at").
		Values(userID, gridName, payload, compressed, squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (user_id, crud_name) DO UPDATE SET
			payload = EXCLUDED.payload,
			compressed = EXCLUDED.compressed,
			updated_at = NOW()`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build search upsert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save search values: %w", err)
	}
	return nil
}

// ClearSearch drops the stored search values.
func (r *SearchRepo) ClearSearch(ctx context.Context, userID, gridName string) error {
	q := Builder().
		Delete(searchTable).
		Where(squirrel.Eq{"user_id": userID, "crud_name": gridName})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build search delete: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear search values: %w", err)
	}
	return nil
}
