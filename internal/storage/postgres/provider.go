package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("crudgrid/storage")

// Provider executes built grid queries against PostgreSQL: a count for
// pagination and the page slice itself.
type Provider struct {
	db Querier
}

// NewProvider creates a query provider over db.
func NewProvider(db Querier) *Provider {
	return &Provider{db: db}
}

// Count wraps the filtered query in a COUNT(*) subselect and executes it.
func (p *Provider) Count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	ctx, span := tracer.Start(ctx, "storage.count")
	defer span.End()

	countQ := Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	sql, args, err := countQ.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := p.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	span.SetAttributes(attribute.Int64("rows", total))
	return total, nil
}

// Select executes the final query and scans the page slice into dest.
func (p *Provider) Select(ctx context.Context, q squirrel.SelectBuilder, dest any) error {
	ctx, span := tracer.Start(ctx, "storage.select")
	defer span.End()

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, p.db, dest, sql, args...); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return nil
}
