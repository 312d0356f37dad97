// Package repositories holds the PostgreSQL implementations of the domain
// repository contracts.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/catalog"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// querier abstracts the pgx pool query surface so tests can stub it.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CatalogRepository is the PostgreSQL implementation of catalog.Repository,
// plus the write operations used by catalog ingestion.
type CatalogRepository struct {
	db     querier
	logger logging.Logger
}

// NewCatalogRepository constructs a ready-to-use CatalogRepository.
func NewCatalogRepository(db querier, logger logging.Logger) *CatalogRepository {
	if db == nil {
		panic("repositories: db must not be nil")
	}
	if logger == nil {
		panic("repositories: logger must not be nil")
	}
	return &CatalogRepository{db: db, logger: logger}
}

// FindByName implements catalog.Repository.  Lookup is on the normalized
// name column, so casing and whitespace differences do not matter.
func (r *CatalogRepository) FindByName(ctx context.Context, category mention.ToolCategory, name string) (*catalog.KnownTool, error) {
	var tool catalog.KnownTool
	err := r.db.QueryRow(ctx, `
		SELECT id, name, category, COALESCE(rrid, '')
		FROM known_tools
		WHERE category = $1 AND normalized_name = $2`,
		string(category), mention.NormalizeName(name),
	).Scan(&tool.ID, &tool.Name, &tool.Category, &tool.RRID)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodeCatalogToolNotFound,
			fmt.Sprintf("no catalog entry for %q in category %s", name, category))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying known tool")
	}
	return &tool, nil
}

// KnownNames implements catalog.Repository.  Names come back sorted so the
// extractor and classifier see a deterministic order.
func (r *CatalogRepository) KnownNames(ctx context.Context, category mention.ToolCategory) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name FROM known_tools
		WHERE category = $1
		ORDER BY name`,
		string(category),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying known names")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning known name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating known names")
	}
	return names, nil
}

// CriticalFields implements catalog.Repository.  An empty result means the
// category is exempt from completeness scoring.
func (r *CatalogRepository) CriticalFields(ctx context.Context, category mention.ToolCategory) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT field_name FROM critical_fields
		WHERE category = $1
		ORDER BY position`,
		string(category),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying critical fields")
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning critical field")
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating critical fields")
	}
	return fields, nil
}

// SaveTool inserts or updates one catalog entry, keyed by (category,
// normalized name).
func (r *CatalogRepository) SaveTool(ctx context.Context, tool *catalog.KnownTool) error {
	if tool == nil {
		return errors.Validation("catalog_tool", "must not be nil")
	}
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO known_tools (id, name, normalized_name, category, rrid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $6)
		ON CONFLICT (category, normalized_name) DO UPDATE
		SET name = EXCLUDED.name,
		    rrid = EXCLUDED.rrid,
		    updated_at = EXCLUDED.updated_at`,
		tool.ID, tool.Name, tool.NormalizedName(), string(tool.Category), tool.RRID, now,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "upserting known tool")
	}
	return nil
}

// ReplaceCriticalFields swaps the category's ordered critical-field list.
func (r *CatalogRepository) ReplaceCriticalFields(ctx context.Context, set catalog.CriticalFieldSet) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM critical_fields WHERE category = $1`, string(set.Category)); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "clearing critical fields")
	}
	for i, field := range set.Fields {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO critical_fields (category, field_name, position)
			VALUES ($1, $2, $3)`,
			string(set.Category), field, i,
		); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "inserting critical field")
		}
	}
	return nil
}

var _ catalog.Repository = (*CatalogRepository)(nil)
