package catalog

import (
	"context"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
)

// Repository is the read contract the pipeline has on the curated catalog.
// Implementations live in the infrastructure layer (postgres) and in this
// package (static, for tests and the CLI's offline mode).
type Repository interface {
	// FindByName looks up a catalog entry by category and name.  Lookup is
	// case-insensitive and whitespace-normalized.  Returns a not-found error
	// when no entry matches.
	FindByName(ctx context.Context, category mention.ToolCategory, name string) (*KnownTool, error)

	// KnownNames returns every canonical name curated for the category.
	// The slice is sorted for deterministic extraction and classification.
	KnownNames(ctx context.Context, category mention.ToolCategory) ([]string, error)

	// CriticalFields returns the ordered critical-field list for the
	// category.  An empty slice means the category is exempt from
	// completeness scoring; that is an explicit configuration state, not an
	// error.
	CriticalFields(ctx context.Context, category mention.ToolCategory) ([]string, error)
}
