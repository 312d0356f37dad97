// Package catalog defines the curated research-tool catalog collaborator:
// the already-known canonical tool names per category used by the classifier,
// and the per-category critical-field lists used by the completeness scorer.
package catalog

import (
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
)

// KnownTool is one curated catalog entry.
type KnownTool struct {
	// ID is the catalog's authoritative identifier for the resource.
	ID string `json:"id"`

	// Name is the canonical tool name.
	Name string `json:"name"`

	// Category is the tool category the entry belongs to.
	Category mention.ToolCategory `json:"category"`

	// RRID is the Research Resource Identifier, when one has been assigned.
	RRID string `json:"rrid,omitempty"`
}

// NormalizedName returns the comparison form of the entry's name, using the
// same normalisation the pipeline applies everywhere.
func (k KnownTool) NormalizedName() string {
	return mention.NormalizeName(k.Name)
}

// CriticalFieldSet is the ordered list of attribute names whose presence is
// required to consider a record of a category "complete enough" for priority
// submission.  An empty list means the category is exempt from scoring.
type CriticalFieldSet struct {
	Category mention.ToolCategory `json:"category"`
	Fields   []string             `json:"fields"`
}
