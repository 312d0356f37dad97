// Package mention defines the core entities of the tool-mention pipeline:
// the tool categories, publication sections, candidate mentions, classified
// tools, and scored records, together with the name normalisation applied
// identically everywhere names are compared.
package mention

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	commontypes "github.com/curately/ResearchTools-Intelligence/pkg/types/common"
)

// ToolCategory classifies the kind of research tool a mention refers to.
type ToolCategory string

const (
	CategoryCellLine               ToolCategory = "cell_line"
	CategoryAnimalModel            ToolCategory = "animal_model"
	CategoryGeneticReagent         ToolCategory = "genetic_reagent"
	CategoryAntibody               ToolCategory = "antibody"
	CategoryComputationalTool      ToolCategory = "computational_tool"
	CategoryAdvancedCellularModel  ToolCategory = "advanced_cellular_model"
	CategoryPatientDerivedModel    ToolCategory = "patient_derived_model"
	CategoryClinicalAssessmentTool ToolCategory = "clinical_assessment_tool"
)

// AllCategories returns every category in a fixed, deterministic order.
func AllCategories() []ToolCategory {
	return []ToolCategory{
		CategoryCellLine,
		CategoryAnimalModel,
		CategoryGeneticReagent,
		CategoryAntibody,
		CategoryComputationalTool,
		CategoryAdvancedCellularModel,
		CategoryPatientDerivedModel,
		CategoryClinicalAssessmentTool,
	}
}

// ValidCategories returns the category set for membership checks.
func ValidCategories() map[ToolCategory]struct{} {
	out := make(map[ToolCategory]struct{}, 8)
	for _, c := range AllCategories() {
		out[c] = struct{}{}
	}
	return out
}

// IsValid reports whether c is a known category.
func (c ToolCategory) IsValid() bool {
	_, ok := ValidCategories()[c]
	return ok
}

// Section identifies which part of the source text a mention was found in.
type Section string

const (
	SectionAbstract     Section = "abstract"
	SectionMethods      Section = "methods"
	SectionIntroduction Section = "introduction"
)

// Priority returns the authority rank of the section for deduplication
// tie-breaks.  Methods sections are considered most authoritative for tool
// usage, then abstracts, then introductions.
func (s Section) Priority() int {
	switch s {
	case SectionMethods:
		return 3
	case SectionAbstract:
		return 2
	case SectionIntroduction:
		return 1
	default:
		return 0
	}
}

// ToolMention is one candidate detection of a research tool in free text.
// Mentions are immutable once produced by the extractor; downstream stages
// create new records rather than mutating them.
type ToolMention struct {
	// Name is the tool identifier as it appears in text, trimmed but not
	// case-folded.  Use NormalizedName for comparisons.
	Name string `json:"name"`

	// Category is the tool category the pattern family that produced this
	// mention belongs to.
	Category ToolCategory `json:"category"`

	// Confidence in [0,1]; higher means more certain the mention denotes a
	// genuine research tool.
	Confidence float64 `json:"confidence"`

	// Section is the text section the mention was found in.
	Section Section `json:"section"`

	// Context is a short surrounding-text excerpt kept for audit and for the
	// classifier's development-phrase heuristics.
	Context string `json:"context"`

	// PublicationID identifies the source publication (e.g., a PMID).
	PublicationID commontypes.PublicationID `json:"publication_id"`
}

// NormalizedName returns the comparison form of the mention's name.
func (m ToolMention) NormalizedName() string {
	return NormalizeName(m.Name)
}

// Key returns the deduplication grouping key: category plus normalized name.
func (m ToolMention) Key() MentionKey {
	return MentionKey{Category: m.Category, Name: m.NormalizedName()}
}

// MentionKey groups mentions of the same tool across sections.
type MentionKey struct {
	Category ToolCategory
	Name     string
}

// Disposition is the classifier's verdict for a deduplicated mention.
type Disposition string

const (
	// DispositionExisting marks a mention that matches a catalog entry, or an
	// ambiguous mention conservatively treated as probably already known.
	DispositionExisting Disposition = "existing"

	// DispositionNovel marks a mention with no catalog match and a positive
	// novelty signal; retained as a new-candidate record.
	DispositionNovel Disposition = "novel"

	// DispositionExcluded marks a recognised non-tool (e.g., a lab
	// instrument); dropped from novel/existing counts but kept for audit.
	DispositionExcluded Disposition = "excluded"
)

// ClassifiedTool is a ToolMention annotated with the classifier's verdict.
type ClassifiedTool struct {
	Mention ToolMention `json:"mention"`

	Disposition Disposition `json:"disposition"`

	// CatalogRef is the identifier of the matched catalog entry when the
	// disposition is existing and the entry is known; empty otherwise.
	CatalogRef string `json:"catalog_ref,omitempty"`

	// NeedsReview flags ambiguous mentions that were conservatively treated
	// as existing and require manual follow-up.
	NeedsReview bool `json:"needs_review"`

	// Reason records which classification rule fired, for audit.
	Reason string `json:"reason,omitempty"`
}

// ScoredRecord is a ClassifiedTool (disposition novel or existing) plus its
// completeness score against the category's critical-field list.
type ScoredRecord struct {
	Tool ClassifiedTool `json:"tool"`

	// Fields holds the record's attribute values as submitted for scoring.
	Fields map[string]string `json:"fields,omitempty"`

	FilledFields int `json:"filled_fields"`
	TotalFields  int `json:"total_fields"`

	// CompletenessPercentage is FilledFields/TotalFields × 100, or 100 when
	// the category has no critical fields.
	CompletenessPercentage float64 `json:"completeness_percentage"`

	// MeetsThreshold is true iff the filled fraction reaches the configured
	// minimum.  Categories without critical fields always pass.
	MeetsThreshold bool `json:"meets_threshold"`
}

// NormalizeName produces the canonical comparison form of a tool name:
// Unicode NFKC folding, lower-casing, and whitespace collapsing.  Every
// comparison in the pipeline goes through this function; duplicates will not
// merge otherwise.
func NormalizeName(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return collapseWhitespace(s)
}

// collapseWhitespace trims and reduces internal whitespace runs to one space.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte(' ')
			inSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
