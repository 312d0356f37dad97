// Package toolmining implements the tool-mention pipeline: free-text
// scanning, cross-section deduplication, existing/novel/excluded
// classification, and completeness scoring, orchestrated per publication.
//
// Every stage is a pure transformation over its inputs; the only shared
// state is the read-only registry and catalog index built at construction
// time, so publications may be processed in parallel.
package toolmining

import (
	"sort"
	"strings"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/registry"
	commontypes "github.com/curately/ResearchTools-Intelligence/pkg/types/common"
)

// MinSectionLength is the minimum section length, in characters, attempted
// for extraction.  Shorter sections are stub text (missing abstracts,
// placeholder methods) and yield only false positives.
const MinSectionLength = 100

// contextWindow is the number of characters captured on each side of a match
// for the audit/context snippet.
const contextWindow = 80

// Extractor scans one text section and produces candidate tool mentions for
// the requested categories.  Implementations are pure: no side effects, and
// deterministic output for a fixed input and registry state.
type Extractor interface {
	Extract(text string, section mention.Section, pubID commontypes.PublicationID, categories []mention.ToolCategory) []mention.ToolMention
}

// registryExtractor applies each category's match strategies from the alias
// registry, augmented with exact+fuzzy strategies over the catalog's known
// names, so already-curated tools are recognised even without registry
// aliases.
type registryExtractor struct {
	reg *registry.Registry
	// catalogStrategies holds per-category strategies built from the catalog
	// known-name lists at construction time.
	catalogStrategies map[mention.ToolCategory][]mention.MatchStrategy
}

// NewExtractor builds an Extractor over the given registry and the catalog's
// known names per category.  knownNames may be nil when no catalog is
// available; extraction then relies on the registry alone.
func NewExtractor(reg *registry.Registry, knownNames map[mention.ToolCategory][]string) Extractor {
	if reg == nil {
		panic("toolmining: registry must not be nil")
	}
	cs := make(map[mention.ToolCategory][]mention.MatchStrategy, len(knownNames))
	for cat, names := range knownNames {
		if len(names) == 0 {
			continue
		}
		cs[cat] = []mention.MatchStrategy{
			mention.NewExactStrategy(names),
			mention.NewFuzzyStrategy(names, reg.FuzzyThreshold(cat)),
		}
	}
	return &registryExtractor{reg: reg, catalogStrategies: cs}
}

// Extract implements Extractor.  A section below MinSectionLength yields an
// empty result rather than attempting extraction; this is the DegradedInput
// policy, not an error.
func (e *registryExtractor) Extract(
	text string,
	section mention.Section,
	pubID commontypes.PublicationID,
	categories []mention.ToolCategory,
) []mention.ToolMention {
	if len(strings.TrimSpace(text)) < MinSectionLength {
		return nil
	}

	// Sort a copy of the category set so output order never depends on the
	// caller's slice order.
	cats := append([]mention.ToolCategory(nil), categories...)
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	// best keeps the highest-confidence hit per (category, normalized name)
	// within this section.
	best := make(map[mention.MentionKey]mention.ToolMention)

	for _, cat := range cats {
		// Copy before appending: the registry's slice is shared.
		strategies := append([]mention.MatchStrategy(nil), e.reg.Strategies(cat)...)
		strategies = append(strategies, e.catalogStrategies[cat]...)
		for _, strat := range strategies {
			for _, m := range strat.FindAll(text) {
				name := m.Canonical
				if name == "" {
					name = m.Text
				}
				candidate := mention.ToolMention{
					Name:          name,
					Category:      cat,
					Confidence:    m.Confidence,
					Section:       section,
					Context:       extractContext(text, m.Start, m.End),
					PublicationID: pubID,
				}
				key := candidate.Key()
				if prev, ok := best[key]; !ok || candidate.Confidence > prev.Confidence {
					best[key] = candidate
				}
			}
		}
	}

	out := make([]mention.ToolMention, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].NormalizedName() < out[j].NormalizedName()
	})
	return out
}

// extractContext returns the text surrounding [start,end) clamped to the
// section bounds, with whitespace collapsed for compact audit records.
func extractContext(text string, start, end int) string {
	from := start - contextWindow
	if from < 0 {
		from = 0
	}
	to := end + contextWindow
	if to > len(text) {
		to = len(text)
	}
	// Avoid splitting multi-byte runes at the window edges.
	for from > 0 && from < len(text) && !isRuneStart(text[from]) {
		from--
	}
	for to < len(text) && !isRuneStart(text[to]) {
		to++
	}
	return strings.Join(strings.Fields(text[from:to]), " ")
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

var _ Extractor = (*registryExtractor)(nil)
