// Package registry implements the alias/pattern registry: the immutable,
// read-only-after-load mapping from canonical tool names to alias phrases and
// regular-expression pattern families, plus the excluded-term and
// novelty-phrase lists consumed by the classifier.
//
// A Registry is an explicitly constructed value passed into every pipeline
// call.  It is never mutated after Load and may be shared freely across
// parallel publication-level workers.
package registry

import (
	"fmt"
	"sort"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// DefaultFuzzyThreshold is the normalized edit-similarity threshold applied
// when a category does not configure its own.
const DefaultFuzzyThreshold = 0.85

// ─────────────────────────────────────────────────────────────────────────────
// Source: the parsed configuration shape
// ─────────────────────────────────────────────────────────────────────────────

// PatternSource is one regular-expression pattern with its confidence.
type PatternSource struct {
	Expr       string  `mapstructure:"expr" yaml:"expr" json:"expr"`
	Confidence float64 `mapstructure:"confidence" yaml:"confidence" json:"confidence"`
}

// ToolSource describes one canonical tool: its alias phrases and optional
// pattern family.
type ToolSource struct {
	Aliases  []string        `mapstructure:"aliases" yaml:"aliases" json:"aliases"`
	Patterns []PatternSource `mapstructure:"patterns" yaml:"patterns" json:"patterns"`
}

// CategorySource holds the registry configuration for one tool category.
type CategorySource struct {
	// Tools maps canonical name → aliases/patterns.
	Tools map[string]ToolSource `mapstructure:"tools" yaml:"tools" json:"tools"`

	// ExcludedTerms lists phrases that must never classify as tools in this
	// category (e.g., lab instruments misidentified as computational tools).
	ExcludedTerms []string `mapstructure:"excluded_terms" yaml:"excluded_terms" json:"excluded_terms"`

	// FuzzyThreshold overrides DefaultFuzzyThreshold for this category.
	// Zero means "use the default".
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold" json:"fuzzy_threshold"`
}

// NoveltySource holds the phrase lists backing the classifier's novelty
// signal.
type NoveltySource struct {
	// TitlePhrases are "novel tool" markers looked for in publication titles.
	TitlePhrases []string `mapstructure:"title_phrases" yaml:"title_phrases" json:"title_phrases"`

	// DevelopmentPhrases are "we built this" markers looked for in mention
	// context snippets.
	DevelopmentPhrases []string `mapstructure:"development_phrases" yaml:"development_phrases" json:"development_phrases"`
}

// Source is the full parsed registry configuration.
type Source struct {
	Categories map[string]CategorySource `mapstructure:"categories" yaml:"categories" json:"categories"`
	Novelty    NoveltySource             `mapstructure:"novelty" yaml:"novelty" json:"novelty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Registry: the immutable loaded form
// ─────────────────────────────────────────────────────────────────────────────

// categoryIndex is the loaded, lookup-ready form of one category.
type categoryIndex struct {
	// canonical maps normalized canonical name → canonical name.
	canonical map[string]string
	// aliasToCanonical maps normalized alias phrase → canonical name.
	aliasToCanonical map[string]string
	// aliasesByCanonical maps canonical name → its alias set (original casing).
	aliasesByCanonical map[string]map[string]struct{}
	// excluded is the normalized excluded-term set.
	excluded map[string]struct{}
	// strategies are the category's match strategies in deterministic order:
	// exact, alias, then each regex pattern, then fuzzy.
	strategies []mention.MatchStrategy
	// fuzzyThreshold is the category's effective similarity threshold.
	fuzzyThreshold float64
}

// Registry is the immutable alias/pattern registry.  Construct with Load.
type Registry struct {
	categories map[mention.ToolCategory]*categoryIndex
	novelty    NoveltySource
}

// Load validates src and builds the lookup structures.  It returns a
// configuration error when the same alias phrase maps to two different
// canonical names within one category, or when a pattern fails to compile;
// these are detected and reported, never silently resolved.
func Load(src *Source) (*Registry, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeRegistrySourceInvalid, "registry source must not be nil")
	}

	r := &Registry{
		categories: make(map[mention.ToolCategory]*categoryIndex, len(src.Categories)),
		novelty:    normalizeNovelty(src.Novelty),
	}

	for catName, catSrc := range src.Categories {
		cat := mention.ToolCategory(catName)
		if !cat.IsValid() {
			return nil, errors.New(errors.ErrCodeRegistrySourceInvalid,
				fmt.Sprintf("unknown tool category %q in registry source", catName))
		}
		idx, err := buildCategoryIndex(cat, catSrc)
		if err != nil {
			return nil, err
		}
		r.categories[cat] = idx
	}

	return r, nil
}

// buildCategoryIndex compiles one category's source into its lookup form.
func buildCategoryIndex(cat mention.ToolCategory, src CategorySource) (*categoryIndex, error) {
	idx := &categoryIndex{
		canonical:          make(map[string]string, len(src.Tools)),
		aliasToCanonical:   make(map[string]string),
		aliasesByCanonical: make(map[string]map[string]struct{}, len(src.Tools)),
		excluded:           make(map[string]struct{}, len(src.ExcludedTerms)),
		fuzzyThreshold:     src.FuzzyThreshold,
	}
	if idx.fuzzyThreshold <= 0 || idx.fuzzyThreshold > 1 {
		idx.fuzzyThreshold = DefaultFuzzyThreshold
	}

	// Deterministic iteration keeps error messages and strategy order stable.
	canonicalNames := make([]string, 0, len(src.Tools))
	for name := range src.Tools {
		canonicalNames = append(canonicalNames, name)
	}
	sort.Strings(canonicalNames)

	var patternStrategies []mention.MatchStrategy
	for _, name := range canonicalNames {
		tool := src.Tools[name]
		normName := mention.NormalizeName(name)
		if normName == "" {
			return nil, errors.New(errors.ErrCodeRegistrySourceInvalid,
				fmt.Sprintf("category %s: canonical name %q normalizes to empty", cat, name))
		}
		idx.canonical[normName] = name
		idx.aliasesByCanonical[name] = make(map[string]struct{}, len(tool.Aliases))

		for _, alias := range tool.Aliases {
			normAlias := mention.NormalizeName(alias)
			if normAlias == "" {
				continue
			}
			if prev, ok := idx.aliasToCanonical[normAlias]; ok && prev != name {
				return nil, errors.New(errors.ErrCodeRegistryAmbiguousAlias,
					fmt.Sprintf("category %s: alias %q maps to both %q and %q", cat, alias, prev, name))
			}
			idx.aliasToCanonical[normAlias] = name
			idx.aliasesByCanonical[name][alias] = struct{}{}
		}

		for _, p := range tool.Patterns {
			strat, err := mention.NewRegexStrategy(p.Expr, p.Confidence)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeRegistryInvalidPattern,
					fmt.Sprintf("category %s: tool %q: invalid pattern %q", cat, name, p.Expr))
			}
			patternStrategies = append(patternStrategies, strat)
		}
	}

	for _, term := range src.ExcludedTerms {
		if norm := mention.NormalizeName(term); norm != "" {
			idx.excluded[norm] = struct{}{}
		}
	}

	// Strategy order is fixed: exact canonical names, alias phrases, regex
	// patterns, then fuzzy over canonical names.
	idx.strategies = append(idx.strategies, mention.NewExactStrategy(canonicalNamesOriginal(idx.canonical)))
	idx.strategies = append(idx.strategies, mention.NewAliasStrategy(idx.aliasToCanonical))
	idx.strategies = append(idx.strategies, patternStrategies...)
	idx.strategies = append(idx.strategies, mention.NewFuzzyStrategy(canonicalNamesOriginal(idx.canonical), idx.fuzzyThreshold))

	return idx, nil
}

func canonicalNamesOriginal(canonical map[string]string) []string {
	names := make([]string, 0, len(canonical))
	for _, orig := range canonical {
		names = append(names, orig)
	}
	sort.Strings(names)
	return names
}

func normalizeNovelty(n NoveltySource) NoveltySource {
	out := NoveltySource{
		TitlePhrases:       make([]string, 0, len(n.TitlePhrases)),
		DevelopmentPhrases: make([]string, 0, len(n.DevelopmentPhrases)),
	}
	for _, p := range n.TitlePhrases {
		if norm := mention.NormalizeName(p); norm != "" {
			out.TitlePhrases = append(out.TitlePhrases, norm)
		}
	}
	for _, p := range n.DevelopmentPhrases {
		if norm := mention.NormalizeName(p); norm != "" {
			out.DevelopmentPhrases = append(out.DevelopmentPhrases, norm)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookups
// ─────────────────────────────────────────────────────────────────────────────

// CanonicalOf resolves a phrase to its canonical name within a category,
// matching either a canonical name directly or one of its aliases.  Lookup is
// case-insensitive and whitespace-normalized.  The second return value is
// false when the phrase is unknown.
func (r *Registry) CanonicalOf(phrase string, cat mention.ToolCategory) (string, bool) {
	idx, ok := r.categories[cat]
	if !ok {
		return "", false
	}
	norm := mention.NormalizeName(phrase)
	if name, ok := idx.canonical[norm]; ok {
		return name, true
	}
	if name, ok := idx.aliasToCanonical[norm]; ok {
		return name, true
	}
	return "", false
}

// AliasesOf returns the alias set registered for a canonical name, merged
// across categories.  The result is a copy; mutating it does not affect the
// registry.
func (r *Registry) AliasesOf(name string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, idx := range r.categories {
		if aliases, ok := idx.aliasesByCanonical[name]; ok {
			for a := range aliases {
				out[a] = struct{}{}
			}
		}
	}
	return out
}

// IsExcluded reports whether a phrase is on the category's excluded-term
// list.  Excluded terms take absolute precedence in classification.
func (r *Registry) IsExcluded(phrase string, cat mention.ToolCategory) bool {
	idx, ok := r.categories[cat]
	if !ok {
		return false
	}
	_, excluded := idx.excluded[mention.NormalizeName(phrase)]
	return excluded
}

// Strategies returns the category's match strategies in their fixed order.
// The slice is shared and must not be mutated.
func (r *Registry) Strategies(cat mention.ToolCategory) []mention.MatchStrategy {
	idx, ok := r.categories[cat]
	if !ok {
		return nil
	}
	return idx.strategies
}

// FuzzyThreshold returns the category's effective fuzzy-match threshold.
func (r *Registry) FuzzyThreshold(cat mention.ToolCategory) float64 {
	idx, ok := r.categories[cat]
	if !ok {
		return DefaultFuzzyThreshold
	}
	return idx.fuzzyThreshold
}

// Categories returns the categories present in the registry, sorted.
func (r *Registry) Categories() []mention.ToolCategory {
	out := make([]mention.ToolCategory, 0, len(r.categories))
	for c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NoveltyTitlePhrases returns the normalized "novel tool" title markers.
func (r *Registry) NoveltyTitlePhrases() []string {
	return r.novelty.TitlePhrases
}

// NoveltyDevelopmentPhrases returns the normalized development markers.
func (r *Registry) NoveltyDevelopmentPhrases() []string {
	return r.novelty.DevelopmentPhrases
}
