package toolmining

import (
	"context"
	"strings"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/catalog"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/registry"
)

// titleProximityWindow bounds, in characters of normalized title text, how
// far a "novel tool" phrase may sit from the name occurrence and still count
// as being "near it".
const titleProximityWindow = 60

// minDevelopmentPhrases is how many distinct development phrases a mention's
// context must contain to trigger the novelty signal on its own.
const minDevelopmentPhrases = 2

// Classification rule names, recorded on ClassifiedTool.Reason for audit.
const (
	ReasonExcludedTerm     = "excluded_term"
	ReasonRegistryMatch    = "registry_match"
	ReasonCatalogMatch     = "catalog_match"
	ReasonNoveltyTitle     = "novelty_title_signal"
	ReasonNoveltyContext   = "novelty_development_phrases"
	ReasonAmbiguousDefault = "ambiguous_default_existing"
)

// Classifier decides the disposition of each deduplicated mention.  The rule
// order is significant and fixed: exclusion runs before existing-match
// checks, which run before novelty checks; an excluded term must never be
// promoted even when it coincidentally matches a registry alias.
type Classifier struct {
	reg *registry.Registry
	// knownIDs maps category → normalized catalog name → catalog entry ID.
	knownIDs map[mention.ToolCategory]map[string]string
	rules    []classificationRule
}

// classificationRule is one predicate in the ordered rule list.  A rule
// either produces a terminal verdict or passes (nil) to the next rule.
type classificationRule struct {
	name  string
	apply func(m mention.ToolMention, title string) *mention.ClassifiedTool
}

// NewClassifier builds a Classifier over the registry and the catalog's
// known tools.  The catalog index is snapshotted at construction; repo may be
// nil for registry-only classification.
func NewClassifier(ctx context.Context, reg *registry.Registry, repo catalog.Repository) (*Classifier, error) {
	if reg == nil {
		panic("toolmining: registry must not be nil")
	}
	c := &Classifier{
		reg:      reg,
		knownIDs: make(map[mention.ToolCategory]map[string]string),
	}
	if repo != nil {
		for _, cat := range mention.AllCategories() {
			names, err := repo.KnownNames(ctx, cat)
			if err != nil {
				return nil, err
			}
			if len(names) == 0 {
				continue
			}
			index := make(map[string]string, len(names))
			for _, name := range names {
				id := ""
				if tool, err := repo.FindByName(ctx, cat, name); err == nil {
					id = tool.ID
				}
				index[mention.NormalizeName(name)] = id
			}
			c.knownIDs[cat] = index
		}
	}
	c.rules = []classificationRule{
		{name: ReasonExcludedTerm, apply: c.ruleExcluded},
		{name: ReasonRegistryMatch, apply: c.ruleRegistryExisting},
		{name: ReasonCatalogMatch, apply: c.ruleCatalogExisting},
		{name: ReasonNoveltyTitle, apply: c.ruleNovelty},
	}
	return c, nil
}

// Classify runs the ordered rule list over one mention.  Mentions that fall
// through every rule take the conservative default: existing with a
// needs-review marker, biasing toward precision over recall in novel-tool
// discovery.
func (c *Classifier) Classify(m mention.ToolMention, titleText string) mention.ClassifiedTool {
	for _, rule := range c.rules {
		if verdict := rule.apply(m, titleText); verdict != nil {
			return *verdict
		}
	}
	return mention.ClassifiedTool{
		Mention:     m,
		Disposition: mention.DispositionExisting,
		NeedsReview: true,
		Reason:      ReasonAmbiguousDefault,
	}
}

func (c *Classifier) ruleExcluded(m mention.ToolMention, _ string) *mention.ClassifiedTool {
	if !c.reg.IsExcluded(m.Name, m.Category) {
		return nil
	}
	return &mention.ClassifiedTool{
		Mention:     m,
		Disposition: mention.DispositionExcluded,
		Reason:      ReasonExcludedTerm,
	}
}

func (c *Classifier) ruleRegistryExisting(m mention.ToolMention, _ string) *mention.ClassifiedTool {
	canonical, ok := c.reg.CanonicalOf(m.Name, m.Category)
	if !ok {
		return nil
	}
	verdict := &mention.ClassifiedTool{
		Mention:     m,
		Disposition: mention.DispositionExisting,
		Reason:      ReasonRegistryMatch,
	}
	// The registry knows the name; the catalog may additionally hold its ID.
	if index, ok := c.knownIDs[m.Category]; ok {
		verdict.CatalogRef = index[mention.NormalizeName(canonical)]
	}
	return verdict
}

func (c *Classifier) ruleCatalogExisting(m mention.ToolMention, _ string) *mention.ClassifiedTool {
	index, ok := c.knownIDs[m.Category]
	if !ok {
		return nil
	}
	id, ok := index[m.NormalizedName()]
	if !ok {
		return nil
	}
	return &mention.ClassifiedTool{
		Mention:     m,
		Disposition: mention.DispositionExisting,
		CatalogRef:  id,
		Reason:      ReasonCatalogMatch,
	}
}

func (c *Classifier) ruleNovelty(m mention.ToolMention, titleText string) *mention.ClassifiedTool {
	if reason, ok := c.noveltySignal(m, titleText); ok {
		return &mention.ClassifiedTool{
			Mention:     m,
			Disposition: mention.DispositionNovel,
			Reason:      reason,
		}
	}
	return nil
}

// noveltySignal is true when (a) the name appears in the title with a "novel
// tool" phrase near it, or (b) the mention's context carries at least
// minDevelopmentPhrases distinct development phrases.
func (c *Classifier) noveltySignal(m mention.ToolMention, titleText string) (string, bool) {
	title := mention.NormalizeName(titleText)
	name := m.NormalizedName()

	if title != "" && name != "" {
		if pos := strings.Index(title, name); pos >= 0 {
			for _, phrase := range c.reg.NoveltyTitlePhrases() {
				if phrasePos := strings.Index(title, phrase); phrasePos >= 0 && within(phrasePos, pos, titleProximityWindow) {
					return ReasonNoveltyTitle, true
				}
			}
		}
	}

	context := mention.NormalizeName(m.Context)
	distinct := 0
	for _, phrase := range c.reg.NoveltyDevelopmentPhrases() {
		if strings.Contains(context, phrase) {
			distinct++
			if distinct >= minDevelopmentPhrases {
				return ReasonNoveltyContext, true
			}
		}
	}
	return "", false
}

func within(a, b, window int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= window
}
