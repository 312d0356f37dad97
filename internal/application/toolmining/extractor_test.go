package toolmining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/registry"
)

const filler = " Tumor volume was measured weekly across replicate cohorts following standard histological procedures and institutional guidelines."

// pad appends neutral filler so the section clears the minimum length.
func pad(s string) string {
	for len(s) < MinSectionLength {
		s += filler
	}
	return s
}

func builtinExtractor(t *testing.T) Extractor {
	t.Helper()
	return NewExtractor(registry.MustLoadBuiltin(), nil)
}

func TestExtract_EmptySectionYieldsNothing(t *testing.T) {
	e := builtinExtractor(t)

	assert.Empty(t, e.Extract("", mention.SectionAbstract, "PMID:1", mention.AllCategories()))
	assert.Empty(t, e.Extract("Cells were cultured.", mention.SectionMethods, "PMID:1", mention.AllCategories()))
}

func TestExtract_ResolvesAliasToCanonicalName(t *testing.T) {
	e := builtinExtractor(t)
	text := pad("Tumors arose in nf1+/- animals, and images were quantified with Fiji before statistical analysis.")

	found := e.Extract(text, mention.SectionMethods, "PMID:2", mention.AllCategories())
	require.NotEmpty(t, found)

	byKey := make(map[mention.MentionKey]mention.ToolMention)
	for _, m := range found {
		byKey[m.Key()] = m
	}

	model, ok := byKey[mention.MentionKey{Category: mention.CategoryAnimalModel, Name: "nf1 heterozygous mouse"}]
	require.True(t, ok, "alias nf1+/- should resolve to its canonical model name")
	assert.Equal(t, mention.SectionMethods, model.Section)
	assert.Equal(t, 1.0, model.Confidence)
	assert.Contains(t, model.Context, "nf1+/-")

	_, ok = byKey[mention.MentionKey{Category: mention.CategoryComputationalTool, Name: "imagej"}]
	assert.True(t, ok, "alias Fiji should resolve to ImageJ")
}

func TestExtract_CatalogKnownNamesAugmentRegistry(t *testing.T) {
	reg := registry.MustLoadBuiltin()
	e := NewExtractor(reg, map[mention.ToolCategory][]string{
		mention.CategoryComputationalTool: {"SynapseSeg"},
	})
	text := pad("Segmentation masks were produced with SynapseSeg and reviewed by two independent annotators.")

	found := e.Extract(text, mention.SectionMethods, "PMID:3", []mention.ToolCategory{mention.CategoryComputationalTool})
	require.Len(t, found, 1)
	assert.Equal(t, "SynapseSeg", found[0].Name)
}

func TestExtract_RestrictedCategorySet(t *testing.T) {
	e := builtinExtractor(t)
	text := pad("Analysis used ImageJ on sections from nf1+/- mice processed per protocol.")

	found := e.Extract(text, mention.SectionAbstract, "PMID:4", []mention.ToolCategory{mention.CategoryAnimalModel})
	for _, m := range found {
		assert.Equal(t, mention.CategoryAnimalModel, m.Category)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := builtinExtractor(t)
	text := pad("ST88-14 and sNF96.2 cells were imaged with CellProfiler; nf1+/- littermates served as controls.")

	first := e.Extract(text, mention.SectionMethods, "PMID:5", mention.AllCategories())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Extract(text, mention.SectionMethods, "PMID:5", mention.AllCategories()))
	}
}

func TestExtract_ContextIsCollapsedExcerpt(t *testing.T) {
	e := builtinExtractor(t)
	text := pad("Samples were\n  lysed and imaged\twith   ImageJ after fixation in paraformaldehyde overnight at four degrees.")

	found := e.Extract(text, mention.SectionMethods, "PMID:6", []mention.ToolCategory{mention.CategoryComputationalTool})
	require.NotEmpty(t, found)
	assert.NotContains(t, found[0].Context, "\n")
	assert.NotContains(t, found[0].Context, "  ")
}
