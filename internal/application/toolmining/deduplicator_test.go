package toolmining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
)

func mkMention(name string, cat mention.ToolCategory, conf float64, section mention.Section) mention.ToolMention {
	return mention.ToolMention{
		Name:          name,
		Category:      cat,
		Confidence:    conf,
		Section:       section,
		PublicationID: "PMID:100",
	}
}

func TestDeduplicate_HigherConfidenceWins(t *testing.T) {
	methods := mkMention("nf1+/-", mention.CategoryAnimalModel, 0.9, mention.SectionMethods)
	abstract := mkMention("NF1+/-", mention.CategoryAnimalModel, 0.95, mention.SectionAbstract)

	out := Deduplicate([]mention.ToolMention{methods, abstract})
	require.Len(t, out, 1)
	kept := out[mention.MentionKey{Category: mention.CategoryAnimalModel, Name: "nf1+/-"}]
	assert.Equal(t, mention.SectionAbstract, kept.Section, "higher confidence wins regardless of section priority")
	assert.Equal(t, 0.95, kept.Confidence)
}

func TestDeduplicate_SectionPriorityBreaksTies(t *testing.T) {
	intro := mkMention("nf1+/-", mention.CategoryAnimalModel, 0.9, mention.SectionIntroduction)
	methods := mkMention("nf1+/-", mention.CategoryAnimalModel, 0.9, mention.SectionMethods)

	// Order must not matter.
	for _, input := range [][]mention.ToolMention{{intro, methods}, {methods, intro}} {
		out := Deduplicate(input)
		require.Len(t, out, 1)
		kept := out[mention.MentionKey{Category: mention.CategoryAnimalModel, Name: "nf1+/-"}]
		assert.Equal(t, mention.SectionMethods, kept.Section)
	}
}

func TestDeduplicate_SameNameDifferentCategoriesKept(t *testing.T) {
	a := mkMention("prism", mention.CategoryComputationalTool, 0.8, mention.SectionMethods)
	b := mkMention("prism", mention.CategoryGeneticReagent, 0.8, mention.SectionMethods)

	out := Deduplicate([]mention.ToolMention{a, b})
	assert.Len(t, out, 2)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	input := []mention.ToolMention{
		mkMention("ImageJ", mention.CategoryComputationalTool, 0.7, mention.SectionAbstract),
		mkMention("imagej", mention.CategoryComputationalTool, 0.9, mention.SectionMethods),
		mkMention("ST88-14", mention.CategoryCellLine, 1.0, mention.SectionMethods),
	}

	once := Deduplicate(input)

	flattened := make([]mention.ToolMention, 0, len(once))
	for _, m := range once {
		flattened = append(flattened, m)
	}
	twice := Deduplicate(flattened)
	assert.Equal(t, once, twice)
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
