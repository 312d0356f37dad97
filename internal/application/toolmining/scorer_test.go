package toolmining

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
)

var criticalFive = []string{"name", "organism", "diseaseType", "tissueOfOrigin", "rrid"}

func novelTool() mention.ClassifiedTool {
	return mention.ClassifiedTool{
		Mention:     mkMention("ipNF-new", mention.CategoryCellLine, 0.9, mention.SectionMethods),
		Disposition: mention.DispositionNovel,
	}
}

func TestScore_ThresholdBoundary(t *testing.T) {
	fields := map[string]string{
		"name":        "ipNF-new",
		"organism":    "human",
		"diseaseType": "NF1",
	}

	rec := Score(novelTool(), fields, criticalFive, 0.6)
	assert.Equal(t, 3, rec.FilledFields)
	assert.Equal(t, 5, rec.TotalFields)
	assert.InDelta(t, 60.0, rec.CompletenessPercentage, 1e-9)
	assert.True(t, rec.MeetsThreshold)

	rec = Score(novelTool(), fields, criticalFive, 0.61)
	assert.False(t, rec.MeetsThreshold)
}

func TestScore_EmptyAndNullValuesNotFilled(t *testing.T) {
	fields := map[string]string{
		"name":        "ipNF-new",
		"organism":    "  ",
		"diseaseType": "NULL",
		"rrid":        "null",
	}

	rec := Score(novelTool(), fields, criticalFive, 0.6)
	assert.Equal(t, 1, rec.FilledFields)
}

func TestScore_NoCriticalFieldsIsExempt(t *testing.T) {
	rec := Score(novelTool(), nil, nil, 0.99)
	assert.Equal(t, 0, rec.TotalFields)
	assert.Equal(t, 100.0, rec.CompletenessPercentage)
	assert.True(t, rec.MeetsThreshold)
}

func TestScore_ThresholdMonotonicity(t *testing.T) {
	fields := map[string]string{"name": "x", "organism": "mouse"}

	passed := true
	for _, threshold := range []float64{0.1, 0.2, 0.4, 0.41, 0.6, 0.9, 1.0} {
		rec := Score(novelTool(), fields, criticalFive, threshold)
		if rec.MeetsThreshold {
			assert.True(t, passed, "meetsThreshold flipped false→true as threshold rose")
		}
		passed = rec.MeetsThreshold
	}
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	fields := map[string]string{"name": "x"}
	rec := Score(novelTool(), fields, criticalFive, 0.6)

	rec.Fields["name"] = "mutated"
	assert.Equal(t, "x", fields["name"])
}
