package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

func validSource() *Source {
	return &Source{
		Categories: map[string]CategorySource{
			"animal_model": {
				Tools: map[string]ToolSource{
					"Nf1 heterozygous mouse": {
						Aliases: []string{"nf1+/-", "Nf1 het"},
					},
					"Nf1 conditional knockout mouse": {
						Aliases: []string{"nf1 flox/flox"},
						Patterns: []PatternSource{
							{Expr: `(?i)nf1\s*fl/fl`, Confidence: 0.8},
						},
					},
				},
			},
			"computational_tool": {
				Tools: map[string]ToolSource{
					"ImageJ": {Aliases: []string{"fiji"}},
				},
				ExcludedTerms: []string{"NanoDrop", "centrifuge"},
			},
		},
		Novelty: NoveltySource{
			TitlePhrases:       []string{"Novel", "we developed"},
			DevelopmentPhrases: []string{"We generated", "in-house"},
		},
	}
}

func TestLoad_NilSource(t *testing.T) {
	_, err := Load(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistrySourceInvalid))
}

func TestLoad_UnknownCategoryRejected(t *testing.T) {
	src := &Source{Categories: map[string]CategorySource{"spacecraft": {}}}
	_, err := Load(src)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistrySourceInvalid))
}

func TestLoad_AmbiguousAliasRejected(t *testing.T) {
	src := &Source{
		Categories: map[string]CategorySource{
			"animal_model": {
				Tools: map[string]ToolSource{
					"Model A": {Aliases: []string{"nf1+/-"}},
					"Model B": {Aliases: []string{"NF1+/-"}}, // same phrase after normalization
				},
			},
		},
	}
	_, err := Load(src)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryAmbiguousAlias))
	assert.True(t, errors.IsConfiguration(err))
}

func TestLoad_SameAliasAcrossCategoriesAllowed(t *testing.T) {
	src := &Source{
		Categories: map[string]CategorySource{
			"animal_model":    {Tools: map[string]ToolSource{"Model A": {Aliases: []string{"nf1"}}}},
			"genetic_reagent": {Tools: map[string]ToolSource{"Reagent B": {Aliases: []string{"nf1"}}}},
		},
	}
	_, err := Load(src)
	assert.NoError(t, err)
}

func TestLoad_InvalidPatternRejected(t *testing.T) {
	src := &Source{
		Categories: map[string]CategorySource{
			"animal_model": {
				Tools: map[string]ToolSource{
					"Model A": {Patterns: []PatternSource{{Expr: "([bad", Confidence: 0.7}}},
				},
			},
		},
	}
	_, err := Load(src)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryInvalidPattern))
}

func TestCanonicalOf_DirectAliasAndCaseInsensitive(t *testing.T) {
	reg, err := Load(validSource())
	require.NoError(t, err)

	name, ok := reg.CanonicalOf("Nf1 Heterozygous Mouse", mention.CategoryAnimalModel)
	require.True(t, ok)
	assert.Equal(t, "Nf1 heterozygous mouse", name)

	name, ok = reg.CanonicalOf("  NF1+/-  ", mention.CategoryAnimalModel)
	require.True(t, ok)
	assert.Equal(t, "Nf1 heterozygous mouse", name)

	_, ok = reg.CanonicalOf("nf1+/-", mention.CategoryComputationalTool)
	assert.False(t, ok, "alias lookup is scoped per category")

	_, ok = reg.CanonicalOf("unknown thing", mention.CategoryAnimalModel)
	assert.False(t, ok)
}

func TestAliasesOf(t *testing.T) {
	reg, err := Load(validSource())
	require.NoError(t, err)

	aliases := reg.AliasesOf("Nf1 heterozygous mouse")
	assert.Contains(t, aliases, "nf1+/-")
	assert.Contains(t, aliases, "Nf1 het")
	assert.Empty(t, reg.AliasesOf("no such tool"))
}

func TestIsExcluded(t *testing.T) {
	reg, err := Load(validSource())
	require.NoError(t, err)

	assert.True(t, reg.IsExcluded("nanodrop", mention.CategoryComputationalTool))
	assert.True(t, reg.IsExcluded("  NanoDrop ", mention.CategoryComputationalTool))
	assert.False(t, reg.IsExcluded("nanodrop", mention.CategoryAnimalModel))
	assert.False(t, reg.IsExcluded("imagej", mention.CategoryComputationalTool))
}

func TestStrategies_FixedOrder(t *testing.T) {
	reg, err := Load(validSource())
	require.NoError(t, err)

	strats := reg.Strategies(mention.CategoryAnimalModel)
	require.Len(t, strats, 4) // exact, alias, one regex, fuzzy
	assert.Equal(t, mention.MatchExact, strats[0].Kind())
	assert.Equal(t, mention.MatchAlias, strats[1].Kind())
	assert.Equal(t, mention.MatchRegex, strats[2].Kind())
	assert.Equal(t, mention.MatchFuzzy, strats[3].Kind())

	assert.Nil(t, reg.Strategies(mention.CategoryAntibody))
}

func TestFuzzyThreshold_DefaultAndOverride(t *testing.T) {
	src := validSource()
	cat := src.Categories["animal_model"]
	cat.FuzzyThreshold = 0.9
	src.Categories["animal_model"] = cat

	reg, err := Load(src)
	require.NoError(t, err)

	assert.Equal(t, 0.9, reg.FuzzyThreshold(mention.CategoryAnimalModel))
	assert.Equal(t, DefaultFuzzyThreshold, reg.FuzzyThreshold(mention.CategoryComputationalTool))
	assert.Equal(t, DefaultFuzzyThreshold, reg.FuzzyThreshold(mention.CategoryAntibody))
}

func TestNoveltyPhrases_Normalized(t *testing.T) {
	reg, err := Load(validSource())
	require.NoError(t, err)

	assert.Equal(t, []string{"novel", "we developed"}, reg.NoveltyTitlePhrases())
	assert.Equal(t, []string{"we generated", "in-house"}, reg.NoveltyDevelopmentPhrases())
}

func TestBuiltinSource_Loads(t *testing.T) {
	reg := MustLoadBuiltin()
	require.NotNil(t, reg)

	name, ok := reg.CanonicalOf("nf1+/-", mention.CategoryAnimalModel)
	require.True(t, ok)
	assert.Equal(t, "Nf1 heterozygous mouse", name)
	assert.True(t, reg.IsExcluded("nanodrop", mention.CategoryComputationalTool))
	assert.NotEmpty(t, reg.NoveltyTitlePhrases())
	assert.NotEmpty(t, reg.NoveltyDevelopmentPhrases())
}
