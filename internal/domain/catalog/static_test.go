package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

func testCatalog() *StaticCatalog {
	return NewStaticCatalog(
		[]KnownTool{
			{ID: "nfrt-001", Name: "ipNF95.5", Category: mention.CategoryCellLine, RRID: "CVCL_C466"},
			{ID: "nfrt-002", Name: "Nf1 heterozygous mouse", Category: mention.CategoryAnimalModel},
			{ID: "nfrt-003", Name: "ImageJ", Category: mention.CategoryComputationalTool},
		},
		map[mention.ToolCategory][]string{
			mention.CategoryCellLine: {"name", "organism", "diseaseType", "tissueOfOrigin", "rrid"},
		},
	)
}

func TestStaticCatalog_FindByName_Normalized(t *testing.T) {
	c := testCatalog()
	ctx := context.Background()

	tool, err := c.FindByName(ctx, mention.CategoryCellLine, "  IPNF95.5 ")
	require.NoError(t, err)
	assert.Equal(t, "nfrt-001", tool.ID)
	assert.Equal(t, "CVCL_C466", tool.RRID)

	_, err = c.FindByName(ctx, mention.CategoryAnimalModel, "ipNF95.5")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestStaticCatalog_KnownNames_Sorted(t *testing.T) {
	c := NewStaticCatalog([]KnownTool{
		{ID: "b", Name: "sNF96.2", Category: mention.CategoryCellLine},
		{ID: "a", Name: "HEI-193", Category: mention.CategoryCellLine},
	}, nil)

	names, err := c.KnownNames(context.Background(), mention.CategoryCellLine)
	require.NoError(t, err)
	assert.Equal(t, []string{"HEI-193", "sNF96.2"}, names)
}

func TestStaticCatalog_CriticalFields_EmptyForUnknownCategory(t *testing.T) {
	c := testCatalog()

	fields, err := c.CriticalFields(context.Background(), mention.CategoryAntibody)
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = c.CriticalFields(context.Background(), mention.CategoryCellLine)
	require.NoError(t, err)
	assert.Len(t, fields, 5)
}
