package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// RegistryHandler exposes read-only views of the alias/pattern registry so
// curators can verify what the running service actually loaded.
type RegistryHandler struct {
	registries toolmining.RegistrySource
}

// NewRegistryHandler builds a RegistryHandler.
func NewRegistryHandler(registries toolmining.RegistrySource) *RegistryHandler {
	if registries == nil {
		panic("handlers: registry source must not be nil")
	}
	return &RegistryHandler{registries: registries}
}

type registryCategorySummary struct {
	Category       string  `json:"category"`
	Strategies     int     `json:"strategies"`
	FuzzyThreshold float64 `json:"fuzzy_threshold"`
}

// Summary handles GET /api/v1/registry.
func (h *RegistryHandler) Summary(c *gin.Context) {
	reg := h.registries.Current()
	if reg == nil {
		respondError(c, errors.Configuration("no registry loaded"))
		return
	}

	categories := make([]registryCategorySummary, 0)
	for _, cat := range reg.Categories() {
		categories = append(categories, registryCategorySummary{
			Category:       string(cat),
			Strategies:     len(reg.Strategies(cat)),
			FuzzyThreshold: reg.FuzzyThreshold(cat),
		})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Category < categories[j].Category })

	c.JSON(http.StatusOK, gin.H{
		"categories":                  categories,
		"novelty_title_phrases":       len(reg.NoveltyTitlePhrases()),
		"novelty_development_phrases": len(reg.NoveltyDevelopmentPhrases()),
	})
}

// Aliases handles GET /api/v1/registry/aliases/:name, listing the alias
// phrases registered for a canonical tool name across categories.
func (h *RegistryHandler) Aliases(c *gin.Context) {
	reg := h.registries.Current()
	if reg == nil {
		respondError(c, errors.Configuration("no registry loaded"))
		return
	}

	name := c.Param("name")
	aliasSet := reg.AliasesOf(name)
	if len(aliasSet) == 0 {
		respondError(c, errors.NotFound("no aliases registered for name").WithDetail("name="+name))
		return
	}

	aliases := make([]string, 0, len(aliasSet))
	for alias := range aliasSet {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	c.JSON(http.StatusOK, gin.H{"name": name, "aliases": aliases})
}
