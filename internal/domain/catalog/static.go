package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// StaticCatalog is an in-memory Repository.  It backs unit tests and the
// CLI's offline mode, where no database is available.  Safe for concurrent
// reads after construction.
type StaticCatalog struct {
	mu     sync.RWMutex
	byKey  map[string]*KnownTool // key: category + "\x00" + normalized name
	names  map[mention.ToolCategory][]string
	fields map[mention.ToolCategory][]string
}

// NewStaticCatalog builds a StaticCatalog from tool entries and per-category
// critical-field lists.
func NewStaticCatalog(tools []KnownTool, criticalFields map[mention.ToolCategory][]string) *StaticCatalog {
	c := &StaticCatalog{
		byKey:  make(map[string]*KnownTool, len(tools)),
		names:  make(map[mention.ToolCategory][]string),
		fields: make(map[mention.ToolCategory][]string, len(criticalFields)),
	}
	for i := range tools {
		t := tools[i]
		c.byKey[staticKey(t.Category, t.NormalizedName())] = &t
		c.names[t.Category] = append(c.names[t.Category], t.Name)
	}
	for cat := range c.names {
		sort.Strings(c.names[cat])
	}
	for cat, fields := range criticalFields {
		c.fields[cat] = append([]string(nil), fields...)
	}
	return c
}

func staticKey(cat mention.ToolCategory, normName string) string {
	return string(cat) + "\x00" + normName
}

// FindByName implements Repository.
func (c *StaticCatalog) FindByName(_ context.Context, category mention.ToolCategory, name string) (*KnownTool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byKey[staticKey(category, mention.NormalizeName(name))]
	if !ok {
		return nil, errors.New(errors.ErrCodeCatalogToolNotFound,
			fmt.Sprintf("no catalog entry for %q in category %s", name, category))
	}
	clone := *t
	return &clone, nil
}

// KnownNames implements Repository.
func (c *StaticCatalog) KnownNames(_ context.Context, category mention.ToolCategory) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.names[category]...), nil
}

// CriticalFields implements Repository.
func (c *StaticCatalog) CriticalFields(_ context.Context, category mention.ToolCategory) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.fields[category]...), nil
}

var _ Repository = (*StaticCatalog)(nil)
