package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// SourceFile is the JSON document format for a file-backed catalog, used by
// the CLI's offline mode and by seed tooling.
type SourceFile struct {
	Tools          []KnownTool        `json:"tools"`
	CriticalFields []CriticalFieldSet `json:"critical_fields"`
}

// LoadFile reads a catalog JSON document at path and builds a StaticCatalog.
// Unlike the registry, the catalog has no builtin fallback: a missing or
// unreadable file is an error, because classifying against an empty catalog
// would silently mark every known tool as novel.
func LoadFile(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to read catalog source %q", path))
	}

	var src SourceFile
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization,
			fmt.Sprintf("failed to parse catalog source %q", path))
	}
	return FromSource(&src)
}

// FromSource validates a parsed catalog document and builds a StaticCatalog.
func FromSource(src *SourceFile) (*StaticCatalog, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "catalog source must not be nil")
	}

	for _, t := range src.Tools {
		if t.Name == "" {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "catalog entry is missing a name")
		}
		if !t.Category.IsValid() {
			return nil, errors.New(errors.ErrCodeCatalogCategoryUnknown,
				fmt.Sprintf("catalog entry %q has unknown category %q", t.Name, t.Category))
		}
	}

	fields := make(map[mention.ToolCategory][]string, len(src.CriticalFields))
	for _, set := range src.CriticalFields {
		if !set.Category.IsValid() {
			return nil, errors.New(errors.ErrCodeCatalogCategoryUnknown,
				fmt.Sprintf("critical-field set has unknown category %q", set.Category))
		}
		if _, dup := fields[set.Category]; dup {
			return nil, errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("duplicate critical-field set for category %q", set.Category))
		}
		fields[set.Category] = set.Fields
	}

	return NewStaticCatalog(src.Tools, fields), nil
}
