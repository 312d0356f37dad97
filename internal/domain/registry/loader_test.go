package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

const sampleRegistryYAML = `
categories:
  animal_model:
    tools:
      "Nf1 heterozygous mouse":
        aliases: ["nf1+/-"]
  computational_tool:
    tools:
      "ImageJ":
        aliases: ["fiji"]
    excluded_terms: ["nanodrop"]
novelty:
  title_phrases: ["novel"]
  development_phrases: ["we generated", "in-house"]
`

func writeTempRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_ValidSource(t *testing.T) {
	path := writeTempRegistry(t, sampleRegistryYAML)

	reg, err := LoadFile(path)
	require.NoError(t, err)

	name, ok := reg.CanonicalOf("fiji", mention.CategoryComputationalTool)
	require.True(t, ok)
	assert.Equal(t, "ImageJ", name)
	assert.True(t, reg.IsExcluded("nanodrop", mention.CategoryComputationalTool))
}

func TestLoadFile_MissingFileFallsBackToBuiltin(t *testing.T) {
	reg, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	// Builtin coverage is available even without a configured source.
	_, ok := reg.CanonicalOf("nf1+/-", mention.CategoryAnimalModel)
	assert.True(t, ok)
}

func TestLoadFile_EmptyPathFallsBackToBuiltin(t *testing.T) {
	reg, err := LoadFile("")
	require.NoError(t, err)
	assert.NotNil(t, reg)
}

func TestLoadFile_MalformedFileIsFatal(t *testing.T) {
	path := writeTempRegistry(t, "categories: [not, a, mapping]")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistrySourceInvalid))
}

func TestLoadFile_AmbiguousAliasIsFatal(t *testing.T) {
	path := writeTempRegistry(t, `
categories:
  animal_model:
    tools:
      "Model A":
        aliases: ["shared"]
      "Model B":
        aliases: ["shared"]
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRegistryAmbiguousAlias))
}

func TestProvider_ServesAndReloads(t *testing.T) {
	path := writeTempRegistry(t, sampleRegistryYAML)

	p, err := NewProvider(path, logging.NewNopLogger())
	require.NoError(t, err)
	defer p.Close()

	_, ok := p.Current().CanonicalOf("fiji", mention.CategoryComputationalTool)
	require.True(t, ok)

	// Valid edit swaps the registry.
	updated := `
categories:
  cell_line:
    tools:
      "ST88-14":
        aliases: ["st8814"]
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	p.reload()

	_, ok = p.Current().CanonicalOf("st8814", mention.CategoryCellLine)
	assert.True(t, ok)
}

func TestProvider_InvalidReloadKeepsPrevious(t *testing.T) {
	path := writeTempRegistry(t, sampleRegistryYAML)

	p, err := NewProvider(path, logging.NewNopLogger())
	require.NoError(t, err)
	defer p.Close()

	before := p.Current()
	require.NoError(t, os.WriteFile(path, []byte("categories: [broken]"), 0o644))
	p.reload()

	assert.Same(t, before, p.Current())
}
