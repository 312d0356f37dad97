package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
)

// execute runs the CLI with args and returns stdout plus the command error.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--no-color"}, args...))

	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testRegistryYAML = `
categories:
  computational_tool:
    tools:
      ImageJ:
        aliases: ["Image J", "Fiji"]
    excluded_terms: ["NanoDrop"]
novelty:
  title_phrases: ["a novel tool"]
  development_phrases: ["we developed", "we present"]
`

const testCatalogJSON = `{
  "tools": [
    {"id": "SCR_003070", "name": "ImageJ", "category": "computational_tool", "rrid": "RRID:SCR_003070"}
  ],
  "critical_fields": [
    {"category": "computational_tool", "fields": ["name", "toolType", "publicationId", "rrid"]}
  ]
}`

func methodsText() string {
	filler := strings.Repeat("Sections shorter than the scan minimum are skipped entirely. ", 3)
	return filler + "Images were processed with ImageJ and quantified in Fiji."
}

func TestMineCommand_Table(t *testing.T) {
	registryPath := writeFile(t, "registry.yaml", testRegistryYAML)
	catalogPath := writeFile(t, "catalog.json", testCatalogJSON)
	methodsPath := writeFile(t, "methods.txt", methodsText())

	out, err := execute(t, "",
		"mine",
		"--registry", registryPath,
		"--catalog", catalogPath,
		"--id", "PMID:1",
		"--methods", methodsPath,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "PMID:1")
	assert.Contains(t, out, "ImageJ")
	assert.Contains(t, out, "existing")
}

func TestMineCommand_JSON(t *testing.T) {
	registryPath := writeFile(t, "registry.yaml", testRegistryYAML)
	methodsPath := writeFile(t, "methods.txt", methodsText())

	out, err := execute(t, "",
		"mine", "--json",
		"--registry", registryPath,
		"--id", "PMID:2",
		"--methods", methodsPath,
	)
	require.NoError(t, err)

	var result toolmining.PublicationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "PMID:2", string(result.PublicationID))
	assert.NotZero(t, result.TotalMentions)
}

func TestMineCommand_Stdin(t *testing.T) {
	registryPath := writeFile(t, "registry.yaml", testRegistryYAML)

	out, err := execute(t, methodsText(),
		"mine", "--json",
		"--registry", registryPath,
		"--id", "PMID:3",
		"--methods", "-",
	)
	require.NoError(t, err)

	var result toolmining.PublicationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.SectionsScanned)
}

func TestMineCommand_NoSections(t *testing.T) {
	_, err := execute(t, "", "mine", "--id", "PMID:4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of")
}

func TestMineCommand_UnknownCategory(t *testing.T) {
	methodsPath := writeFile(t, "methods.txt", methodsText())

	_, err := execute(t, "",
		"mine",
		"--id", "PMID:5",
		"--methods", methodsPath,
		"--category", "cell_lines",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool category")
}

func TestRegistryValidate_Valid(t *testing.T) {
	registryPath := writeFile(t, "registry.yaml", testRegistryYAML)

	out, err := execute(t, "", "registry", "validate", registryPath)
	require.NoError(t, err)
	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, "computational_tool")
}

func TestRegistryValidate_AmbiguousAlias(t *testing.T) {
	registryPath := writeFile(t, "registry.yaml", `
categories:
  computational_tool:
    tools:
      ImageJ:
        aliases: ["Fiji"]
      CellProfiler:
        aliases: ["Fiji"]
`)

	out, err := execute(t, "", "registry", "validate", registryPath)
	require.Error(t, err)
	assert.Contains(t, out, "INVALID")
}

func TestRegistryValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "", "registry", "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestScoreCommand(t *testing.T) {
	catalogPath := writeFile(t, "catalog.json", testCatalogJSON)

	out, err := execute(t, "",
		"score",
		"--catalog", catalogPath,
		"--category", "computational_tool",
		"--name", "pNF-Seg",
		"--field", "publicationId=PMID:6",
		"--field", "rrid=NULL",
		"--threshold", "0.5",
	)
	require.NoError(t, err)

	// name, toolType, publicationId filled; rrid is the NULL marker.
	assert.Contains(t, out, "3/4 fields filled")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "meets threshold")
}

func TestScoreCommand_BelowThreshold(t *testing.T) {
	catalogPath := writeFile(t, "catalog.json", testCatalogJSON)

	out, err := execute(t, "",
		"score",
		"--catalog", catalogPath,
		"--category", "computational_tool",
		"--name", "pNF-Seg",
		"--threshold", "0.9",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "below threshold")
}

func TestScoreCommand_RequiresCatalog(t *testing.T) {
	_, err := execute(t, "",
		"score",
		"--category", "computational_tool",
		"--name", "pNF-Seg",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--catalog is required")
}

func TestScoreCommand_BadFieldFlag(t *testing.T) {
	catalogPath := writeFile(t, "catalog.json", testCatalogJSON)

	_, err := execute(t, "",
		"score",
		"--catalog", catalogPath,
		"--category", "computational_tool",
		"--name", "pNF-Seg",
		"--field", "novalue",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")
}
