package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFindOwnerGoGenerateFile verifies only a non-generated, non-test file with a
// hasgen directive is picked.
func TestFindOwnerGoGenerateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTempFile(t, dir, "a_test.go", "package env\n//go:generate go run ../cmd/hasgen\n")
	writeTempFile(t, dir, "env_has.gen.go", "package env\n//go:generate go run ../cmd/hasgen\n")
	writeTempFile(t, dir, "other.go", "package env\n//go:generate stringer -type Level\n")
	owner := writeTempFile(t, dir, "env.go", "package env\n//go:generate go run ../cmd/hasgen --spec env.has.yaml\n")

	got, err := findOwnerGoGenerateFile(dir)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

// TestFindOwnerGoGenerateFile_Missing verifies a clear error when no owner exists.
func TestFindOwnerGoGenerateFile_Missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTempFile(t, dir, "env.go", "package env\n")

	_, err := findOwnerGoGenerateFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find owner file")

	_, err = findOwnerGoGenerateFile(filepath.Join(dir, "nope"))
	require.Error(t, err)
}

// TestReadImportsFromFile verifies aliases are kept and blank/dot imports dropped.
func TestReadImportsFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeTempFile(t, dir, "env.go", `package env

import (
	"net"
	_ "embed"
	. "strings"
	yaml "gopkg.in/yaml.v3"
)
`)

	got, err := readImportsFromFile(p)
	require.NoError(t, err)
	assert.Equal(t, []GoImport{
		{Path: "net"},
		{Name: "yaml", Path: "gopkg.in/yaml.v3"},
	}, got)

	broken := writeTempFile(t, dir, "broken.go", "package env\nimport (\n")
	_, err = readImportsFromFile(broken)
	require.Error(t, err)
}

// TestSpecImports verifies redundant names are dropped and real aliases kept.
func TestSpecImports(t *testing.T) {
	t.Parallel()

	spec := Spec{Imports: map[string]string{
		"net":  "net",
		"yaml": "gopkg.in/yaml.v3",
		"v1":   " example.com/api/v2 ",
	}}

	got := mergeImports(specImports(&spec), nil)
	assert.Equal(t, []GoImport{
		{Name: "v1", Path: "example.com/api/v2"},
		{Name: "yaml", Path: "gopkg.in/yaml.v3"},
		{Path: "net"},
	}, got)
}

// TestMergeImports verifies required entries win per path and output is sorted.
func TestMergeImports(t *testing.T) {
	t.Parallel()

	required := []GoImport{{Name: "stdnet", Path: "net"}, {Path: "time"}}
	preserved := []GoImport{{Path: "net"}, {Path: "fmt"}, {Path: "time"}}

	assert.Equal(t, []GoImport{
		{Path: "fmt"},
		{Name: "stdnet", Path: "net"},
		{Path: "time"},
	}, mergeImports(required, preserved))

	assert.Empty(t, mergeImports(nil, nil))
}

// TestIsGeneratedFile covers the generated-file naming conventions.
func TestIsGeneratedFile(t *testing.T) {
	t.Parallel()

	assert.True(t, isGeneratedFile("env_has.gen.go"))
	assert.True(t, isGeneratedFile("env.gen.tmp.go"))
	assert.True(t, isGeneratedFile("env_gen.go"))
	assert.False(t, isGeneratedFile("env.go"))
	assert.False(t, isGeneratedFile("generator.go"))
}
