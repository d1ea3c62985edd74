package main

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// GoImport models one Go import: optional name and full import path.
type GoImport struct {
	Name string // optional alias, e.g. "yaml"
	Path string // import path, e.g. "gopkg.in/yaml.v3"
}

// isGeneratedFile reports whether a file name looks like generator output.
// Generated files are never fed back into import inference.
func isGeneratedFile(name string) bool {
	return strings.HasSuffix(name, ".gen.go") || strings.Contains(name, ".gen.") || strings.HasSuffix(name, "_gen.go")
}

// findOwnerGoGenerateFile finds the Go source file in packageDir that carries
// a go:generate directive invoking hasgen.
//
// Its imports seed the generated file so qualified component types resolve
// with the same names the package already uses.
func findOwnerGoGenerateFile(packageDir string) (string, error) {
	dirEntries, err := os.ReadDir(packageDir)
	if err != nil {
		return "", err
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".go") ||
			strings.HasSuffix(fileName, "_test.go") ||
			isGeneratedFile(fileName) {
			continue
		}

		filePath := filepath.Join(packageDir, fileName)
		fileBytes, err := os.ReadFile(filePath)
		if err != nil {
			// Best-effort: an unreadable file shouldn't break generation.
			continue
		}

		if bytes.Contains(fileBytes, []byte("go:generate")) && bytes.Contains(fileBytes, []byte("hasgen")) {
			return filePath, nil
		}
	}

	return "", fmt.Errorf("could not find owner file with go:generate invoking hasgen in %s", packageDir)
}

// readImportsFromFile parses imports from a Go file.
// Blank and dot imports are dropped: generated code never refers to them.
func readImportsFromFile(goFilePath string) ([]GoImport, error) {
	fileSet := token.NewFileSet()
	parsedFile, err := parser.ParseFile(fileSet, goFilePath, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	imports := make([]GoImport, 0, len(parsedFile.Imports))
	for _, importDecl := range parsedFile.Imports {
		importPath := strings.Trim(importDecl.Path.Value, `"`)
		importName := ""
		if importDecl.Name != nil {
			importName = importDecl.Name.Name
		}
		if importName == "_" || importName == "." {
			continue
		}
		imports = append(imports, GoImport{Name: importName, Path: importPath})
	}
	return imports, nil
}

// specImports converts a spec's name->path map into imports. A name equal to
// the path's default identifier is dropped so the output stays unaliased.
func specImports(spec *Spec) []GoImport {
	out := make([]GoImport, 0, len(spec.Imports))
	for name, importPath := range spec.Imports {
		importPath = strings.TrimSpace(importPath)
		if name == importDefaultIdent(importPath) {
			name = ""
		}
		out = append(out, GoImport{Name: name, Path: importPath})
	}
	return out
}

// mergeImports combines required and preserved imports.
//
// Rules:
//   - one entry per path; required wins over preserved
//   - output is sorted by path for deterministic files
func mergeImports(required []GoImport, preserved []GoImport) []GoImport {
	seen := make(map[string]GoImport, len(required)+len(preserved))
	add := func(gi GoImport) {
		if _, ok := seen[gi.Path]; ok {
			return
		}
		seen[gi.Path] = gi
	}

	for _, gi := range required {
		add(gi)
	}
	for _, gi := range preserved {
		add(gi)
	}

	out := make([]GoImport, 0, len(seen))
	for _, gi := range seen {
		out = append(out, gi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func importDefaultIdent(importPath string) string {
	// Import paths always use forward slashes, even on Windows.
	return path.Base(strings.TrimSpace(importPath))
}
