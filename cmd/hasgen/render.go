package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"text/template"

	"golang.org/x/tools/imports"
)

// renderData is the input passed to the Go template.
type renderData struct {
	Spec Spec

	// SourcePath and SourceHash identify the spec file; both are empty in
	// discovery mode, where the aggregate's tags are the source.
	SourcePath string
	SourceHash string

	Imports []GoImport
}

// render executes the template and formats the result. Imports that the
// accessors do not reference are pruned during formatting.
//
// filename only guides import resolution; nothing is read from it.
//
// On a formatting failure the unformatted source is returned with the error
// so callers can show what went wrong.
func render(data renderData, filename string) ([]byte, error) {
	var buf bytes.Buffer
	if err := genTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	formatted, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return buf.Bytes(), fmt.Errorf("format generated source: %w", err)
	}
	return formatted, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// genTemplate is the Go source template for accessors and capability interfaces.
var genTemplate = template.Must(
	template.New("hasgen").Parse(`// Code generated by hasgen; DO NOT EDIT.
{{- if .SourcePath}}
// Source: {{.SourcePath}}
// Source-SHA256: {{.SourceHash}}
{{- end}}

package {{.Spec.Package}}
{{- if .Imports}}

import (
{{- range .Imports}}
	{{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{- end}}
)
{{- end}}
{{- range .Spec.Components}}
{{- if .Interface}}

// {{.Interface}} is implemented by aggregates that give read access to their {{.Type}}.
type {{.Interface}} interface {
	{{.Method}}() *{{.Type}}
}
{{- end}}

// {{.Method}} returns the {{.Type}} held by {{$.Spec.Aggregate}}.
func ({{$.Spec.Receiver}} *{{$.Spec.Aggregate}}) {{.Method}}() *{{.Type}} {
	return &{{$.Spec.Receiver}}.{{.Field}}
}
{{- if .Interface}}

var _ {{.Interface}} = (*{{$.Spec.Aggregate}})(nil)
{{- end}}
{{- end}}
`),
)
