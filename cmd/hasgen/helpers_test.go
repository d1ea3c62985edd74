package main

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// envSource is the aggregate used across tests: Env holds Host, Port,
// Verbosity and a Restriction that is never registered.
const envSource = `package env

type Host string

type Port uint16

type Verbosity int

type Restriction int

type Env struct {
	host        Host
	port        Port
	verbosity   Verbosity
	restriction Restriction
}
`

// envSpecYAML registers Host and Port on Env.
const envSpecYAML = `package: env
aggregate: Env
components:
  - type: Host
    field: host
  - type: Port
    field: port
`

// envSpec returns a prepared spec registering Host and Port on Env.
func envSpec(t *testing.T) Spec {
	t.Helper()

	spec := Spec{
		Package:   "env",
		Aggregate: "Env",
		Components: []Component{
			{Type: "Host", Field: "host"},
			{Type: "Port", Field: "port"},
		},
	}
	require.NoError(t, prepareSpec(&spec))
	return spec
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

func boolPtr(v bool) *bool { return &v }

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// newTestModule creates a throwaway module with the given files and returns
// its root. Used by tests that load packages through go/packages.
func newTestModule(t *testing.T, files map[string]string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}

	dir := t.TempDir()
	writeTempFile(t, dir, "go.mod", "module example.com/agg\n\ngo 1.22\n")
	for name, content := range files {
		writeTempFile(t, dir, name, content)
	}
	return dir
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// typeCheck type-checks the given sources as one package, the way the compiler
// would see them after go generate. Only standard library imports resolve.
func typeCheck(t *testing.T, files map[string]string) error {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	fileSet := token.NewFileSet()
	parsed := make([]*ast.File, 0, len(files))
	for _, name := range names {
		f, err := parser.ParseFile(fileSet, name, files[name], parser.ParseComments)
		if err != nil {
			return err
		}
		parsed = append(parsed, f)
	}

	conf := types.Config{Importer: importer.Default()}
	_, err := conf.Check("example.com/agg", fileSet, parsed, nil)
	return err
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
// It lets tests force errors on Write and Close without touching real files.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
	closed   bool
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error {
	f.closed = true
	return f.closeErr
}

// restoreWriteSeams snapshots the global file seams and restores them when the
// test ends.
func restoreWriteSeams(t *testing.T) {
	t.Helper()

	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile = origCreate
		removeFile = origRemove
		chmodFile = origChmod
		renameFile = origRename
	})
}
