package main

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// tagKey is the struct tag that registers a field during discovery.
const tagKey = "has"

// FieldTypeMismatchError is returned when the declared component type differs
// from the aggregate field's actual type.
type FieldTypeMismatchError struct {
	Aggregate string
	Field     string
	Declared  string
	Actual    string
}

// Error implements the error interface.
func (e *FieldTypeMismatchError) Error() string {
	// Example: hasgen: Env.port has type Port, spec declares Host
	return fmt.Sprintf("hasgen: %s.%s has type %s, spec declares %s", e.Aggregate, e.Field, e.Actual, e.Declared)
}

// Is lets callers match the error with errors.Is(err, ErrTypeCheck).
func (e *FieldTypeMismatchError) Is(target error) bool { return target == ErrTypeCheck }

// checkErrorf builds an ErrTypeCheck-wrapped error.
func checkErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTypeCheck, fmt.Sprintf(format, args...))
}

// aggregateInfo is the type-checked view of an aggregate and its package.
type aggregateInfo struct {
	pkg    *types.Package
	named  *types.Named
	fields *types.Struct
}

// loadAggregate type-checks the package in pkgDir and looks up the aggregate.
//
// The current generated output (outPath), if any, is replaced by an empty file
// through a loader overlay, so stale accessors neither collide with the check
// nor break it when the spec has changed.
//
// Type errors elsewhere in the package are logged and tolerated as long as the
// aggregate itself resolves.
func loadAggregate(ctx context.Context, logger *slog.Logger, pkgDir, aggregate, outPath string) (*aggregateInfo, error) {
	absDir, err := filepath.Abs(pkgDir)
	if err != nil {
		return nil, checkErrorf("resolve %s: %v", pkgDir, err)
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir:     absDir,
		Tests:   false,
		Overlay: staleOutputOverlay(outPath),
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, checkErrorf("load package in %s: %v", filepath.ToSlash(pkgDir), err)
	}
	if len(pkgs) == 0 {
		return nil, checkErrorf("no package found in %s", filepath.ToSlash(pkgDir))
	}

	pkg := pkgs[0]
	for _, pkgErr := range pkg.Errors {
		logger.Debug("package error tolerated", "package", pkg.PkgPath, "error", pkgErr.Error())
	}
	if pkg.Types == nil {
		return nil, checkErrorf("package in %s has no type information", filepath.ToSlash(pkgDir))
	}

	obj := pkg.Types.Scope().Lookup(aggregate)
	typeName, ok := obj.(*types.TypeName)
	if !ok {
		return nil, checkErrorf("aggregate %s not found in package %s", aggregate, pkg.PkgPath)
	}
	named, ok := typeName.Type().(*types.Named)
	if !ok {
		return nil, checkErrorf("aggregate %s is not a defined type", aggregate)
	}
	if named.TypeParams().Len() > 0 {
		return nil, checkErrorf("aggregate %s is generic; generic aggregates are not supported", aggregate)
	}
	fields, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, checkErrorf("aggregate %s is not a struct (underlying %s)", aggregate, named.Underlying())
	}

	return &aggregateInfo{pkg: pkg.Types, named: named, fields: fields}, nil
}

// staleOutputOverlay blanks an existing generated file for the loader.
// It keeps the package clause so the file still belongs to the package.
func staleOutputOverlay(outPath string) map[string][]byte {
	if strings.TrimSpace(outPath) == "" || outPath == stdoutPath {
		return nil
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return nil
	}
	if _, err := os.Stat(absOut); err != nil {
		return nil
	}

	parsed, err := parser.ParseFile(token.NewFileSet(), absOut, nil, parser.PackageClauseOnly)
	if err != nil {
		return nil
	}
	return map[string][]byte{absOut: []byte("package " + parsed.Name.Name + "\n")}
}

// checkSpec verifies a prepared spec against the aggregate's real type.
//
// Component types are evaluated the way the generated file sees them: in the
// aggregate's package scope plus imports, so aliases and spellings such as
// []uint8 for []byte are compared by type identity.
func checkSpec(spec *Spec, info *aggregateInfo, imports []GoImport) error {
	if info.pkg.Name() != spec.Package {
		return checkErrorf("spec package %q does not match package %q", spec.Package, info.pkg.Name())
	}

	fieldsByName := make(map[string]*types.Var, info.fields.NumFields())
	for i := range info.fields.NumFields() {
		field := info.fields.Field(i)
		fieldsByName[field.Name()] = field
	}

	qualifier := samePackageQualifier(info.pkg)
	scope := info.pkg.Scope()
	evalPkg := componentScope(info.pkg, imports)

	type resolved struct {
		typ   types.Type
		field string
	}
	seen := make([]resolved, 0, len(spec.Components))

	for _, c := range spec.Components {
		field, ok := fieldsByName[c.Field]
		if !ok {
			return checkErrorf("%s has no field %s", spec.Aggregate, c.Field)
		}

		declared, err := evalType(evalPkg, c.Type)
		if err != nil {
			return checkErrorf("component type %s of %s.%s: %v", c.Type, spec.Aggregate, c.Field, err)
		}
		if !types.Identical(declared, field.Type()) {
			return &FieldTypeMismatchError{
				Aggregate: spec.Aggregate,
				Field:     c.Field,
				Declared:  c.Type,
				Actual:    types.TypeString(field.Type(), qualifier),
			}
		}
		for _, prev := range seen {
			if types.Identical(prev.typ, declared) {
				return &DuplicateComponentError{Aggregate: spec.Aggregate, Type: c.Type, Fields: []string{prev.field, c.Field}}
			}
		}
		seen = append(seen, resolved{typ: declared, field: c.Field})

		if _, clash := fieldsByName[c.Method]; clash {
			return checkErrorf("accessor %s collides with field %s.%s; set method", c.Method, spec.Aggregate, c.Method)
		}
		if declaresMethod(info.named, c.Method) {
			return checkErrorf("accessor %s collides with existing method %s.%s; set method", c.Method, spec.Aggregate, c.Method)
		}
		if c.Interface != "" && scope.Lookup(c.Interface) != nil {
			return checkErrorf("capability interface %s is already declared in package %s; set interface or \"-\"", c.Interface, spec.Package)
		}
	}
	return nil
}

// componentScope returns a package whose scope holds the objects of pkg and
// one package name per import. Imports of packages pkg cannot see (directly or
// through its dependencies) are left out and fail to resolve.
func componentScope(pkg *types.Package, imports []GoImport) *types.Package {
	evalPkg := types.NewPackage(pkg.Path(), pkg.Name())
	scope := evalPkg.Scope()
	for _, name := range pkg.Scope().Names() {
		scope.Insert(pkg.Scope().Lookup(name))
	}

	visible := reachablePackages(pkg)
	for _, gi := range imports {
		imported, ok := visible[gi.Path]
		if !ok {
			continue
		}
		name := gi.Name
		if name == "" {
			name = imported.Name()
		}
		scope.Insert(types.NewPkgName(token.NoPos, evalPkg, name, imported))
	}
	return evalPkg
}

// reachablePackages indexes pkg's imports and theirs by path.
func reachablePackages(pkg *types.Package) map[string]*types.Package {
	out := map[string]*types.Package{}
	queue := append([]*types.Package(nil), pkg.Imports()...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := out[next.Path()]; ok {
			continue
		}
		out[next.Path()] = next
		queue = append(queue, next.Imports()...)
	}
	return out
}

// evalType evaluates a type expression in pkg's scope.
func evalType(pkg *types.Package, expr string) (types.Type, error) {
	tv, err := types.Eval(token.NewFileSet(), pkg, token.NoPos, expr)
	if err != nil {
		return nil, err
	}
	if !tv.IsType() {
		return nil, fmt.Errorf("%s is not a type", expr)
	}
	return tv.Type, nil
}

// discoverSpec builds a spec from fields tagged `has:""` on the aggregate.
// `has:"Name"` overrides the accessor name; `has:"-"` skips the field.
func discoverSpec(info *aggregateInfo) (Spec, error) {
	aggregate := info.named.Obj().Name()

	imports := map[string]string{}
	var conflicts []string
	qualifier := func(p *types.Package) string {
		if p == info.pkg {
			return ""
		}
		if existing, ok := imports[p.Name()]; ok && existing != p.Path() {
			conflicts = append(conflicts, existing+" and "+p.Path())
		}
		imports[p.Name()] = p.Path()
		return p.Name()
	}

	var components []Component
	for i := range info.fields.NumFields() {
		name, ok := reflect.StructTag(info.fields.Tag(i)).Lookup(tagKey)
		if !ok || name == "-" {
			continue
		}
		field := info.fields.Field(i)
		components = append(components, Component{
			Type:   types.TypeString(field.Type(), qualifier),
			Field:  field.Name(),
			Method: name,
		})
	}

	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return Spec{}, checkErrorf("component types of %s import packages sharing a name: %s", aggregate, strings.Join(conflicts, "; "))
	}
	if len(components) == 0 {
		return Spec{}, invalidf("%s has no fields tagged %s", aggregate, tagKey)
	}

	spec := Spec{
		Package:    info.pkg.Name(),
		Aggregate:  aggregate,
		Components: components,
	}
	if len(imports) > 0 {
		spec.Imports = imports
	}
	return spec, nil
}

// samePackageQualifier leaves types of pkg unqualified and qualifies the rest
// by package name, matching how component types are written in specs.
func samePackageQualifier(pkg *types.Package) types.Qualifier {
	return func(p *types.Package) string {
		if p == pkg {
			return ""
		}
		return p.Name()
	}
}

func declaresMethod(named *types.Named, name string) bool {
	for i := range named.NumMethods() {
		if named.Method(i).Name() == name {
			return true
		}
	}
	return false
}
