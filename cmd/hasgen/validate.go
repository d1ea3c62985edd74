package main

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/go/ast/astutil"
)

var (
	// ErrInvalidSpec is the root of every spec validation failure.
	ErrInvalidSpec = errors.New("hasgen: invalid spec")

	// ErrTypeCheck is the root of every failure found while checking a spec
	// against the aggregate's package.
	ErrTypeCheck = errors.New("hasgen: type check failed")
)

// DuplicateComponentError is returned when two entries register the same
// component type on one aggregate. Capabilities are keyed by component type,
// so the second entry would collide with the first.
type DuplicateComponentError struct {
	Aggregate string
	Type      string
	Fields    []string
}

// Error implements the error interface.
func (e *DuplicateComponentError) Error() string {
	// Example: hasgen: component type "Host" registered twice on Env (fields host, backup)
	return fmt.Sprintf("hasgen: component type %q registered twice on %s (fields %s)",
		e.Type, e.Aggregate, strings.Join(e.Fields, ", "))
}

// Is lets callers match the error with errors.Is(err, ErrInvalidSpec).
func (e *DuplicateComponentError) Is(target error) bool { return target == ErrInvalidSpec }

// invalidf builds an ErrInvalidSpec-wrapped error.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSpec, fmt.Sprintf(format, args...))
}

// prepareSpec validates the spec, fills in defaults and normalizes component
// type expressions. It is the only gate between decoded input and rendering.
//
// Order matters: required fields are checked before defaults are derived from
// them, and uniqueness is checked after defaults so derived names collide too.
func prepareSpec(spec *Spec) error {
	if err := validateRequired(spec); err != nil {
		return err
	}

	for i := range spec.Components {
		if err := normalizeComponent(spec, &spec.Components[i]); err != nil {
			return err
		}
	}

	if spec.Receiver == "" {
		r, _ := utf8.DecodeRuneInString(spec.Aggregate)
		spec.Receiver = string(unicode.ToLower(r))
	}
	if !token.IsIdentifier(spec.Receiver) {
		return invalidf("receiver %q is not a valid identifier", spec.Receiver)
	}

	for alias, importPath := range spec.Imports {
		if !token.IsIdentifier(alias) || alias == "_" {
			return invalidf("import name %q is not a valid identifier", alias)
		}
		if strings.TrimSpace(importPath) == "" {
			return invalidf("import %q has an empty path", alias)
		}
	}

	return validateUnique(spec)
}

// validateRequired checks presence and identifier syntax of required fields.
func validateRequired(spec *Spec) error {
	var missingFields []string

	requireNonEmpty := func(fieldName, value string) {
		if strings.TrimSpace(value) == "" {
			missingFields = append(missingFields, fieldName)
		}
	}

	requireNonEmpty("package", spec.Package)
	requireNonEmpty("aggregate", spec.Aggregate)

	if len(spec.Components) == 0 {
		missingFields = append(missingFields, "components (must have at least 1)")
	}

	if len(missingFields) > 0 {
		return invalidf("spec missing required fields: %v", missingFields)
	}

	if !token.IsIdentifier(spec.Package) {
		return invalidf("package %q is not a valid identifier", spec.Package)
	}
	if !token.IsIdentifier(spec.Aggregate) {
		return invalidf("aggregate %q is not a valid identifier", spec.Aggregate)
	}

	for _, c := range spec.Components {
		if strings.TrimSpace(c.Type) == "" || strings.TrimSpace(c.Field) == "" {
			return invalidf("each component must have type/field; got: %+v", c)
		}
	}
	return nil
}

// normalizeComponent parses the component type and derives method and
// interface names.
func normalizeComponent(spec *Spec, c *Component) error {
	expr, err := parser.ParseExpr(c.Type)
	if err != nil {
		return invalidf("component type %q does not parse: %v", c.Type, err)
	}
	expr = stripParens(expr)
	if !isTypeExpr(expr) {
		return invalidf("component type %q is not a type expression", c.Type)
	}
	c.Type = types.ExprString(expr)

	if !token.IsIdentifier(c.Field) {
		return invalidf("field %q is not a valid identifier", c.Field)
	}

	if c.Method == "" {
		c.Method = baseTypeName(expr)
		if c.Method == "" {
			return invalidf("component %q has no type name to derive a method from; set method", c.Type)
		}
	}
	if !token.IsIdentifier(c.Method) {
		return invalidf("method %q is not a valid identifier", c.Method)
	}

	switch {
	case !spec.interfacesEnabled() || c.Interface == "-":
		c.Interface = ""
	case c.Interface == "":
		c.Interface = "Has" + exportName(c.Method)
	case !token.IsIdentifier(c.Interface):
		return invalidf("interface %q is not a valid identifier", c.Interface)
	}
	return nil
}

// validateUnique enforces one entry per component type, field, method and
// interface name.
func validateUnique(spec *Spec) error {
	totalComponents := len(spec.Components)
	fieldsByType := make(map[string][]string, totalComponents)
	seenFields := make(map[string]struct{}, totalComponents)
	seenMethods := make(map[string]struct{}, totalComponents)
	seenInterfaces := make(map[string]struct{}, totalComponents)

	for _, c := range spec.Components {
		fieldsByType[c.Type] = append(fieldsByType[c.Type], c.Field)
	}

	for _, c := range spec.Components {
		if fields := fieldsByType[c.Type]; len(fields) > 1 {
			return &DuplicateComponentError{Aggregate: spec.Aggregate, Type: c.Type, Fields: fields}
		}
		if _, ok := seenFields[c.Field]; ok {
			return invalidf("duplicate component field: %s", c.Field)
		}
		if _, ok := seenMethods[c.Method]; ok {
			return invalidf("duplicate accessor method: %s", c.Method)
		}
		seenFields[c.Field] = struct{}{}
		seenMethods[c.Method] = struct{}{}

		if c.Interface == "" {
			continue
		}
		if _, ok := seenInterfaces[c.Interface]; ok {
			return invalidf("duplicate capability interface: %s", c.Interface)
		}
		seenInterfaces[c.Interface] = struct{}{}
	}

	// A method may not share its name with a registered field.
	for _, c := range spec.Components {
		if _, ok := seenFields[c.Method]; ok {
			return invalidf("accessor method %s collides with a field of the same name on %s", c.Method, spec.Aggregate)
		}
	}
	return nil
}

// stripParens removes redundant parentheses so (Host) and *(Host) normalize to
// Host and *Host. Parentheses directly inside a channel type are kept:
// chan (<-chan T) and chan<- chan T are different types.
func stripParens(expr ast.Expr) ast.Expr {
	out := astutil.Apply(expr, nil, func(c *astutil.Cursor) bool {
		p, ok := c.Node().(*ast.ParenExpr)
		if !ok {
			return true
		}
		if _, inChan := c.Parent().(*ast.ChanType); inChan {
			return true
		}
		c.Replace(p.X)
		return true
	})
	return out.(ast.Expr)
}

// isTypeExpr reports whether expr can denote a type.
func isTypeExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeExpr(e.X)
	case *ast.ParenExpr:
		return isTypeExpr(e.X)
	case *ast.IndexExpr:
		return isTypeExpr(e.X)
	case *ast.IndexListExpr:
		return isTypeExpr(e.X)
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType,
		*ast.StructType, *ast.InterfaceType:
		return true
	default:
		return false
	}
}

// baseTypeName returns the identifier naming a type expression:
// Host -> Host, *net.IP -> IP, List[T] -> List. Unnamed types yield "".
func baseTypeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.StarExpr:
		return baseTypeName(e.X)
	case *ast.ParenExpr:
		return baseTypeName(e.X)
	case *ast.IndexExpr:
		return baseTypeName(e.X)
	case *ast.IndexListExpr:
		return baseTypeName(e.X)
	default:
		return ""
	}
}

// exportName upper-cases the first rune (host -> Host).
func exportName(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
