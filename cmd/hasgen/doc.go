// Command hasgen generates read-only component accessors (go:generate tool).
//
// An aggregate struct often carries many components (host, port, verbosity, ...)
// while each consumer needs only a few. hasgen emits, for every registered
// (component type, field) pair:
//
//   - an accessor method returning the field's address: func (e *Env) Host() *Host
//   - a capability interface: type HasHost interface{ Host() *Host }
//   - a compile-time assertion: var _ HasHost = (*Env)(nil)
//
// Consumers then state exactly what they need:
//
//	func listen[E interface {
//		HasHost
//		HasPort
//	}](e E) { ... }
//
// and cannot reach any other component of the aggregate.
//
// There is no reflection and no runtime registry: accessors compile down to a
// field address.
//
// Spec format (*.has.json, *.has.yaml, *.has.toml)
//
// Minimal example:
//
//	package: env
//	aggregate: Env
//	components:
//	  - { type: Host, field: host }
//	  - { type: Port, field: port }
//	  - { type: Verbosity, field: verbosity }
//
// Optional keys:
//
//   - receiver: accessor receiver name (default: first letter of aggregate, lower-cased)
//   - interfaces: false to emit accessors only
//   - imports: name -> path for qualified component types (net: net)
//   - components[].method: accessor name (default: base name of the type)
//   - components[].interface: interface name (default: Has<Method>; "-" skips it)
//
// Struct tags
//
// Without a spec, --type registers every field tagged `has`:
//
//	type Listener struct {
//		addr    net.IP        `has:""`
//		timeout time.Duration `has:"Timeout"`
//		secret  string        `has:"-"`
//	}
//
// Validation
//
// A component type registered twice on one aggregate is rejected, as are
// duplicate fields, methods and interfaces. Unless --no-check is given, the
// spec is also checked against the package with go/packages: fields must exist
// with exactly the declared type, and accessors must not collide with fields or
// hand-written methods.
//
// Typical go:generate usage
//
//	//go:generate go run ../../cmd/hasgen --spec ./specs/env.has.yaml --out ./env_has.gen.go
//
// Environment
//
//	HASGEN_LOG_LEVEL  default --log-level (info)
//	HASGEN_NO_CHECK   default --no-check (false)
//	HASGEN_SUFFIX     default output suffix (_has.gen.go)
package main
