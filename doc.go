// Package haz provides read-only component capabilities for Go aggregates.
//
// A function often needs a few fields of a larger value (a config, an
// environment, an app context) and nothing else. Instead of taking the whole
// aggregate, or asking the caller to destructure it, the function declares
// the components it needs as constraints:
//
//	func listen[E interface {
//		env.HasHost
//		env.HasPort
//	}](e E) {
//		host, port := e.Host(), e.Port()
//		...
//	}
//
// The repository is split into:
//   - has: the capability vocabulary (Has[C], AccessFrom, Access[C]().From,
//     Projection, Bind/View)
//   - cmd/hasgen: a go:generate tool that emits one accessor and one
//     capability interface per registered (component, field) pair
//   - examples/env: an aggregate wired with hasgen and a consumer
//   - examples/listener: an aggregate whose accessors come from struct tags
package haz
