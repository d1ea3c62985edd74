// Package has provides a small, generic vocabulary for read-only component access.
//
// An aggregate (a struct holding several named fields) "has" a component C when it
// can hand out a pointer to its C field. The package models that capability in two
// complementary ways:
//
//   - Has[C]: a generic single-component capability with one method, Access() *C.
//     Useful for values that expose exactly one interesting component and for Views.
//
//   - Projection[A, C]: a static function from *A to *C. Accessors generated by
//     cmd/hasgen are methods, so their method expressions ((*Env).Host) are
//     projections and can be bound to an aggregate with Bind.
//
//   - Func[C]: adapts a method value (env.Port) to Has[C].
//
// Multi-component aggregates use the named capabilities generated by cmd/hasgen
// (HasHost, HasPort, ...) and consumers compose them as constraints:
//
//	func run[E interface {
//		HasHost
//		HasPort
//	}](e E) { ... }
//
// Contract
//
//   - Access never copies: the returned pointer addresses the aggregate's own storage
//     and is valid exactly as long as the aggregate is.
//   - Access is read-only by convention. Callers must not write through the pointer.
//   - Access has no error conditions and no side effects, so concurrent readers need
//     no coordination.
//
// Import
//
//	"github.com/sghaida/haz/has"
package has
