package has

// Projection is a static, read-only projection from an aggregate A to one of its
// components C.
//
// Method expressions of generated accessors satisfy it directly:
//
//	var p has.Projection[Env, Host] = (*Env).Host
type Projection[A, C any] func(*A) *C

// From applies the projection to a.
func (p Projection[A, C]) From(a *A) *C {
	return p(a)
}

// View binds one aggregate to one projection. It implements Has[C], which lets a
// multi-component aggregate be passed to code written against Has[C].
type View[A, C any] struct {
	aggregate  *A
	projection Projection[A, C]
}

// Bind returns a View of a through p.
//
// The View holds a, not a copy of it: later changes to a are visible through Access.
func Bind[A, C any](a *A, p Projection[A, C]) View[A, C] {
	return View[A, C]{aggregate: a, projection: p}
}

// Access implements Has[C].
// It panics if the View was built from a nil aggregate or a nil projection.
func (v View[A, C]) Access() *C {
	if v.projection == nil {
		panic("has: view with nil projection")
	}
	if v.aggregate == nil {
		panic("has: view of nil aggregate")
	}
	return v.projection(v.aggregate)
}

// Aggregate returns the aggregate the View reads from.
func (v View[A, C]) Aggregate() *A { return v.aggregate }

var _ Has[struct{}] = View[struct{ c struct{} }, struct{}]{}
