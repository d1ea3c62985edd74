package has

// Has is implemented by values that give read-only access to a component C.
//
// The returned pointer aliases the implementer's storage and must not outlive it.
type Has[C any] interface {
	Access() *C
}

// AccessFrom returns the component C held by h.
//
// It exists for call sites that prefer naming the component explicitly:
//
//	port := has.AccessFrom[Port](v)
func AccessFrom[C any](h Has[C]) *C {
	return h.Access()
}

// Accessor is a zero-size proxy that reads a component C from any Has[C].
type Accessor[C any] struct{}

// Access returns an Accessor for C, enabling the infix form:
//
//	verbosity := has.Access[Verbosity]().From(v)
func Access[C any]() Accessor[C] {
	return Accessor[C]{}
}

// From returns the component C held by h.
func (Accessor[C]) From(h Has[C]) *C {
	return h.Access()
}

// Func adapts an accessor's method value to Has[C], the way http.HandlerFunc
// adapts a function to http.Handler:
//
//	has.AccessFrom[Port](has.Func[Port](env.Port))
type Func[C any] func() *C

// Access implements Has[C].
func (f Func[C]) Access() *C { return f() }
