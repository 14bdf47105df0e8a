package compose

import "fcx/fragment"

// Factory produces a fragment instance for one render call.
type Factory func() *fragment.Fragment

// Route is a named collection of fragment factories plus a distinguished
// base fragment. Fragment names are unique within a route; collisions are a
// configuration error resolved before a route is built.
type Route struct {
	Name      string
	Base      Factory
	Fragments map[string]Factory
	Hooks     Hooks
}

// NewRoute builds a route over fixed fragment values, wrapping each in a
// factory that hands out the same immutable instance per request.
func NewRoute(name string, base *fragment.Fragment, fragments map[string]*fragment.Fragment) *Route {
	factories := make(map[string]Factory, len(fragments))
	for fname, frag := range fragments {
		factories[fname] = func() *fragment.Fragment { return frag }
	}
	return &Route{
		Name:      name,
		Base:      func() *fragment.Fragment { return base },
		Fragments: factories,
	}
}
