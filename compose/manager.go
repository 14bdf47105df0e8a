package compose

import (
	"context"

	"fcx/fragment"
)

// Manager is the request-scoped fragment registry. It instantiates every
// named fragment of a route exactly once at construction and mediates all
// fetch calls so the fetcher always observes the same request context. It
// performs no caching of fetch results: repeated body requests for the same
// name re-invoke the fetcher.
type Manager struct {
	route   *Route
	base    *fragment.Fragment
	frags   map[string]*fragment.Fragment
	fetcher Fetcher
	rctx    RenderContext
}

// NewManager instantiates the route's fragments for one render call.
func NewManager(route *Route, fetcher Fetcher, rctx RenderContext) *Manager {
	frags := make(map[string]*fragment.Fragment, len(route.Fragments))
	for name, factory := range route.Fragments {
		frags[name] = factory()
	}
	var base *fragment.Fragment
	if route.Base != nil {
		base = route.Base()
	}
	return &Manager{
		route:   route,
		base:    base,
		frags:   frags,
		fetcher: fetcher,
		rctx:    rctx,
	}
}

// BaseBody fetches the route's base fragment. The returned body carries the
// content type the fetch produced.
func (m *Manager) BaseBody(ctx context.Context) (fragment.Body, error) {
	return m.FetchFragmentBody(ctx, m.base)
}

// BaseContentType fetches the route's base fragment and projects its content
// type.
func (m *Manager) BaseContentType(ctx context.Context) (string, error) {
	body, err := m.FetchFragmentBody(ctx, m.base)
	if err != nil {
		return "", err
	}
	return body.ContentType(), nil
}

// FetchFragmentBody fetches an arbitrary fragment instance; used for
// anonymous inline fragments that are not named in the route.
func (m *Manager) FetchFragmentBody(ctx context.Context, frag *fragment.Fragment) (fragment.Body, error) {
	return m.fetcher.Fetch(ctx, frag, m.rctx, FetchOptions{Route: m.route.Name})
}

// FragmentBody fetches the named fragment's body.
func (m *Manager) FragmentBody(ctx context.Context, name string) (fragment.Body, error) {
	frag, ok := m.frags[name]
	if !ok {
		return fragment.Body{}, &UnknownFragmentError{Name: name}
	}
	return m.FetchFragmentBody(ctx, frag)
}

// Fragment looks up a named fragment without fetching it.
func (m *Manager) Fragment(name string) (*fragment.Fragment, bool) {
	frag, ok := m.frags[name]
	return frag, ok
}

// HasFragment reports whether the route declares the named fragment.
func (m *Manager) HasFragment(name string) bool {
	_, ok := m.frags[name]
	return ok
}
