// Package compose implements the fragment composition engine: a per-request
// fragment registry and a recursive renderer that expands injection markers
// in fetched bodies with the rendered output of other fragments.
package compose

import (
	"context"

	"go.uber.org/zap"

	"fcx/fragment"
)

// RenderContext carries caller-owned request values handed unchanged to the
// fetcher and to source locator interpolation. Read-only to this package.
type RenderContext map[string]string

// FetchOptions carry auxiliary information a fetcher may need beyond the
// fragment itself.
type FetchOptions struct {
	// Route is the name of the route being rendered; lets a fetcher
	// resolve a sourceless base fragment to a local default.
	Route string
}

// Fetcher turns a fragment into content. A fetcher is expected to soften
// fetch failures of non-required fragments itself (returning a fallback
// body); failures it does return propagate and are fatal for required
// fragments.
type Fetcher interface {
	Fetch(ctx context.Context, frag *fragment.Fragment, rctx RenderContext, opts FetchOptions) (fragment.Body, error)
}

// Evaluator turns template text plus a data mapping into final text. The
// directive syntax is opaque to this package.
type Evaluator interface {
	Evaluate(name, text string, data map[string]any) (string, error)
}

// Hooks receive per-request lifecycle notifications when a route supplies
// them.
type Hooks interface {
	RenderStarted(ctx context.Context, route string)
	RenderFinished(ctx context.Context, route string, err error)
}

// Render assembles a route's response: it creates the request-scoped
// manager, fetches the base fragment and recursively expands injection
// markers until none remain or the depth ceiling is reached. The returned
// body carries the base fragment's content type. Fatal errors surface
// unmodified.
func Render(ctx context.Context, route *Route, fetcher Fetcher, eval Evaluator, rctx RenderContext, log *zap.Logger) (fragment.Body, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if route.Hooks != nil {
		route.Hooks.RenderStarted(ctx, route.Name)
	}
	out, err := render(ctx, route, fetcher, eval, rctx, log)
	if route.Hooks != nil {
		route.Hooks.RenderFinished(ctx, route.Name, err)
	}
	return out, err
}

func render(ctx context.Context, route *Route, fetcher Fetcher, eval Evaluator, rctx RenderContext, log *zap.Logger) (fragment.Body, error) {
	man := NewManager(route, fetcher, rctx)
	base, err := man.BaseBody(ctx)
	if err != nil {
		return fragment.Body{}, err
	}
	if base.IsZero() {
		return fragment.Body{}, ErrEmptyBody
	}
	text, err := NewRenderer(man, eval, log).Render(ctx, base.String())
	if err != nil {
		return fragment.Body{}, err
	}
	return fragment.NewBody([]byte(text), base.ContentType()), nil
}
