// Package fetch provides the reference fetchers the composition engine is
// wired with: remote HTTP content, local template files and inline static
// data, plus a composite that routes between them by source locator.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"fcx/compose"
	"fcx/fragment"
)

// ErrNoSource is returned when a fragment has neither a source locator nor
// inline data and no default can be resolved for it.
var ErrNoSource = errors.New("fragment has no source locator and no inline data")

// Composite routes fetches by source kind and applies the optional-fragment
// contract: a fetch failure of a non-required fragment is softened into the
// fragment's missing-content message so the render can proceed.
type Composite struct {
	remote compose.Fetcher
	local  compose.Fetcher
	static compose.Fetcher
	root   string
	log    *zap.Logger
}

// NewComposite creates the standard fetcher set over a template root
// directory. A nil client selects a default HTTP client.
func NewComposite(templateRoot string, client *http.Client, log *zap.Logger) *Composite {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composite{
		remote: NewRemote(client, log),
		local:  NewLocal(templateRoot, log),
		static: Static{},
		root:   templateRoot,
		log:    log,
	}
}

func (f *Composite) Fetch(ctx context.Context, frag *fragment.Fragment, rctx compose.RenderContext, opts compose.FetchOptions) (fragment.Body, error) {
	body, err := f.dispatch(ctx, frag, rctx, opts)
	if err != nil && !frag.Required() {
		f.log.Warn("fetch failed, serving missing-content fallback",
			zap.String("fragment", frag.String()), zap.Error(err))
		return frag.MissingContentMessage(err), nil
	}
	return body, err
}

func (f *Composite) dispatch(ctx context.Context, frag *fragment.Fragment, rctx compose.RenderContext, opts compose.FetchOptions) (fragment.Body, error) {
	switch frag.Source().Kind {
	case fragment.SourceRemote:
		return f.remote.Fetch(ctx, frag, rctx, opts)
	case fragment.SourceLocal:
		return f.local.Fetch(ctx, frag, rctx, opts)
	default:
		if frag.HasInline() {
			return f.static.Fetch(ctx, frag, rctx, opts)
		}
		// a sourceless base fragment resolves to the route's default
		// template file
		if len(opts.Route) > 0 && len(f.root) > 0 {
			path := filepath.Join(f.root, opts.Route+".html")
			data, err := os.ReadFile(path)
			if err != nil {
				return fragment.Body{}, fmt.Errorf("no default template for route %q: %w", opts.Route, err)
			}
			return fragment.NewBody(data, fragment.ContentTypeHTML), nil
		}
		return fragment.Body{}, fmt.Errorf("%s: %w", frag, ErrNoSource)
	}
}
