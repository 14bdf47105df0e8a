package compose

import (
	"context"
	"fmt"
	"sync"

	"fcx/fragment"
)

// testFetcher resolves inline fragments from their literal data and named
// fragments from configured bodies or errors. It counts fetch calls.
type testFetcher struct {
	bodies map[string]string
	types  map[string]string
	errs   map[string]error

	mu    sync.Mutex
	calls int
}

func (f *testFetcher) Fetch(_ context.Context, frag *fragment.Fragment, _ RenderContext, _ FetchOptions) (fragment.Body, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if frag.HasInline() {
		return fragment.NewBody(fmt.Appendf(nil, "%v", frag.Inline()), frag.Type().ContentType()), nil
	}
	name := frag.Name()
	if err, ok := f.errs[name]; ok {
		return fragment.Body{}, err
	}
	if text, ok := f.bodies[name]; ok {
		ct := f.types[name]
		if len(ct) == 0 {
			ct = frag.Type().ContentType()
		}
		return fragment.NewBody([]byte(text), ct), nil
	}
	return fragment.Body{}, fmt.Errorf("no test body for fragment %q", name)
}

func (f *testFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fetcherFunc adapts a function to the Fetcher interface.
type fetcherFunc func(ctx context.Context, frag *fragment.Fragment, rctx RenderContext, opts FetchOptions) (fragment.Body, error)

func (f fetcherFunc) Fetch(ctx context.Context, frag *fragment.Fragment, rctx RenderContext, opts FetchOptions) (fragment.Body, error) {
	return f(ctx, frag, rctx, opts)
}
