package server

import (
	"context"

	"fcx/compose"
	"fcx/config"
	"fcx/fragment"
)

// reportingFetcher stores every fetched fragment body in the debug report,
// so a report archive carries the raw inputs of each composition.
type reportingFetcher struct {
	next compose.Fetcher
	rpt  *config.Report
}

func newReportingFetcher(next compose.Fetcher, rpt *config.Report) *reportingFetcher {
	return &reportingFetcher{next: next, rpt: rpt}
}

func (f *reportingFetcher) Fetch(ctx context.Context, frag *fragment.Fragment, rctx compose.RenderContext, opts compose.FetchOptions) (fragment.Body, error) {
	body, err := f.next.Fetch(ctx, frag, rctx, opts)
	if err == nil {
		name := frag.Name()
		if len(name) == 0 {
			name = "base"
		}
		f.rpt.StoreData("fetch-"+opts.Route+"-"+config.CleanFileName(name), body.Content())
	}
	return body, err
}
