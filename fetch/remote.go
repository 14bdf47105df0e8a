package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"fcx/compose"
	"fcx/fragment"
)

const defaultTimeout = 30 * time.Second

// Remote fetches fragment content over HTTP. Response bodies are decoded to
// UTF-8 using the charset advertised in the response content type.
type Remote struct {
	client *http.Client
	log    *zap.Logger
}

// NewRemote creates an HTTP fetcher. A nil client selects a default one
// with a request timeout.
func NewRemote(client *http.Client, log *zap.Logger) *Remote {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Remote{client: client, log: log}
}

func (f *Remote) Fetch(ctx context.Context, frag *fragment.Fragment, rctx compose.RenderContext, _ compose.FetchOptions) (fragment.Body, error) {
	url, err := frag.Source().Interpolate(rctx)
	if err != nil {
		return fragment.Body{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fragment.Body{}, fmt.Errorf("unable to build request for %s: %w", frag, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return fragment.Body{}, fmt.Errorf("unable to fetch %s: %w", frag, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fragment.Body{}, fmt.Errorf("unexpected status %q fetching %s", resp.Status, frag)
	}

	contentType := resp.Header.Get("Content-Type")
	if len(contentType) == 0 {
		contentType = frag.Type().ContentType()
	}
	reader, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		return fragment.Body{}, fmt.Errorf("unable to decode %s: %w", frag, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fragment.Body{}, fmt.Errorf("unable to read %s: %w", frag, err)
	}

	f.log.Debug("fetched remote fragment",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	return fragment.NewBody(data, contentType), nil
}
