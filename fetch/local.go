package fetch

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"fcx/compose"
	"fcx/fragment"
)

// Local reads fragment content from files below a template root directory.
// Locations escaping the root are rejected.
type Local struct {
	root string
	log  *zap.Logger
}

// NewLocal creates a filesystem fetcher rooted at the given directory.
func NewLocal(root string, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{root: root, log: log}
}

func (f *Local) Fetch(_ context.Context, frag *fragment.Fragment, rctx compose.RenderContext, _ compose.FetchOptions) (fragment.Body, error) {
	loc, err := frag.Source().Interpolate(rctx)
	if err != nil {
		return fragment.Body{}, err
	}
	if !filepath.IsLocal(loc) {
		return fragment.Body{}, fmt.Errorf("location %q of %s escapes the template root", loc, frag)
	}
	path := filepath.Join(f.root, filepath.FromSlash(loc))
	data, err := os.ReadFile(path)
	if err != nil {
		return fragment.Body{}, fmt.Errorf("unable to read %s: %w", frag, err)
	}
	f.log.Debug("read local fragment", zap.String("path", path), zap.Int("bytes", len(data)))
	return fragment.NewBody(data, f.contentType(path, data, frag)), nil
}

// contentType derives a content type from the file extension, sniffed file
// magic, or the fragment's own type, in that order.
func (f *Local) contentType(path string, data []byte, frag *fragment.Fragment) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); len(ct) > 0 {
		return ct
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return frag.Type().ContentType()
}
