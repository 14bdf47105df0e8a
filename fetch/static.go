package fetch

import (
	"context"
	"encoding/json"
	"fmt"

	"fcx/compose"
	"fcx/fragment"
)

// Static serves a fragment's inline data as its body.
type Static struct{}

func (Static) Fetch(_ context.Context, frag *fragment.Fragment, _ compose.RenderContext, _ compose.FetchOptions) (fragment.Body, error) {
	v := frag.Inline()
	if v == nil {
		return fragment.Body{}, fmt.Errorf("%s: %w", frag, ErrNoSource)
	}
	switch data := v.(type) {
	case string:
		return fragment.NewBody([]byte(data), frag.Type().ContentType()), nil
	case []byte:
		return fragment.NewBody(data, frag.Type().ContentType()), nil
	default:
		if frag.Type() == fragment.TypeJSON {
			out, err := json.Marshal(data)
			if err != nil {
				return fragment.Body{}, fmt.Errorf("unable to serialize inline data of %s: %w", frag, err)
			}
			return fragment.NewBody(out, fragment.ContentTypeJSON), nil
		}
		return fragment.NewBody(fmt.Appendf(nil, "%v", data), frag.Type().ContentType()), nil
	}
}
