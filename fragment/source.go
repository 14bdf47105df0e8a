package fragment

import (
	"fmt"
	"regexp"
	"strings"
)

// SourceKind tells where fragment content comes from.
type SourceKind int

const (
	// SourceNone marks fragments without a locator - inline data or a
	// fetcher-resolved default.
	SourceNone SourceKind = iota
	// SourceRemote marks fragments fetched over HTTP.
	SourceRemote
	// SourceLocal marks fragments read from the local filesystem.
	SourceLocal
)

func (k SourceKind) String() string {
	switch k {
	case SourceRemote:
		return "remote"
	case SourceLocal:
		return "local"
	default:
		return "none"
	}
}

// Source locates fragment content. Remote and local locations may carry
// {name} placeholders interpolated from per-request values.
type Source struct {
	Kind     SourceKind
	Location string
}

var paramRx = regexp.MustCompile(`\{([A-Za-z0-9_.-]+)\}`)

// Interpolate resolves {name} placeholders in the location from params.
// A placeholder without a matching parameter is an error.
func (s Source) Interpolate(params map[string]string) (string, error) {
	var missing []string
	out := paramRx.ReplaceAllStringFunc(s.Location, func(ph string) string {
		name := ph[1 : len(ph)-1]
		if v, ok := params[name]; ok {
			return v
		}
		missing = append(missing, name)
		return ph
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved source parameters [%s] in %q", strings.Join(missing, ", "), s.Location)
	}
	return out, nil
}
