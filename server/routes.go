package server

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gosimple/slug"

	"fcx/compose"
	"fcx/config"
	"fcx/fragment"
)

var wildcardRx = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(\.\.\.)?\}`)

// mountPattern returns the ServeMux pattern a route is registered under and
// the names of its path wildcards. When configuration does not specify a
// path the route name is slugified, so "Daily News" serves at "/daily-news".
func mountPattern(rt *config.RouteConfig) (string, []string) {
	path := rt.Path
	if len(path) == 0 {
		path = "/" + slug.Make(rt.Name)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var params []string
	for _, m := range wildcardRx.FindAllStringSubmatch(path, -1) {
		params = append(params, m[1])
	}
	return path, params
}

func buildFragment(fc *config.FragmentConfig) (*fragment.Fragment, error) {
	var opts []fragment.Option

	switch {
	case len(fc.URL) > 0:
		opts = append(opts, fragment.WithRemote(fc.URL))
	case len(fc.File) > 0:
		opts = append(opts, fragment.WithLocal(fc.File))
	case len(fc.Inline) > 0:
		opts = append(opts, fragment.WithInline(fc.Inline))
	default:
		return nil, fmt.Errorf("fragment %q has no content source", fc.Name)
	}

	if fc.Required {
		opts = append(opts, fragment.WithRequired())
	}
	if len(fc.Models) > 0 {
		opts = append(opts, fragment.WithModels(fc.Models...))
	}
	if len(fc.MissingMessage) > 0 {
		opts = append(opts, fragment.WithMissingMessage(fragment.Literal(fc.MissingMessage)))
	}
	if len(fc.ErrorMessage) > 0 {
		opts = append(opts, fragment.WithErrorMessage(fragment.Literal(fc.ErrorMessage)))
	}

	if fc.Type == config.BodyKindJSON {
		return fragment.JSON(fc.Name, opts...), nil
	}
	return fragment.HTML(fc.Name, opts...), nil
}

func buildBase(bc *config.BaseConfig) *fragment.Fragment {
	var opts []fragment.Option
	switch {
	case len(bc.URL) > 0:
		opts = append(opts, fragment.WithRemote(bc.URL))
	case len(bc.File) > 0:
		opts = append(opts, fragment.WithLocal(bc.File))
	case len(bc.Inline) > 0:
		opts = append(opts, fragment.WithInline(bc.Inline))
	}
	// sourceless base is resolved by the fetcher to the route default template
	return fragment.Base(opts...)
}

// BuildRoute converts one configuration route into a composition route.
func BuildRoute(rt *config.RouteConfig, hooks compose.Hooks) (*compose.Route, error) {
	fragments := make(map[string]*fragment.Fragment, len(rt.Fragments))
	for i := range rt.Fragments {
		fc := &rt.Fragments[i]
		frag, err := buildFragment(fc)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", rt.Name, err)
		}
		fragments[fc.Name] = frag
	}
	route := compose.NewRoute(rt.Name, buildBase(&rt.Base), fragments)
	route.Hooks = hooks
	return route, nil
}
