// Package fragment defines the content units the composition engine
// assembles: independently fetchable pieces of a response with their own
// sourcing, dependency and failure policies.
package fragment

import (
	"fmt"
	"slices"
)

// Type selects how fragment content is treated and what content type is
// surfaced to callers when a fetch does not provide one.
type Type int

const (
	TypeHTML Type = iota
	TypeJSON
)

func (t Type) String() string {
	if t == TypeJSON {
		return "json"
	}
	return "html"
}

// ContentType returns the default content type for the fragment type.
func (t Type) ContentType() string {
	if t == TypeJSON {
		return ContentTypeJSON
	}
	return ContentTypeHTML
}

// variant records which constructor produced a fragment; kept for
// diagnostic rendering.
type variant int

const (
	variantBase variant = iota
	variantHTML
	variantJSON
	variantInline
)

func (v variant) String() string {
	switch v {
	case variantBase:
		return "base"
	case variantInline:
		return "inline"
	case variantJSON:
		return "json"
	default:
		return "html"
	}
}

// Fragment is an immutable description of one content source and its
// rendering policy. Instances are created through the Base, HTML, JSON and
// Inline constructors and are safe for concurrent use.
type Fragment struct {
	variant  variant
	name     string
	source   Source
	typ      Type
	inline   any
	models   []string
	required bool
	missing  Message
	onError  Message
}

// Option configures a fragment under construction.
type Option func(*Fragment)

// WithRemote sets a remote URL locator, optionally carrying {name}
// placeholders resolved from the render context.
func WithRemote(url string) Option {
	return func(f *Fragment) { f.source = Source{Kind: SourceRemote, Location: url} }
}

// WithLocal sets a local file locator relative to the fetcher's template root.
func WithLocal(path string) Option {
	return func(f *Fragment) { f.source = Source{Kind: SourceLocal, Location: path} }
}

// WithInline sets literal content used when the fragment has no locator.
func WithInline(data any) Option {
	return func(f *Fragment) { f.inline = data }
}

// WithRequired marks the fragment as required: any failure to fetch or
// render it aborts the whole response.
func WithRequired() Option {
	return func(f *Fragment) { f.required = true }
}

// WithModels declares sibling fragment names this fragment needs as
// rendering context when used as an injection target.
func WithModels(names ...string) Option {
	return func(f *Fragment) { f.models = slices.Clone(names) }
}

// WithMissingMessage sets the fallback served when the fragment's content
// cannot be obtained.
func WithMissingMessage(m Message) Option {
	return func(f *Fragment) { f.missing = m }
}

// WithErrorMessage sets the fallback served when rendering the fragment fails.
func WithErrorMessage(m Message) Option {
	return func(f *Fragment) { f.onError = m }
}

func build(v variant, name string, typ Type, opts []Option) *Fragment {
	f := &Fragment{variant: v, name: name, typ: typ}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Base creates the root fragment of a route. Base fragments are always
// treated as required. A base fragment without a locator and without inline
// data is legal only when the fetcher can still resolve it to content.
func Base(opts ...Option) *Fragment {
	f := build(variantBase, "", TypeHTML, opts)
	f.required = true
	return f
}

// HTML creates a named html fragment.
func HTML(name string, opts ...Option) *Fragment {
	return build(variantHTML, name, TypeHTML, opts)
}

// JSON creates a named json fragment.
func JSON(name string, opts ...Option) *Fragment {
	return build(variantJSON, name, TypeJSON, opts)
}

// Inline creates an anonymous fragment wrapping an embedded template found
// inside an injection tag.
func Inline(template string, required bool) *Fragment {
	f := build(variantInline, "", TypeHTML, nil)
	f.inline = template
	f.required = required
	return f
}

// Name returns the fragment's route name, empty for base and inline fragments.
func (f *Fragment) Name() string {
	return f.name
}

// Source returns the fragment's content locator.
func (f *Fragment) Source() Source {
	return f.source
}

// Type returns the fragment content type selector.
func (f *Fragment) Type() Type {
	return f.typ
}

// Inline returns literal fragment content, nil when none was configured.
func (f *Fragment) Inline() any {
	return f.inline
}

// HasInline reports whether literal content was configured.
func (f *Fragment) HasInline() bool {
	return f.inline != nil
}

// Required reports whether a failure of this fragment aborts the render.
func (f *Fragment) Required() bool {
	return f.required
}

// Models returns declared sibling dependencies in declaration order.
func (f *Fragment) Models() []string {
	return slices.Clone(f.models)
}

// MissingContentMessage resolves the fallback body substituted when the
// fragment's content cannot be obtained.
func (f *Fragment) MissingContentMessage(err error) Body {
	return f.missing.resolve(err, DefaultMissingText)
}

// RenderErrorMessage resolves the fallback body substituted when rendering
// the fragment fails and it is not required.
func (f *Fragment) RenderErrorMessage(err error) Body {
	return f.onError.resolve(err, DefaultRenderErrorText)
}

// String describes the fragment and its originating configuration for logs
// and error messages.
func (f *Fragment) String() string {
	name := f.name
	if len(name) == 0 {
		name = "(anonymous)"
	}
	switch f.source.Kind {
	case SourceNone:
		if f.HasInline() {
			return fmt.Sprintf("%s fragment %q from inline data", f.variant, name)
		}
		return fmt.Sprintf("%s fragment %q without source", f.variant, name)
	default:
		return fmt.Sprintf("%s fragment %q from %s %q", f.variant, name, f.source.Kind, f.source.Location)
	}
}
