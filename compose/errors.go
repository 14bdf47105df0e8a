package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBody is returned when a render is asked to expand a body
	// that was never produced.
	ErrEmptyBody = errors.New("empty body")

	// ErrMissingTemplateSpecification is returned when an injection tag
	// carries neither a fragment name nor an inline template.
	ErrMissingTemplateSpecification = errors.New("injection has neither a fragment name nor an inline template")
)

// UnknownFragmentError is returned when an injection or a model list names
// a fragment absent from the route. Always fatal for the whole render.
type UnknownFragmentError struct {
	Name string
}

func (e *UnknownFragmentError) Error() string {
	return fmt.Sprintf("unknown fragment reference %q", e.Name)
}

// InvalidRepeatSourceError is returned when a repeat path's root is not a
// declared model or not a known fragment.
type InvalidRepeatSourceError struct {
	Path string
	Root string
}

func (e *InvalidRepeatSourceError) Error() string {
	return fmt.Sprintf("invalid repeat source %q: root %q is not a declared model backed by a known fragment", e.Path, e.Root)
}

// MissingDataSourceError is returned when a declared model name is not a
// known fragment.
type MissingDataSourceError struct {
	Name string
}

func (e *MissingDataSourceError) Error() string {
	return fmt.Sprintf("missing data source: model %q is not a known fragment", e.Name)
}

// RenderError wraps a failure surfaced while recursing into or evaluating a
// fragment's template. It aborts the render when the fragment is effectively
// required, otherwise it is swallowed and the fragment's configured error
// message is substituted.
type RenderError struct {
	Fragment string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Fragment, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
