package fragment

import (
	"encoding/json"
	"fmt"
)

// Default fallback texts used when a fragment has no configured messages.
const (
	DefaultMissingText     = "Content is currently unavailable."
	DefaultRenderErrorText = "Error rendering content."
)

// Message produces fallback content substituted for a failed fragment.
// It resolves either a fixed value or a function of the triggering error.
// The zero Message resolves to nothing and makes the fragment fall back to
// the package defaults.
type Message struct {
	value any
	fn    func(error) any
}

// Literal creates a message with a fixed value.
func Literal(v any) Message {
	return Message{value: v}
}

// MessageFunc creates a message computed from the triggering error.
func MessageFunc(fn func(error) any) Message {
	return Message{fn: fn}
}

func (m Message) isZero() bool {
	return m.value == nil && m.fn == nil
}

// resolve produces the message body. A string value is served as plain
// html text, anything else is treated as structured data and serialized
// to JSON. Values that cannot be serialized degrade to their fmt form.
func (m Message) resolve(err error, fallback string) Body {
	v := m.value
	if m.fn != nil {
		v = m.fn(err)
	}
	if v == nil {
		v = fallback
	}
	if s, ok := v.(string); ok {
		return NewBody([]byte(s), ContentTypeHTML)
	}
	data, jerr := json.Marshal(v)
	if jerr != nil {
		return NewBody(fmt.Appendf(nil, "%v", v), ContentTypeHTML)
	}
	return NewBody(data, ContentTypeJSON)
}
