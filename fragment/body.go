package fragment

// Content types surfaced by fragments when nothing more specific is known.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJSON = "application/json"
)

// Body is a fetched or synthesized piece of content paired with its content
// type. Values are never mutated after creation - callers must not modify the
// returned content slice.
type Body struct {
	content     []byte
	contentType string
}

// NewBody creates a content/content-type pair.
func NewBody(content []byte, contentType string) Body {
	return Body{content: content, contentType: contentType}
}

// Content returns raw body bytes.
func (b Body) Content() []byte {
	return b.content
}

// ContentType returns the body's content type.
func (b Body) ContentType() string {
	return b.contentType
}

func (b Body) String() string {
	return string(b.content)
}

// IsZero reports whether the body was never produced.
func (b Body) IsZero() bool {
	return b.content == nil && len(b.contentType) == 0
}
