package compose

import (
	"bytes"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/html"
)

// Injection tag attributes understood by the renderer.
const (
	attrFragmentName = "fragment-name"
	attrTemplate     = "template"
	attrRequired     = "required"
	attrRepeat       = "fragment-repeat"
	attrModels       = "models"
)

// tagAttrs is the typed form of an injection tag's attribute list.
type tagAttrs struct {
	fragmentName string
	repeatSource string
	models       []string
	hasTemplate  bool
	required     bool
}

// parseTagAttrs lexes an opening injection tag and extracts the attributes
// the renderer understands. Unknown attributes are ignored, attribute names
// are case-insensitive, flag attributes need no value.
func parseTagAttrs(openTag []byte) tagAttrs {
	var attrs tagAttrs
	lexer := html.NewLexer(parse.NewInputBytes(openTag))
	for {
		tt, _ := lexer.Next()
		switch tt {
		case html.ErrorToken, html.StartTagCloseToken, html.StartTagVoidToken:
			return attrs
		case html.AttributeToken:
			key := strings.ToLower(string(lexer.Text()))
			val := string(bytes.Trim(lexer.AttrVal(), `"'`))
			switch key {
			case attrFragmentName:
				attrs.fragmentName = val
			case attrTemplate:
				attrs.hasTemplate = true
			case attrRequired:
				attrs.required = true
			case attrRepeat:
				attrs.repeatSource = val
			case attrModels:
				for part := range strings.SplitSeq(val, ",") {
					if part = strings.TrimSpace(part); len(part) > 0 {
						attrs.models = append(attrs.models, part)
					}
				}
			}
		}
	}
}
