package compose

import "regexp"

// Injection markers are lexically non-nesting: the inner content is opaque
// raw text that only gets rescanned after extraction, one recursion level
// deeper.
var injectRx = regexp.MustCompile(`(?is)<fragment-inject\b([^>]*)>(.*?)</fragment-inject>`)

// injection is one scanned marker occurrence with the byte offsets needed
// for position-preserving reconstruction.
type injection struct {
	attrs    tagAttrs
	template string
	start    int
	end      int
}

// scanInjections finds non-overlapping injection markers left to right.
func scanInjections(body string) []injection {
	idx := injectRx.FindAllStringSubmatchIndex(body, -1)
	if len(idx) == 0 {
		return nil
	}
	out := make([]injection, 0, len(idx))
	for _, m := range idx {
		// m[2]:m[3] is the attribute chunk, m[3]+1 includes the '>' so
		// the attribute lexer sees a complete opening tag
		out = append(out, injection{
			attrs:    parseTagAttrs([]byte(body[m[0] : m[3]+1])),
			template: body[m[4]:m[5]],
			start:    m[0],
			end:      m[1],
		})
	}
	return out
}
