// Package evaluate provides the default template evaluator used for final
// text substitution: text/template extended with the slim-sprig function map.
package evaluate

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

// TemplateEvaluator renders template text against a data mapping. Safe for
// concurrent use - every call parses its own template.
type TemplateEvaluator struct {
	funcs template.FuncMap
}

// New creates an evaluator with the standard function map.
func New() *TemplateEvaluator {
	return &TemplateEvaluator{funcs: sprig.FuncMap()}
}

// Evaluate expands template text with the given data. The name is used for
// parse diagnostics only.
func (e *TemplateEvaluator) Evaluate(name, text string, data map[string]any) (string, error) {
	tmpl, err := template.New(name).Funcs(e.funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("unable to parse template %s: %w", name, err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
