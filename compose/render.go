package compose

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fcx/fragment"
)

// MaxDepth is the recursion ceiling for nested injection markers. Bodies
// that would expand deeper are returned with their inner markers left
// unexpanded; this guards against cyclic templates without failing the
// render.
const MaxDepth = 5

// Renderer expands injection markers in fetched bodies. It holds no state
// across calls beyond its collaborators; the recursion depth is threaded
// through as a parameter.
type Renderer struct {
	man  *Manager
	eval Evaluator
	log  *zap.Logger
}

// NewRenderer creates a renderer over a request-scoped manager.
func NewRenderer(man *Manager, eval Evaluator, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{man: man, eval: eval, log: log}
}

// Render expands the body until no injection markers remain or the depth
// ceiling is reached.
func (r *Renderer) Render(ctx context.Context, body string) (string, error) {
	return r.renderRecursive(ctx, body, 1)
}

func (r *Renderer) renderRecursive(ctx context.Context, body string, depth int) (string, error) {
	if depth > MaxDepth {
		return body, nil
	}
	matches := scanInjections(body)
	if len(matches) == 0 {
		return body, nil
	}

	// Fan out: every match at this level is launched before any is
	// awaited. Target resolution happens up front and sequentially so an
	// unknown fragment reference stops further matches from being
	// scheduled; branches already in flight still run to completion and
	// the failure surfaces only after the barrier.
	results := make([]string, len(matches))
	var grp errgroup.Group
	var fatal error
	for i, inj := range matches {
		target, err := r.resolveTarget(inj)
		if err != nil {
			fatal = err
			break
		}
		grp.Go(func() error {
			text, err := r.renderFragment(ctx, target, inj, depth)
			if err != nil {
				return err
			}
			results[i] = text
			return nil
		})
	}
	err := grp.Wait()
	if fatal != nil {
		return "", fatal
	}
	if err != nil {
		return "", err
	}

	// Fan in: reassemble by original offsets only, never by completion
	// order.
	var sb strings.Builder
	last := 0
	for i, inj := range matches {
		sb.WriteString(body[last:inj.start])
		sb.WriteString(results[i])
		last = inj.end
	}
	sb.WriteString(body[last:])
	return sb.String(), nil
}

// resolveTarget picks the fragment whose template the injection renders.
// Name-based lookup takes precedence over the template flag.
func (r *Renderer) resolveTarget(inj injection) (*fragment.Fragment, error) {
	if name := inj.attrs.fragmentName; len(name) > 0 {
		target, ok := r.man.Fragment(name)
		if !ok {
			return nil, &UnknownFragmentError{Name: name}
		}
		return target, nil
	}
	if inj.attrs.hasTemplate {
		return fragment.Inline(inj.template, inj.attrs.required), nil
	}
	return nil, ErrMissingTemplateSpecification
}

func (r *Renderer) renderFragment(ctx context.Context, target *fragment.Fragment, inj injection, depth int) (string, error) {
	required := target.Required() || inj.attrs.required

	// The dependency list is an ordered set: a duplicated name collapses to
	// its first occurrence so each model is fetched exactly once.
	models := uniqueNames(inj.attrs.models)
	if len(models) == 0 {
		models = uniqueNames(target.Models())
	}

	repeatPath := inj.attrs.repeatSource
	repeatRoot := ""
	if len(repeatPath) > 0 {
		repeatRoot, _, _ = strings.Cut(repeatPath, ".")
		if !slices.Contains(models, repeatRoot) || !r.man.HasFragment(repeatRoot) {
			return "", &RenderError{
				Fragment: target.String(),
				Err:      &InvalidRepeatSourceError{Path: repeatPath, Root: repeatRoot},
			}
		}
	}
	for _, name := range models {
		if !r.man.HasFragment(name) {
			return "", &MissingDataSourceError{Name: name}
		}
	}

	tbody, err := r.man.FetchFragmentBody(ctx, target)
	if err != nil {
		if required {
			return "", err
		}
		r.log.Warn("optional fragment fetch failed", zap.String("fragment", target.String()), zap.Error(err))
		return target.RenderErrorMessage(&RenderError{Fragment: target.String(), Err: err}).String(), nil
	}
	tmpl := tbody.String()

	// Fetch every model body concurrently. A failure of the repeat root is
	// captured instead of propagated - it selects the missing-content path
	// below.
	bodies := make([]fragment.Body, len(models))
	var repeatErr error
	var grp errgroup.Group
	for i, name := range models {
		grp.Go(func() error {
			body, err := r.man.FragmentBody(ctx, name)
			if err != nil {
				if name == repeatRoot {
					repeatErr = err
					return nil
				}
				return err
			}
			bodies[i] = body
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		if required {
			return "", err
		}
		r.log.Warn("optional fragment model fetch failed", zap.String("fragment", target.String()), zap.Error(err))
		return target.RenderErrorMessage(&RenderError{Fragment: target.String(), Err: err}).String(), nil
	}

	data := make(map[string]any, len(models)+1)
	for i, name := range models {
		if name == repeatRoot && repeatErr != nil {
			continue
		}
		data[name] = r.modelValue(name, bodies[i])
	}

	if len(repeatPath) > 0 {
		return r.renderRepeat(ctx, target, tmpl, data, repeatPath, repeatRoot, repeatErr, required, depth)
	}

	text, err := r.renderTemplate(ctx, target, tmpl, data, depth)
	if err != nil {
		return r.recover(target, required, err)
	}
	return text, nil
}

// renderRepeat renders the template once per element of the repeat source,
// in sequence order, binding each element to "current". An empty or absent
// sequence yields the empty string; a failed repeat root fetch yields the
// root fragment's missing-content message instead of iterating.
func (r *Renderer) renderRepeat(ctx context.Context, target *fragment.Fragment, tmpl string, data map[string]any, repeatPath, repeatRoot string, repeatErr error, required bool, depth int) (string, error) {
	if repeatErr != nil {
		root, _ := r.man.Fragment(repeatRoot)
		r.log.Warn("repeat source fetch failed", zap.String("fragment", root.String()), zap.Error(repeatErr))
		return root.MissingContentMessage(repeatErr).String(), nil
	}
	items := resolvePath(data, repeatPath)
	if len(items) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, item := range items {
		scope := make(map[string]any, len(data)+1)
		maps.Copy(scope, data)
		scope["current"] = item
		text, err := r.renderTemplate(ctx, target, tmpl, scope, depth)
		if err != nil {
			return r.recover(target, required, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// renderTemplate expands nested markers one depth deeper, then hands the
// result to the template evaluator.
func (r *Renderer) renderTemplate(ctx context.Context, target *fragment.Fragment, tmpl string, data map[string]any, depth int) (string, error) {
	expanded, err := r.renderRecursive(ctx, tmpl, depth+1)
	if err != nil {
		return "", err
	}
	name := target.Name()
	if len(name) == 0 {
		name = "inline"
	}
	return r.eval.Evaluate(name, expanded, data)
}

// recover applies the required/optional policy to a recursion or evaluation
// failure.
func (r *Renderer) recover(target *fragment.Fragment, required bool, err error) (string, error) {
	rerr := &RenderError{Fragment: target.String(), Err: err}
	if required {
		return "", rerr
	}
	r.log.Warn("optional fragment render failed", zap.String("fragment", target.String()), zap.Error(err))
	return target.RenderErrorMessage(rerr).String(), nil
}

// modelValue converts a fetched body into the value templates see: JSON
// bodies decode into structured data, everything else passes through as
// text. A JSON body that fails to decode degrades to its raw text.
func (r *Renderer) modelValue(name string, body fragment.Body) any {
	if strings.Contains(body.ContentType(), "json") {
		var v any
		if err := json.Unmarshal(body.Content(), &v); err == nil {
			return v
		}
		r.log.Debug("model body is not valid JSON, passing raw text", zap.String("model", name))
	}
	return body.String()
}

// uniqueNames keeps the first occurrence of each name.
func uniqueNames(names []string) []string {
	if len(names) < 2 {
		return names
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// resolvePath walks a dotted path through the model mapping. Anything that
// is not an ordered sequence at the end of the path counts as absent.
func resolvePath(data map[string]any, path string) []any {
	var cur any = data
	for seg := range strings.SplitSeq(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = node[seg]
	}
	if list, ok := cur.([]any); ok {
		return list
	}
	return nil
}
