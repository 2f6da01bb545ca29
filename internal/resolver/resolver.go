// Package resolver executes a persisted SelectorSpec against a live document
// tree. Each call re-queries the tree from scratch; the resolver holds no
// state between invocations and never mutates tree structure.
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

const snapshotLen = 160

// Phase names the resolution stages reported to debug observers.
type Phase string

const (
	PhaseScope  Phase = "scope"
	PhaseAnchor Phase = "anchor"
	PhaseTarget Phase = "target"
)

// PhaseEvent is emitted after each resolution stage when a trace hook is set.
type PhaseEvent struct {
	Phase    Phase  `json:"phase"`
	Selector string `json:"selector,omitempty"`
	Matches  int    `json:"matches"`
	Detail   string `json:"detail,omitempty"`
}

// Resolution is the successful outcome of Resolve.
type Resolution struct {
	Node *html.Node
	// ScopeMatchCount is set when the spec had a scope section.
	ScopeMatchCount *int
	// AnchorMatchIndex is the zero-based index of the satisfying scope
	// element, set when the spec had an anchor section.
	AnchorMatchIndex *int
}

// Resolver resolves selector specs. The zero value is usable; the options
// only add observability.
type Resolver struct {
	log *zap.Logger
	// trace receives per-phase events when non-nil (debug visualization).
	trace func(PhaseEvent)
	// pacer inserts cooperative delays between phases for debug overlays.
	// Never required for correctness.
	pacer *rate.Limiter
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger attaches a zap logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = log.Named("resolver") }
}

// WithTrace registers a per-phase observer.
func WithTrace(fn func(PhaseEvent)) Option {
	return func(r *Resolver) { r.trace = fn }
}

// WithPacing rate-limits phase transitions for debug visualization.
func WithPacing(l *rate.Limiter) Option {
	return func(r *Resolver) { r.pacer = l }
}

// New creates a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.-]+)\s*\}\}`)

// Substitute replaces {{name}} placeholders with bound values. An unresolved
// placeholder is left verbatim; a missing binding is not fatal.
func Substitute(s string, vars map[string]string) string {
	if s == "" || len(vars) == 0 {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// substituteSpec applies variable bindings to every selector and parameter
// string of the spec, returning a detached copy.
func substituteSpec(spec schemas.SelectorSpec, vars map[string]string) schemas.SelectorSpec {
	out := spec
	if spec.Scope != nil {
		sc := *spec.Scope
		sc.Selector = Substitute(sc.Selector, vars)
		out.Scope = &sc
	}
	if spec.Anchor != nil {
		an := *spec.Anchor
		an.Selector = Substitute(an.Selector, vars)
		an.Value = Substitute(an.Value, vars)
		an.Attribute = Substitute(an.Attribute, vars)
		out.Anchor = &an
	}
	out.Target.Selector = Substitute(spec.Target.Selector, vars)
	if len(spec.Target.ActionParams) > 0 {
		params := make(map[string]string, len(spec.Target.ActionParams))
		for k, v := range spec.Target.ActionParams {
			params[k] = Substitute(v, vars)
		}
		out.Target.ActionParams = params
	}
	return out
}

// scopeUnit is one logical scope element. Scope nodes sharing a stable id
// are grouped into a single unit spanning several physical containers; that
// is how frozen-column/split-table layouts present one row. The grouping is
// a layout quirk, not a domain concept, so it stays a plain slice.
type scopeUnit []*html.Node

// groupScopeNodes folds raw scope matches into ordered logical units.
func groupScopeNodes(nodes []*html.Node) []scopeUnit {
	byID := make(map[string]int)
	var units []scopeUnit
	for _, n := range nodes {
		id := domtree.ID(n)
		if id == "" {
			units = append(units, scopeUnit{n})
			continue
		}
		if idx, ok := byID[id]; ok {
			units[idx] = append(units[idx], n)
			continue
		}
		byID[id] = len(units)
		units = append(units, scopeUnit{n})
	}
	return units
}

// Resolve locates exactly one node for the spec within root, after binding
// variables. Anchor resolution is strictly first-match-in-scope-array-order;
// ties never reorder.
func (r *Resolver) Resolve(ctx context.Context, root *html.Node, spec schemas.SelectorSpec, vars map[string]string) (*Resolution, error) {
	if root == nil {
		return nil, &Error{Code: CodeUnknown, Message: "document root is nil"}
	}
	spec = substituteSpec(spec, vars)
	res := &Resolution{}

	// Phase 1: scope.
	context := root
	var units []scopeUnit
	if spec.Scope != nil {
		if err := r.pace(ctx); err != nil {
			return nil, err
		}
		matches := domtree.Query(root, spec.Scope.Selector)
		count := len(matches)
		res.ScopeMatchCount = &count
		r.emit(PhaseEvent{Phase: PhaseScope, Selector: spec.Scope.Selector, Matches: count})
		if count == 0 {
			return nil, &Error{
				Code:     CodeScopeNotFound,
				Message:  fmt.Sprintf("scope selector %q matched no elements", spec.Scope.Selector),
				Selector: spec.Scope.Selector,
				Snapshot: domtree.Preview(root, snapshotLen),
			}
		}
		units = groupScopeNodes(matches)
	}

	// Phase 2: anchor.
	var anchored scopeUnit
	var anchorHit *html.Node
	if spec.Anchor != nil && len(units) > 0 {
		if err := r.pace(ctx); err != nil {
			return nil, err
		}
		idx, unit, hit := matchAnchor(units, *spec.Anchor)
		r.emit(PhaseEvent{Phase: PhaseAnchor, Selector: spec.Anchor.Selector, Matches: boolToInt(unit != nil), Detail: spec.Anchor.Value})
		if unit == nil {
			return nil, &Error{
				Code:     CodeAnchorNotFound,
				Message:  fmt.Sprintf("anchor (%s %q) matched no scope element", spec.Anchor.Type, spec.Anchor.Value),
				Selector: spec.Anchor.Selector,
				Snapshot: domtree.Preview(units[0][0], snapshotLen),
			}
		}
		res.AnchorMatchIndex = &idx
		anchored = unit
		anchorHit = hit
	} else if len(units) > 0 {
		// No anchor: the first scope match is the context, deterministically.
		anchored = units[0]
	}

	if anchored != nil {
		if anchorHit != nil {
			context = anchorHit
		} else {
			context = anchored[0]
		}
	}

	// Phase 3: target.
	if err := r.pace(ctx); err != nil {
		return nil, err
	}
	node, err := resolveTarget(context, anchored, spec.Target)
	r.emit(PhaseEvent{Phase: PhaseTarget, Selector: spec.Target.Selector, Matches: boolToInt(node != nil)})
	if err != nil {
		return nil, err
	}
	res.Node = node
	r.log.Debug("resolved",
		zap.String("target", spec.Target.Selector),
		zap.String("node", domtree.Preview(node, 60)))
	return res, nil
}

// matchAnchor finds the first scope unit, in array order, satisfied by the
// anchor. For text and attribute anchors every matching descendant of every
// group member is tested, not just the first. Returns the unit index, the
// unit, and the member in which the anchor matched.
func matchAnchor(units []scopeUnit, anchor schemas.AnchorSpec) (int, scopeUnit, *html.Node) {
	if anchor.Type == schemas.AnchorIndex {
		if anchor.Index >= 0 && anchor.Index < len(units) {
			return anchor.Index, units[anchor.Index], nil
		}
		return 0, nil, nil
	}
	for i, unit := range units {
		for _, member := range unit {
			if anchorMatchesIn(member, anchor) {
				return i, unit, member
			}
		}
	}
	return 0, nil, nil
}

// anchorMatchesIn tests the anchor inside one physical scope node.
func anchorMatchesIn(scope *html.Node, anchor schemas.AnchorSpec) bool {
	candidates := []*html.Node{}
	if strings.TrimSpace(anchor.Selector) == "" {
		candidates = append(candidates, scope)
	} else {
		candidates = append(candidates, domtree.Query(scope, anchor.Selector)...)
		// The scope element itself may satisfy the anchor selector.
		if domtree.Matches(scope, anchor.Selector) {
			candidates = append(candidates, scope)
		}
	}
	for _, c := range candidates {
		var actual string
		switch anchor.Type {
		case schemas.AnchorAttributeMatch:
			actual = domtree.Attr(c, anchor.Attribute)
		default:
			actual = domtree.Text(c)
		}
		if valueMatches(actual, anchor.Value, anchor.MatchMode) {
			return true
		}
	}
	return false
}

// valueMatches compares trim-normalized, case-insensitive values under the
// requested mode. contains is reflexive; exact is the only mode where "ab"
// fails against "abc".
func valueMatches(actual, expected string, mode schemas.MatchMode) bool {
	a := strings.ToLower(strings.TrimSpace(actual))
	e := strings.ToLower(strings.TrimSpace(expected))
	switch mode {
	case schemas.MatchContains:
		return strings.Contains(a, e)
	case schemas.MatchStartsWith:
		return strings.HasPrefix(a, e)
	case schemas.MatchEndsWith:
		return strings.HasSuffix(a, e)
	case schemas.MatchExact, "":
		return a == e
	default:
		return a == e
	}
}

// resolveTarget locates the acted-upon node within the resolved context.
func resolveTarget(context *html.Node, unit scopeUnit, target schemas.TargetSpec) (*html.Node, error) {
	if target.SelfTarget() {
		// The scope/anchor match IS the target. A document-level context
		// has no element to act on; that stays an error.
		if domtree.IsDocument(context) {
			return nil, &Error{
				Code:     CodeTargetNotFound,
				Message:  "empty target selector with document-level context",
				Snapshot: domtree.Preview(context, snapshotLen),
			}
		}
		return context, nil
	}

	// Search as a descendant of the context; for composite groups, across
	// every member, first hit wins.
	search := unit
	if len(search) == 0 {
		search = scopeUnit{context}
	}
	for _, member := range search {
		if found := domtree.QueryOne(member, target.Selector); found != nil {
			return found, nil
		}
	}
	// The context element itself may match the target selector.
	for _, member := range search {
		if domtree.Matches(member, target.Selector) {
			return member, nil
		}
	}
	return nil, &Error{
		Code:     CodeTargetNotFound,
		Message:  fmt.Sprintf("target selector %q matched nothing in context", target.Selector),
		Selector: target.Selector,
		Snapshot: domtree.Preview(context, snapshotLen),
	}
}

func (r *Resolver) pace(ctx context.Context) error {
	if r.pacer == nil {
		return nil
	}
	if err := r.pacer.Wait(ctx); err != nil {
		return &Error{Code: CodeTimeout, Message: "pacing interrupted", Cause: err}
	}
	return nil
}

func (r *Resolver) emit(ev PhaseEvent) {
	if r.trace != nil {
		r.trace(ev)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
