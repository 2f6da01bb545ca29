// Package generator converts analyzer output into ranked selector
// strategies and the SelectorSpec the resolver executes.
package generator

import (
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
)

// Overrides carries caller-supplied choices that take precedence over the
// analyzer's automatic ranking: a hand-picked anchor with its literal match
// value, and the action the tool will perform.
type Overrides struct {
	Anchor       *schemas.AnchorSpec
	Action       schemas.ActionKind
	ActionParams map[string]string
}

// Generator builds strategies from an ElementAnalysis.
type Generator struct {
	log *zap.Logger
}

// New creates a generator.
func New(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{log: log.Named("generator")}
}

// DetermineStrategy picks the strategy kind: structure when the node sits in
// a recognized repeating container with at least one anchor candidate, else
// path when an ancestor path exists, else direct.
func (g *Generator) DetermineStrategy(an schemas.ElementAnalysis) schemas.StrategyKind {
	if an.ContainerType.Repeating() && len(an.AnchorCandidates) > 0 {
		return schemas.StrategyStructure
	}
	if len(an.AncestorPath) > 0 {
		return schemas.StrategyPath
	}
	return schemas.StrategyDirect
}

// Build produces the single chosen strategy for the analysis.
func (g *Generator) Build(an schemas.ElementAnalysis, ov Overrides) schemas.Strategy {
	switch g.DetermineStrategy(an) {
	case schemas.StrategyStructure:
		anchor := ov.Anchor
		if anchor == nil && len(an.AnchorCandidates) > 0 {
			anchor = anchorFromCandidate(an.AnchorCandidates[0])
		}
		conf := 0.6
		if len(an.AnchorCandidates) > 0 {
			conf = an.AnchorCandidates[0].Confidence
		}
		return g.buildStructure(an, anchor, conf, ov)
	case schemas.StrategyPath:
		return g.buildPath(an)
	default:
		return g.buildDirect(an)
	}
}

// GenerateStrategies produces the ordered alternatives shown to the user
// for comparison: the bare target, the scope without an anchor, and one
// spec per top-3 anchor candidates.
func (g *Generator) GenerateStrategies(an schemas.ElementAnalysis, ov Overrides) []schemas.Strategy {
	var out []schemas.Strategy
	out = append(out, g.buildDirect(an))
	if an.ScopeSelector != "" {
		out = append(out, g.buildStructure(an, nil, 0.5, ov))
		for i, cand := range an.AnchorCandidates {
			if i == 3 {
				break
			}
			out = append(out, g.buildStructure(an, anchorFromCandidate(cand), cand.Confidence, ov))
		}
	} else if len(an.AncestorPath) > 0 {
		out = append(out, g.buildPath(an))
	}
	g.log.Debug("generated strategies", zap.Int("count", len(out)))
	return out
}

// buildStructure emits the scope/anchor/target form. The target selector is
// empty (self-targeting) whenever the node relative to its container has no
// sub-path.
func (g *Generator) buildStructure(an schemas.ElementAnalysis, anchor *schemas.AnchorSpec, conf float64, ov Overrides) schemas.Strategy {
	st := schemas.StructureStrategy{
		Scope: schemas.ScopeSpec{
			Type:     string(an.ContainerType),
			Selector: an.ScopeSelector,
		},
		Anchor: anchor,
		Target: schemas.TargetSpec{
			Selector:     an.TargetSelector,
			Action:       ov.Action,
			ActionParams: ov.ActionParams,
		},
	}
	combined := strings.TrimSpace(an.ScopeSelector + " " + an.TargetSelector)
	return schemas.Strategy{
		Kind:       schemas.StrategyStructure,
		Confidence: conf,
		Combined:   combined,
		Structure:  &st,
	}
}

func (g *Generator) buildPath(an schemas.ElementAnalysis) schemas.Strategy {
	// AncestorPath is nearest-first; the path strategy reads root-first.
	path := an.AncestorPath
	root := path[len(path)-1]
	var intermediates []string
	for i := len(path) - 2; i >= 0; i-- {
		if path[i].SemanticScore >= 0.5 {
			intermediates = append(intermediates, path[i].Selector)
		}
	}
	ps := schemas.PathStrategy{
		Root:          root.Selector,
		Intermediates: intermediates,
		Target:        an.DirectSelector,
	}
	combined := an.PathSelector
	if combined == "" {
		combined = ps.CombinedOf()
	}
	conf := 0.5 + root.SemanticScore/4
	if conf > 0.9 {
		conf = 0.9
	}
	return schemas.Strategy{
		Kind:       schemas.StrategyPath,
		Confidence: conf,
		Combined:   combined,
		Path:       &ps,
	}
}

func (g *Generator) buildDirect(an schemas.ElementAnalysis) schemas.Strategy {
	conf := 0.4
	if strings.HasPrefix(an.DirectSelector, "#") || strings.HasPrefix(an.DirectSelector, "[data-") {
		conf = 0.85
	}
	return schemas.Strategy{
		Kind:       schemas.StrategyDirect,
		Confidence: conf,
		Combined:   an.DirectSelector,
		Direct:     &schemas.DirectStrategy{Selector: an.DirectSelector},
	}
}

// anchorFromCandidate translates a ranked candidate into the runtime anchor
// shape. The candidate's literal value is matched exactly; the resolver
// normalizes case and whitespace on both sides.
func anchorFromCandidate(c schemas.AnchorCandidate) *schemas.AnchorSpec {
	return &schemas.AnchorSpec{
		Type:      c.Type,
		Selector:  c.Selector,
		Value:     c.Value,
		MatchMode: schemas.MatchExact,
		Attribute: c.Attribute,
	}
}
