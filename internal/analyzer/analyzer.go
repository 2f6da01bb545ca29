// Package analyzer inspects a user-chosen node inside a parsed document and
// derives everything the generator needs: the repeating container, ranked
// anchor candidates, the semantic ancestor path, and minimal selectors.
// All output is ephemeral and recomputed per selection.
package analyzer

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

// Analyzer runs the structural and lexical heuristics over one node.
type Analyzer struct {
	policy *Policy
	log    *zap.Logger
}

// New creates an analyzer. A nil policy uses the built-in defaults.
func New(policy *Policy, log *zap.Logger) *Analyzer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{policy: policy, log: log.Named("analyzer")}
}

// Analyze produces the full ElementAnalysis for a node.
func (a *Analyzer) Analyze(node *html.Node) schemas.ElementAnalysis {
	analysis := schemas.ElementAnalysis{
		ContainerType:  schemas.ContainerNone,
		DirectSelector: a.BuildMinimalSelector(node),
	}
	if node == nil {
		return analysis
	}

	container := a.FindRepeatingContainer(node)
	if container != nil {
		analysis.ContainerType = a.DetectContainerType(container)
		analysis.ContainerSelector = a.BuildMinimalSelector(container)
		analysis.ScopeSelector = a.ScopeSelector(container)
		analysis.TargetSelector = a.RelativeSelector(container, node)
		analysis.AnchorCandidates = a.FindAnchorCandidates(container)
	} else {
		analysis.TargetSelector = analysis.DirectSelector
	}

	analysis.AncestorPath = a.CollectAncestorPath(node)
	if len(analysis.AncestorPath) > 0 {
		analysis.PathSelector = a.BuildPathSelector(node, analysis.AncestorPath)
	}

	a.log.Debug("analyzed element",
		zap.String("node", domtree.Preview(node, 60)),
		zap.String("container_type", string(analysis.ContainerType)),
		zap.Int("anchor_candidates", len(analysis.AnchorCandidates)))
	return analysis
}
