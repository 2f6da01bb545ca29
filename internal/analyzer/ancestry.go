package analyzer

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

// CollectAncestorPath walks upward from the node, scoring each ancestor's
// semantic strength, and stops at the first semantic root (score at or above
// the root threshold, or a stable id) or at the depth bound. The returned
// path is ordered nearest-first.
func (a *Analyzer) CollectAncestorPath(node *html.Node) []schemas.AncestorInfo {
	var path []schemas.AncestorInfo
	depth := 0
	for cur := domtree.Parent(node); cur != nil && depth < a.policy.MaxAncestorDepth; cur = domtree.Parent(cur) {
		tag := domtree.Tag(cur)
		if tag == "body" || tag == "html" {
			break
		}
		depth++
		score := a.scoreAncestor(cur)
		stableID := ""
		if id := domtree.ID(cur); id != "" && !a.policy.VolatileID.MatchString(id) {
			stableID = id
		}
		info := schemas.AncestorInfo{
			Tag:           tag,
			ID:            stableID,
			Classes:       domtree.Classes(cur),
			SemanticScore: score,
			Selector:      a.BuildMinimalSelector(cur),
			Preview:       domtree.Preview(cur, 80),
			Depth:         depth,
			SemanticRoot:  score >= a.policy.SemanticRootScore || stableID != "",
		}
		path = append(path, info)
		if info.SemanticRoot {
			break
		}
	}
	return path
}

// scoreAncestor grades how much an ancestor's naming reflects stable,
// human-authored structure. Skip-listed and generic classes score zero;
// recognized structural patterns score by their table; a stable id with no
// classes is nearly as strong as a structural class.
func (a *Analyzer) scoreAncestor(n *html.Node) float64 {
	classes := domtree.Classes(n)
	stableID := domtree.ID(n) != "" && !a.policy.VolatileID.MatchString(domtree.ID(n))

	if len(classes) == 0 {
		if stableID {
			return 0.85
		}
		return 0.1
	}

	best := 0.0
	allGeneric := true
	for _, c := range classes {
		if a.policy.GenericClass.MatchString(c) || a.policy.UnsafeClass.MatchString(c) {
			continue
		}
		allGeneric = false
		for _, cs := range a.policy.ClassScores {
			if cs.Pattern.MatchString(c) && cs.Score > best {
				best = cs.Score
			}
		}
	}
	if allGeneric {
		return 0.0
	}
	if best > 0 {
		if stableID && best < 0.85 {
			return 0.85
		}
		return best
	}
	if stableID {
		return 0.85
	}
	// Unrecognized but non-generic naming: weak default, slightly stronger
	// for semantic tags.
	if a.policy.SemanticTags[domtree.Tag(n)] {
		return 0.3
	}
	return 0.2
}

// BuildPathSelector chains the semantic root's selector, every intermediate
// ancestor scoring at or above the intermediate threshold, and the node's
// own minimal selector.
func (a *Analyzer) BuildPathSelector(node *html.Node, path []schemas.AncestorInfo) string {
	if len(path) == 0 {
		return a.BuildMinimalSelector(node)
	}
	// path is nearest-first; the selector reads root-first.
	var segments []string
	root := path[len(path)-1]
	segments = append(segments, root.Selector)
	for i := len(path) - 2; i >= 0; i-- {
		if path[i].SemanticScore >= a.policy.IntermediateScore {
			segments = append(segments, path[i].Selector)
		}
	}
	segments = append(segments, a.BuildMinimalSelector(node))
	return strings.Join(segments, " ")
}
