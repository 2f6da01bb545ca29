package analyzer

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

// FindRepeatingContainer locates the repeating structure (table row, list
// item, card) the node belongs to. Phase 1 tests the node itself; phase 2
// walks ancestors applying the same sibling-similarity condition.
func (a *Analyzer) FindRepeatingContainer(node *html.Node) *html.Node {
	if node == nil || node.Type != html.ElementNode {
		return nil
	}

	// Phase 1: the node may be its own container.
	if a.siblingSimilar(node) && a.eligibleContainer(node) {
		return node
	}

	// Phase 2: ancestor walk. Granular levels that repeat are remembered as
	// a fallback; the first row-like repeating ancestor wins outright.
	var fallback *html.Node
	for cur := domtree.Parent(node); cur != nil; cur = domtree.Parent(cur) {
		tag := domtree.Tag(cur)
		if tag == "body" || tag == "html" {
			break
		}
		if !a.siblingSimilar(cur) {
			continue
		}
		if a.policy.RowLikeTags[tag] {
			return cur
		}
		if fallback == nil {
			fallback = cur
		}
	}
	return fallback
}

// siblingSimilar reports whether the node has at least two same-tag
// siblings; generic tags additionally require a 50% class-set overlap so
// layout divs do not read as repetition.
func (a *Analyzer) siblingSimilar(node *html.Node) bool {
	tag := domtree.Tag(node)
	if tag == "" {
		return false
	}
	similar := 0
	for _, sib := range domtree.SameTagSiblings(node) {
		if sib == node {
			continue
		}
		if a.policy.GenericTags[tag] && classOverlap(node, sib) < 0.5 {
			continue
		}
		similar++
	}
	return similar >= 2
}

// classOverlap is the fraction of the node's classes its sibling shares.
// A node with no classes overlaps fully with a classless sibling.
func classOverlap(node, sib *html.Node) float64 {
	mine := domtree.Classes(node)
	if len(mine) == 0 {
		if len(domtree.Classes(sib)) == 0 {
			return 1.0
		}
		return 0.0
	}
	shared := 0
	for _, c := range mine {
		if domtree.HasClass(sib, c) {
			shared++
		}
	}
	return float64(shared) / float64(len(mine))
}

// eligibleContainer applies the phase 1 exclusions: table-cell and inline
// text tags never qualify, and anchor tags inside a button toolbar are
// toolbar buttons rather than list cards. A grid or flex parent layout
// re-admits otherwise-excluded tags.
func (a *Analyzer) eligibleContainer(node *html.Node) bool {
	parent := domtree.Parent(node)
	if isGridOrFlex(parent) {
		return true
	}
	tag := domtree.Tag(node)
	if a.policy.GranularTags[tag] {
		return false
	}
	if tag == "a" && parent != nil && a.policy.ToolbarClass.MatchString(domtree.Attr(parent, "class")) {
		return false
	}
	return true
}

// isGridOrFlex guesses the parent's display mode from inline style and
// class naming. Without computed styles this stays a lexical heuristic.
func isGridOrFlex(n *html.Node) bool {
	if n == nil {
		return false
	}
	style := strings.ToLower(domtree.Attr(n, "style"))
	if strings.Contains(style, "display:grid") || strings.Contains(style, "display: grid") ||
		strings.Contains(style, "display:flex") || strings.Contains(style, "display: flex") {
		return true
	}
	for _, c := range domtree.Classes(n) {
		lc := strings.ToLower(c)
		if lc == "grid" || lc == "flex" || strings.HasPrefix(lc, "grid-") || strings.HasPrefix(lc, "flex-") {
			return true
		}
	}
	return false
}

// FindSemanticContainer walks upward to the nearest semantically stable
// ancestor: a non-volatile id, an automation attribute, a curated structural
// class, or a semantic tag carrying any class.
func (a *Analyzer) FindSemanticContainer(node *html.Node) *html.Node {
	for cur := domtree.Parent(node); cur != nil; cur = domtree.Parent(cur) {
		tag := domtree.Tag(cur)
		if tag == "body" || tag == "html" {
			break
		}
		if id := domtree.ID(cur); id != "" && !a.policy.VolatileID.MatchString(id) {
			return cur
		}
		if a.hasTestID(cur) {
			return cur
		}
		for _, c := range domtree.Classes(cur) {
			if a.policy.StableStructural.MatchString(c) {
				return cur
			}
		}
		if a.policy.SemanticTags[tag] && len(domtree.Classes(cur)) > 0 {
			return cur
		}
	}
	return nil
}

func (a *Analyzer) hasTestID(n *html.Node) bool {
	for _, attr := range a.policy.TestIDAttributes {
		if domtree.Attr(n, attr) != "" {
			return true
		}
	}
	return false
}

// DetectContainerType classifies a repeating container.
func (a *Analyzer) DetectContainerType(container *html.Node) schemas.ContainerType {
	if container == nil {
		return schemas.ContainerNone
	}
	switch domtree.Tag(container) {
	case "tr":
		return schemas.ContainerTable
	case "li":
		return schemas.ContainerList
	}
	if isGridOrFlex(domtree.Parent(container)) {
		return schemas.ContainerGrid
	}
	for _, c := range domtree.Classes(container) {
		lc := strings.ToLower(c)
		if strings.Contains(lc, "card") || strings.Contains(lc, "item") || strings.Contains(lc, "row") {
			return schemas.ContainerCard
		}
	}
	return schemas.ContainerGrid
}
