package analyzer

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

// BuildMinimalSelector derives the shortest selector that still pins the
// node down, preferring stable identity over structure: id, automation
// test-id, name attribute, safe classes, role/type, bare tag. A 1-based
// positional qualifier is appended when the result stays ambiguous among
// same-tag siblings.
func (a *Analyzer) BuildMinimalSelector(node *html.Node) string {
	if node == nil || node.Type != html.ElementNode {
		return ""
	}
	tag := domtree.Tag(node)

	if id := domtree.ID(node); id != "" && !a.policy.VolatileID.MatchString(id) {
		return "#" + cssEscape(id)
	}
	for _, attr := range a.policy.TestIDAttributes {
		if v := domtree.Attr(node, attr); v != "" {
			return fmt.Sprintf(`[%s=%q]`, attr, v)
		}
	}
	if name := domtree.Attr(node, "name"); name != "" && !a.policy.VolatileID.MatchString(name) {
		return a.disambiguate(node, fmt.Sprintf(`%s[name=%q]`, tag, name))
	}
	if classes := a.safeClasses(node, 2); len(classes) > 0 {
		return a.disambiguate(node, tag+"."+strings.Join(classes, "."))
	}
	if role := domtree.Attr(node, "role"); role != "" {
		return a.disambiguate(node, fmt.Sprintf(`%s[role=%q]`, tag, role))
	}
	if typ := domtree.Attr(node, "type"); typ != "" {
		return a.disambiguate(node, fmt.Sprintf(`%s[type=%q]`, tag, typ))
	}
	return a.disambiguate(node, tag)
}

// safeClasses filters the node's classes down to ones safe to select on,
// capped at max. Arbitrary-value, state/variant, responsive, framework
// prefixed, single-letter and numeric classes are all rejected.
func (a *Analyzer) safeClasses(node *html.Node, max int) []string {
	var out []string
	for _, c := range domtree.Classes(node) {
		if a.policy.UnsafeClass.MatchString(c) {
			continue
		}
		out = append(out, cssEscape(c))
		if len(out) == max {
			break
		}
	}
	return out
}

// disambiguate appends :nth-of-type when the selector matches more than one
// same-tag sibling under the same parent.
func (a *Analyzer) disambiguate(node *html.Node, selector string) string {
	parent := domtree.Parent(node)
	if parent == nil {
		return selector
	}
	matched := 0
	for _, sib := range domtree.ElementChildren(parent) {
		if domtree.Matches(sib, selector) {
			matched++
		}
	}
	if matched > 1 {
		return fmt.Sprintf("%s:nth-of-type(%d)", selector, domtree.SiblingIndex(node))
	}
	return selector
}

// RelativeSelector builds a container-relative selector path for a node,
// using only cross-row-stable segments (no ids, which differ per row).
// Returns "" when the node is the container itself: self-targeting.
func (a *Analyzer) RelativeSelector(container, node *html.Node) string {
	if container == nil || node == container {
		return ""
	}
	var segments []string
	for cur := node; cur != nil && cur != container; cur = domtree.Parent(cur) {
		segments = append([]string{a.relativeSegment(cur)}, segments...)
	}
	return strings.Join(segments, " > ")
}

// relativeSegment is one level of a relative path: tag, safe classes, and a
// positional qualifier when siblings stay ambiguous.
func (a *Analyzer) relativeSegment(node *html.Node) string {
	tag := domtree.Tag(node)
	sel := tag
	if classes := a.safeClasses(node, 2); len(classes) > 0 {
		sel = tag + "." + strings.Join(classes, ".")
	}
	return a.disambiguate(node, sel)
}

// ScopeSelector generalizes the container's selector so it matches every
// sibling instance: tag plus safe classes, never ids or positions.
func (a *Analyzer) ScopeSelector(container *html.Node) string {
	if container == nil {
		return ""
	}
	tag := domtree.Tag(container)
	if classes := a.safeClasses(container, 2); len(classes) > 0 {
		return tag + "." + strings.Join(classes, ".")
	}
	return tag
}

// cssEscape handles the characters that actually show up in real-world ids
// and classes; full serialization escaping is not needed for selectors the
// analyzer itself generated.
func cssEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case ':', '.', '[', ']', '#', '(', ')', '/', ' ':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
