// Package domtree provides the engine's view of a parsed document: node
// helpers over golang.org/x/net/html and a selector query interface that
// never fails across the engine boundary.
package domtree

import (
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Parse reads an HTML document into a node tree. Parent back-references are
// native to html.Node, so ancestor walks are O(depth) with no extra state.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseString is a convenience wrapper for tests and CLI input.
func ParseString(src string) (*html.Node, error) {
	return Parse(strings.NewReader(src))
}

// Query resolves a CSS selector to its ordered matches within context.
// Invalid selector syntax degrades to zero matches; one malformed candidate
// must never abort analysis of the others.
func Query(context *html.Node, selector string) []*html.Node {
	if context == nil || strings.TrimSpace(selector) == "" {
		return nil
	}
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil
	}
	return cascadia.QueryAll(context, sel)
}

// QueryOne returns the first match of selector within context, or nil.
func QueryOne(context *html.Node, selector string) *html.Node {
	if context == nil || strings.TrimSpace(selector) == "" {
		return nil
	}
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil
	}
	return cascadia.Query(context, sel)
}

// Matches reports whether the node itself satisfies the selector.
func Matches(n *html.Node, selector string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return false
	}
	return sel.Match(n)
}

// Attr returns the value of an attribute, or "" when absent.
func Attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports attribute presence regardless of value.
func HasAttr(n *html.Node, name string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// ID returns the element's id attribute.
func ID(n *html.Node) string { return Attr(n, "id") }

// Classes returns the element's class list in document order.
func Classes(n *html.Node) []string {
	raw := Attr(n, "class")
	if raw == "" {
		return nil
	}
	return strings.Fields(raw)
}

// HasClass reports whether the node carries the given class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// Tag returns the lowercase tag name of an element node, or "".
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Text returns the concatenated text content of the subtree, trimmed.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			sb.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return strings.TrimSpace(sb.String())
}

// DirectTexts collects every distinct trimmed text string that appears as a
// direct text child anywhere in the subtree, preserving first-seen order.
// Unlike Text it does not merge adjacent strings across elements, which is
// what anchor ranking needs: each candidate value maps to one element.
func DirectTexts(n *html.Node) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				t := strings.TrimSpace(c.Data)
				if t != "" && !seen[t] {
					seen[t] = true
					out = append(out, t)
				}
			} else if c.Type == html.ElementNode {
				walk(c)
			}
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// Parent returns the nearest element ancestor, skipping the document node.
func Parent(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

// ElementChildren returns the element-node children in document order.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// SameTagSiblings returns all element siblings sharing the node's tag,
// including the node itself, in document order.
func SameTagSiblings(n *html.Node) []*html.Node {
	p := Parent(n)
	if p == nil {
		return []*html.Node{n}
	}
	var out []*html.Node
	for _, c := range ElementChildren(p) {
		if Tag(c) == Tag(n) {
			out = append(out, c)
		}
	}
	return out
}

// SiblingIndex returns the 1-based position of n among same-tag siblings.
func SiblingIndex(n *html.Node) int {
	idx := 0
	for _, sib := range SameTagSiblings(n) {
		idx++
		if sib == n {
			return idx
		}
	}
	return 1
}

// IsDocument reports whether the node is the document root rather than an
// element. Self-targeting a document-level context is an error in the
// resolver, so it needs the distinction.
func IsDocument(n *html.Node) bool {
	return n != nil && n.Type == html.DocumentNode
}

// Contains reports whether haystack is needle or one of its ancestors'
// subtrees, i.e. needle sits inside haystack.
func Contains(haystack, needle *html.Node) bool {
	for cur := needle; cur != nil; cur = cur.Parent {
		if cur == haystack {
			return true
		}
	}
	return false
}

// Preview renders a truncated structural snapshot of a node for error
// reporting: opening tag with id/class, plus leading text.
func Preview(n *html.Node, maxLen int) string {
	if n == nil {
		return ""
	}
	if IsDocument(n) {
		return "#document"
	}
	var sb strings.Builder
	sb.WriteString("<" + Tag(n))
	if id := ID(n); id != "" {
		sb.WriteString(` id="` + id + `"`)
	}
	if cls := Attr(n, "class"); cls != "" {
		sb.WriteString(` class="` + cls + `"`)
	}
	sb.WriteString(">")
	if t := Text(n); t != "" {
		sb.WriteString(" " + t)
	}
	out := sb.String()
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen] + "..."
	}
	return out
}
