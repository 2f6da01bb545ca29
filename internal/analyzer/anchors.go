package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

var (
	numericPunctRe = regexp.MustCompile(`^[\d\s.,:;%/+*#$-]+$`)
	digitRunRe     = regexp.MustCompile(`\d{4,}`)
	idTokenRe      = regexp.MustCompile(`^[A-Za-z]{0,4}[-_]?[A-Za-z0-9]*\d{3,}[A-Za-z0-9-]*$`)
	nameLikeRe     = regexp.MustCompile(`^\p{Lu}[\p{L}.'-]+(\s+\p{Lu}[\p{L}.'-]+){1,2}$`)
)

// rawCandidate pairs a candidate value with the element it came from before
// scoring.
type rawCandidate struct {
	node      *html.Node
	value     string
	attribute string
}

// FindAnchorCandidates ranks the ways one container instance can be told
// apart from its siblings. Ranking is entropy-aware: a value repeating
// across sibling rows is nearly useless for row identification no matter
// how salient its element looks.
func (a *Analyzer) FindAnchorCandidates(container *html.Node) []schemas.AnchorCandidate {
	if container == nil {
		return nil
	}
	siblings := a.sampleSiblings(container)

	var out []schemas.AnchorCandidate
	for _, raw := range a.collectRawCandidates(container) {
		out = append(out, a.scoreCandidate(container, raw, siblings))
	}

	// Last resort: the container's own unique-looking attributes. These are
	// usually template-shared, hence the fixed floor confidence.
	for _, attr := range a.policy.SemanticAttributes {
		v := domtree.Attr(container, attr)
		if v == "" || !looksUnique(v) {
			continue
		}
		out = append(out, schemas.AnchorCandidate{
			Selector:   "",
			Type:       schemas.AnchorAttributeMatch,
			Value:      v,
			Attribute:  attr,
			Confidence: 0.2,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Unique != out[j].Unique {
			return out[i].Unique
		}
		iText := out[i].Type == schemas.AnchorTextMatch
		jText := out[j].Type == schemas.AnchorTextMatch
		if iText != jText {
			return iText
		}
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > a.policy.MaxAnchorCandidates {
		out = out[:a.policy.MaxAnchorCandidates]
	}
	return out
}

// sampleSiblings returns up to SiblingSampleSize same-tag siblings for
// cross-row comparison; above the cap it takes the first and last three so
// both ends of long lists are represented.
func (a *Analyzer) sampleSiblings(container *html.Node) []*html.Node {
	var sibs []*html.Node
	for _, s := range domtree.SameTagSiblings(container) {
		if s != container {
			sibs = append(sibs, s)
		}
	}
	max := a.policy.SiblingSampleSize
	if len(sibs) <= max {
		return sibs
	}
	half := max / 2
	sampled := make([]*html.Node, 0, max)
	sampled = append(sampled, sibs[:half]...)
	sampled = append(sampled, sibs[len(sibs)-half:]...)
	return sampled
}

// collectRawCandidates gathers every distinct direct-text string and every
// semantic attribute value in the container subtree.
func (a *Analyzer) collectRawCandidates(container *html.Node) []rawCandidate {
	var out []rawCandidate
	seenText := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				t := strings.TrimSpace(c.Data)
				if len(t) >= a.policy.MinTextLen && len(t) <= a.policy.MaxTextLen && !seenText[t] {
					seenText[t] = true
					out = append(out, rawCandidate{node: cur, value: t})
				}
			case html.ElementNode:
				for _, attr := range a.policy.SemanticAttributes {
					if v := domtree.Attr(c, attr); v != "" {
						out = append(out, rawCandidate{node: c, value: v, attribute: attr})
					}
				}
				walk(c)
			}
		}
	}
	walk(container)
	return out
}

// scoreCandidate turns a raw candidate into a scored, uniqueness-checked
// AnchorCandidate.
func (a *Analyzer) scoreCandidate(container *html.Node, raw rawCandidate, siblings []*html.Node) schemas.AnchorCandidate {
	selector := a.RelativeSelector(container, raw.node)

	conf := a.baseConfidence(container, raw)
	lowEntropy := a.isLowEntropy(raw.value)
	if lowEntropy {
		conf *= a.policy.LowEntropyPenalty
	}

	cand := schemas.AnchorCandidate{
		Selector:   selector,
		Type:       schemas.AnchorTextMatch,
		Value:      raw.value,
		Confidence: conf,
		LowEntropy: lowEntropy,
	}
	if raw.attribute != "" {
		cand.Type = schemas.AnchorAttributeMatch
		cand.Attribute = raw.attribute
	}

	if len(siblings) > 0 {
		k := a.siblingFrequency(raw, selector, siblings)
		cand.SiblingFrequency = k
		mult := 1.0 - 0.9*float64(k)/float64(len(siblings))
		if mult < 0.1 {
			mult = 0.1
		}
		cand.Confidence *= mult
		if k == 0 {
			cand.Unique = true
			cand.Confidence += 0.3
			if cand.Confidence > 1.0 {
				cand.Confidence = 1.0
			}
		}
	} else if looksUnique(raw.value) {
		// No siblings to compare against; fall back to lexical heuristics.
		cand.Unique = true
	}
	return cand
}

// baseConfidence applies the static salience heuristics before any
// cross-row evidence.
func (a *Analyzer) baseConfidence(container *html.Node, raw rawCandidate) float64 {
	conf := 0.5
	if a.policy.SalientTags[domtree.Tag(raw.node)] {
		conf += 0.15
	}
	if a.policy.ClassHints.MatchString(domtree.Attr(raw.node, "class")) {
		conf += 0.15
	}
	if kids := domtree.ElementChildren(container); len(kids) > 0 && kids[0] == raw.node {
		conf += 0.1
	}
	if n := len(raw.value); n >= 3 && n <= 40 {
		conf += 0.1
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

// isLowEntropy flags fixed vocabulary and generic numeral/punctuation
// strings that repeat across any table.
func (a *Analyzer) isLowEntropy(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if len(v) <= a.policy.MinTextLen {
		return true
	}
	if a.policy.LowEntropyWords[v] {
		return true
	}
	return numericPunctRe.MatchString(v)
}

// siblingFrequency counts sampled siblings carrying the same value at the
// same relative selector.
func (a *Analyzer) siblingFrequency(raw rawCandidate, selector string, siblings []*html.Node) int {
	k := 0
	for _, sib := range siblings {
		var matches []*html.Node
		if selector == "" {
			matches = []*html.Node{sib}
		} else {
			matches = domtree.Query(sib, selector)
		}
		for _, m := range matches {
			var actual string
			if raw.attribute != "" {
				actual = domtree.Attr(m, raw.attribute)
			} else {
				actual = domtree.Text(m)
			}
			if equalFold(actual, raw.value) {
				k++
				break
			}
		}
	}
	return k
}

// looksUnique is the sibling-less fallback: an ID-like token, a long
// embedded digit run, or a short name-like string.
func looksUnique(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	return idTokenRe.MatchString(v) || digitRunRe.MatchString(v) || (len(v) <= 40 && nameLikeRe.MatchString(v))
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
