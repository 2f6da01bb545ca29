package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

const orderRows = `
<html><body><table><tbody>
  <tr class="order"><td class="name">Zhang San</td><td class="status">Active</td><td><button>Delete</button></td></tr>
  <tr class="order"><td class="name">Li Si</td><td class="status">Active</td><td><button>Delete</button></td></tr>
  <tr class="order"><td class="name">Wang Wu</td><td class="status">Active</td><td><button>Delete</button></td></tr>
</tbody></table></body></html>`

func findCandidate(cands []schemas.AnchorCandidate, value string) *schemas.AnchorCandidate {
	for i := range cands {
		if cands[i].Value == value {
			return &cands[i]
		}
	}
	return nil
}

func TestFindAnchorCandidatesRanksUniqueTextFirst(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(orderRows)
	require.NoError(t, err)
	a := New(nil, nil)

	row := domtree.Query(root, "tr.order")[1]
	cands := a.FindAnchorCandidates(row)
	require.NotEmpty(t, cands)

	best := cands[0]
	assert.Equal(t, "Li Si", best.Value)
	assert.True(t, best.Unique)
	assert.Equal(t, schemas.AnchorTextMatch, best.Type)
	assert.Equal(t, "td.name", best.Selector)
	assert.Zero(t, best.SiblingFrequency)

	status := findCandidate(cands, "Active")
	require.NotNil(t, status)
	assert.False(t, status.Unique)
	assert.True(t, status.LowEntropy)
	assert.Equal(t, 2, status.SiblingFrequency, "value repeats in both sampled siblings")
	assert.Less(t, status.Confidence, best.Confidence)
}

func TestFindAnchorCandidatesUniquenessMultiplier(t *testing.T) {
	t.Parallel()
	// "Gold" repeats in two of five siblings, "Rare" in none. The repeated
	// value must score strictly lower.
	var sb strings.Builder
	sb.WriteString("<html><body><ul>")
	sb.WriteString(`<li class="entry"><span class="tier">Rare</span><span class="grade">Gold</span></li>`)
	sb.WriteString(`<li class="entry"><span class="tier">Common</span><span class="grade">Gold</span></li>`)
	sb.WriteString(`<li class="entry"><span class="tier">Basic</span><span class="grade">Gold</span></li>`)
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&sb, `<li class="entry"><span class="tier">Tier%d</span><span class="grade">Silver</span></li>`, i)
	}
	sb.WriteString("</ul></body></html>")

	root, err := domtree.ParseString(sb.String())
	require.NoError(t, err)
	a := New(nil, nil)

	first := domtree.QueryOne(root, "li.entry")
	cands := a.FindAnchorCandidates(first)

	rare := findCandidate(cands, "Rare")
	gold := findCandidate(cands, "Gold")
	require.NotNil(t, rare)
	require.NotNil(t, gold)

	assert.True(t, rare.Unique)
	assert.False(t, gold.Unique)
	assert.Equal(t, 2, gold.SiblingFrequency)
	assert.Greater(t, rare.Confidence, gold.Confidence)
}

func TestFindAnchorCandidatesAttributeValues(t *testing.T) {
	t.Parallel()
	const doc = `
<html><body><ul>
  <li class="row"><span aria-label="Invoice 2024-0001">inv</span></li>
  <li class="row"><span aria-label="Invoice 2024-0002">inv</span></li>
  <li class="row"><span aria-label="Invoice 2024-0003">inv</span></li>
</ul></body></html>`
	root, err := domtree.ParseString(doc)
	require.NoError(t, err)
	a := New(nil, nil)

	row := domtree.QueryOne(root, "li.row")
	cands := a.FindAnchorCandidates(row)

	inv := findCandidate(cands, "Invoice 2024-0001")
	require.NotNil(t, inv, "semantic attribute values become candidates")
	assert.Equal(t, schemas.AnchorAttributeMatch, inv.Type)
	assert.Equal(t, "aria-label", inv.Attribute)
	assert.True(t, inv.Unique)
}

func TestFindAnchorCandidatesContainerOwnAttribute(t *testing.T) {
	t.Parallel()
	const doc = `
<html><body><ul>
  <li class="row" data-qa="row-98765"><span>aa</span></li>
  <li class="row" data-qa="row-98766"><span>aa</span></li>
  <li class="row" data-qa="row-98767"><span>aa</span></li>
</ul></body></html>`
	root, err := domtree.ParseString(doc)
	require.NoError(t, err)
	a := New(nil, nil)

	row := domtree.QueryOne(root, "li.row")
	cands := a.FindAnchorCandidates(row)

	own := findCandidate(cands, "row-98765")
	require.NotNil(t, own)
	assert.Equal(t, schemas.AnchorAttributeMatch, own.Type)
	assert.Equal(t, "data-qa", own.Attribute)
	assert.Equal(t, "", own.Selector, "empty selector means the container itself")
	assert.InDelta(t, 0.2, own.Confidence, 1e-9, "template-shared attributes keep the floor confidence")
}

func TestFindAnchorCandidatesCapped(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	sb.WriteString("<html><body><ul>")
	for r := 0; r < 3; r++ {
		sb.WriteString(`<li class="row">`)
		for c := 0; c < 10; c++ {
			fmt.Fprintf(&sb, `<span class="f%d">Row%dField%d</span>`, c, r, c)
		}
		sb.WriteString("</li>")
	}
	sb.WriteString("</ul></body></html>")

	root, err := domtree.ParseString(sb.String())
	require.NoError(t, err)
	a := New(nil, nil)

	cands := a.FindAnchorCandidates(domtree.QueryOne(root, "li.row"))
	assert.Len(t, cands, DefaultPolicy().MaxAnchorCandidates)
}

func TestSampleSiblingsTakesBothEnds(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	sb.WriteString("<html><body><ul>")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, `<li id="row%d">r</li>`, i)
	}
	sb.WriteString("</ul></body></html>")

	root, err := domtree.ParseString(sb.String())
	require.NoError(t, err)
	a := New(nil, nil)

	first := domtree.QueryOne(root, "li")
	sampled := a.sampleSiblings(first)
	require.Len(t, sampled, DefaultPolicy().SiblingSampleSize)

	var ids []string
	for _, s := range sampled {
		ids = append(ids, domtree.ID(s))
	}
	assert.Equal(t, []string{"row1", "row2", "row3", "row7", "row8", "row9"}, ids)
}

func TestIsLowEntropy(t *testing.T) {
	t.Parallel()
	a := New(nil, nil)

	tests := []struct {
		value string
		want  bool
	}{
		{"Active", true},
		{"DELETE", true},
		{"42", true},
		{"3,140.50", true},
		{"--", true},
		{"Li Si", false},
		{"Invoice 2024-0001", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			assert.Equal(t, tc.want, a.isLowEntropy(tc.value))
		})
	}
}

func TestLooksUnique(t *testing.T) {
	t.Parallel()
	tests := []struct {
		value string
		want  bool
	}{
		{"ORD-20240115", true},
		{"98765432", true},
		{"Li Si", true},
		{"Jean-Pierre Dupont", true},
		{"", false},
		{"active", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			assert.Equal(t, tc.want, looksUnique(tc.value))
		})
	}
}
