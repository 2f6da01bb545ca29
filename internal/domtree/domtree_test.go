package domtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
<html><body>
  <div id="main" class="container app-shell">
    <ul class="items">
      <li class="item">First</li>
      <li class="item special">Second</li>
      <li class="item">Third</li>
    </ul>
    <p>Some <b>bold</b> text</p>
  </div>
</body></html>`

func TestQuery(t *testing.T) {
	t.Parallel()
	root, err := ParseString(sampleDoc)
	require.NoError(t, err)

	tests := []struct {
		name     string
		selector string
		want     int
	}{
		{name: "tag", selector: "li", want: 3},
		{name: "class", selector: ".item", want: 3},
		{name: "compound class", selector: "li.special", want: 1},
		{name: "group", selector: "p, ul", want: 2},
		{name: "no match", selector: ".missing", want: 0},
		{name: "invalid syntax degrades to empty", selector: "li[", want: 0},
		{name: "empty selector", selector: "   ", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, Query(root, tc.selector), tc.want)
		})
	}

	assert.Nil(t, Query(nil, "li"), "nil context must be safe")
}

func TestQueryOneReturnsFirstInDocumentOrder(t *testing.T) {
	t.Parallel()
	root, err := ParseString(sampleDoc)
	require.NoError(t, err)

	n := QueryOne(root, "li")
	require.NotNil(t, n)
	assert.Equal(t, "First", Text(n))

	assert.Nil(t, QueryOne(root, "li["), "invalid selector returns nil, not an error")
}

func TestMatches(t *testing.T) {
	t.Parallel()
	root, err := ParseString(sampleDoc)
	require.NoError(t, err)

	li := QueryOne(root, "li.special")
	require.NotNil(t, li)
	assert.True(t, Matches(li, ".special"))
	assert.True(t, Matches(li, "li"))
	assert.False(t, Matches(li, "div"))
	assert.False(t, Matches(li, "li["), "invalid selector never matches")
	assert.False(t, Matches(root, "html"), "document node is not an element")
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()
	root, err := ParseString(sampleDoc)
	require.NoError(t, err)

	div := QueryOne(root, "#main")
	require.NotNil(t, div)
	assert.Equal(t, "main", ID(div))
	assert.Equal(t, []string{"container", "app-shell"}, Classes(div))
	assert.True(t, HasClass(div, "app-shell"))
	assert.False(t, HasClass(div, "appshell"))
	assert.True(t, HasAttr(div, "class"))
	assert.False(t, HasAttr(div, "data-x"))
	assert.Equal(t, "", Attr(div, "data-x"))
	assert.Equal(t, "div", Tag(div))
}

func TestTextAndDirectTexts(t *testing.T) {
	t.Parallel()
	root, err := ParseString(sampleDoc)
	require.NoError(t, err)

	p := QueryOne(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, "Some bold text", Text(p))
	// DirectTexts keeps per-element strings separate.
	assert.Equal(t, []string{"Some", "bold", "text"}, DirectTexts(p))
}

func TestSiblingHelpers(t *testing.T) {
	t.Parallel()
	root, err := ParseString(sampleDoc)
	require.NoError(t, err)

	special := QueryOne(root, "li.special")
	require.NotNil(t, special)

	sibs := SameTagSiblings(special)
	assert.Len(t, sibs, 3)
	assert.Equal(t, 2, SiblingIndex(special), "1-based position among same-tag siblings")

	ul := QueryOne(root, "ul")
	assert.Len(t, ElementChildren(ul), 3)
	assert.Equal(t, ul, Parent(special))
}

func TestContainsAndIsDocument(t *testing.T) {
	t.Parallel()
	root, err := ParseString(sampleDoc)
	require.NoError(t, err)

	div := QueryOne(root, "#main")
	li := QueryOne(root, "li.special")
	p := QueryOne(root, "p")

	assert.True(t, IsDocument(root))
	assert.False(t, IsDocument(div))
	assert.True(t, Contains(div, li))
	assert.True(t, Contains(li, li))
	assert.False(t, Contains(li, p))
}

func TestPreview(t *testing.T) {
	t.Parallel()
	root, err := ParseString(sampleDoc)
	require.NoError(t, err)

	assert.Equal(t, "#document", Preview(root, 80))

	li := QueryOne(root, "li.special")
	assert.Equal(t, `<li class="item special"> Second`, Preview(li, 0))

	div := QueryOne(root, "#main")
	got := Preview(div, 20)
	assert.Len(t, got, 23, "truncated to maxLen plus ellipsis")
	assert.Contains(t, got, `<div id="main"`)
}
