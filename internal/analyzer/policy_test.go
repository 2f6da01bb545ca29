package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPolicyDefaults(t *testing.T) {
	t.Parallel()
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, 6, p.MaxAncestorDepth)
	assert.Equal(t, 5, p.MaxAnchorCandidates)
	assert.True(t, p.LowEntropyWords["active"])
	assert.True(t, p.RowLikeTags["tr"])
}

func TestLoadPolicyOverrides(t *testing.T) {
	t.Parallel()
	path := writePolicyFile(t, `
low_entropy_words: ["foo", "bar"]
class_hints: "(?i)custom-hint"
sibling_sample_size: 4
semantic_root_score: 0.8
row_like_tags: ["tr", "li", "dl"]
class_scores:
  - pattern: "(?i)mega-root"
    score: 0.95
`)
	p, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.True(t, p.LowEntropyWords["foo"])
	assert.False(t, p.LowEntropyWords["active"], "override replaces the vocabulary")
	assert.True(t, p.ClassHints.MatchString("custom-hint"))
	assert.Equal(t, 4, p.SiblingSampleSize)
	assert.InDelta(t, 0.8, p.SemanticRootScore, 1e-9)
	assert.True(t, p.RowLikeTags["dl"])
	require.Len(t, p.ClassScores, 1)
	assert.InDelta(t, 0.95, p.ClassScores[0].Score, 1e-9)

	// Untouched fields keep their defaults.
	assert.Equal(t, 6, p.MaxAncestorDepth)
	assert.True(t, p.GranularTags["td"])
}

func TestLoadPolicyErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writePolicyFile(t, "low_entropy_words: [unclosed")
		_, err := LoadPolicy(path)
		assert.Error(t, err)
	})

	t.Run("invalid regexp", func(t *testing.T) {
		path := writePolicyFile(t, `volatile_id: "["`)
		_, err := LoadPolicy(path)
		assert.Error(t, err)
	})
}

func TestAnalyzeEndToEnd(t *testing.T) {
	t.Parallel()
	const doc = `
<html><body>
  <div class="main-content">
    <table class="user-table"><tbody>
      <tr class="user-row"><td class="name">Zhang San</td><td class="status">Active</td><td class="ops"><button class="del">Delete</button></td></tr>
      <tr class="user-row"><td class="name">Li Si</td><td class="status">Active</td><td class="ops"><button class="del">Delete</button></td></tr>
      <tr class="user-row"><td class="name">Wang Wu</td><td class="status">Active</td><td class="ops"><button class="del">Delete</button></td></tr>
    </tbody></table>
  </div>
</body></html>`
	root, err := domtree.ParseString(doc)
	require.NoError(t, err)
	a := New(nil, nil)

	button := domtree.QueryOne(root, "tr.user-row:nth-child(2) button.del")
	require.NotNil(t, button)

	analysis := a.Analyze(button)
	assert.Equal(t, "table", string(analysis.ContainerType))
	assert.Equal(t, "tr.user-row", analysis.ScopeSelector)
	assert.Equal(t, "td.ops > button.del", analysis.TargetSelector)
	require.NotEmpty(t, analysis.AnchorCandidates)
	assert.Equal(t, "Li Si", analysis.AnchorCandidates[0].Value)
	assert.NotEmpty(t, analysis.AncestorPath)
	assert.NotEmpty(t, analysis.PathSelector)
}
