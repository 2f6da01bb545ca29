package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

const fixture = `
<html><body><table><tbody>
  <tr class="user-row"><td class="name">Zhang San</td><td><button class="del">D</button></td></tr>
  <tr class="user-row"><td class="name">Li Si</td><td><button class="del">D</button></td></tr>
  <tr class="user-row"><td class="name">Wang Wu</td><td><button class="del">D</button></td></tr>
</tbody></table></body></html>`

func TestValidateSuccess(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(fixture)
	require.NoError(t, err)
	v := New(zaptest.NewLogger(t))

	result := v.Validate(context.Background(), root, schemas.SelectorSpec{
		Scope:  &schemas.ScopeSpec{Selector: "tr.user-row"},
		Anchor: &schemas.AnchorSpec{Type: schemas.AnchorTextMatch, Selector: "td.name", Value: "Li Si"},
		Target: schemas.TargetSpec{Selector: "button.del"},
	}, nil)

	assert.True(t, result.Valid)
	assert.True(t, result.TargetFound)
	assert.Equal(t, 3, result.ScopeMatches)
	assert.Equal(t, 1, result.AnchorMatchIndex)
	assert.Empty(t, result.Error)
}

func TestValidateScopeFailure(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(fixture)
	require.NoError(t, err)
	v := New(nil)

	result := v.Validate(context.Background(), root, schemas.SelectorSpec{
		Scope:  &schemas.ScopeSpec{Selector: "tr.gone"},
		Target: schemas.TargetSpec{Selector: "button.del"},
	}, nil)

	assert.False(t, result.Valid)
	assert.Equal(t, 0, result.ScopeMatches)
	assert.Equal(t, -1, result.AnchorMatchIndex)
	assert.Contains(t, result.Error, "SCOPE_NOT_FOUND")
	assert.Contains(t, result.Error, "tr.gone")
}

func TestValidateAnchorFailureStillReportsScopeMatches(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(fixture)
	require.NoError(t, err)
	v := New(nil)

	result := v.Validate(context.Background(), root, schemas.SelectorSpec{
		Scope:  &schemas.ScopeSpec{Selector: "tr.user-row"},
		Anchor: &schemas.AnchorSpec{Type: schemas.AnchorTextMatch, Selector: "td.name", Value: "Nobody"},
		Target: schemas.TargetSpec{Selector: "button.del"},
	}, nil)

	assert.False(t, result.Valid)
	assert.False(t, result.TargetFound)
	assert.Equal(t, 3, result.ScopeMatches, "scope diagnostics survive the anchor failure")
	assert.Contains(t, result.Error, "ANCHOR_NOT_FOUND")
}

func TestValidateTargetFailure(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(fixture)
	require.NoError(t, err)
	v := New(nil)

	result := v.Validate(context.Background(), root, schemas.SelectorSpec{
		Scope:  &schemas.ScopeSpec{Selector: "tr.user-row"},
		Target: schemas.TargetSpec{Selector: "input.missing"},
	}, nil)

	assert.False(t, result.Valid)
	assert.Equal(t, 3, result.ScopeMatches)
	assert.Contains(t, result.Error, "TARGET_NOT_FOUND")
}

func TestValidateAppliesVariables(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(fixture)
	require.NoError(t, err)
	v := New(nil)

	result := v.Validate(context.Background(), root, schemas.SelectorSpec{
		Scope:  &schemas.ScopeSpec{Selector: "tr.user-row"},
		Anchor: &schemas.AnchorSpec{Type: schemas.AnchorTextMatch, Selector: "td.name", Value: "{{username}}"},
		Target: schemas.TargetSpec{Selector: "button.del"},
	}, map[string]string{"username": "Wang Wu"})

	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.AnchorMatchIndex)
}
