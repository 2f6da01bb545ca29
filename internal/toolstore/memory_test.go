package toolstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySaveAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	tool := sampleTool()
	require.NoError(t, m.Save(ctx, tool))
	assert.NotEmpty(t, tool.ID)
	assert.False(t, tool.CreatedAt.IsZero())

	got, err := m.Get(ctx, "delete_user")
	require.NoError(t, err)
	assert.Equal(t, tool.ID, got.ID)
	assert.Equal(t, "tr.user-row", got.Spec.Scope.Selector)

	// Returned records are copies; mutating one must not affect the store.
	got.Name = "mutated"
	again, err := m.Get(ctx, "delete_user")
	require.NoError(t, err)
	assert.Equal(t, "delete_user", again.Name)
}

func TestMemoryUpsertPreservesIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	first := sampleTool()
	require.NoError(t, m.Save(ctx, first))

	second := sampleTool()
	second.Spec.Target.Selector = "button.remove"
	require.NoError(t, m.Save(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	got, err := m.Get(ctx, "delete_user")
	require.NoError(t, err)
	assert.Equal(t, "button.remove", got.Spec.Target.Selector)
}

func TestMemoryListSortedByName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		tool := sampleTool()
		tool.Name = name
		require.NoError(t, m.Save(ctx, tool))
	}

	tools, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 3)
	assert.Equal(t, "alpha", tools[0].Name)
	assert.Equal(t, "mid", tools[1].Name)
	assert.Equal(t, "zeta", tools[2].Name)
}

func TestMemoryDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Save(ctx, sampleTool()))
	require.NoError(t, m.Delete(ctx, "delete_user"))

	_, err := m.Get(ctx, "delete_user")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "delete_user"), ErrNotFound)
}
