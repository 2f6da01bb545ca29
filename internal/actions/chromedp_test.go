package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
	"github.com/xkilldash9x/beacon-cli/internal/resolver"
)

func testExecutor(t *testing.T, run runFunc) *ChromedpExecutor {
	t.Helper()
	e := NewChromedpExecutor(zaptest.NewLogger(t), 0)
	e.run = run
	return e
}

func TestChromedpExecuteClick(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(`<html><body><div id="main"><button>Go</button></div></body></html>`)
	require.NoError(t, err)
	button := domtree.QueryOne(root, "button")

	var calls int
	e := testExecutor(t, func(ctx context.Context, acts ...chromedp.Action) error {
		calls++
		assert.NotEmpty(t, acts)
		return nil
	})

	res, err := e.Execute(context.Background(), button, schemas.ActionClick, nil)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, 1, calls)
}

func TestChromedpExecuteErrorsBecomeActionFailed(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(`<html><body><button>Go</button></body></html>`)
	require.NoError(t, err)
	button := domtree.QueryOne(root, "button")

	e := testExecutor(t, func(ctx context.Context, acts ...chromedp.Action) error {
		return errors.New("node detached")
	})

	_, err = e.Execute(context.Background(), button, schemas.ActionClick, nil)
	assert.Equal(t, resolver.CodeActionFailed, resolver.CodeOf(err))
}

func TestChromedpExecuteDeadlineBecomesTimeout(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(`<html><body><button>Go</button></body></html>`)
	require.NoError(t, err)
	button := domtree.QueryOne(root, "button")

	e := testExecutor(t, func(ctx context.Context, acts ...chromedp.Action) error {
		return context.DeadlineExceeded
	})

	_, err = e.Execute(context.Background(), button, schemas.ActionInput, map[string]string{"value": "x"})
	assert.Equal(t, resolver.CodeTimeout, resolver.CodeOf(err))
}

func TestChromedpExecuteNavigateRequiresURL(t *testing.T) {
	t.Parallel()
	e := testExecutor(t, func(ctx context.Context, acts ...chromedp.Action) error { return nil })

	_, err := e.Execute(context.Background(), nil, schemas.ActionNavigate, nil)
	assert.Equal(t, resolver.CodeActionFailed, resolver.CodeOf(err))

	res, err := e.Execute(context.Background(), nil, schemas.ActionNavigate, map[string]string{"url": "https://example.com"})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestChromedpExecuteUnknownAction(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(`<html><body><button>Go</button></body></html>`)
	require.NoError(t, err)
	button := domtree.QueryOne(root, "button")

	e := testExecutor(t, func(ctx context.Context, acts ...chromedp.Action) error { return nil })
	_, err = e.Execute(context.Background(), button, schemas.ActionKind("hover"), nil)
	assert.Equal(t, resolver.CodeActionFailed, resolver.CodeOf(err))
}

func TestStaticExecutor(t *testing.T) {
	t.Parallel()
	root, err := domtree.ParseString(`<html><body><a href="/next" class="link">Next page</a></body></html>`)
	require.NoError(t, err)
	link := domtree.QueryOne(root, "a.link")
	e := NewStaticExecutor()

	t.Run("extract text", func(t *testing.T) {
		res, err := e.Execute(context.Background(), link, schemas.ActionExtract, nil)
		require.NoError(t, err)
		assert.Equal(t, "Next page", res.Data)
	})

	t.Run("extract attribute", func(t *testing.T) {
		res, err := e.Execute(context.Background(), link, schemas.ActionExtract, map[string]string{"attribute": "href"})
		require.NoError(t, err)
		assert.Equal(t, "/next", res.Data)
	})

	t.Run("wait is a no-op", func(t *testing.T) {
		_, err := e.Execute(context.Background(), link, schemas.ActionWait, nil)
		assert.NoError(t, err)
	})

	t.Run("click needs a browser", func(t *testing.T) {
		_, err := e.Execute(context.Background(), link, schemas.ActionClick, nil)
		assert.Equal(t, resolver.CodeActionFailed, resolver.CodeOf(err))
	})
}
