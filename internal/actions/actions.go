// Package actions holds the primitive action executors that act on a node
// the resolver located: click, input, extract, wait and navigate. The
// resolution engine itself stays unaware of how actions are carried out.
package actions

import (
	"context"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
)

// Result is what an action hands back to the caller.
type Result struct {
	// Data carries extracted text for extract actions; other actions leave
	// it empty.
	Data string
}

// Executor performs one primitive action against a resolved node. Failures
// come back as resolver-typed errors (ACTION_FAILED, TIMEOUT) so the
// calling sequence can decide whether to abort.
type Executor interface {
	Execute(ctx context.Context, node *html.Node, action schemas.ActionKind, params map[string]string) (*Result, error)
}
