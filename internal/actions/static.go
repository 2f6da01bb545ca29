package actions

import (
	"context"
	"fmt"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
	"github.com/xkilldash9x/beacon-cli/internal/resolver"
)

// StaticExecutor acts on an offline tree snapshot: extract and wait work
// (the node is already present in a static document), anything requiring a
// live page is an action failure. The CLI uses it against saved HTML.
type StaticExecutor struct{}

// NewStaticExecutor creates the offline executor.
func NewStaticExecutor() *StaticExecutor { return &StaticExecutor{} }

// Execute implements Executor over a parsed document.
func (e *StaticExecutor) Execute(_ context.Context, node *html.Node, action schemas.ActionKind, params map[string]string) (*Result, error) {
	switch action {
	case schemas.ActionExtract, "":
		if attr := params["attribute"]; attr != "" {
			return &Result{Data: domtree.Attr(node, attr)}, nil
		}
		return &Result{Data: domtree.Text(node)}, nil
	case schemas.ActionWait:
		// A static snapshot either contains the node or the resolver
		// already failed; nothing to wait for.
		return &Result{}, nil
	default:
		return nil, &resolver.Error{
			Code:    resolver.CodeActionFailed,
			Message: fmt.Sprintf("action %q requires a live browser", action),
		}
	}
}
