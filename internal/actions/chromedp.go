package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/resolver"
)

// runFunc matches chromedp.Run and exists so tests can intercept execution
// without a live browser.
type runFunc func(ctx context.Context, acts ...chromedp.Action) error

// ChromedpExecutor drives a live page over CDP. Resolved nodes are targeted
// through a generated unique XPath; the engine's parsed tree and the live
// page are assumed to be the same snapshot the caller just fetched.
type ChromedpExecutor struct {
	log         *zap.Logger
	run         runFunc
	waitTimeout time.Duration
}

// NewChromedpExecutor creates an executor bound to a chromedp context
// created by the caller.
func NewChromedpExecutor(log *zap.Logger, waitTimeout time.Duration) *ChromedpExecutor {
	if log == nil {
		log = zap.NewNop()
	}
	if waitTimeout <= 0 {
		waitTimeout = 10 * time.Second
	}
	return &ChromedpExecutor{
		log:         log.Named("actions"),
		run:         chromedp.Run,
		waitTimeout: waitTimeout,
	}
}

// Execute dispatches one primitive action. The wait primitive is the only
// asynchronous operation: it settles exactly once, with the bounded timeout
// producing TIMEOUT.
func (e *ChromedpExecutor) Execute(ctx context.Context, node *html.Node, action schemas.ActionKind, params map[string]string) (*Result, error) {
	xpath := GenerateUniqueXPath(node)
	if xpath == "" && action != schemas.ActionNavigate {
		return nil, &resolver.Error{Code: resolver.CodeActionFailed, Message: "no target node for action"}
	}
	e.log.Debug("executing action", zap.String("action", string(action)), zap.String("xpath", xpath))

	switch action {
	case schemas.ActionClick:
		if err := e.run(ctx, chromedp.Click(xpath, chromedp.BySearch)); err != nil {
			return nil, e.wrap(err, "click failed", xpath)
		}
		return &Result{}, nil

	case schemas.ActionInput:
		value := params["value"]
		if err := e.run(ctx,
			chromedp.Clear(xpath, chromedp.BySearch),
			chromedp.SendKeys(xpath, value, chromedp.BySearch),
		); err != nil {
			return nil, e.wrap(err, "input failed", xpath)
		}
		return &Result{}, nil

	case schemas.ActionExtract:
		var text string
		if attr := params["attribute"]; attr != "" {
			var ok bool
			if err := e.run(ctx, chromedp.AttributeValue(xpath, attr, &text, &ok, chromedp.BySearch)); err != nil {
				return nil, e.wrap(err, "extract failed", xpath)
			}
			if !ok {
				text = ""
			}
		} else {
			if err := e.run(ctx, chromedp.Text(xpath, &text, chromedp.BySearch)); err != nil {
				return nil, e.wrap(err, "extract failed", xpath)
			}
		}
		return &Result{Data: text}, nil

	case schemas.ActionWait:
		waitCtx, cancel := context.WithTimeout(ctx, e.waitTimeout)
		defer cancel()
		if err := e.run(waitCtx, chromedp.WaitVisible(xpath, chromedp.BySearch)); err != nil {
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				return nil, &resolver.Error{
					Code:     resolver.CodeTimeout,
					Message:  fmt.Sprintf("element not visible within %s", e.waitTimeout),
					Selector: xpath,
					Cause:    err,
				}
			}
			return nil, e.wrap(err, "wait failed", xpath)
		}
		return &Result{}, nil

	case schemas.ActionNavigate:
		url := params["url"]
		if url == "" {
			return nil, &resolver.Error{Code: resolver.CodeActionFailed, Message: "navigate requires a url parameter"}
		}
		if err := e.run(ctx, chromedp.Navigate(url)); err != nil {
			return nil, e.wrap(err, "navigation failed", url)
		}
		return &Result{}, nil

	default:
		return nil, &resolver.Error{Code: resolver.CodeActionFailed, Message: fmt.Sprintf("unknown action %q", action)}
	}
}

func (e *ChromedpExecutor) wrap(err error, msg, selector string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &resolver.Error{Code: resolver.CodeTimeout, Message: msg, Selector: selector, Cause: err}
	}
	return &resolver.Error{Code: resolver.CodeActionFailed, Message: msg, Selector: selector, Cause: err}
}
