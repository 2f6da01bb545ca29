// Package runner executes saved tools: it binds parameter values into the
// persisted spec, resolves the target node and dispatches the primitive
// action, folding the outcome into the response envelope.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/actions"
	"github.com/xkilldash9x/beacon-cli/internal/resolver"
)

// Runner runs one tool at a time. It holds no state between runs; the
// resolver re-queries the tree from scratch on every call.
type Runner struct {
	res  *resolver.Resolver
	exec actions.Executor
	log  *zap.Logger
}

// New creates a runner.
func New(res *resolver.Resolver, exec actions.Executor, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{res: res, exec: exec, log: log.Named("runner")}
}

// Run executes a tool against the given tree snapshot and always returns a
// response envelope; failures are carried inside it, never as a panic.
func (r *Runner) Run(ctx context.Context, root *html.Node, tool *schemas.ToolRecord, paramValues map[string]string) *schemas.InvokeResponse {
	start := time.Now()
	resp := &schemas.InvokeResponse{}

	finish := func() *schemas.InvokeResponse {
		resp.Metadata.DurationMs = time.Since(start).Milliseconds()
		return resp
	}

	if err := checkParams(tool, paramValues); err != nil {
		resp.Error = err.Error()
		resp.Code = string(resolver.CodeUnknown)
		return finish()
	}

	res, err := r.res.Resolve(ctx, root, tool.Spec, paramValues)
	if res != nil {
		resp.Metadata.ScopeMatchCount = res.ScopeMatchCount
		resp.Metadata.AnchorMatchIndex = res.AnchorMatchIndex
	}
	if err != nil {
		r.fail(resp, err)
		r.log.Warn("tool resolution failed",
			zap.String("tool", tool.Name), zap.String("code", resp.Code), zap.Error(err))
		return finish()
	}

	params := make(map[string]string, len(tool.Spec.Target.ActionParams))
	for k, v := range tool.Spec.Target.ActionParams {
		params[k] = resolver.Substitute(v, paramValues)
	}
	result, err := r.exec.Execute(ctx, res.Node, tool.Spec.Target.Action, params)
	if err != nil {
		r.fail(resp, err)
		r.log.Warn("tool action failed",
			zap.String("tool", tool.Name), zap.String("code", resp.Code), zap.Error(err))
		return finish()
	}

	resp.Success = true
	if result != nil {
		resp.Data = result.Data
	}
	return finish()
}

// RunSequence executes tools in order against the same snapshot and aborts
// on the first failure. The engine performs no retry; whether to continue or
// invoke external self-healing is the caller's decision.
func (r *Runner) RunSequence(ctx context.Context, root *html.Node, tools []*schemas.ToolRecord, paramValues map[string]string) []*schemas.InvokeResponse {
	var out []*schemas.InvokeResponse
	for _, tool := range tools {
		resp := r.Run(ctx, root, tool, paramValues)
		out = append(out, resp)
		if !resp.Success {
			break
		}
	}
	return out
}

func (r *Runner) fail(resp *schemas.InvokeResponse, err error) {
	resp.Error = err.Error()
	var rerr *resolver.Error
	if errors.As(err, &rerr) {
		resp.Code = string(rerr.Code)
	} else {
		resp.Code = string(resolver.CodeUnknown)
	}
}

// checkParams rejects a run missing required parameter bindings. Optional
// parameters left unbound keep their {{placeholder}} verbatim.
func checkParams(tool *schemas.ToolRecord, values map[string]string) error {
	for _, p := range tool.Parameters {
		if !p.Required {
			continue
		}
		if _, ok := values[p.Name]; !ok {
			return fmt.Errorf("missing required parameter %q for tool %q", p.Name, tool.Name)
		}
	}
	return nil
}
