// Package validator re-resolves a draft spec against the live tree to
// report match counts without acting. It gates whether a draft may be saved
// as a tool; a spec an AI suggestion service produced passes through here
// exactly like a manually built one.
package validator

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/resolver"
)

// Validator wraps the resolver in dry-run mode.
type Validator struct {
	res *resolver.Resolver
	log *zap.Logger
}

// New creates a validator.
func New(log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{
		res: resolver.New(resolver.WithLogger(log)),
		log: log.Named("validator"),
	}
}

// Validate runs the same three-phase resolution as the executor and reports
// the outcome; it never performs the action.
func (v *Validator) Validate(ctx context.Context, root *html.Node, spec schemas.SelectorSpec, vars map[string]string) schemas.ValidationResult {
	result := schemas.ValidationResult{AnchorMatchIndex: -1}

	res, err := v.res.Resolve(ctx, root, spec, vars)
	if err != nil {
		var rerr *resolver.Error
		if errors.As(err, &rerr) {
			result.Error = rerr.Error()
			// Partial progress still reports what resolved before failing.
			switch rerr.Code {
			case resolver.CodeAnchorNotFound, resolver.CodeTargetNotFound:
				result.ScopeMatches = scopeMatchesOf(ctx, v.res, root, spec, vars)
			}
		} else {
			result.Error = err.Error()
		}
		return result
	}

	result.Valid = true
	result.TargetFound = res.Node != nil
	if res.ScopeMatchCount != nil {
		result.ScopeMatches = *res.ScopeMatchCount
	}
	if res.AnchorMatchIndex != nil {
		result.AnchorMatchIndex = *res.AnchorMatchIndex
	}
	return result
}

// scopeMatchesOf re-runs only the scope tier so a failed anchor or target
// still reports how many containers the scope found.
func scopeMatchesOf(ctx context.Context, res *resolver.Resolver, root *html.Node, spec schemas.SelectorSpec, vars map[string]string) int {
	if spec.Scope == nil {
		return 0
	}
	scopeOnly := schemas.SelectorSpec{
		Scope:  spec.Scope,
		Target: schemas.TargetSpec{},
	}
	r, err := res.Resolve(ctx, root, scopeOnly, vars)
	if err != nil || r.ScopeMatchCount == nil {
		return 0
	}
	return *r.ScopeMatchCount
}
