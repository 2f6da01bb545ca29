package resolver

import "fmt"

// Code classifies resolution failures. The taxonomy is closed; callers
// branch on it to decide whether to abort a sequence or hand the failure to
// an external self-healing layer.
type Code string

const (
	CodeScopeNotFound  Code = "SCOPE_NOT_FOUND"
	CodeAnchorNotFound Code = "ANCHOR_NOT_FOUND"
	CodeTargetNotFound Code = "TARGET_NOT_FOUND"
	CodeActionFailed   Code = "ACTION_FAILED"
	CodeTimeout        Code = "TIMEOUT"
	CodeUnknown        Code = "UNKNOWN"
)

// Error is the typed failure the engine returns. It never surfaces as a
// panic; invalid selector syntax anywhere degrades to "no match" first.
type Error struct {
	Code     Code
	Message  string
	Selector string
	// Snapshot is a truncated structural preview of the last successfully
	// resolved context, when one exists.
	Snapshot string
	Cause    error
}

func (e *Error) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("%s: %s (selector: %q)", e.Code, e.Message, e.Selector)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// CodeOf extracts the failure code from any error, defaulting to UNKNOWN.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if re, ok := err.(*Error); ok {
		return re.Code
	}
	return CodeUnknown
}
