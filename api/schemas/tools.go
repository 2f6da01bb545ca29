package schemas

import "time"

// ToolParameter declares one substitutable parameter of a saved tool.
type ToolParameter struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// ToolRecord is the persisted tool definition. The engine consumes only the
// embedded SelectorSpec at run time.
type ToolRecord struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Parameters []ToolParameter `json:"parameters,omitempty"`
	Spec       SelectorSpec    `json:"selector_spec"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// InvokeRequest is the inter-process envelope for running a saved tool.
type InvokeRequest struct {
	Tool        string            `json:"tool"`
	ParamValues map[string]string `json:"param_values,omitempty"`
	Debug       bool              `json:"debug,omitempty"`
}

// InvokeMetadata carries timing and resolution counters back to the caller.
type InvokeMetadata struct {
	DurationMs       int64 `json:"duration_ms"`
	ScopeMatchCount  *int  `json:"scope_match_count,omitempty"`
	AnchorMatchIndex *int  `json:"anchor_match_index,omitempty"`
}

// InvokeResponse is the inter-process response envelope.
type InvokeResponse struct {
	Success  bool           `json:"success"`
	Data     string         `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Code     string         `json:"code,omitempty"`
	Metadata InvokeMetadata `json:"metadata"`
}
