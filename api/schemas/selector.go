package schemas

// AnchorType discriminates how an anchor picks one scope instance.
type AnchorType string

const (
	AnchorIndex          AnchorType = "index"
	AnchorTextMatch      AnchorType = "text_match"
	AnchorAttributeMatch AnchorType = "attribute_match"
)

// MatchMode controls how anchor values are compared against document text.
// All comparisons are trim-normalized and case-insensitive.
type MatchMode string

const (
	MatchExact      MatchMode = "exact"
	MatchContains   MatchMode = "contains"
	MatchStartsWith MatchMode = "startsWith"
	MatchEndsWith   MatchMode = "endsWith"
)

// ActionKind is the closed enum of primitive actions performed on a resolved node.
type ActionKind string

const (
	ActionClick    ActionKind = "click"
	ActionInput    ActionKind = "input"
	ActionExtract  ActionKind = "extract"
	ActionWait     ActionKind = "wait"
	ActionNavigate ActionKind = "navigate"
)

// ScopeSpec selects all candidate repeating-container nodes.
type ScopeSpec struct {
	Type     string `json:"type,omitempty"`
	Selector string `json:"selector"`
}

// AnchorSpec is the secondary selector+value that picks exactly one scope instance.
type AnchorSpec struct {
	Type      AnchorType `json:"type"`
	Selector  string     `json:"selector,omitempty"`
	Value     string     `json:"value,omitempty"`
	MatchMode MatchMode  `json:"matchMode,omitempty"`
	// Attribute names the attribute compared for attribute_match anchors.
	Attribute string `json:"attribute,omitempty"`
	// Index is the zero-based scope position for index anchors.
	Index int `json:"index,omitempty"`
}

// TargetSpec names the element acted upon, within or equal to the chosen
// scope instance. An empty Selector means the scope/anchor match IS the
// target; use SelfTarget rather than comparing against "" directly.
type TargetSpec struct {
	Selector     string            `json:"selector"`
	Action       ActionKind        `json:"action,omitempty"`
	ActionParams map[string]string `json:"actionParams,omitempty"`
}

// SelfTarget reports whether the spec targets the scope/anchor match itself.
func (t TargetSpec) SelfTarget() bool { return t.Selector == "" }

// SelectorSpec is the three-tier Scope/Anchor/Target specification the
// resolver executes. Scope and Anchor are optional; Target is not.
type SelectorSpec struct {
	Scope  *ScopeSpec  `json:"scope,omitempty"`
	Anchor *AnchorSpec `json:"anchor,omitempty"`
	Target TargetSpec  `json:"target"`
}

// ValidationResult reports a dry-run resolution of a draft spec.
type ValidationResult struct {
	Valid            bool   `json:"valid"`
	ScopeMatches     int    `json:"scope_matches"`
	AnchorMatchIndex int    `json:"anchor_match_index"`
	TargetFound      bool   `json:"target_found"`
	Error            string `json:"error,omitempty"`
}
