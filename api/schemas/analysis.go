package schemas

// ContainerType classifies the repeating container a node belongs to.
type ContainerType string

const (
	ContainerTable ContainerType = "table"
	ContainerList  ContainerType = "list"
	ContainerGrid  ContainerType = "grid"
	ContainerCard  ContainerType = "card"
	ContainerNone  ContainerType = "none"
)

// Repeating reports whether the container type is a recognized repeating
// structure eligible for the scope/anchor/target strategy.
func (c ContainerType) Repeating() bool {
	switch c {
	case ContainerTable, ContainerList, ContainerCard, ContainerGrid:
		return true
	}
	return false
}

// AnchorCandidate is one ranked way of picking a container instance apart
// from its siblings.
type AnchorCandidate struct {
	// Selector is relative to the container.
	Selector string     `json:"selector"`
	Type     AnchorType `json:"type"`
	// Value is the literal text or attribute snapshot compared at run time.
	Value      string  `json:"value"`
	Attribute  string  `json:"attribute,omitempty"`
	Confidence float64 `json:"confidence"`
	Unique     bool    `json:"unique"`
	// SiblingFrequency counts sampled sibling containers carrying the same
	// value at the same relative selector.
	SiblingFrequency int  `json:"sibling_frequency"`
	LowEntropy       bool `json:"low_entropy"`
}

// AncestorInfo describes one level of the ancestor walk above a node.
type AncestorInfo struct {
	Tag           string   `json:"tag"`
	ID            string   `json:"id,omitempty"`
	Classes       []string `json:"classes,omitempty"`
	SemanticScore float64  `json:"semantic_score"`
	Selector      string   `json:"selector"`
	Preview       string   `json:"preview,omitempty"`
	Depth         int      `json:"depth"`
	SemanticRoot  bool     `json:"semantic_root"`
}

// ElementAnalysis is the analyzer's full output for one user-chosen node.
// It is ephemeral: recomputed per selection, never persisted.
type ElementAnalysis struct {
	ContainerSelector string            `json:"container_selector,omitempty"`
	ContainerType     ContainerType     `json:"container_type"`
	ScopeSelector     string            `json:"scope_selector,omitempty"`
	TargetSelector    string            `json:"target_selector"`
	DirectSelector    string            `json:"direct_selector"`
	AnchorCandidates  []AnchorCandidate `json:"anchor_candidates,omitempty"`
	AncestorPath      []AncestorInfo    `json:"ancestor_path,omitempty"`
	PathSelector      string            `json:"path_selector,omitempty"`
}
