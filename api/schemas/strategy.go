package schemas

// StrategyKind discriminates the selector strategy union.
type StrategyKind string

const (
	StrategyDirect    StrategyKind = "direct"
	StrategyPath      StrategyKind = "path"
	StrategyStructure StrategyKind = "structure"
)

// DirectStrategy targets the node with a single selector.
type DirectStrategy struct {
	Selector string `json:"selector"`
}

// PathStrategy chains a semantic root through scoring intermediates down to
// the target's own minimal selector.
type PathStrategy struct {
	Root          string   `json:"root"`
	Intermediates []string `json:"intermediates,omitempty"`
	Target        string   `json:"target"`
}

// StructureStrategy is the full scope/anchor/target form used for repeating
// containers.
type StructureStrategy struct {
	Scope  ScopeSpec   `json:"scope"`
	Anchor *AnchorSpec `json:"anchor,omitempty"`
	Target TargetSpec  `json:"target"`
}

// Strategy is the tagged union over the three selector strategies. Exactly
// one of Direct, Path or Structure is set, matching Kind. Combined always
// carries a single flattened selector string for consumers that cannot use
// the structured form.
type Strategy struct {
	Kind       StrategyKind       `json:"kind"`
	Confidence float64            `json:"confidence"`
	Combined   string             `json:"combined"`
	Direct     *DirectStrategy    `json:"direct,omitempty"`
	Path       *PathStrategy      `json:"path,omitempty"`
	Structure  *StructureStrategy `json:"structure,omitempty"`
}

// Spec converts a strategy into the SelectorSpec the resolver executes.
// Structure converts losslessly. Direct and Path collapse to a scope-less
// spec over the combined selector string (lossy for Path, which keeps only
// the flattened chain).
func (s Strategy) Spec() SelectorSpec {
	if s.Kind == StrategyStructure && s.Structure != nil {
		st := *s.Structure
		return SelectorSpec{Scope: &st.Scope, Anchor: st.Anchor, Target: st.Target}
	}
	return SelectorSpec{Target: TargetSpec{Selector: s.Combined}}
}

// CombinedOf flattens a path strategy into a descendant selector chain.
func (p PathStrategy) CombinedOf() string {
	out := p.Root
	for _, mid := range p.Intermediates {
		out += " " + mid
	}
	if p.Target != "" {
		out += " " + p.Target
	}
	return out
}
