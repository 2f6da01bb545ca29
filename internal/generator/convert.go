package generator

import (
	"github.com/xkilldash9x/beacon-cli/api/schemas"
)

// LegacySpec is the historical two-part container/element shape some saved
// tools still carry. It has no anchor tier.
type LegacySpec struct {
	Container string `json:"container,omitempty"`
	Element   string `json:"element"`
}

// FromLegacy upgrades a two-part spec into the three-tier form. The upgrade
// is lossless: a missing container becomes a scope-less spec.
func FromLegacy(l LegacySpec) schemas.SelectorSpec {
	spec := schemas.SelectorSpec{
		Target: schemas.TargetSpec{Selector: l.Element},
	}
	if l.Container != "" {
		spec.Scope = &schemas.ScopeSpec{Selector: l.Container}
	}
	return spec
}

// ToLegacy downgrades a spec to the two-part shape. The anchor tier cannot
// be represented; it is dropped, which the caller must treat as lossy.
func ToLegacy(spec schemas.SelectorSpec) LegacySpec {
	l := LegacySpec{Element: spec.Target.Selector}
	if spec.Scope != nil {
		l.Container = spec.Scope.Selector
	}
	return l
}

// SpecToStrategy lifts a raw spec into the tagged strategy union: structure
// when a scope exists, direct otherwise.
func SpecToStrategy(spec schemas.SelectorSpec) schemas.Strategy {
	if spec.Scope != nil {
		combined := spec.Scope.Selector
		if spec.Target.Selector != "" {
			combined += " " + spec.Target.Selector
		}
		return schemas.Strategy{
			Kind:     schemas.StrategyStructure,
			Combined: combined,
			Structure: &schemas.StructureStrategy{
				Scope:  *spec.Scope,
				Anchor: spec.Anchor,
				Target: spec.Target,
			},
		}
	}
	return schemas.Strategy{
		Kind:     schemas.StrategyDirect,
		Combined: spec.Target.Selector,
		Direct:   &schemas.DirectStrategy{Selector: spec.Target.Selector},
	}
}
