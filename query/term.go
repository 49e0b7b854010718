// Package query implements the query term model (C10) and the
// filter/view/iterator built on it (C11), grounded on warehouse's
// composable Query/QueryNode tree (query.go) and its archetype-scanning
// Cursor (cursor.go) — generalized here to also resolve sparse relation
// tables for two-target queries.
package query

import (
	coreReflect "github.com/cubos-go/ecscore/reflect"
)

// Traversal selects how a relation term's rows are visited.
type Traversal int

const (
	// Random iterates a relation's rows in storage order.
	Random Traversal = iota
	// Down visits a tree relation's rows parent-before-child.
	Down
	// Up is Down in the opposite direction.
	Up
)

// Kind discriminates the three term shapes a query can be built from.
type Kind int

const (
	EntityKind Kind = iota
	ComponentKind
	RelationKind
)

// unresolved marks a Target or endpoint target left for the resolver to
// assign.
const unresolved = -1

// Term is one query term: an entity-identity term, a component
// with/without/optional term, or a relation term spanning two targets.
type Term struct {
	Kind Kind

	// Target is used by EntityKind and ComponentKind.
	Target int

	ComponentType *coreReflect.Type
	Without       bool
	Optional      bool

	// RelationType, FromTarget, ToTarget and TraversalKind are used by
	// RelationKind.
	RelationType  *coreReflect.Type
	FromTarget    int
	ToTarget      int
	TraversalKind Traversal

	// Write declares whether a ComponentKind/RelationKind term's cursor
	// will be used for mutation, for the system package's access-footprint
	// analysis. It has no effect on archetype matching.
	Write bool
}

// EntityTerm exposes the entity identifier at target.
func EntityTerm(target int) Term {
	return Term{Kind: EntityKind, Target: target}
}

// EntityTermAuto is an EntityTerm whose target the resolver assigns.
func EntityTermAuto() Term { return EntityTerm(unresolved) }

// WithComponent requires t to be present at target.
func WithComponent(t *coreReflect.Type, target int) Term {
	return Term{Kind: ComponentKind, Target: target, ComponentType: t}
}

// WithComponentAuto is WithComponent with a resolver-assigned target.
func WithComponentAuto(t *coreReflect.Type) Term {
	return WithComponent(t, unresolved)
}

// WithoutComponent requires t to be absent at target.
func WithoutComponent(t *coreReflect.Type, target int) Term {
	return Term{Kind: ComponentKind, Target: target, ComponentType: t, Without: true}
}

// OptionalComponent records t as optional at target without constraining
// the archetype set. The Filter keeps the term but Cursor exposes no
// per-component value access for it (nor for any other component term).
func OptionalComponent(t *coreReflect.Type, target int) Term {
	return Term{Kind: ComponentKind, Target: target, ComponentType: t, Optional: true}
}

// Related declares a relation term from fromTarget to toTarget.
func Related(relationType *coreReflect.Type, fromTarget, toTarget int, traversal Traversal) Term {
	return Term{
		Kind:          RelationKind,
		RelationType:  relationType,
		FromTarget:    fromTarget,
		ToTarget:      toTarget,
		TraversalKind: traversal,
	}
}

// RelatedAuto is Related with resolver-assigned endpoints.
func RelatedAuto(relationType *coreReflect.Type, traversal Traversal) Term {
	return Related(relationType, unresolved, unresolved, traversal)
}

// AsWrite marks a component or relation term for mutable access.
func (t Term) AsWrite() Term {
	t.Write = true
	return t
}

// Resolve merges base (explicit terms from a query builder) with other
// (terms inferred from system-argument types), assigning concrete targets
// to any term left unresolved: the current default
// target starts at 0, updates to any explicit target seen, and advances
// past relation-term endpoints. Duplicate component terms (same target,
// same type, same with/without/optional) collapse into one.
func Resolve(base, other []Term) []Term {
	merged := make([]Term, 0, len(base)+len(other))
	merged = append(merged, base...)
	merged = append(merged, other...)

	current := 0
	resolved := make([]Term, 0, len(merged))
	for _, t := range merged {
		switch t.Kind {
		case EntityKind, ComponentKind:
			if t.Target == unresolved {
				t.Target = current
			} else {
				current = t.Target
			}
		case RelationKind:
			if t.FromTarget == unresolved {
				t.FromTarget = current
			} else {
				current = t.FromTarget
			}
			if t.ToTarget == unresolved {
				t.ToTarget = current + 1
			}
			current = t.ToTarget + 1
		}
		resolved = append(resolved, t)
	}

	return dedupComponents(resolved)
}

type componentKey struct {
	target    int
	t         *coreReflect.Type
	without   bool
	optional  bool
}

func dedupComponents(terms []Term) []Term {
	seen := make(map[componentKey]bool, len(terms))
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.Kind != ComponentKind {
			out = append(out, t)
			continue
		}
		key := componentKey{target: t.Target, t: t.ComponentType, without: t.Without, optional: t.Optional}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// Targets returns the distinct target indices referenced by terms.
func Targets(terms []Term) []int {
	seen := make(map[int]bool)
	for _, t := range terms {
		switch t.Kind {
		case EntityKind, ComponentKind:
			seen[t.Target] = true
		case RelationKind:
			seen[t.FromTarget] = true
			seen[t.ToTarget] = true
		}
	}
	out := make([]int, 0, len(seen))
	for target := range seen {
		out = append(out, target)
	}
	return out
}
