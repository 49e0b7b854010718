// Package system implements the system signature and fetcher model
// (C13): a declared read/write access footprint per system, an
// analyze/fetch contract per argument kind, and conflict detection
// between systems' footprints. Grounded on
// fdadba29_Salamander5876-AnimoEngine's System/SystemManager shape
// (pkg/core/ecs/system.go), generalized from a priority int to a
// footprint the scheduler can use to serialize conflicting systems.
package system

import coreReflect "github.com/cubos-go/ecscore/reflect"

type typeSet map[*coreReflect.Type]bool

// Access is one system's declared read/write footprint over resources and
// over components/relations (queries contribute the latter from their
// terms). Types are keyed by the process-wide *reflect.Type rather than
// a World-specific DataTypeId, since a system's fetchers are built
// before any particular World is bound to a Dispatcher.
type Access struct {
	ResourceReads   typeSet
	ResourceWrites  typeSet
	ComponentReads  typeSet
	ComponentWrites typeSet
}

// NewAccess returns an empty footprint.
func NewAccess() *Access {
	return &Access{
		ResourceReads:   make(typeSet),
		ResourceWrites:  make(typeSet),
		ComponentReads:  make(typeSet),
		ComponentWrites: make(typeSet),
	}
}

func (a *Access) ReadResource(t *coreReflect.Type)   { a.ResourceReads[t] = true }
func (a *Access) WriteResource(t *coreReflect.Type)  { a.ResourceWrites[t] = true }
func (a *Access) ReadComponent(t *coreReflect.Type)  { a.ComponentReads[t] = true }
func (a *Access) WriteComponent(t *coreReflect.Type) { a.ComponentWrites[t] = true }

// Merge folds other's footprint into a.
func (a *Access) Merge(other *Access) {
	for t := range other.ResourceReads {
		a.ResourceReads[t] = true
	}
	for t := range other.ResourceWrites {
		a.ResourceWrites[t] = true
	}
	for t := range other.ComponentReads {
		a.ComponentReads[t] = true
	}
	for t := range other.ComponentWrites {
		a.ComponentWrites[t] = true
	}
}

// ConflictsWith reports whether a and other have a write/read or
// write/write overlap on the same resource or component/relation type.
func (a *Access) ConflictsWith(other *Access) bool {
	return setsConflict(a.ResourceReads, a.ResourceWrites, other.ResourceReads, other.ResourceWrites) ||
		setsConflict(a.ComponentReads, a.ComponentWrites, other.ComponentReads, other.ComponentWrites)
}

func setsConflict(aReads, aWrites, bReads, bWrites typeSet) bool {
	for t := range aWrites {
		if bReads[t] || bWrites[t] {
			return true
		}
	}
	for t := range bWrites {
		if aReads[t] {
			return true
		}
	}
	return false
}
