// Package types implements the ECS type registry (C7): it assigns a
// stable, small DataTypeId to every reflected type registered with a
// World as a component, relation, or resource, and records the
// relation-only attributes tree/symmetric/ephemeral.
package types

import (
	"fmt"

	"github.com/TheBitDrifter/bark"

	coreReflect "github.com/cubos-go/ecscore/reflect"
)

// DataTypeId is a small integer handle identifying a reflected type
// within one World.
type DataTypeId uint32

// Kind classifies what a registered type is used for.
type Kind int

const (
	// Component marks a type usable with World.add/remove.
	Component Kind = iota
	// Relation marks a type usable with World.relate/unrelate.
	Relation
	// Resource marks a type usable with World.addResource.
	Resource
)

// RelationFlags carries the attributes relation types can declare. Tree
// and Symmetric together is rejected at registration time.
type RelationFlags struct {
	Tree      bool
	Symmetric bool
	Ephemeral bool
}

// Entry is everything the registry knows about one registered type.
type Entry struct {
	ID    DataTypeId
	Type  *coreReflect.Type
	Kind  Kind
	Flags RelationFlags
}

var globalRelationFlags = make(map[*coreReflect.Type]RelationFlags)

// FlagsOf returns the relation flags a type was last registered with, in
// any World during this process. Blueprints are World-independent so
// they consult this process-wide record — the same singleton
// scope reflect.Type itself already has — instead of a specific Registry.
func FlagsOf(t *coreReflect.Type) (RelationFlags, bool) {
	f, ok := globalRelationFlags[t]
	return f, ok
}

// Registry assigns DataTypeIds and must not be mutated once the first
// entity/resource instance depending on it exists (data model invariant
// 6); this package does not itself enforce that — World does, by closing
// registration after World.create's first call.
type Registry struct {
	byType []*Entry
	index  map[*coreReflect.Type]DataTypeId
}

// NewRegistry returns an empty type registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[*coreReflect.Type]DataTypeId)}
}

// Register assigns a fresh DataTypeId to t. Registering the same *Type
// twice, or registering a relation with both Tree and Symmetric set, is
// fatal (InvalidUse).
func (r *Registry) Register(t *coreReflect.Type, kind Kind, flags RelationFlags) DataTypeId {
	if _, exists := r.index[t]; exists {
		panic(bark.AddTrace(fmt.Errorf("types: %q is already registered", t.Name())))
	}
	if kind == Relation && flags.Tree && flags.Symmetric {
		panic(bark.AddTrace(fmt.Errorf("types: relation %q cannot be both tree and symmetric", t.Name())))
	}

	id := DataTypeId(len(r.byType))
	entry := &Entry{ID: id, Type: t, Kind: kind, Flags: flags}
	r.byType = append(r.byType, entry)
	r.index[t] = id
	if kind == Relation {
		globalRelationFlags[t] = flags
	}
	return id
}

// Lookup returns the DataTypeId assigned to t, or MissingRegistration
// (ok=false) if t was never registered.
func (r *Registry) Lookup(t *coreReflect.Type) (DataTypeId, bool) {
	id, ok := r.index[t]
	return id, ok
}

// MustLookup is Lookup, panicking (MissingRegistration) if t is unknown.
func (r *Registry) MustLookup(t *coreReflect.Type) DataTypeId {
	id, ok := r.Lookup(t)
	if !ok {
		panic(bark.AddTrace(fmt.Errorf("types: %q is not registered with this World", t.Name())))
	}
	return id
}

// Entry returns the full registration record for id.
func (r *Registry) Entry(id DataTypeId) *Entry { return r.byType[id] }

// Len returns how many types are registered.
func (r *Registry) Len() int { return len(r.byType) }
