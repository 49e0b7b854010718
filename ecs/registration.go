package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"

	"github.com/cubos-go/ecscore/column"
	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/types"
)

// descriptor is everything the World needs to treat a registered Go type
// as a type-erased datum: its table identity plus closures bound at
// registration time (when T is still known at compile time) that move a
// boxed value into/out of a column. This is the Go-native shape of the
// Constructible trait's function-pointer bundle, generated
// once per type instead of hand-written per type.
type descriptor struct {
	reflectType *coreReflect.Type
	elementType column.ElementType
	dataType    types.DataTypeId
	kind        types.Kind
	flags       types.RelationFlags

	defaultValue func() any
	setValue     func(tbl table.Table, row int, value any)
	getPtr       func(tbl table.Table, row int) any
	hasValue     func(tbl table.Table) bool
}

// RegisterComponent declares T as a component type usable with
// World.Add/Remove/Has/Get. Must be called before the World creates its
// first entity: every registration after that is fatal (data model
// invariant 6), as is calling it twice for the same T.
func RegisterComponent[T any](w *World) types.DataTypeId {
	return register[T](w, types.Component, types.RelationFlags{})
}

// RegisterRelation declares T as a relation type usable with
// World.Relate/Unrelate/Related.
func RegisterRelation[T any](w *World, flags types.RelationFlags) types.DataTypeId {
	return register[T](w, types.Relation, flags)
}

// RegisterResource declares T as a resource type usable with
// World.AddResource.
func RegisterResource[T any](w *World) types.DataTypeId {
	return register[T](w, types.Resource, types.RelationFlags{})
}

func register[T any](w *World, kind types.Kind, flags types.RelationFlags) types.DataTypeId {
	w.ensureOpenForRegistration()

	rt := coreReflect.Reflect[T]()
	elementType := column.NewElementType[T]()
	accessor := column.NewAccessor[T](elementType)

	dataType := w.types.Register(rt, kind, flags)

	d := &descriptor{
		reflectType: rt,
		elementType: elementType,
		dataType:    dataType,
		kind:        kind,
		flags:       flags,
		defaultValue: func() any {
			var zero T
			return zero
		},
		setValue: func(tbl table.Table, row int, value any) {
			ptr := accessor.GetRow(row, tbl)
			*ptr = value.(T)
		},
		getPtr: func(tbl table.Table, row int) any {
			return accessor.GetRow(row, tbl)
		},
		hasValue: func(tbl table.Table) bool {
			return accessor.Check(tbl)
		},
	}

	if int(dataType) >= len(w.descriptors) {
		w.descriptors = append(w.descriptors, make([]*descriptor, int(dataType)-len(w.descriptors)+1)...)
	}
	w.descriptors[dataType] = d
	w.byReflectType[rt] = d
	w.byElementType[elementType] = d
	return dataType
}

func (w *World) descriptorFor(t *coreReflect.Type) *descriptor {
	d, ok := w.byReflectType[t]
	if !ok {
		panic(bark.AddTrace(fmt.Errorf("ecs: type %q is not registered with this World", t.Name())))
	}
	return d
}

// ElementTypeFor returns the column element type t was registered under,
// for query planning code outside this package that only holds a
// *reflect.Type.
func (w *World) ElementTypeFor(t *coreReflect.Type) column.ElementType {
	return w.descriptorFor(t).elementType
}

// DataTypeFor returns the DataTypeId t was registered under.
func (w *World) DataTypeFor(t *coreReflect.Type) types.DataTypeId {
	return w.descriptorFor(t).dataType
}

// KindOf returns the registration kind of t.
func (w *World) KindOf(t *coreReflect.Type) types.Kind {
	return w.descriptorFor(t).kind
}

// FlagsOf returns the relation flags t was registered with.
func (w *World) FlagsOf(t *coreReflect.Type) types.RelationFlags {
	return w.descriptorFor(t).flags
}
