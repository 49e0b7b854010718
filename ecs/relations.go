package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"

	"github.com/cubos-go/ecscore/archetype"
	"github.com/cubos-go/ecscore/entity"
	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/relation"
	"github.com/cubos-go/ecscore/types"
)

func (w *World) relationDescriptor(t *coreReflect.Type) *descriptor {
	d := w.descriptorFor(t)
	if d.kind != types.Relation {
		panic(bark.AddTrace(fmt.Errorf("ecs: %q is not registered as a relation", t.Name())))
	}
	return d
}

// normalize applies the symmetric-relation canonicalization rule (data
// model invariant 3): the stored pair always has from.Index <= to.Index.
func normalize(flags types.RelationFlags, from, to entity.ID) (entity.ID, entity.ID) {
	if flags.Symmetric && from.Index > to.Index {
		return to, from
	}
	return from, to
}

// treeDepth walks rel's outgoing-edge chain from index up to its root,
// returning the number of edges crossed. Used to key a tree relation's
// rows by depth so Down/Up query traversal can visit them in order
// without re-sorting entities at iteration time.
func (w *World) treeDepth(rel types.DataTypeId, index uint32) int {
	depth := 0
	current := index
	visited := map[uint32]bool{current: true}
	for {
		parent, ok := w.relations.OutgoingFrom(rel, current)
		if !ok || visited[parent] {
			return depth
		}
		visited[parent] = true
		depth++
		current = parent
	}
}

// Relate stores value for the (from, to) pair under relation type T,
// overwriting any existing value for that pair. For a tree relation, any
// existing outgoing row from "from" is erased first, so at most one
// outgoing edge per source ever exists.
func Relate[T any](w *World, from, to entity.ID, value T) {
	w.requireAlive(from)
	w.requireAlive(to)
	d := w.relationDescriptor(coreReflect.Reflect[T]())
	flags := w.types.Entry(d.dataType).Flags

	nFrom, nTo := normalize(flags, from, to)

	depth := 0
	if flags.Tree {
		w.relations.EraseOutgoingEverywhere(d.dataType, nFrom.Index)
		depth = w.treeDepth(d.dataType, nTo.Index) + 1
	}

	key := relation.Key{
		Relation: d.dataType,
		From:     archetype.ID(w.entities.ArchetypeOf(nFrom)),
		To:       archetype.ID(w.entities.ArchetypeOf(nTo)),
		Depth:    depth,
	}
	w.relations.Table(key).Insert(nFrom.Index, nTo.Index, value)
}

// Unrelate removes the (from, to) pair's T value, if present. A no-op if
// absent (DeferredFailure-style leniency; callers that require the pair to
// exist should check Related first).
func Unrelate[T any](w *World, from, to entity.ID) {
	w.requireAlive(from)
	w.requireAlive(to)
	d := w.relationDescriptor(coreReflect.Reflect[T]())
	flags := w.types.Entry(d.dataType).Flags

	nFrom, nTo := normalize(flags, from, to)
	if tbl, ok := w.relations.FindContaining(d.dataType, nFrom.Index, nTo.Index); ok {
		tbl.Erase(nFrom.Index, nTo.Index)
	}
}

// Related reports whether a T relation currently exists between from and
// to, in either order for a symmetric relation.
func Related[T any](w *World, from, to entity.ID) bool {
	w.requireAlive(from)
	w.requireAlive(to)
	d := w.relationDescriptor(coreReflect.Reflect[T]())
	flags := w.types.Entry(d.dataType).Flags

	nFrom, nTo := normalize(flags, from, to)
	_, ok := w.relations.FindContaining(d.dataType, nFrom.Index, nTo.Index)
	return ok
}

// GetRelation returns the value stored for the (from, to) pair under
// relation type T, or nil if absent.
func GetRelation[T any](w *World, from, to entity.ID) *T {
	w.requireAlive(from)
	w.requireAlive(to)
	d := w.relationDescriptor(coreReflect.Reflect[T]())
	flags := w.types.Entry(d.dataType).Flags

	nFrom, nTo := normalize(flags, from, to)
	tbl, ok := w.relations.FindContaining(d.dataType, nFrom.Index, nTo.Index)
	if !ok {
		return nil
	}
	v, _ := tbl.Get(nFrom.Index, nTo.Index)
	value := v.(T)
	return &value
}
