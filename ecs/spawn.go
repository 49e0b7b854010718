package ecs

import (
	"github.com/cubos-go/ecscore/archetype"
	"github.com/cubos-go/ecscore/entity"
	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/relation"
)

// addErased is AddComponent with the type carried at runtime instead of as
// a generic parameter, for callers (Blueprint.Instantiate, the command
// buffer) that only hold a boxed value and its *reflect.Type.
func (w *World) addErased(t *coreReflect.Type, e entity.ID, value any) {
	w.requireAlive(e)
	d := w.descriptorFor(t)

	entry := w.entryOf(e)
	if !d.hasValue(entry.Table()) {
		w.transitionAdd(e, d)
		entry = w.entryOf(e)
	}
	d.setValue(entry.Table(), entry.Index(), value)
}

// relateErased is Relate with the relation type carried at runtime.
func (w *World) relateErased(t *coreReflect.Type, from, to entity.ID, value any) {
	w.requireAlive(from)
	w.requireAlive(to)
	d := w.relationDescriptor(t)
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

// Spawn instantiates bp into w, returning the freshly created entities
// keyed by their blueprint-local name.
func Spawn(w *World, bp *Blueprint) map[string]entity.ID {
	created := make(map[string]entity.ID)
	bp.Instantiate(Callbacks{
		Create: func(name string) entity.ID {
			e := w.Create()
			created[name] = e
			return e
		},
		Add: func(e entity.ID, value any, rt *coreReflect.Type) {
			w.addErased(rt, e, value)
		},
		Relate: func(from, to entity.ID, value any, rt *coreReflect.Type) {
			w.relateErased(rt, from, to, value)
		},
	})
	return created
}
