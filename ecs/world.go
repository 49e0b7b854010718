// Package ecs implements the World (C8), the Blueprint (C9) and the
// Command buffer (C12): the public surface that owns the entity manager,
// archetype graph/tables, sparse relation tables and type registry, and
// exposes create/destroy/add/remove/relate/unrelate plus introspection.
package ecs

import (
	"fmt"
	"sync"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"

	"github.com/cubos-go/ecscore/archetype"
	"github.com/cubos-go/ecscore/column"
	"github.com/cubos-go/ecscore/entity"
	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/relation"
	"github.com/cubos-go/ecscore/types"
)

type resourceSlot struct {
	mu    sync.RWMutex
	value any
}

// World is the ECS runtime owned, conceptually, by the scheduler: user
// code only reaches it through system arguments.
type World struct {
	entities   *entity.Manager
	graph      *archetype.Graph
	schema     table.Schema
	entryIndex table.EntryIndex

	// entryIDs maps an entity's slot index to the table.EntryID that
	// locates its current row; the entry index itself tracks live
	// Index()/Table() across archetype transitions, swap-erases and
	// transfers, so this map only needs to be updated when an entity is
	// created or destroyed, never on ordinary component add/remove.
	entryIDs map[uint32]table.EntryID

	// reverseEntries is entryIDs inverted, so query iteration (which
	// walks archetype table rows, not entities) can recover the entity
	// behind a row it has found via table.Entry.ID().
	reverseEntries map[table.EntryID]uint32

	types         *types.Registry
	descriptors   []*descriptor
	byReflectType map[*coreReflect.Type]*descriptor
	byElementType map[column.ElementType]*descriptor

	relations *relation.Store
	resources map[types.DataTypeId]*resourceSlot

	registrationClosed bool
}

// New creates an empty World with its reserved empty archetype already
// materialized.
func New() *World {
	schema := column.NewSchema()
	entryIndex := table.Factory.NewEntryIndex()
	graph, err := archetype.NewGraph(schema, entryIndex, table.TableEvents{})
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("ecs: failed to initialize archetype graph: %w", err)))
	}

	return &World{
		entities:      entity.NewManager(),
		graph:         graph,
		schema:        schema,
		entryIndex:    entryIndex,
		entryIDs:       make(map[uint32]table.EntryID),
		reverseEntries: make(map[table.EntryID]uint32),
		types:         types.NewRegistry(),
		byReflectType: make(map[*coreReflect.Type]*descriptor),
		byElementType: make(map[column.ElementType]*descriptor),
		relations:     relation.NewStore(),
		resources:     make(map[types.DataTypeId]*resourceSlot),
	}
}

func (w *World) ensureOpenForRegistration() {
	if w.registrationClosed {
		panic(bark.AddTrace(fmt.Errorf("ecs: cannot register a new type after the World has created entities")))
	}
}

// entryOf returns the live table.Entry for e, reflecting wherever its row
// currently sits after any number of archetype transitions.
func (w *World) entryOf(e entity.ID) table.Entry {
	id, ok := w.entryIDs[e.Index]
	if !ok {
		panic(bark.AddTrace(fmt.Errorf("ecs: entity %+v has no table entry", e)))
	}
	entry, err := w.entryIndex.Entry(int(id))
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("ecs: failed to resolve entry for %+v: %w", e, err)))
	}
	return entry
}

// Create allocates a new entity in the empty archetype.
func (w *World) Create() entity.ID {
	w.registrationClosed = true

	e := w.entities.Create()
	tbl := w.graph.Table(w.graph.Empty())
	entry, err := tbl.Push()
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("ecs: failed to allocate entity row: %w", err)))
	}
	w.entryIDs[e.Index] = entry.ID()
	w.reverseEntries[entry.ID()] = e.Index
	return e
}

// IsAlive reports whether e refers to a live entity.
func (w *World) IsAlive(e entity.ID) bool { return w.entities.IsAlive(e) }

// Destroy removes e, erasing every component it carries plus every
// incoming and outgoing relation touching it.
func (w *World) Destroy(e entity.ID) {
	if !w.entities.IsAlive(e) {
		panic(bark.AddTrace(fmt.Errorf("ecs: cannot destroy dead entity %+v", e)))
	}

	for _, key := range w.relations.Keys() {
		tbl := w.relations.Table(key)
		tbl.EraseFrom(e.Index)
		tbl.EraseTo(e.Index)
	}

	entry := w.entryOf(e)
	if _, err := entry.Table().DeleteEntries(entry.Index()); err != nil {
		panic(bark.AddTrace(fmt.Errorf("ecs: failed to erase entity row: %w", err)))
	}
	delete(w.reverseEntries, w.entryIDs[e.Index])
	delete(w.entryIDs, e.Index)

	w.entities.Destroy(e)
}

// Archetypes exposes the underlying graph for query planning.
func (w *World) Archetypes() *archetype.Graph { return w.graph }

// Relations exposes the underlying relation store for query planning.
func (w *World) Relations() *relation.Store { return w.relations }

// Types exposes the underlying type registry.
func (w *World) Types() *types.Registry { return w.types }

// Schema exposes the underlying component schema (needed by query code to
// compute base-archetype masks from component sets).
func (w *World) Schema() table.Schema { return w.schema }

// EntityManager exposes the underlying entity manager.
func (w *World) EntityManager() *entity.Manager { return w.entities }

// EntityAt recovers the entity occupying row of tbl, for query iteration
// which walks archetype/relation table rows rather than entities directly.
func (w *World) EntityAt(tbl table.Table, row int) (entity.ID, bool) {
	entry, err := tbl.Entry(row)
	if err != nil {
		return entity.ID{}, false
	}
	index, ok := w.reverseEntries[entry.ID()]
	if !ok {
		return entity.ID{}, false
	}
	return w.entities.CurrentID(index), true
}
