package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"

	"github.com/cubos-go/ecscore/archetype"
	"github.com/cubos-go/ecscore/entity"
	coreReflect "github.com/cubos-go/ecscore/reflect"
)

// AddComponent sets e's T value, moving e to the archetype that adds T to
// its current component set if it didn't already carry T. Adding a
// component the entity already has overwrites the stored value in place
// (idempotent-with-overwrite).
func AddComponent[T any](w *World, e entity.ID, value T) {
	w.requireAlive(e)
	d := w.descriptorFor(coreReflect.Reflect[T]())

	entry := w.entryOf(e)
	if !d.hasValue(entry.Table()) {
		w.transitionAdd(e, d)
		entry = w.entryOf(e)
	}
	d.setValue(entry.Table(), entry.Index(), value)
}

// transitionAdd moves e from its current archetype to the one that
// includes d's component, without yet populating the new column (the
// caller does that immediately after, per the Column push contract).
func (w *World) transitionAdd(e entity.ID, d *descriptor) {
	originArch := archetype.ID(w.entities.ArchetypeOf(e))
	originTbl := w.graph.Table(originArch)
	entry := w.entryOf(e)
	row := entry.Index()

	destArch, err := w.graph.WithAdded(originArch, d.elementType)
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("ecs: archetype transition failed: %w", err)))
	}
	destTbl := w.graph.Table(destArch)

	if err := originTbl.MoveRowTo(destTbl, row); err != nil {
		panic(bark.AddTrace(fmt.Errorf("ecs: failed to move entity to new archetype: %w", err)))
	}
	w.entities.SetArchetypeOf(e, uint32(destArch))
}

// RemoveComponent removes e's T value, moving e to the archetype without
// T. Removing an absent component is fatal (InvalidUse).
func RemoveComponent[T any](w *World, e entity.ID) {
	w.requireAlive(e)
	d := w.descriptorFor(coreReflect.Reflect[T]())

	entry := w.entryOf(e)
	if !d.hasValue(entry.Table()) {
		panic(bark.AddTrace(fmt.Errorf("ecs: cannot remove absent component %q from entity %+v", d.reflectType.Name(), e)))
	}

	originArch := archetype.ID(w.entities.ArchetypeOf(e))
	originTbl := w.graph.Table(originArch)
	row := entry.Index()

	destArch, err := w.graph.WithRemoved(originArch, d.elementType)
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("ecs: archetype transition failed: %w", err)))
	}
	destTbl := w.graph.Table(destArch)

	if err := originTbl.MoveRowTo(destTbl, row); err != nil {
		panic(bark.AddTrace(fmt.Errorf("ecs: failed to move entity to new archetype: %w", err)))
	}
	w.entities.SetArchetypeOf(e, uint32(destArch))
}

// HasComponent reports whether e currently carries a T value.
func HasComponent[T any](w *World, e entity.ID) bool {
	w.requireAlive(e)
	d := w.descriptorFor(coreReflect.Reflect[T]())
	entry := w.entryOf(e)
	return d.hasValue(entry.Table())
}

// GetComponent returns a pointer to e's T value, or nil if e does not
// carry T.
func GetComponent[T any](w *World, e entity.ID) *T {
	w.requireAlive(e)
	d := w.descriptorFor(coreReflect.Reflect[T]())
	entry := w.entryOf(e)
	if !d.hasValue(entry.Table()) {
		return nil
	}
	return d.getPtr(entry.Table(), entry.Index()).(*T)
}

func (w *World) requireAlive(e entity.ID) {
	if !w.entities.IsAlive(e) {
		panic(bark.AddTrace(fmt.Errorf("ecs: entity %+v is not alive", e)))
	}
}
