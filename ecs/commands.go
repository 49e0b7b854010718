package ecs

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/TheBitDrifter/bark"

	"github.com/cubos-go/ecscore/entity"
	coreReflect "github.com/cubos-go/ecscore/reflect"
)

// reservedGeneration marks an entity.ID returned by a CommandBuffer before
// Commit has run: its Index is a reservation slot, not a live entity slot.
// A real entity's Generation never reaches this value in practice, mirroring
// how warehouse's queued operations key on a captured (entity, recycled)
// pair rather than resolving immediately.
const reservedGeneration = math.MaxUint32

// operation is one queued, deferred mutation, grounded on warehouse's
// EntityOperation interface (operation_queue.go): each closure Apply()s
// itself against the World at Commit time, resolving any reserved
// identifiers it captured through resolved.
type operation func(w *World, resolved map[entity.ID]entity.ID)

// CommandBuffer queues Create/Destroy/Add/Remove/Relate/Unrelate/Spawn
// operations for deferred application, letting system
// bodies mutate the World safely while it may be concurrently read by
// other systems. Operations commit in enqueue order.
type CommandBuffer struct {
	world    *World
	reserved uint32
	ops      []operation
}

// NewCommandBuffer returns an empty buffer bound to w.
func NewCommandBuffer(w *World) *CommandBuffer {
	return &CommandBuffer{world: w}
}

func (b *CommandBuffer) reserve() entity.ID {
	id := entity.ID{Index: b.reserved, Generation: reservedGeneration}
	b.reserved++
	return id
}

func resolve(id entity.ID, resolved map[entity.ID]entity.ID) entity.ID {
	if id.Generation != reservedGeneration {
		return id
	}
	real, ok := resolved[id]
	if !ok {
		panic(bark.AddTrace(fmt.Errorf("ecs: command buffer reference to an entity reserved in a different buffer or commit")))
	}
	return real
}

// Create reserves a placeholder identifier for a to-be-created entity.
// The placeholder is only valid as an argument to this same buffer's other
// calls before Commit; it resolves to the real entity on commit.
func (b *CommandBuffer) Create() entity.ID {
	reserved := b.reserve()
	b.ops = append(b.ops, func(w *World, resolved map[entity.ID]entity.ID) {
		resolved[reserved] = w.Create()
	})
	return reserved
}

// Destroy queues e's destruction.
func (b *CommandBuffer) Destroy(e entity.ID) {
	b.ops = append(b.ops, func(w *World, resolved map[entity.ID]entity.ID) {
		w.Destroy(resolve(e, resolved))
	})
}

// SpawnBlueprint queues instantiation of bp, returning placeholder
// identifiers for each of its named entities, resolvable the same way
// Create's placeholder is.
func (b *CommandBuffer) SpawnBlueprint(bp *Blueprint) map[string]entity.ID {
	placeholders := make(map[string]entity.ID, len(bp.order))
	for _, local := range bp.order {
		placeholders[bp.names[local]] = b.reserve()
	}
	b.ops = append(b.ops, func(w *World, resolved map[entity.ID]entity.ID) {
		created := Spawn(w, bp)
		for name, real := range created {
			resolved[placeholders[name]] = real
		}
	})
	return placeholders
}

// CmdAddComponent queues setting e's T value.
func CmdAddComponent[T any](b *CommandBuffer, e entity.ID, value T) {
	rt := coreReflect.Reflect[T]()
	b.ops = append(b.ops, func(w *World, resolved map[entity.ID]entity.ID) {
		w.addErased(rt, resolve(e, resolved), value)
	})
}

// CmdRemoveComponent queues removing e's T value.
func CmdRemoveComponent[T any](b *CommandBuffer, e entity.ID) {
	b.ops = append(b.ops, func(w *World, resolved map[entity.ID]entity.ID) {
		RemoveComponent[T](w, resolve(e, resolved))
	})
}

// CmdRelate queues storing value for (from, to) under relation type T.
func CmdRelate[T any](b *CommandBuffer, from, to entity.ID, value T) {
	rt := coreReflect.Reflect[T]()
	b.ops = append(b.ops, func(w *World, resolved map[entity.ID]entity.ID) {
		w.relateErased(rt, resolve(from, resolved), resolve(to, resolved), value)
	})
}

// CmdUnrelate queues removing (from, to)'s T value.
func CmdUnrelate[T any](b *CommandBuffer, from, to entity.ID) {
	b.ops = append(b.ops, func(w *World, resolved map[entity.ID]entity.ID) {
		Unrelate[T](w, resolve(from, resolved), resolve(to, resolved))
	})
}

// Commit applies every queued operation against the bound World in
// enqueue order, then clears the buffer, mirroring
// entityOperationsQueue.ProcessAll. Unlike warehouse's storage-lock check,
// this buffer's caller (the scheduler) is responsible for only
// committing between systems, when no other access is outstanding.
//
// A single operation can fail at commit time even though it was valid
// when queued — typically because it targets an entity a prior operation
// in this same buffer destroyed. Each operation's aliveness checks run
// before it makes any mutation, so such a failure is logged at warn level
// and skipped rather than aborting the rest of the buffer.
func (b *CommandBuffer) Commit() {
	resolved := make(map[entity.ID]entity.ID, b.reserved)
	for i, op := range b.ops {
		b.applyOne(i, op, resolved)
	}
	b.ops = nil
	b.reserved = 0
}

func (b *CommandBuffer) applyOne(index int, op operation, resolved map[entity.ID]entity.ID) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("ecs: command buffer operation skipped at commit", "index", index, "reason", r)
		}
	}()
	op(b.world, resolved)
}

// Pending reports how many operations are queued.
func (b *CommandBuffer) Pending() int { return len(b.ops) }
