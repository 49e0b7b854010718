package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"

	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/types"
)

// AddResource installs value as the World's unique instance of T. Calling
// this twice for the same T is fatal (InvalidUse): resources are added
// once.
func AddResource[T any](w *World, value T) {
	d := w.descriptorFor(coreReflect.Reflect[T]())
	if d.kind != types.Resource {
		panic(bark.AddTrace(fmt.Errorf("ecs: %q is not registered as a resource", d.reflectType.Name())))
	}
	if _, exists := w.resources[d.dataType]; exists {
		panic(bark.AddTrace(fmt.Errorf("ecs: resource %q already added", d.reflectType.Name())))
	}
	w.resources[d.dataType] = &resourceSlot{value: &boxed[T]{v: value}}
}

// RemoveResource deletes the World's instance of T.
func RemoveResource[T any](w *World) {
	d := w.descriptorFor(coreReflect.Reflect[T]())
	delete(w.resources, d.dataType)
}

func (w *World) resourceSlotFor(t *coreReflect.Type) *resourceSlot {
	d := w.descriptorFor(t)
	slot, ok := w.resources[d.dataType]
	if !ok {
		panic(bark.AddTrace(fmt.Errorf("ecs: resource %q was never added", t.Name())))
	}
	return slot
}

// ResourceHandle is a RAII-style guard pairing a pointer to a resource
// value with the lock that must be released when the caller is done. The
// lock-ordering discipline required to avoid deadlocks across multiple
// resources is the caller's responsibility: acquire handles
// sorted by DataTypeId.
type ResourceHandle[T any] struct {
	value *T
	slot  *resourceSlot
	write bool
}

// Get returns the guarded pointer.
func (h ResourceHandle[T]) Get() *T { return h.value }

// Release unlocks the resource. Must be called exactly once.
func (h ResourceHandle[T]) Release() {
	if h.write {
		h.slot.mu.Unlock()
	} else {
		h.slot.mu.RUnlock()
	}
}

// ReadResource acquires a shared lock on T and returns a read handle.
func ReadResource[T any](w *World) ResourceHandle[T] {
	slot := w.resourceSlotFor(coreReflect.Reflect[T]())
	slot.mu.RLock()
	ptr := slot.value.(*boxed[T])
	return ResourceHandle[T]{value: &ptr.v, slot: slot, write: false}
}

// WriteResource acquires an exclusive lock on T and returns a write
// handle whose pointer aliases the stored value.
func WriteResource[T any](w *World) ResourceHandle[T] {
	slot := w.resourceSlotFor(coreReflect.Reflect[T]())
	slot.mu.Lock()
	ptr := slot.value.(*boxed[T])
	return ResourceHandle[T]{value: &ptr.v, slot: slot, write: true}
}

// boxed wraps every resource value behind a pointer the World stores so
// write handles can hand out pointers that alias the one stored instance.
type boxed[T any] struct{ v T }
