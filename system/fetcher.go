package system

import (
	"github.com/cubos-go/ecscore/ecs"
	coreReflect "github.com/cubos-go/ecscore/reflect"
)

// Context is the run-time handle a system's fetchers draw argument values
// from: the World, the buffer its mutations are deferred into, and
// scheduling metadata (the current tick's elapsed time).
type Context struct {
	World     *ecs.World
	Commands  *ecs.CommandBuffer
	DeltaTime float64
}

// Fetcher is one system-argument kind: it contributes its access
// footprint once at compile time (Analyze) and produces its argument
// value once per system invocation (Fetch).
type Fetcher interface {
	Analyze(access *Access)
	Fetch(ctx *Context) any
}

// WorldFetcher hands the system direct World access. It declares no
// footprint of its own — systems using it are responsible for whatever
// access they perform through it, which the scheduler cannot see, so a
// WorldFetcher system should also declare the types it touches through
// an explicit fetcher for the scheduler to reason about.
type WorldFetcher struct{}

func (WorldFetcher) Analyze(*Access)        {}
func (WorldFetcher) Fetch(ctx *Context) any { return ctx.World }

// CommandsFetcher hands the system the tick's command buffer.
type CommandsFetcher struct{}

func (CommandsFetcher) Analyze(*Access)        {}
func (CommandsFetcher) Fetch(ctx *Context) any { return ctx.Commands }

// ResourceReadFetcher declares a shared-read dependency on T and fetches
// a read handle.
type ResourceReadFetcher[T any] struct{}

func (ResourceReadFetcher[T]) Analyze(access *Access) {
	access.ReadResource(coreReflect.Reflect[T]())
}

func (ResourceReadFetcher[T]) Fetch(ctx *Context) any {
	return ecs.ReadResource[T](ctx.World)
}

// ResourceWriteFetcher declares an exclusive-write dependency on T and
// fetches a write handle.
type ResourceWriteFetcher[T any] struct{}

func (ResourceWriteFetcher[T]) Analyze(access *Access) {
	access.WriteResource(coreReflect.Reflect[T]())
}

func (ResourceWriteFetcher[T]) Fetch(ctx *Context) any {
	return ecs.WriteResource[T](ctx.World)
}
