// Package app implements the application driver (C15): startup-once,
// then-loop execution over a startup and a main Dispatcher, the
// DeltaTime/ShouldQuit/Arguments resources, and idempotent plugin
// registration. Grounded on warehouse's config.go singleton-configuration
// idiom, generalized from one table.TableEvents field to the App's full
// resource set.
package app

import (
	"reflect"
	"time"

	"github.com/cubos-go/ecscore/ecs"
	"github.com/cubos-go/ecscore/scheduler"
	"github.com/cubos-go/ecscore/system"
)

// DeltaTime is the elapsed wall-clock time, in seconds, the previous main
// dispatch took.
type DeltaTime struct{ Value float64 }

// ShouldQuit gates the application loop; a system sets Value to stop it.
type ShouldQuit struct{ Value bool }

// Arguments carries the process's command-line arguments into the ECS
// world, recovering the CLI argument passthrough an application needs.
type Arguments struct{ Values []string }

// App owns the World and the two independent dispatchers (startup, main)
// the application driver runs.
type App struct {
	World   *ecs.World
	Startup *scheduler.Dispatcher
	Main    *scheduler.Dispatcher

	plugins map[uintptr]bool
	now     func() time.Time
}

// New returns an App with its resources installed and both dispatchers
// empty.
func New(args []string) *App {
	w := ecs.New()
	ecs.RegisterResource[DeltaTime](w)
	ecs.RegisterResource[ShouldQuit](w)
	ecs.RegisterResource[Arguments](w)
	ecs.AddResource(w, DeltaTime{})
	ecs.AddResource(w, ShouldQuit{})
	ecs.AddResource(w, Arguments{Values: args})

	return &App{
		World:   w,
		Startup: scheduler.New(),
		Main:    scheduler.New(),
		plugins: make(map[uintptr]bool),
		now:     time.Now,
	}
}

// WithClock overrides the clock Run samples, for tests. Returns a itself
// for chaining.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// Plugin runs fn once, identified by its function pointer, so that a
// plugin pulled in by two different dependents only configures the App a
// single time — the same "register once" idiom as warehouse's
// cache.go Register capacity guard.
func (a *App) Plugin(fn func(*App)) {
	ptr := reflect.ValueOf(fn).Pointer()
	if a.plugins[ptr] {
		return
	}
	a.plugins[ptr] = true
	fn(a)
}

// Run executes the startup dispatcher once, then the main dispatcher in
// a loop: each iteration samples the clock, runs main, commits the tick's
// command buffer, writes the elapsed time to DeltaTime, and exits once
// ShouldQuit.Value is true.
func (a *App) Run() {
	a.Startup.Compile()
	a.Main.Compile()

	commands := ecs.NewCommandBuffer(a.World)

	a.Startup.Run(&system.Context{World: a.World, Commands: commands})
	commands.Commit()

	last := a.now()
	for {
		now := a.now()
		a.Main.Run(&system.Context{World: a.World, Commands: commands, DeltaTime: now.Sub(last).Seconds()})
		commands.Commit()

		elapsed := now.Sub(last).Seconds()
		last = now
		dt := ecs.WriteResource[DeltaTime](a.World)
		dt.Get().Value = elapsed
		dt.Release()

		quit := ecs.ReadResource[ShouldQuit](a.World)
		stop := quit.Get().Value
		quit.Release()
		if stop {
			return
		}
	}
}
