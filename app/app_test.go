package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cubos-go/ecscore/app"
	"github.com/cubos-go/ecscore/ecs"
	"github.com/cubos-go/ecscore/system"
)

func TestAppRunsStartupOnceThenMainUntilQuit(t *testing.T) {
	a := app.New([]string{"-seed=1"})

	startupRuns := 0
	a.Startup.AddSystem(system.New("init", func(ctx *system.Context, args []any) {
		startupRuns++
	}))

	ticks := 0
	a.Main.AddSystem(system.New("tick", func(ctx *system.Context, args []any) {
		ticks++
		if ticks >= 3 {
			args[0].(ecs.ResourceHandle[app.ShouldQuit]).Get().Value = true
		}
	}, system.ResourceWriteFetcher[app.ShouldQuit]{}))

	a.Run()

	require.Equal(t, 1, startupRuns)
	require.Equal(t, 3, ticks)
}

func TestAppPluginRunsOnceByFunctionIdentity(t *testing.T) {
	a := app.New(nil)
	calls := 0
	plugin := func(*app.App) { calls++ }

	a.Plugin(plugin)
	a.Plugin(plugin)

	require.Equal(t, 1, calls)
}

func TestAppWritesDeltaTimeBetweenTicks(t *testing.T) {
	a := app.New(nil)
	start := time.Now()
	var elapsed time.Duration
	a.WithClock(func() time.Time {
		elapsed += 10 * time.Millisecond
		return start.Add(elapsed)
	})

	a.Main.AddSystem(system.New("quit-after-one", func(ctx *system.Context, args []any) {
		args[0].(ecs.ResourceHandle[app.ShouldQuit]).Get().Value = true
	}, system.ResourceWriteFetcher[app.ShouldQuit]{}))
	a.Startup.AddSystem(system.New("noop", func(*system.Context, []any) {}))

	a.Run()

	handle := ecs.ReadResource[app.DeltaTime](a.World)
	observed := handle.Get().Value
	handle.Release()

	require.Greater(t, observed, 0.0)
}
