package system_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/system"
)

type sysHealth struct{}
type sysPosition struct{}

func TestAccessConflictsOnWriteRead(t *testing.T) {
	a := system.NewAccess()
	a.WriteComponent(coreReflect.Reflect[sysHealth]())

	b := system.NewAccess()
	b.ReadComponent(coreReflect.Reflect[sysHealth]())

	require.True(t, a.ConflictsWith(b))
	require.True(t, b.ConflictsWith(a))
}

func TestAccessNoConflictOnDisjointReads(t *testing.T) {
	a := system.NewAccess()
	a.ReadComponent(coreReflect.Reflect[sysHealth]())

	b := system.NewAccess()
	b.ReadComponent(coreReflect.Reflect[sysPosition]())

	require.False(t, a.ConflictsWith(b))
}

func TestAccessNoConflictOnSharedReads(t *testing.T) {
	a := system.NewAccess()
	a.ReadComponent(coreReflect.Reflect[sysHealth]())

	b := system.NewAccess()
	b.ReadComponent(coreReflect.Reflect[sysHealth]())

	require.False(t, a.ConflictsWith(b))
}

func TestDefinitionAggregatesFetcherAccess(t *testing.T) {
	def := system.New("heal", func(ctx *system.Context, args []any) {},
		system.ResourceWriteFetcher[sysHealth]{},
		system.ResourceReadFetcher[sysPosition]{},
	)
	access := def.Access()
	require.Len(t, access.ResourceWrites, 1)
	require.Len(t, access.ResourceReads, 1)
}
