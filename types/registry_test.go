package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/types"
)

type tyPosition struct{ X, Y float64 }
type tyOwns struct{}

func TestRegisterAssignsSequentialIds(t *testing.T) {
	r := types.NewRegistry()
	a := r.Register(coreReflect.Reflect[tyPosition](), types.Component, types.RelationFlags{})
	b := r.Register(coreReflect.Reflect[tyOwns](), types.Relation, types.RelationFlags{Tree: true})

	require.Equal(t, types.DataTypeId(0), a)
	require.Equal(t, types.DataTypeId(1), b)
	require.Equal(t, 2, r.Len())
}

func TestRegisterPanicsOnDuplicateType(t *testing.T) {
	r := types.NewRegistry()
	rt := coreReflect.Reflect[tyPosition]()
	r.Register(rt, types.Component, types.RelationFlags{})

	require.Panics(t, func() { r.Register(rt, types.Component, types.RelationFlags{}) })
}

func TestRegisterPanicsOnTreeAndSymmetricTogether(t *testing.T) {
	r := types.NewRegistry()
	rt := coreReflect.Reflect[tyOwns]()

	require.Panics(t, func() {
		r.Register(rt, types.Relation, types.RelationFlags{Tree: true, Symmetric: true})
	})
}

func TestMustLookupPanicsOnUnknownType(t *testing.T) {
	r := types.NewRegistry()
	require.Panics(t, func() { r.MustLookup(coreReflect.Reflect[tyPosition]()) })
}

func TestFlagsOfReflectsMostRecentRegistration(t *testing.T) {
	r := types.NewRegistry()
	rt := coreReflect.Reflect[tyOwns]()
	r.Register(rt, types.Relation, types.RelationFlags{Ephemeral: true})

	flags, ok := types.FlagsOf(rt)
	require.True(t, ok)
	require.True(t, flags.Ephemeral)
}
