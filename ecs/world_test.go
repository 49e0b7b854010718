package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubos-go/ecscore/ecs"
	"github.com/cubos-go/ecscore/types"
)

type wPosition struct{ X, Y float64 }
type wVelocity struct{ X, Y float64 }

type wOwns struct{}
type wFriendOf struct{}

func TestAddComponentTransitionsArchetypeAndPreservesExisting(t *testing.T) {
	w := ecs.New()
	ecs.RegisterComponent[wPosition](w)
	ecs.RegisterComponent[wVelocity](w)

	e := w.Create()
	ecs.AddComponent(w, e, wPosition{X: 1, Y: 2})
	require.True(t, ecs.HasComponent[wPosition](w, e))
	require.False(t, ecs.HasComponent[wVelocity](w, e))

	ecs.AddComponent(w, e, wVelocity{X: 3, Y: 4})
	require.True(t, ecs.HasComponent[wPosition](w, e))
	require.True(t, ecs.HasComponent[wVelocity](w, e))

	pos := ecs.GetComponent[wPosition](w, e)
	require.NotNil(t, pos)
	require.Equal(t, wPosition{X: 1, Y: 2}, *pos)
}

func TestRemoveComponentTransitionsBackAndPanicsWhenAbsent(t *testing.T) {
	w := ecs.New()
	ecs.RegisterComponent[wPosition](w)
	ecs.RegisterComponent[wVelocity](w)

	e := w.Create()
	ecs.AddComponent(w, e, wPosition{})
	ecs.AddComponent(w, e, wVelocity{})

	ecs.RemoveComponent[wVelocity](w, e)
	require.True(t, ecs.HasComponent[wPosition](w, e))
	require.False(t, ecs.HasComponent[wVelocity](w, e))

	require.Panics(t, func() { ecs.RemoveComponent[wVelocity](w, e) })
}

func TestRelateTreeKeepsAtMostOneOutgoingEdge(t *testing.T) {
	w := ecs.New()
	ecs.RegisterComponent[wPosition](w)
	ecs.RegisterRelation[wOwns](w, types.RelationFlags{Tree: true})

	child := w.Create()
	parentA := w.Create()
	parentB := w.Create()

	ecs.Relate(w, child, parentA, wOwns{})
	require.True(t, ecs.Related[wOwns](w, child, parentA))

	ecs.Relate(w, child, parentB, wOwns{})
	require.False(t, ecs.Related[wOwns](w, child, parentA))
	require.True(t, ecs.Related[wOwns](w, child, parentB))
}

func TestRelateSymmetricCanonicalizesPairOrder(t *testing.T) {
	w := ecs.New()
	ecs.RegisterRelation[wFriendOf](w, types.RelationFlags{Symmetric: true})

	a := w.Create()
	b := w.Create()

	ecs.Relate(w, b, a, wFriendOf{})

	require.True(t, ecs.Related[wFriendOf](w, a, b))
	require.True(t, ecs.Related[wFriendOf](w, b, a))
}

func TestUnrelateIsANoOpWhenAbsent(t *testing.T) {
	w := ecs.New()
	ecs.RegisterRelation[wOwns](w, types.RelationFlags{})

	a := w.Create()
	b := w.Create()

	require.NotPanics(t, func() { ecs.Unrelate[wOwns](w, a, b) })
	require.False(t, ecs.Related[wOwns](w, a, b))
}

func TestDestroyedEntityOperationsPanic(t *testing.T) {
	w := ecs.New()
	ecs.RegisterComponent[wPosition](w)

	e := w.Create()
	w.Destroy(e)

	require.Panics(t, func() { ecs.AddComponent(w, e, wPosition{}) })
}
