package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubos-go/ecscore/ecs"
	coreReflect "github.com/cubos-go/ecscore/reflect"
	"github.com/cubos-go/ecscore/query"
	"github.com/cubos-go/ecscore/types"
)

type qPosition struct{ X, Y float64 }
type qVelocity struct{ X, Y float64 }
type qDead struct{}
type qParentOf struct{}

func TestFilterMatchesArchetypeOnlyQuery(t *testing.T) {
	w := ecs.New()
	ecs.RegisterComponent[qPosition](w)
	ecs.RegisterComponent[qVelocity](w)
	ecs.RegisterComponent[qDead](w)

	moving := w.Create()
	ecs.AddComponent(w, moving, qPosition{})
	ecs.AddComponent(w, moving, qVelocity{})

	still := w.Create()
	ecs.AddComponent(w, still, qPosition{})

	deadMoving := w.Create()
	ecs.AddComponent(w, deadMoving, qPosition{})
	ecs.AddComponent(w, deadMoving, qVelocity{})
	ecs.AddComponent(w, deadMoving, qDead{})

	posType := coreReflect.Reflect[qPosition]()
	velType := coreReflect.Reflect[qVelocity]()
	deadType := coreReflect.Reflect[qDead]()

	terms := query.Resolve([]query.Term{
		query.WithComponent(posType, 0),
		query.WithComponent(velType, 0),
		query.WithoutComponent(deadType, 0),
	}, nil)

	f, err := query.New(w, terms)
	require.NoError(t, err)

	matched := map[uint32]bool{}
	cursor := f.View().Cursor()
	for cursor.Next() {
		matched[cursor.Entity(0).Index] = true
	}

	require.True(t, matched[moving.Index])
	require.False(t, matched[still.Index])
	require.False(t, matched[deadMoving.Index])
}

func TestFilterRejectsMoreThanTwoTargets(t *testing.T) {
	w := ecs.New()
	ecs.RegisterComponent[qPosition](w)

	posType := coreReflect.Reflect[qPosition]()
	terms := []query.Term{
		query.WithComponent(posType, 0),
		query.WithComponent(posType, 1),
		query.WithComponent(posType, 2),
	}
	_, err := query.New(w, terms)
	require.Error(t, err)
}

func TestFilterRejectsTwoLinks(t *testing.T) {
	w := ecs.New()
	ecs.RegisterRelation[qParentOf](w, types.RelationFlags{Tree: true})
	parentType := coreReflect.Reflect[qParentOf]()

	terms := []query.Term{
		query.Related(parentType, 0, 1, query.Random),
		query.Related(parentType, 1, 0, query.Random),
	}
	_, err := query.New(w, terms)
	require.Error(t, err)
}

func TestViewPinMembershipTest(t *testing.T) {
	w := ecs.New()
	ecs.RegisterRelation[qParentOf](w, types.RelationFlags{Tree: true})
	parentType := coreReflect.Reflect[qParentOf]()

	parent := w.Create()
	child := w.Create()
	other := w.Create()
	ecs.Relate(w, parent, child, qParentOf{})

	terms := query.Resolve([]query.Term{
		query.Related(parentType, 0, 1, query.Random),
	}, nil)
	f, err := query.New(w, terms)
	require.NoError(t, err)

	pinned := f.View().Pin(1, other)
	require.False(t, pinned.Cursor().Next())

	pinnedMatch := f.View().Pin(1, child)
	require.True(t, pinnedMatch.Cursor().Next())
}

func TestFilterRejectsNonRandomTraversalOnNonTreeRelation(t *testing.T) {
	w := ecs.New()
	type nonTree struct{}
	ecs.RegisterRelation[nonTree](w, types.RelationFlags{})
	rt := coreReflect.Reflect[nonTree]()

	terms := []query.Term{query.Related(rt, 0, 1, query.Down)}
	_, err := query.New(w, terms)
	require.Error(t, err)
}

type qFriendOf struct{}
type qMarker struct{}

// TestSymmetricRelationMatchesRegardlessOfCanonicalDirection exercises the
// case where Relate's index-based canonicalization stores a symmetric pair
// in the opposite order from the query's target/component assignment: the
// A-component entity happens to have the larger index, so the table's
// stored (From,To) is (B-entity,A-entity) even though the query wants
// target0=A-entity, target1=B-entity.
func TestSymmetricRelationMatchesRegardlessOfCanonicalDirection(t *testing.T) {
	w := ecs.New()
	ecs.RegisterRelation[qFriendOf](w, types.RelationFlags{Symmetric: true})
	ecs.RegisterComponent[qMarker](w)
	friendType := coreReflect.Reflect[qFriendOf]()
	markerType := coreReflect.Reflect[qMarker]()

	// b is created first (smaller index) but plays target1 in the query;
	// a is created second (larger index) but plays target0. normalize()
	// will canonicalize the stored pair as (b,a), the reverse of the
	// query's target assignment.
	b := w.Create()
	a := w.Create()
	ecs.AddComponent(w, a, qMarker{})
	ecs.Relate(w, a, b, qFriendOf{})

	terms := query.Resolve([]query.Term{
		query.WithComponent(markerType, 0),
		query.Related(friendType, 0, 1, query.Random),
	}, nil)
	f, err := query.New(w, terms)
	require.NoError(t, err)

	cursor := f.View().Cursor()
	require.True(t, cursor.Next())
	require.Equal(t, a, cursor.Entity(0))
	require.Equal(t, b, cursor.Entity(1))
	require.False(t, cursor.Next())
}

func TestDownTraversalVisitsParentBeforeChild(t *testing.T) {
	w := ecs.New()
	ecs.RegisterRelation[qParentOf](w, types.RelationFlags{Tree: true})
	parentType := coreReflect.Reflect[qParentOf]()

	root := w.Create()
	mid := w.Create()
	leaf := w.Create()
	ecs.Relate(w, mid, root, qParentOf{})
	ecs.Relate(w, leaf, mid, qParentOf{})

	terms := query.Resolve([]query.Term{
		query.Related(parentType, 0, 1, query.Down),
	}, nil)
	f, err := query.New(w, terms)
	require.NoError(t, err)

	var order []uint32
	cursor := f.View().Cursor()
	for cursor.Next() {
		order = append(order, cursor.Entity(0).Index)
	}

	require.Equal(t, []uint32{mid.Index, leaf.Index}, order)
}

func TestUpTraversalVisitsChildBeforeParent(t *testing.T) {
	w := ecs.New()
	ecs.RegisterRelation[qParentOf](w, types.RelationFlags{Tree: true})
	parentType := coreReflect.Reflect[qParentOf]()

	root := w.Create()
	mid := w.Create()
	leaf := w.Create()
	ecs.Relate(w, mid, root, qParentOf{})
	ecs.Relate(w, leaf, mid, qParentOf{})

	terms := query.Resolve([]query.Term{
		query.Related(parentType, 0, 1, query.Up),
	}, nil)
	f, err := query.New(w, terms)
	require.NoError(t, err)

	var order []uint32
	cursor := f.View().Cursor()
	for cursor.Next() {
		order = append(order, cursor.Entity(0).Index)
	}

	require.Equal(t, []uint32{leaf.Index, mid.Index}, order)
}
