package relation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubos-go/ecscore/archetype"
	"github.com/cubos-go/ecscore/relation"
	"github.com/cubos-go/ecscore/types"
)

func TestOutgoingFromFindsTheSingleEdgeAcrossKeys(t *testing.T) {
	s := relation.NewStore()
	rel := types.DataTypeId(1)

	s.Table(relation.Key{Relation: rel, From: archetype.ID(0), To: archetype.ID(0), Depth: 1}).Insert(1, 2, nil)
	s.Table(relation.Key{Relation: rel, From: archetype.ID(0), To: archetype.ID(1), Depth: 2}).Insert(9, 10, nil)

	to, ok := s.OutgoingFrom(rel, 1)
	require.True(t, ok)
	require.Equal(t, uint32(2), to)

	_, ok = s.OutgoingFrom(rel, 2)
	require.False(t, ok)
}

func TestKeysForRelationOnlyMatchesThatRelation(t *testing.T) {
	s := relation.NewStore()
	a := types.DataTypeId(1)
	b := types.DataTypeId(2)

	s.Table(relation.Key{Relation: a, From: archetype.ID(0), To: archetype.ID(0)}).Insert(1, 2, nil)
	s.Table(relation.Key{Relation: b, From: archetype.ID(0), To: archetype.ID(0)}).Insert(3, 4, nil)

	require.Len(t, s.KeysForRelation(a), 1)
	require.Len(t, s.KeysForRelation(b), 1)
}
