package relation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubos-go/ecscore/relation"
)

func TestInsertContainsAndGet(t *testing.T) {
	tbl := relation.NewTable()
	tbl.Insert(1, 2, "parent-of")

	require.True(t, tbl.Contains(1, 2))
	require.False(t, tbl.Contains(2, 1))

	v, ok := tbl.Get(1, 2)
	require.True(t, ok)
	require.Equal(t, "parent-of", v)
}

func TestInsertOverwritesExistingPair(t *testing.T) {
	tbl := relation.NewTable()
	tbl.Insert(1, 2, "v1")
	tbl.Insert(1, 2, "v2")

	require.Equal(t, 1, tbl.Len())
	v, _ := tbl.Get(1, 2)
	require.Equal(t, "v2", v)
}

func TestViewFromAndViewTo(t *testing.T) {
	tbl := relation.NewTable()
	tbl.Insert(1, 2, "a")
	tbl.Insert(1, 3, "b")
	tbl.Insert(4, 2, "c")

	fromRows := tbl.ViewFrom(1)
	require.Len(t, fromRows, 2)

	toRows := tbl.ViewTo(2)
	require.Len(t, toRows, 2)
}

func TestEraseUnlinksBothLists(t *testing.T) {
	tbl := relation.NewTable()
	tbl.Insert(1, 2, "a")
	tbl.Insert(1, 3, "b")
	tbl.Insert(4, 2, "c")

	tbl.Erase(1, 2)

	require.False(t, tbl.Contains(1, 2))
	require.Len(t, tbl.ViewFrom(1), 1)
	require.Len(t, tbl.ViewTo(2), 1)
	require.Equal(t, 2, tbl.Len())
}

func TestEraseFromRemovesAllOutgoing(t *testing.T) {
	tbl := relation.NewTable()
	tbl.Insert(1, 2, "a")
	tbl.Insert(1, 3, "b")
	tbl.Insert(1, 4, "c")
	tbl.Insert(5, 2, "d")

	tbl.EraseFrom(1)

	require.Empty(t, tbl.ViewFrom(1))
	require.Equal(t, 1, tbl.Len())
	require.True(t, tbl.Contains(5, 2))
}

func TestEraseToRemovesAllIncoming(t *testing.T) {
	tbl := relation.NewTable()
	tbl.Insert(1, 9, "a")
	tbl.Insert(2, 9, "b")
	tbl.Insert(2, 8, "c")

	tbl.EraseTo(9)

	require.Empty(t, tbl.ViewTo(9))
	require.Equal(t, 1, tbl.Len())
	require.True(t, tbl.Contains(2, 8))
}

func TestSwapRemoveRelinksMovedRow(t *testing.T) {
	tbl := relation.NewTable()
	for i := uint32(0); i < 20; i++ {
		tbl.Insert(i, i+100, i)
	}
	// Erase a row in the middle; the last row gets swapped into its slot
	// and must keep its own from/to lists intact.
	tbl.Erase(5, 105)

	require.False(t, tbl.Contains(5, 105))
	require.True(t, tbl.Contains(19, 119))
	require.Len(t, tbl.ViewFrom(19), 1)
	require.Len(t, tbl.ViewTo(119), 1)
	require.Equal(t, 19, tbl.Len())

	all := tbl.All()
	require.Len(t, all, 19)
}
