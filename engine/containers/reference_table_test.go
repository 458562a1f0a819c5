package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReferenceTableUnseenNamesAreNotLoaded(t *testing.T) {
	table := NewReferenceTable(4)
	ref := table.Get("never-stored")
	require.False(t, ref.IsLoaded())
	require.Equal(t, InvalidHandle, ref.Handle)
	require.Zero(t, ref.ReferenceCount)
}

func TestReferenceTableIsCaseInsensitive(t *testing.T) {
	table := NewReferenceTable(4)
	table.Set("Stone_Wall", Reference{Handle: 3, ReferenceCount: 1, AutoRelease: true})

	ref := table.Get("stone_wall")
	require.True(t, ref.IsLoaded())
	require.Equal(t, uint32(3), ref.Handle)
	require.True(t, ref.AutoRelease)
	require.Equal(t, ref, table.Get("STONE_WALL"))
	require.Equal(t, 1, table.Len())
}

func TestReferenceTableDropsNotLoadedEntries(t *testing.T) {
	table := NewReferenceTable(4)
	table.Set("a", Reference{Handle: 0, ReferenceCount: 2})
	table.Set("b", Reference{Handle: 1, ReferenceCount: 1})
	require.Equal(t, 2, table.Len())

	table.Set("a", NotLoaded())
	require.Equal(t, 1, table.Len())

	seen := map[string]uint32{}
	table.Each(func(name string, ref Reference) bool {
		seen[name] = ref.Handle
		return true
	})
	require.Equal(t, map[string]uint32{"b": 1}, seen)
}

func TestFirstFree(t *testing.T) {
	slots := []uint32{7, InvalidHandle, 9, InvalidHandle}
	idx, ok := FirstFree(slots, func(v uint32) bool { return v == InvalidHandle })
	require.True(t, ok)
	require.Equal(t, uint32(1), idx)

	idx, ok = FirstFree(slots, func(v uint32) bool { return v == 42 })
	require.False(t, ok)
	require.Equal(t, InvalidHandle, idx)
}
