package core

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestIDAllocatorReusesLowestFreeID(t *testing.T) {
	a := NewIDAllocator(2)
	owners := []string{"a", "b", "c"}

	require.Equal(t, uint32(0), a.Acquire(&owners[0]))
	require.Equal(t, uint32(1), a.Acquire(&owners[1]))
	// Grows past the initial capacity.
	require.Equal(t, uint32(2), a.Acquire(&owners[2]))

	require.NoError(t, a.Release(1))
	require.Nil(t, a.Owner(1))
	require.Equal(t, uint32(1), a.Acquire(&owners[2]))
	require.Equal(t, &owners[2], a.Owner(1))

	require.True(t, errors.Is(a.Release(42), ErrNotFound))
	require.Nil(t, a.Owner(42))
}
