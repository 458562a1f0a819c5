package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFOAndWrapAround(t *testing.T) {
	q := NewRingQueue[int](3)
	require.True(t, q.IsEmpty())

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	require.True(t, q.IsFull())
	require.ErrorIs(t, q.Enqueue(4), ErrQueueFull)

	v, err := q.Dequeue()
	require.NoError(t, err)
	require.Equal(t, 1, v)

	// The write index wraps to the freed slot.
	require.NoError(t, q.Enqueue(4))
	head, err := q.Peek()
	require.NoError(t, err)
	require.Equal(t, 2, head)

	var got []int
	for !q.IsEmpty() {
		v, err := q.Dequeue()
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Equal(t, []int{2, 3, 4}, got)
	require.Equal(t, 0, q.Len())

	_, err = q.Dequeue()
	require.ErrorIs(t, err, ErrQueueEmpty)
	_, err = q.Peek()
	require.ErrorIs(t, err, ErrQueueEmpty)
}
