package math

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/stretchr/testify/require"
)

func requireVec4InDelta(t *testing.T, want, got mgl32.Vec4) {
	t.Helper()
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestTransformWorldFollowsParentChain(t *testing.T) {
	arena := NewTransformArena(4)
	root := arena.CreateFromPosition(mgl32.Vec3{10, 0, 0})
	child := arena.CreateFromPosition(mgl32.Vec3{5, 0, 0})
	grandChild := arena.CreateFromPosition(mgl32.Vec3{0, 2, 0})

	require.NoError(t, arena.SetParent(child, root))
	require.NoError(t, arena.SetParent(grandChild, child))

	world := arena.World(grandChild)
	requireVec4InDelta(t, mgl32.Vec4{15, 2, 0, 1}, world.Col(3))

	// Moving the root moves every descendant.
	arena.Translate(root, mgl32.Vec3{0, 0, 3})
	world = arena.World(grandChild)
	requireVec4InDelta(t, mgl32.Vec4{15, 2, 3, 1}, world.Col(3))
}

func TestTransformRotationAndScale(t *testing.T) {
	arena := NewTransformArena(1)
	h := arena.CreateIdentity()
	arena.SetScale(h, mgl32.Vec3{2, 2, 2})
	arena.SetRotation(h, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}))

	p := arena.Local(h).Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	requireVec4InDelta(t, mgl32.Vec4{0, 2, 0, 1}, p)
}

func TestTransformSetParentRejectsCycles(t *testing.T) {
	arena := NewTransformArena(2)
	a := arena.CreateIdentity()
	b := arena.CreateIdentity()
	require.NoError(t, arena.SetParent(b, a))

	err := arena.SetParent(a, b)
	require.True(t, errors.Is(err, core.ErrConsistency))
	require.True(t, errors.Is(arena.SetParent(a, a), core.ErrConsistency))
	require.True(t, errors.Is(arena.SetParent(a, TransformHandle(99)), core.ErrNotFound))
}

func TestTransformDestroyDetachesChildrenAndReusesSlot(t *testing.T) {
	arena := NewTransformArena(2)
	parent := arena.CreateFromPosition(mgl32.Vec3{1, 0, 0})
	child := arena.CreateFromPosition(mgl32.Vec3{0, 1, 0})
	require.NoError(t, arena.SetParent(child, parent))
	require.Equal(t, 2, arena.Len())

	arena.Destroy(parent)
	require.Equal(t, 1, arena.Len())
	_, err := arena.Get(parent)
	require.True(t, errors.Is(err, core.ErrNotFound))

	c, err := arena.Get(child)
	require.NoError(t, err)
	require.Equal(t, NoTransform, c.Parent)
	requireVec4InDelta(t, mgl32.Vec4{0, 1, 0, 1}, arena.World(child).Col(3))

	// The freed slot is handed out again.
	require.Equal(t, parent, arena.CreateIdentity())

	// Unknown handles resolve to identity.
	require.Equal(t, mgl32.Ident4(), arena.World(NoTransform))
}
