package systems

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/headless"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

func newTestGeometrySystem(t *testing.T, capacity uint32) (*GeometrySystem, *headless.Backend) {
	t.Helper()
	ms, backend := newTestMaterialSystem(t, 4)
	gs, err := NewGeometrySystem(&GeometrySystemConfig{MaxGeometryCount: capacity}, ms, backend)
	require.NoError(t, err)
	return gs, backend
}

func TestGeometrySystemDefaults(t *testing.T) {
	gs, backend := newTestGeometrySystem(t, 2)

	def := gs.GetDefault()
	require.Equal(t, uint32(4), def.VertexCount)
	require.Equal(t, uint32(6), def.IndexCount)
	require.Equal(t, mgl32.Vec3{-5, -5, 0}, def.Extents.Min)
	require.Equal(t, mgl32.Vec3{5, 5, 0}, def.Extents.Max)
	require.Same(t, gs.materialSystem.GetDefault(), def.Material)

	def2D := gs.GetDefault2D()
	require.Equal(t, math.Vertex2DSize, def2D.VertexSize)
	_, indices, ok := backend.GeometryBuffers(def2D)
	require.True(t, ok)
	require.Equal(t, []uint32{2, 1, 0, 3, 0, 1}, indices)

	// Defaults ignore releases.
	require.NoError(t, gs.Release(def))
	require.Equal(t, 2, backend.LiveGeometryCount())
}

func TestGeometrySystemDoesNotDeduplicateByName(t *testing.T) {
	gs, _ := newTestGeometrySystem(t, 4)

	a, err := gs.AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "box", ""), true)
	require.NoError(t, err)
	b, err := gs.AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "box", ""), true)
	require.NoError(t, err)

	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, uint64(1), gs.ReferenceCount(a.ID))
	require.Equal(t, uint64(1), gs.ReferenceCount(b.ID))
	require.Equal(t, uint32(24), a.VertexCount)
	require.Equal(t, uint32(36), a.IndexCount)
}

func TestGeometrySystemCapacity(t *testing.T) {
	gs, _ := newTestGeometrySystem(t, 1)

	g, err := gs.AcquireFromConfig(GeneratePlaneConfig(2, 2, 1, 1, 1, 1, "first", ""), true)
	require.NoError(t, err)
	_, err = gs.AcquireFromConfig(GeneratePlaneConfig(2, 2, 1, 1, 1, 1, "second", ""), true)
	require.True(t, errors.Is(err, core.ErrCapacityExceeded))

	require.NoError(t, gs.Release(g))
	_, err = gs.AcquireFromConfig(GeneratePlaneConfig(2, 2, 1, 1, 1, 1, "second", ""), true)
	require.NoError(t, err)
}

func TestGeometrySystemUploadFailure(t *testing.T) {
	gs, backend := newTestGeometrySystem(t, 1)
	backend.FailGeometry = func(name string) bool { return name == "broken" }
	live := backend.LiveGeometryCount()

	_, err := gs.AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "broken", ""), true)
	require.True(t, errors.Is(err, core.ErrLoadFailure))
	require.Equal(t, live, backend.LiveGeometryCount())

	_, err = gs.AcquireFromConfig(&metadata.GeometryConfig{Name: "sizeless"}, true)
	require.True(t, errors.Is(err, core.ErrLoadFailure))

	// Both failures left the only slot free.
	_, err = gs.AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "fine", ""), true)
	require.NoError(t, err)
}

func TestGeometrySystemRelease(t *testing.T) {
	gs, backend := newTestGeometrySystem(t, 4)

	auto, err := gs.AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "auto", ""), true)
	require.NoError(t, err)
	require.NoError(t, gs.Release(auto))
	require.Equal(t, metadata.InvalidID, auto.ID)
	require.Equal(t, 1, backend.Stats.GeometriesDestroyed)
	require.True(t, errors.Is(gs.Release(auto), core.ErrNotFound))

	kept, err := gs.AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "kept", ""), false)
	require.NoError(t, err)
	require.NoError(t, gs.Release(kept))
	require.NotEqual(t, metadata.InvalidID, kept.ID)
	require.Zero(t, gs.ReferenceCount(kept.ID))
	require.True(t, errors.Is(gs.Release(kept), core.ErrNotFound))

	again, err := gs.AcquireByID(kept.ID)
	require.NoError(t, err)
	require.Same(t, kept, again)
	require.Equal(t, uint64(1), gs.ReferenceCount(kept.ID))

	_, err = gs.AcquireByID(metadata.InvalidID)
	require.True(t, errors.Is(err, core.ErrNotFound))
}

func TestGeometrySystemMissingMaterialUsesDefault(t *testing.T) {
	gs, _ := newTestGeometrySystem(t, 2)
	g, err := gs.AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "box", "not_a_material"), true)
	require.NoError(t, err)
	require.Same(t, gs.materialSystem.GetDefault(), g.Material)
}

func TestGenerateShapeConfigs(t *testing.T) {
	plane := GeneratePlaneConfig(4, 2, 2, 1, 1, 1, "plane", "mat")
	require.Equal(t, uint32(2*4), plane.VertexCount())
	require.Equal(t, uint32(2*6), plane.IndexCount())
	require.Equal(t, "mat", plane.MaterialName)

	// Zero sizes fall back to one.
	cube := GenerateCubeConfig(0, 2, 2, 1, 1, "cube", "")
	require.InDelta(t, -0.5, cube.MinExtents.X(), 1e-6)
	require.InDelta(t, 0.5, cube.MaxExtents.X(), 1e-6)
	require.InDelta(t, 1, cube.MaxExtents.Y(), 1e-6)
}
