package systems

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/headless"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

func newTestMaterialSystem(t *testing.T, capacity uint32) (*MaterialSystem, *headless.Backend) {
	t.Helper()
	backend := headless.New()
	rs := newTestResourceSystem(t, t.TempDir())
	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 8}, rs, backend)
	require.NoError(t, err)
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 8}, backend)
	require.NoError(t, err)
	ms, err := NewMaterialSystem(&MaterialSystemConfig{MaxMaterialCount: capacity}, ts, ss, rs, backend)
	require.NoError(t, err)
	return ms, backend
}

func TestMaterialSystemDefault(t *testing.T) {
	ms, _ := newTestMaterialSystem(t, 2)
	def := ms.GetDefault()
	require.NotNil(t, def)
	require.Equal(t, ms.MaterialShaderID, def.ShaderID)
	require.NotEqual(t, metadata.InvalidID, def.InternalID)
	require.Same(t, ms.textureSystem.GetDefaultDiffuseTexture(), def.DiffuseMap.Texture)

	got, err := ms.Acquire(metadata.DEFAULT_MATERIAL_NAME)
	require.NoError(t, err)
	require.Same(t, def, got)
	require.NoError(t, ms.Release(metadata.DEFAULT_MATERIAL_NAME))
	require.Same(t, def, ms.GetDefault())
}

func TestMaterialSystemAcquireFromFile(t *testing.T) {
	sm, _, base := newTestManager(t)
	writeTexture(t, base, "bricks", red)
	writeMaterial(t, base, "wall", "bricks")

	m, err := sm.MaterialSystem.Acquire("wall")
	require.NoError(t, err)
	require.Equal(t, "wall", m.Name)
	require.Equal(t, uint32(0), m.Generation)
	require.Equal(t, "bricks", m.DiffuseMap.Texture.Name)
	require.True(t, sm.TextureSystem.ReferenceOf("bricks").IsLoaded())

	again, err := sm.MaterialSystem.Acquire("WALL")
	require.NoError(t, err)
	require.Same(t, m, again)
	require.Equal(t, uint64(2), sm.MaterialSystem.ReferenceOf("wall").ReferenceCount)

	// Materials from files auto release, and take their textures with them.
	require.NoError(t, sm.MaterialSystem.Release("wall"))
	require.NoError(t, sm.MaterialSystem.Release("wall"))
	require.False(t, sm.MaterialSystem.ReferenceOf("wall").IsLoaded())
	require.False(t, sm.TextureSystem.ReferenceOf("bricks").IsLoaded())
}

func TestMaterialSystemMissingTextureFallsBack(t *testing.T) {
	sm, _, base := newTestManager(t)
	writeMaterial(t, base, "plain", "does_not_exist")

	m, err := sm.MaterialSystem.Acquire("plain")
	require.NoError(t, err)
	require.Same(t, sm.TextureSystem.GetDefaultDiffuseTexture(), m.DiffuseMap.Texture)
	require.Same(t, sm.TextureSystem.GetDefaultNormalTexture(), m.NormalMap.Texture)
}

func TestMaterialSystemMissingFile(t *testing.T) {
	sm, _, _ := newTestManager(t)
	_, err := sm.MaterialSystem.Acquire("nowhere")
	require.True(t, errors.Is(err, core.ErrLoadFailure))
	require.False(t, sm.MaterialSystem.ReferenceOf("nowhere").IsLoaded())
}

func TestMaterialSystemCapacity(t *testing.T) {
	ms, _ := newTestMaterialSystem(t, 1)

	_, err := ms.AcquireFromConfig(&metadata.MaterialConfig{Name: "one", DiffuseColour: mgl32.Vec4{1, 1, 1, 1}, AutoRelease: true})
	require.NoError(t, err)
	_, err = ms.AcquireFromConfig(&metadata.MaterialConfig{Name: "two", AutoRelease: true})
	require.True(t, errors.Is(err, core.ErrCapacityExceeded))
	require.Zero(t, ms.ReferenceOf("two").ReferenceCount)

	require.NoError(t, ms.Release("one"))
	_, err = ms.AcquireFromConfig(&metadata.MaterialConfig{Name: "two", AutoRelease: true})
	require.NoError(t, err)
}

func TestMaterialSystemUnknownShader(t *testing.T) {
	ms, backend := newTestMaterialSystem(t, 2)
	acquired := backend.Stats.InstanceResourcesAcquired

	_, err := ms.AcquireFromConfig(&metadata.MaterialConfig{Name: "odd", ShaderName: "Shader.Custom.Missing"})
	require.True(t, errors.Is(err, core.ErrLoadFailure))
	require.False(t, ms.ReferenceOf("odd").IsLoaded())
	require.Equal(t, acquired, backend.Stats.InstanceResourcesAcquired)

	// The slot is still free.
	_, err = ms.AcquireFromConfig(&metadata.MaterialConfig{Name: "a"})
	require.NoError(t, err)
	_, err = ms.AcquireFromConfig(&metadata.MaterialConfig{Name: "b"})
	require.NoError(t, err)
}

func TestMaterialSystemFirstAcquirerSetsAutoRelease(t *testing.T) {
	ms, _ := newTestMaterialSystem(t, 2)

	m, err := ms.AcquireFromConfig(&metadata.MaterialConfig{Name: "kept", AutoRelease: false})
	require.NoError(t, err)
	_, err = ms.AcquireFromConfig(&metadata.MaterialConfig{Name: "kept", AutoRelease: true})
	require.NoError(t, err)

	require.NoError(t, ms.Release("kept"))
	require.NoError(t, ms.Release("kept"))
	ref := ms.ReferenceOf("kept")
	require.True(t, ref.IsLoaded())
	require.Zero(t, ref.ReferenceCount)

	byHandle, err := ms.AcquireByHandle(m.ID)
	require.NoError(t, err)
	require.Same(t, m, byHandle)
	require.Equal(t, uint64(1), ms.ReferenceOf("kept").ReferenceCount)

	require.True(t, errors.Is(ms.Release("ghost"), core.ErrNotFound))
}

func TestMaterialSystemApplyInstanceNeedsResources(t *testing.T) {
	ms, _ := newTestMaterialSystem(t, 2)
	m := &metadata.Material{}
	m.Invalidate()
	require.True(t, errors.Is(ms.ApplyInstance(m, true), core.ErrNotFound))
}
