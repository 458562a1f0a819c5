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

func newTestShaderSystem(t *testing.T, capacity uint32) (*ShaderSystem, *headless.Backend) {
	t.Helper()
	backend := headless.New()
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: capacity}, backend)
	require.NoError(t, err)
	return ss, backend
}

func TestShaderSystemBuiltins(t *testing.T) {
	ss, backend := newTestShaderSystem(t, 4)
	require.Equal(t, 3, backend.Stats.ShadersCreated)

	for _, name := range []string{metadata.BUILTIN_SHADER_NAME_MATERIAL, metadata.BUILTIN_SHADER_NAME_UI, metadata.BUILTIN_SHADER_NAME_SKYBOX} {
		s, err := ss.Get(name)
		require.NoError(t, err, name)
		require.Equal(t, metadata.ShaderStateInitialized, s.State)
	}

	world, err := ss.Get(metadata.BUILTIN_SHADER_NAME_MATERIAL)
	require.NoError(t, err)
	require.Equal(t, uint16(0), ss.GetUniformIndex(world, "projection"))
	require.Equal(t, metadata.InvalidIDUint16, ss.GetUniformIndex(world, "nope"))

	_, err = ss.Get("Shader.Custom")
	require.True(t, errors.Is(err, core.ErrNotFound))
}

func TestShaderSystemCreateRejects(t *testing.T) {
	ss, _ := newTestShaderSystem(t, 4)

	_, err := ss.CreateShader(&metadata.ShaderConfig{})
	require.True(t, errors.Is(err, core.ErrConfig))

	_, err = ss.CreateShader(&metadata.ShaderConfig{Name: metadata.BUILTIN_SHADER_NAME_UI})
	require.True(t, errors.Is(err, core.ErrConsistency))

	_, err = ss.CreateShader(&metadata.ShaderConfig{
		Name:     "Shader.Bad",
		Uniforms: []metadata.ShaderUniformConfig{{Name: "tex", Type: metadata.ShaderUniformTypeSampler, Scope: metadata.ShaderScopeLocal}},
	})
	require.True(t, errors.Is(err, core.ErrConfig))

	// The failed create above did not take the last slot.
	_, err = ss.CreateShader(&metadata.ShaderConfig{Name: "Shader.Custom"})
	require.NoError(t, err)
	_, err = ss.CreateShader(&metadata.ShaderConfig{Name: "Shader.Overflow"})
	require.True(t, errors.Is(err, core.ErrCapacityExceeded))
}

func TestShaderSystemUniformScopes(t *testing.T) {
	ss, backend := newTestShaderSystem(t, 4)

	require.True(t, errors.Is(ss.SetUniform("projection", mgl32.Ident4()), core.ErrInvalidState))

	require.NoError(t, ss.Use(metadata.BUILTIN_SHADER_NAME_MATERIAL))
	uses := backend.Stats.ShaderUses
	// Using the current shader again is free.
	require.NoError(t, ss.Use(metadata.BUILTIN_SHADER_NAME_MATERIAL))
	require.Equal(t, uses, backend.Stats.ShaderUses)

	world, err := ss.Get(metadata.BUILTIN_SHADER_NAME_MATERIAL)
	require.NoError(t, err)
	id, err := ss.AcquireInstanceResources(world.ID, nil)
	require.NoError(t, err)

	require.NoError(t, ss.SetUniform("projection", mgl32.Ident4()))
	require.NoError(t, ss.BindInstance(id))
	require.NoError(t, ss.SetUniform("shininess", float32(8)))
	require.Equal(t, metadata.ShaderScopeInstance, world.BoundScope)

	// A global uniform rebinds the global scope.
	binds := backend.Stats.GlobalBinds
	require.NoError(t, ss.SetUniform("view", mgl32.Ident4()))
	require.Equal(t, binds+1, backend.Stats.GlobalBinds)
	require.Equal(t, metadata.ShaderScopeGlobal, world.BoundScope)

	require.True(t, errors.Is(ss.SetUniformByIndex(200, 1), core.ErrNotFound))
	require.NoError(t, ss.ReleaseInstanceResources(world.ID, id))
	require.True(t, errors.Is(ss.BindInstance(id), core.ErrNotFound))
}
