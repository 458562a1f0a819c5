package loaders

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

func TestParseMaterialConfig(t *testing.T) {
	src := `#material file
version=0.1
name=cobblestone
diffuse_colour=1.0 0.5 0.25 1.0
shininess = 16
metallic=0.5
roughness=0.25
diffuse_map_name=cobblestone
specular_map_name=cobblestone_SPEC
normal_map_name=cobblestone_NRM
shader=Shader.Builtin.World
auto_release=false
no equals sign here
unknown_key=1
`
	cfg, err := ParseMaterialConfig(strings.NewReader(src), "cobblestone.dmt")
	require.NoError(t, err)
	require.Equal(t, "cobblestone", cfg.Name)
	require.Equal(t, mgl32.Vec4{1, 0.5, 0.25, 1}, cfg.DiffuseColour)
	require.Equal(t, float32(16), cfg.Shininess)
	require.Equal(t, float32(0.5), cfg.Metallic)
	require.Equal(t, float32(0.25), cfg.Roughness)
	require.Equal(t, float32(1), cfg.AmbientOcclusion)
	require.Equal(t, "cobblestone_SPEC", cfg.SpecularMapName)
	require.Equal(t, "cobblestone_NRM", cfg.NormalMapName)
	require.Equal(t, metadata.BUILTIN_SHADER_NAME_MATERIAL, cfg.ShaderName)
	require.False(t, cfg.AutoRelease)
}

func TestParseMaterialConfigRejectsMalformedValues(t *testing.T) {
	for _, src := range []string{
		"diffuse_colour=1 1 1\n",
		"shininess=shiny\n",
		"shininess=-1\n",
		"auto_release=maybe\n",
	} {
		_, err := ParseMaterialConfig(strings.NewReader(src), "bad.dmt")
		require.True(t, errors.Is(err, core.ErrLoadFailure), src)
	}
}

func TestWriteDMTIsReadBack(t *testing.T) {
	cfg := &metadata.MaterialConfig{
		Name:                     "hull",
		ShaderName:               metadata.BUILTIN_SHADER_NAME_MATERIAL,
		AutoRelease:              true,
		DiffuseColour:            mgl32.Vec4{0.5, 0.25, 1, 1},
		Shininess:                8,
		Metallic:                 0.75,
		Roughness:                0.5,
		AmbientOcclusion:         1,
		DiffuseMapName:           "hull_d",
		RoughnessMetallicMapName: "hull_rm",
	}
	var buf bytes.Buffer
	require.NoError(t, WriteDMT(&buf, cfg))

	parsed, err := ParseMaterialConfig(&buf, "hull.dmt")
	require.NoError(t, err)
	require.Equal(t, cfg, parsed)
}

func TestMaterialLoaderLoad(t *testing.T) {
	base := t.TempDir()
	path, err := WriteDMTFile(base, &metadata.MaterialConfig{
		Name:          "test_material",
		ShaderName:    metadata.BUILTIN_SHADER_NAME_MATERIAL,
		DiffuseColour: mgl32.Vec4{1, 1, 1, 1},
		Shininess:     32,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, assets.MaterialsPath, "test_material.dmt"), path)

	loader := NewMaterialLoader(base)
	res, err := loader.Load("test_material", nil)
	require.NoError(t, err)
	require.Equal(t, path, res.FullPath)
	require.Equal(t, "test_material", res.Data.(*metadata.MaterialConfig).Name)
	require.NoError(t, loader.Unload(res))

	_, err = loader.Load("missing", nil)
	require.True(t, errors.Is(err, core.ErrNotFound))

}
