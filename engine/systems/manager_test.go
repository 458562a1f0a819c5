package systems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/headless"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

// newTestManager brings every system up on the headless backend with an empty asset
// directory. The manager is shut down when the test ends.
func newTestManager(t *testing.T) (*SystemManager, *headless.Backend, string) {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Assets.BasePath = t.TempDir()
	cfg.Jobs.Workers = 2
	cfg.Jobs.QueueSize = 4

	backend := headless.New()
	sm, err := NewSystemManager(cfg, backend)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sm.Shutdown() })
	return sm, backend, cfg.Assets.BasePath
}

func writeAsset(t *testing.T, base, typePath, file, content string) {
	t.Helper()
	dir := filepath.Join(base, typePath)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
}

func writeMaterial(t *testing.T, base, name, diffuseMap string) {
	t.Helper()
	content := "version=0.1\nname=" + name + "\ndiffuse_colour=1 1 1 1\n"
	if diffuseMap != "" {
		content += "diffuse_map_name=" + diffuseMap + "\n"
	}
	writeAsset(t, base, assets.MaterialsPath, name+".dmt", content)
}

func TestSystemManagerCreatesEverySystem(t *testing.T) {
	sm, backend, _ := newTestManager(t)

	require.NotNil(t, sm.JobSystem)
	require.NotNil(t, sm.ResourceSystem)
	require.NotNil(t, sm.CameraSystem)
	require.NotNil(t, sm.TextureSystem)
	require.NotNil(t, sm.ShaderSystem)
	require.NotNil(t, sm.MaterialSystem)
	require.NotNil(t, sm.GeometrySystem)
	require.NotNil(t, sm.MeshSystem)
	require.NotNil(t, sm.FontSystem)
	require.NotNil(t, sm.RenderViewSystem)
	require.NotNil(t, sm.RendererSystem)
	require.Same(t, backend, sm.Backend())

	for _, name := range []string{"skybox", "world", "UI"} {
		_, err := sm.RenderViewSystem.Get(name)
		require.NoError(t, err, name)
	}
	_, err := sm.RenderViewSystem.Get("minimap")
	require.True(t, errors.Is(err, core.ErrNotFound))
}

func TestSystemManagerRejectsInvalidConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Systems.MaxTextureCount = 0
	_, err := NewSystemManager(cfg, headless.New())
	require.True(t, errors.Is(err, core.ErrConfig))

	_, err = NewSystemManager(core.DefaultConfig(), nil)
	require.True(t, errors.Is(err, core.ErrConfig))
}

func TestSystemManagerRejectsUnknownViewType(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Assets.BasePath = t.TempDir()
	cfg.Views = append(cfg.Views, core.ViewSection{
		Name:   "minimap",
		Type:   "hologram",
		Passes: []core.ViewPassSection{{Name: "Renderpass.Minimap"}},
	})
	_, err := NewSystemManager(cfg, headless.New())
	require.True(t, errors.Is(err, core.ErrConfig))
}

func TestSystemManagerShutdownReleasesBackendResources(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Assets.BasePath = t.TempDir()
	backend := headless.New()
	sm, err := NewSystemManager(cfg, backend)
	require.NoError(t, err)

	cube := GenerateCubeConfig(1, 1, 1, 1, 1, "box", "")
	_, err = sm.MeshSystem.CreateFromConfigs("box", []*metadata.GeometryConfig{cube})
	require.NoError(t, err)

	require.NoError(t, sm.Shutdown())
	require.Equal(t, backend.Stats.TexturesCreated, backend.Stats.TexturesDestroyed)
	require.Equal(t, backend.Stats.GeometriesCreated, backend.Stats.GeometriesDestroyed)
	require.Equal(t, backend.Stats.InstanceResourcesAcquired, backend.Stats.InstanceResourcesReleased)
}
