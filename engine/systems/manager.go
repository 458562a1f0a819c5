package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

// SystemManager owns every system for the lifetime of the application. Systems are
// created in dependency order and shut down in reverse.
type SystemManager struct {
	CameraSystem     *CameraSystem
	GeometrySystem   *GeometrySystem
	JobSystem        *JobSystem
	MaterialSystem   *MaterialSystem
	MeshSystem       *MeshSystem
	FontSystem       *FontSystem
	RenderViewSystem *RenderViewSystem
	RendererSystem   *RendererSystem
	ShaderSystem     *ShaderSystem
	TextureSystem    *TextureSystem
	ResourceSystem   *ResourceSystem

	backend   renderer.Backend
	shutdowns []func() error
}

func NewSystemManager(cfg *core.EngineConfig, backend renderer.Backend) (*SystemManager, error) {
	if cfg == nil || backend == nil {
		return nil, errors.Wrap(core.ErrConfig, "func NewSystemManager - config and backend are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sm := &SystemManager{backend: backend}
	if err := sm.initialize(cfg); err != nil {
		// Tear down whatever came up before the failure.
		_ = sm.Shutdown()
		return nil, err
	}
	return sm, nil
}

func (sm *SystemManager) track(shutdown func() error) {
	sm.shutdowns = append(sm.shutdowns, shutdown)
}

func (sm *SystemManager) initialize(cfg *core.EngineConfig) error {
	sys := cfg.Systems
	var err error

	if err = sm.backend.Initialize(cfg.Application.Name, cfg.Application.Width, cfg.Application.Height); err != nil {
		return err
	}
	sm.track(sm.backend.Shutdown)

	if sm.JobSystem, err = NewJobSystem(cfg.Jobs.Workers, cfg.Jobs.QueueSize); err != nil {
		return err
	}
	sm.track(sm.JobSystem.Shutdown)

	if sm.ResourceSystem, err = NewResourceSystem(&ResourceSystemConfig{
		MaxLoaderCount: sys.MaxLoaderCount,
		AssetBasePath:  cfg.Assets.BasePath,
	}); err != nil {
		return err
	}
	sm.track(sm.ResourceSystem.Shutdown)

	if sm.CameraSystem, err = NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: sys.MaxCameraCount,
	}); err != nil {
		return err
	}
	sm.track(sm.CameraSystem.Shutdown)

	if sm.TextureSystem, err = NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: sys.MaxTextureCount,
	}, sm.ResourceSystem, sm.backend); err != nil {
		return err
	}
	sm.track(sm.TextureSystem.Shutdown)

	if sm.ShaderSystem, err = NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: sys.MaxShaderCount,
	}, sm.backend); err != nil {
		return err
	}
	sm.track(sm.ShaderSystem.Shutdown)

	if sm.MaterialSystem, err = NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: sys.MaxMaterialCount,
	}, sm.TextureSystem, sm.ShaderSystem, sm.ResourceSystem, sm.backend); err != nil {
		return err
	}
	sm.track(sm.MaterialSystem.Shutdown)

	if sm.GeometrySystem, err = NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: sys.MaxGeometryCount,
	}, sm.MaterialSystem, sm.backend); err != nil {
		return err
	}
	sm.track(sm.GeometrySystem.Shutdown)

	if sm.MeshSystem, err = NewMeshSystem(sm.JobSystem, sm.GeometrySystem, sm.ResourceSystem); err != nil {
		return err
	}
	sm.track(sm.MeshSystem.Shutdown)

	if sm.FontSystem, err = NewFontSystem(&FontSystemConfig{
		MaxBitmapFontCount: uint8(math.Clamp(sys.MaxFontCount, 1, 255)),
	}, sm.ResourceSystem, sm.TextureSystem, sm.ShaderSystem, sm.GeometrySystem, sm.MeshSystem.Transforms, sm.backend); err != nil {
		return err
	}
	sm.track(sm.FontSystem.Shutdown)

	if sm.RenderViewSystem, err = NewRenderViewSystem(RenderViewSystemConfig{
		MaxViewCount: uint16(math.Clamp(sys.MaxViewCount, 1, 65535)),
	}, sm.ShaderSystem, sm.CameraSystem, sm.MaterialSystem, sm.backend); err != nil {
		return err
	}
	sm.track(sm.RenderViewSystem.Shutdown)

	for _, section := range cfg.Views {
		viewConfig, err := ViewConfigFromSection(section, cfg.Application.Width, cfg.Application.Height)
		if err != nil {
			return err
		}
		if _, err := sm.RenderViewSystem.Create(viewConfig); err != nil {
			return err
		}
	}

	if sm.RendererSystem, err = NewRendererSystem(cfg.Application.Name, cfg.Application.Width, cfg.Application.Height, sm.backend, sm.RenderViewSystem); err != nil {
		return err
	}
	sm.track(sm.RendererSystem.Shutdown)

	core.LogDebug("texture system: %s", sm.TextureSystem.BuildStatsString())
	core.LogDebug("material system: %s", sm.MaterialSystem.BuildStatsString())
	return nil
}

// Backend returns the graphics backend the systems were created with.
func (sm *SystemManager) Backend() renderer.Backend {
	return sm.backend
}

// Shutdown stops every system in reverse creation order. All systems are shut down
// even when one of them fails, the errors are combined.
func (sm *SystemManager) Shutdown() error {
	if sm.TextureSystem != nil && sm.MaterialSystem != nil {
		core.LogDebug("texture system at shutdown: %s", sm.TextureSystem.BuildStatsString())
		core.LogDebug("material system at shutdown: %s", sm.MaterialSystem.BuildStatsString())
	}
	var err error
	for i := len(sm.shutdowns) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, sm.shutdowns[i]())
	}
	sm.shutdowns = nil
	return err
}
