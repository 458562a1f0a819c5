package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/containers"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/spaghettifunk/kiln/engine/renderer/views"
)

/** @brief The configuration for the render view system. */
type RenderViewSystemConfig struct {
	/** @brief The maximum number of views that can be registered with the system. */
	MaxViewCount uint16
}

type RenderViewSystem struct {
	Lookup          map[string]uint16
	MaxViewCount    uint32
	RegisteredViews []metadata.RenderView
	// subsystems
	shaderSystem   *ShaderSystem
	cameraSystem   *CameraSystem
	materialSystem *MaterialSystem
	backend        renderer.Backend
}

func NewRenderViewSystem(config RenderViewSystemConfig, ss *ShaderSystem, cs *CameraSystem, ms *MaterialSystem, backend renderer.Backend) (*RenderViewSystem, error) {
	if config.MaxViewCount == 0 {
		err := errors.Wrap(core.ErrConfig, "func NewRenderViewSystem - config.MaxViewCount must be > 0")
		core.LogFatal(err.Error())
		return nil, err
	}
	if backend == nil {
		return nil, errors.Wrap(core.ErrConfig, "func NewRenderViewSystem - backend is required")
	}
	return &RenderViewSystem{
		MaxViewCount:    uint32(config.MaxViewCount),
		Lookup:          make(map[string]uint16, config.MaxViewCount),
		RegisteredViews: make([]metadata.RenderView, config.MaxViewCount),
		shaderSystem:    ss,
		cameraSystem:    cs,
		materialSystem:  ms,
		backend:         backend,
	}, nil
}

func (rvs *RenderViewSystem) Shutdown() error {
	// Destroy all views in the system.
	for i, view := range rvs.RegisteredViews {
		if view == nil {
			continue
		}
		view.OnDestroy()
		rvs.RegisteredViews[i] = nil
	}
	clear(rvs.Lookup)
	return nil
}

// ViewConfigFromSection turns a [[views]] entry of the engine configuration into a view config.
func ViewConfigFromSection(section core.ViewSection, width, height uint32) (*metadata.RenderViewConfig, error) {
	kind, ok := metadata.ParseRenderViewKnownType(section.Type)
	if !ok {
		return nil, errors.Wrapf(core.ErrConfig, "view %q has unknown type %q", section.Name, section.Type)
	}
	cfg := &metadata.RenderViewConfig{
		Name:             section.Name,
		CustomShaderName: section.CustomShaderName,
		Width:            width,
		Height:           height,
		RenderViewType:   kind,
		ViewMatrixSource: metadata.ParseRenderViewViewMatrixSource(section.ViewMatrixSource),
	}
	if kind == metadata.RENDERER_VIEW_KNOWN_TYPE_UI {
		cfg.ProjectionMatrixSource = metadata.RENDER_VIEW_PROJECTION_MATRIX_SOURCE_DEFAULT_ORTHOGRAPHIC
	} else {
		cfg.ProjectionMatrixSource = metadata.RENDER_VIEW_PROJECTION_MATRIX_SOURCE_DEFAULT_PERSPECTIVE
	}
	for _, p := range section.Passes {
		cfg.Passes = append(cfg.Passes, metadata.RenderViewPassConfig{Name: p.Name})
	}
	return cfg, nil
}

/**
 * @brief Creates a new view using the provided config. The new view may then be
 * obtained via a call to Get.
 */
func (rvs *RenderViewSystem) Create(config *metadata.RenderViewConfig) (metadata.RenderView, error) {
	if config == nil {
		return nil, errors.Wrap(core.ErrConfig, "render_view_system_create requires a pointer to a valid config")
	}
	if config.Name == "" {
		return nil, errors.Wrap(core.ErrConfig, "render_view_system_create: name is required")
	}
	if len(config.Passes) < 1 {
		return nil, errors.Wrapf(core.ErrConfig, "render_view_system_create - view '%s' must have at least one renderpass", config.Name)
	}

	// Make sure there is not already an entry with this name already registered.
	key := containers.NormalizeName(config.Name)
	if _, ok := rvs.Lookup[key]; ok {
		return nil, errors.Wrapf(core.ErrConsistency, "render_view_system_create - a view named '%s' already exists. A new one will not be created", config.Name)
	}

	// Find a new id.
	id, found := containers.FirstFree(rvs.RegisteredViews, func(v metadata.RenderView) bool {
		return v == nil
	})
	if !found {
		return nil, errors.Wrap(core.ErrCapacityExceeded, "render_view_system_create - no available space for a new view. Change system config to account for more")
	}

	var view metadata.RenderView
	switch config.RenderViewType {
	case metadata.RENDERER_VIEW_KNOWN_TYPE_WORLD:
		view = views.NewWorldView(rvs.shaderSystem, rvs.materialSystem, rvs.backend, rvs.cameraSystem.GetDefault())
	case metadata.RENDERER_VIEW_KNOWN_TYPE_UI:
		view = views.NewUIView(rvs.shaderSystem, rvs.materialSystem, rvs.backend)
	case metadata.RENDERER_VIEW_KNOWN_TYPE_SKYBOX:
		view = views.NewSkyboxView(rvs.shaderSystem, rvs.backend, rvs.cameraSystem.GetDefault())
	default:
		return nil, errors.Wrapf(core.ErrConfig, "view '%s' has an invalid render view type %d", config.Name, config.RenderViewType)
	}

	if err := view.OnCreate(config); err != nil {
		core.LogError("failed to create view '%s': %v", config.Name, err)
		return nil, err
	}
	view.SetID(uint16(id))

	// Update the hashtable entry.
	rvs.RegisteredViews[id] = view
	rvs.Lookup[key] = uint16(id)
	core.LogDebug("Render view '%s' (%s) created.", config.Name, config.RenderViewType)
	return view, nil
}

/**
 * @brief Called when the owner of this view (i.e. the window) is resized.
 */
func (rvs *RenderViewSystem) OnWindowResize(width, height uint32) {
	// Send to all views
	for _, view := range rvs.RegisteredViews {
		if view != nil {
			view.OnResize(width, height)
		}
	}
}

/**
 * @brief Obtains a view with the given name.
 */
func (rvs *RenderViewSystem) Get(name string) (metadata.RenderView, error) {
	if id, ok := rvs.Lookup[containers.NormalizeName(name)]; ok {
		return rvs.RegisteredViews[id], nil
	}
	return nil, errors.Wrapf(core.ErrNotFound, "no view named '%s'", name)
}

/**
 * @brief Builds a render view packet using the provided view and scene data.
 */
func (rvs *RenderViewSystem) BuildPacket(view metadata.RenderView, data interface{}) (*metadata.RenderViewPacket, error) {
	if view == nil {
		return nil, errors.Wrap(core.ErrNotFound, "render_view_system_build_packet requires a valid view")
	}
	return view.OnBuildPacket(data)
}

/**
 * @brief Uses the given view and packet to render the contents therein.
 * @param frameNumber The current renderer frame number, used for data synchronization.
 */
func (rvs *RenderViewSystem) OnRender(view metadata.RenderView, packet *metadata.RenderViewPacket, frameNumber uint64, renderTargetIndex int) error {
	if view == nil || packet == nil {
		return errors.Wrap(core.ErrNotFound, "render_view_system_on_render requires a valid view and packet")
	}
	return view.OnRender(packet, frameNumber, renderTargetIndex)
}

func (rvs *RenderViewSystem) OnDestroyPacket(view metadata.RenderView, packet *metadata.RenderViewPacket) {
	if view == nil {
		return
	}
	view.OnDestroyPacket(packet)
}
