package views

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

const (
	defaultViewWidth  uint32 = 1280
	defaultViewHeight uint32 = 720
)

// Shaders is the part of the shader system the views drive.
type Shaders interface {
	Get(shaderName string) (*metadata.Shader, error)
	UseByID(shaderID uint32) error
	GetUniformIndex(shader *metadata.Shader, uniformName string) uint16
	SetUniformByIndex(index uint16, value interface{}) error
	BindInstance(instanceID uint32) error
	ApplyGlobal() error
	ApplyInstance(needsUpdate bool) error
}

// Materials is the part of the material system the views drive.
type Materials interface {
	GetDefault() *metadata.Material
	ApplyGlobal(shaderID uint32, frameNumber uint64, projection, view mgl32.Mat4, ambientColour mgl32.Vec4, viewPosition mgl32.Vec3, renderMode uint32) error
	ApplyInstance(m *metadata.Material, needsUpdate bool) error
	ApplyLocal(m *metadata.Material, model mgl32.Mat4) error
}

// Drawer issues the pass and draw calls. renderer.Backend satisfies it.
type Drawer interface {
	RenderPassBegin(pass *metadata.RenderPass, target *metadata.RenderTarget) error
	RenderPassEnd(pass *metadata.RenderPass) error
	DrawGeometry(data *metadata.GeometryRenderData)
}

// view holds what every known view type shares: identity, passes, size and state.
type view struct {
	id               uint16
	name             string
	kind             metadata.RenderViewKnownType
	state            metadata.RenderViewState
	width            uint32
	height           uint32
	customShaderName string
	passes           []*metadata.RenderPass

	shaders Shaders
	drawer  Drawer

	projectionRebuilds int
}

func (v *view) ID() uint16                         { return v.id }
func (v *view) SetID(id uint16)                    { v.id = id }
func (v *view) Name() string                       { return v.name }
func (v *view) Type() metadata.RenderViewKnownType { return v.kind }
func (v *view) State() metadata.RenderViewState    { return v.state }
func (v *view) Passes() []*metadata.RenderPass     { return v.passes }

// ProjectionRebuilds counts how often the projection matrix was recomputed by a resize.
func (v *view) ProjectionRebuilds() int { return v.projectionRebuilds }

func (v *view) create(config *metadata.RenderViewConfig) error {
	if config == nil {
		return errors.Wrap(core.ErrConfig, "render view create requires a valid config")
	}
	if v.state != metadata.RenderViewStateUninitialized {
		return errors.Wrapf(core.ErrInvalidState, "view '%s' is %s, cannot create", config.Name, v.state)
	}
	if len(config.Passes) == 0 {
		return errors.Wrapf(core.ErrConfig, "view '%s' must have at least one renderpass", config.Name)
	}
	v.name = config.Name
	v.customShaderName = config.CustomShaderName
	v.width = config.Width
	if v.width == 0 {
		v.width = defaultViewWidth
	}
	v.height = config.Height
	if v.height == 0 {
		v.height = defaultViewHeight
	}
	v.passes = make([]*metadata.RenderPass, len(config.Passes))
	for i, pc := range config.Passes {
		v.passes[i] = &metadata.RenderPass{
			ID:          uint16(i),
			Name:        pc.Name,
			RenderArea:  mgl32.Vec4{0, 0, float32(v.width), float32(v.height)},
			ClearColour: mgl32.Vec4{0, 0, 0.2, 1},
			Targets:     []*metadata.RenderTarget{{}},
		}
	}
	return nil
}

// shader resolves the custom shader of the view, falling back to the builtin one.
func (v *view) shader(builtin string) (*metadata.Shader, error) {
	name := builtin
	if v.customShaderName != "" {
		name = v.customShaderName
	}
	s, err := v.shaders.Get(name)
	if err != nil {
		core.LogError("view '%s' could not find shader '%s'", v.name, name)
		return nil, err
	}
	return s, nil
}

func (v *view) destroy() {
	v.passes = nil
	v.state = metadata.RenderViewStateDestroyed
}

// resize reports whether the size changed. Pass render areas follow the new size.
func (v *view) resize(width, height uint32) bool {
	if !v.state.CanRender() {
		core.LogWarn("view '%s' is %s, resize ignored", v.name, v.state)
		return false
	}
	if width == v.width && height == v.height {
		return false
	}
	v.width = width
	v.height = height
	for _, p := range v.passes {
		p.RenderArea = mgl32.Vec4{0, 0, float32(width), float32(height)}
	}
	v.projectionRebuilds++
	v.state = metadata.RenderViewStateResized
	return true
}

func (v *view) aspect() float32 {
	if v.height == 0 {
		return 1
	}
	return float32(v.width) / float32(v.height)
}

func (v *view) checkRenderable(op string) error {
	if v.state.CanRender() {
		return nil
	}
	err := errors.Wrapf(core.ErrInvalidState, "%s on view '%s' in state %s", op, v.name, v.state)
	core.LogFatal(err.Error())
	return err
}

// eachPass begins every pass against the target, runs draw, then ends it.
func (v *view) eachPass(renderTargetIndex int, draw func(pass *metadata.RenderPass) error) error {
	for i, pass := range v.passes {
		if renderTargetIndex < 0 || renderTargetIndex >= len(pass.Targets) {
			return errors.Wrapf(core.ErrInvalidState, "view '%s' pass %d has no render target %d", v.name, i, renderTargetIndex)
		}
		if err := v.drawer.RenderPassBegin(pass, pass.Targets[renderTargetIndex]); err != nil {
			core.LogError("view '%s' pass index %d failed to start", v.name, i)
			return err
		}
		if err := draw(pass); err != nil {
			return err
		}
		if err := v.drawer.RenderPassEnd(pass); err != nil {
			core.LogError("view '%s' pass index %d failed to end", v.name, i)
			return err
		}
	}
	return nil
}

func (v *view) destroyPacket(packet *metadata.RenderViewPacket) {
	if packet == nil {
		return
	}
	packet.Geometries = nil
	*packet = metadata.RenderViewPacket{}
}

func worldMatrix(transforms *math.TransformArena, h math.TransformHandle) mgl32.Mat4 {
	if transforms == nil || h == math.NoTransform {
		return mgl32.Ident4()
	}
	return transforms.World(h)
}

// meshGeometries flattens the renderable meshes into render data. Meshes still loading
// are left out.
func meshGeometries(data *metadata.MeshPacketData, visit func(rd metadata.GeometryRenderData)) {
	if data == nil {
		return
	}
	for _, m := range data.Meshes {
		if !m.IsRenderable() {
			continue
		}
		model := worldMatrix(data.Transforms, m.Transform)
		for _, g := range m.Geometries {
			if g == nil {
				continue
			}
			visit(metadata.GeometryRenderData{Model: model, Geometry: g})
		}
	}
}

// drawGeometries applies each material once per frame and draws the geometry.
func drawGeometries(materials Materials, drawer Drawer, geometries []metadata.GeometryRenderData, frameNumber uint64) error {
	for i := range geometries {
		rd := &geometries[i]
		m := rd.Geometry.Material
		if m == nil {
			m = materials.GetDefault()
		}

		// Update the material if it hasn't already been this frame. It still needs to be
		// bound either way.
		needsUpdate := m.RenderFrameNumber != frameNumber
		if err := materials.ApplyInstance(m, needsUpdate); err != nil {
			core.LogWarn("failed to apply material '%s'. Skipping draw", m.Name)
			continue
		}
		// Sync the frame number.
		m.RenderFrameNumber = frameNumber

		if err := materials.ApplyLocal(m, rd.Model); err != nil {
			core.LogError("failed to apply local for material '%s'", m.Name)
			return err
		}
		drawer.DrawGeometry(rd)
	}
	return nil
}
