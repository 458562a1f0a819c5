package views

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/components"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

type SkyboxView struct {
	view

	ShaderID         uint32
	FOV              float32
	NearClip         float32
	FarClip          float32
	ProjectionMatrix mgl32.Mat4
	WorldCamera      *components.Camera
	// uniform locations
	ProjectionLocation uint16
	ViewLocation       uint16
	CubeMapLocation    uint16
}

var _ metadata.RenderView = (*SkyboxView)(nil)

func NewSkyboxView(shaders Shaders, drawer Drawer, camera *components.Camera) *SkyboxView {
	return &SkyboxView{
		view: view{
			id:      metadata.InvalidIDUint16,
			kind:    metadata.RENDERER_VIEW_KNOWN_TYPE_SKYBOX,
			shaders: shaders,
			drawer:  drawer,
		},
		ShaderID:    metadata.InvalidID,
		WorldCamera: camera,
		NearClip:    0.1,
		FarClip:     1000.0,
		FOV:         mgl32.DegToRad(45.0),
	}
}

func (vs *SkyboxView) OnCreate(config *metadata.RenderViewConfig) error {
	if err := vs.create(config); err != nil {
		return err
	}
	shader, err := vs.shader(metadata.BUILTIN_SHADER_NAME_SKYBOX)
	if err != nil {
		return err
	}
	vs.ShaderID = shader.ID
	vs.ProjectionLocation = vs.shaders.GetUniformIndex(shader, "projection")
	vs.ViewLocation = vs.shaders.GetUniformIndex(shader, "view")
	vs.CubeMapLocation = vs.shaders.GetUniformIndex(shader, "cube_texture")

	vs.ProjectionMatrix = mgl32.Perspective(vs.FOV, vs.aspect(), vs.NearClip, vs.FarClip)
	vs.state = metadata.RenderViewStateCreated
	return nil
}

func (vs *SkyboxView) OnDestroy() {
	vs.destroy()
}

func (vs *SkyboxView) OnResize(width, height uint32) {
	if vs.resize(width, height) {
		vs.ProjectionMatrix = mgl32.Perspective(vs.FOV, vs.aspect(), vs.NearClip, vs.FarClip)
	}
}

func (vs *SkyboxView) OnBuildPacket(data interface{}) (*metadata.RenderViewPacket, error) {
	if err := vs.checkRenderable("build packet"); err != nil {
		return nil, err
	}
	skyboxData, ok := data.(*metadata.SkyboxPacketData)
	if !ok || skyboxData == nil {
		return nil, errors.Wrapf(core.ErrConsistency, "skybox view expects *SkyboxPacketData, got %T", data)
	}
	return &metadata.RenderViewPacket{
		View:             vs,
		ProjectionMatrix: vs.ProjectionMatrix,
		ViewMatrix:       vs.WorldCamera.GetView(),
		ViewPosition:     vs.WorldCamera.GetPosition(),
		// Just set the extended data to the skybox data
		ExtendedData: skyboxData,
	}, nil
}

func (vs *SkyboxView) OnDestroyPacket(packet *metadata.RenderViewPacket) {
	vs.destroyPacket(packet)
}

func (vs *SkyboxView) OnRender(packet *metadata.RenderViewPacket, frameNumber uint64, renderTargetIndex int) error {
	if err := vs.checkRenderable("render"); err != nil {
		return err
	}
	skyboxData, ok := packet.ExtendedData.(*metadata.SkyboxPacketData)
	if !ok || skyboxData.Skybox == nil {
		// Nothing to draw.
		return nil
	}
	skybox := skyboxData.Skybox

	return vs.eachPass(renderTargetIndex, func(pass *metadata.RenderPass) error {
		if err := vs.shaders.UseByID(vs.ShaderID); err != nil {
			core.LogError("failed to use skybox shader. Render frame failed")
			return err
		}

		// Zero out the position so the skybox stays put on screen.
		viewMatrix := packet.ViewMatrix
		viewMatrix[12] = 0
		viewMatrix[13] = 0
		viewMatrix[14] = 0

		// Apply globals
		if err := vs.shaders.SetUniformByIndex(vs.ProjectionLocation, packet.ProjectionMatrix); err != nil {
			core.LogError("failed to apply skybox projection uniform")
			return err
		}
		if err := vs.shaders.SetUniformByIndex(vs.ViewLocation, viewMatrix); err != nil {
			core.LogError("failed to apply skybox view uniform")
			return err
		}
		if err := vs.shaders.ApplyGlobal(); err != nil {
			return err
		}

		// Instance
		if err := vs.shaders.BindInstance(skybox.InstanceID); err != nil {
			core.LogError("failed to bind shader instance for skybox")
			return err
		}
		needsUpdate := skybox.RenderFrameNumber != frameNumber
		if needsUpdate {
			if err := vs.shaders.SetUniformByIndex(vs.CubeMapLocation, skybox.Cubemap); err != nil {
				core.LogError("failed to apply skybox cube map uniform")
				return err
			}
		}
		if err := vs.shaders.ApplyInstance(needsUpdate); err != nil {
			return err
		}
		// Sync the frame number.
		skybox.RenderFrameNumber = frameNumber

		vs.drawer.DrawGeometry(&metadata.GeometryRenderData{
			Model:    mgl32.Ident4(),
			Geometry: skybox.Geometry,
		})
		return nil
	})
}
