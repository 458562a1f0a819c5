package views

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

type UIView struct {
	view

	ShaderID         uint32
	NearClip         float32
	FarClip          float32
	ProjectionMatrix mgl32.Mat4
	ViewMatrix       mgl32.Mat4
	// uniform locations
	DiffuseMapLocation    uint16
	DiffuseColourLocation uint16
	ModelLocation         uint16

	materials Materials
}

var _ metadata.RenderView = (*UIView)(nil)

func NewUIView(shaders Shaders, materials Materials, drawer Drawer) *UIView {
	return &UIView{
		view: view{
			id:      metadata.InvalidIDUint16,
			kind:    metadata.RENDERER_VIEW_KNOWN_TYPE_UI,
			shaders: shaders,
			drawer:  drawer,
		},
		ShaderID:   metadata.InvalidID,
		NearClip:   -100.0,
		FarClip:    100.0,
		ViewMatrix: mgl32.Ident4(),
		materials:  materials,
	}
}

func (vu *UIView) OnCreate(config *metadata.RenderViewConfig) error {
	if err := vu.create(config); err != nil {
		return err
	}
	shader, err := vu.shader(metadata.BUILTIN_SHADER_NAME_UI)
	if err != nil {
		return err
	}
	vu.ShaderID = shader.ID
	vu.DiffuseMapLocation = vu.shaders.GetUniformIndex(shader, "diffuse_texture")
	vu.DiffuseColourLocation = vu.shaders.GetUniformIndex(shader, "diffuse_colour")
	vu.ModelLocation = vu.shaders.GetUniformIndex(shader, "model")

	vu.ProjectionMatrix = vu.orthographic()
	vu.state = metadata.RenderViewStateCreated
	return nil
}

func (vu *UIView) orthographic() mgl32.Mat4 {
	return mgl32.Ortho(0, float32(vu.width), float32(vu.height), 0, vu.NearClip, vu.FarClip)
}

func (vu *UIView) OnDestroy() {
	vu.destroy()
}

func (vu *UIView) OnResize(width, height uint32) {
	if vu.resize(width, height) {
		vu.ProjectionMatrix = vu.orthographic()
	}
}

func (vu *UIView) OnBuildPacket(data interface{}) (*metadata.RenderViewPacket, error) {
	if err := vu.checkRenderable("build packet"); err != nil {
		return nil, err
	}
	uiData, ok := data.(*metadata.UIPacketData)
	if !ok || uiData == nil {
		return nil, errors.Wrapf(core.ErrConsistency, "ui view expects *UIPacketData, got %T", data)
	}
	packet := &metadata.RenderViewPacket{
		View:             vu,
		ProjectionMatrix: vu.ProjectionMatrix,
		ViewMatrix:       vu.ViewMatrix,
		ExtendedData:     uiData,
	}
	meshGeometries(&uiData.MeshData, func(rd metadata.GeometryRenderData) {
		packet.Geometries = append(packet.Geometries, rd)
	})
	return packet, nil
}

func (vu *UIView) OnDestroyPacket(packet *metadata.RenderViewPacket) {
	vu.destroyPacket(packet)
}

func (vu *UIView) OnRender(packet *metadata.RenderViewPacket, frameNumber uint64, renderTargetIndex int) error {
	if err := vu.checkRenderable("render"); err != nil {
		return err
	}
	uiData, _ := packet.ExtendedData.(*metadata.UIPacketData)

	return vu.eachPass(renderTargetIndex, func(pass *metadata.RenderPass) error {
		if err := vu.shaders.UseByID(vu.ShaderID); err != nil {
			core.LogError("failed to use ui shader. Render frame failed")
			return err
		}
		// Apply globals
		if err := vu.materials.ApplyGlobal(vu.ShaderID, frameNumber, packet.ProjectionMatrix, packet.ViewMatrix, mgl32.Vec4{}, mgl32.Vec3{}, 0); err != nil {
			core.LogError("failed to apply globals for ui shader. Render frame failed")
			return err
		}
		if err := drawGeometries(vu.materials, vu.drawer, packet.Geometries, frameNumber); err != nil {
			return err
		}
		if uiData == nil {
			return nil
		}
		return vu.drawTexts(uiData, frameNumber)
	})
}

// drawTexts draws the bitmap text batch on top of the ui geometries.
func (vu *UIView) drawTexts(uiData *metadata.UIPacketData, frameNumber uint64) error {
	for _, text := range uiData.Texts {
		if text == nil || text.Geometry == nil || text.Data == nil {
			continue
		}
		if err := vu.shaders.BindInstance(text.InstanceID); err != nil {
			core.LogError("failed to bind instance for ui text")
			return err
		}
		needsUpdate := text.RenderFrameNumber != frameNumber
		if needsUpdate {
			if err := vu.shaders.SetUniformByIndex(vu.DiffuseMapLocation, text.Data.Atlas); err != nil {
				core.LogError("Failed to apply bitmap font diffuse map uniform.")
				return err
			}
			if err := vu.shaders.SetUniformByIndex(vu.DiffuseColourLocation, text.Colour); err != nil {
				core.LogError("Failed to apply bitmap font diffuse colour uniform.")
				return err
			}
		}
		if err := vu.shaders.ApplyInstance(needsUpdate); err != nil {
			return err
		}
		// Sync the frame number.
		text.RenderFrameNumber = frameNumber

		// Apply the locals
		model := worldMatrix(uiData.MeshData.Transforms, text.Transform)
		if err := vu.shaders.SetUniformByIndex(vu.ModelLocation, model); err != nil {
			core.LogError("Failed to apply model matrix for text")
			return err
		}
		vu.drawer.DrawGeometry(&metadata.GeometryRenderData{Model: model, Geometry: text.Geometry})
	}
	return nil
}
