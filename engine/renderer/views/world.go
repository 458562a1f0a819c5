package views

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/components"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"golang.org/x/exp/slices"
)

// Render modes understood by the world shader.
const (
	RenderModeDefault  uint32 = 0
	RenderModeLighting uint32 = 1
	RenderModeNormals  uint32 = 2
)

type geometryDistance struct {
	data     metadata.GeometryRenderData
	distance float32
}

type WorldView struct {
	view

	ShaderID         uint32
	FOV              float32
	NearClip         float32
	FarClip          float32
	ProjectionMatrix mgl32.Mat4
	WorldCamera      *components.Camera
	AmbientColour    mgl32.Vec4
	RenderMode       uint32

	materials Materials
}

var _ metadata.RenderView = (*WorldView)(nil)

func NewWorldView(shaders Shaders, materials Materials, drawer Drawer, camera *components.Camera) *WorldView {
	return &WorldView{
		view: view{
			id:      metadata.InvalidIDUint16,
			kind:    metadata.RENDERER_VIEW_KNOWN_TYPE_WORLD,
			shaders: shaders,
			drawer:  drawer,
		},
		ShaderID:      metadata.InvalidID,
		WorldCamera:   camera,
		NearClip:      0.1,
		FarClip:       1000.0,
		FOV:           mgl32.DegToRad(45.0),
		AmbientColour: mgl32.Vec4{0.25, 0.25, 0.25, 1.0},
		RenderMode:    RenderModeDefault,
		materials:     materials,
	}
}

func (vw *WorldView) OnCreate(config *metadata.RenderViewConfig) error {
	if err := vw.create(config); err != nil {
		return err
	}
	shader, err := vw.shader(metadata.BUILTIN_SHADER_NAME_MATERIAL)
	if err != nil {
		return err
	}
	vw.ShaderID = shader.ID
	vw.ProjectionMatrix = mgl32.Perspective(vw.FOV, vw.aspect(), vw.NearClip, vw.FarClip)
	vw.state = metadata.RenderViewStateCreated
	return nil
}

func (vw *WorldView) OnDestroy() {
	vw.destroy()
}

func (vw *WorldView) OnResize(width, height uint32) {
	if vw.resize(width, height) {
		vw.ProjectionMatrix = mgl32.Perspective(vw.FOV, vw.aspect(), vw.NearClip, vw.FarClip)
	}
}

func hasTransparency(g *metadata.Geometry) bool {
	m := g.Material
	return m != nil && m.DiffuseMap != nil && m.DiffuseMap.Texture != nil && m.DiffuseMap.Texture.HasTransparency()
}

/**
 * @brief Collects the geometries of every renderable mesh. Opaque geometries come
 * first, transparent ones follow sorted back to front by the distance of their center
 * to the camera.
 */
func (vw *WorldView) OnBuildPacket(data interface{}) (*metadata.RenderViewPacket, error) {
	if err := vw.checkRenderable("build packet"); err != nil {
		return nil, err
	}
	meshData, ok := data.(*metadata.MeshPacketData)
	if !ok || meshData == nil {
		return nil, errors.Wrapf(core.ErrConsistency, "world view expects *MeshPacketData, got %T", data)
	}

	packet := &metadata.RenderViewPacket{
		View:             vw,
		ProjectionMatrix: vw.ProjectionMatrix,
		ViewMatrix:       vw.WorldCamera.GetView(),
		ViewPosition:     vw.WorldCamera.GetPosition(),
		AmbientColour:    vw.AmbientColour,
	}

	cameraPosition := vw.WorldCamera.GetPosition()
	var transparent []geometryDistance
	meshGeometries(meshData, func(rd metadata.GeometryRenderData) {
		if !hasTransparency(rd.Geometry) {
			packet.Geometries = append(packet.Geometries, rd)
			return
		}
		// NOTE: Not exact for transparent meshes that intersect.
		center := rd.Model.Mul4x1(rd.Geometry.Center.Vec4(1)).Vec3()
		transparent = append(transparent, geometryDistance{
			data:     rd,
			distance: center.Sub(cameraPosition).Len(),
		})
	})

	// Farthest first.
	slices.SortStableFunc(transparent, func(a, b geometryDistance) int {
		switch {
		case a.distance > b.distance:
			return -1
		case a.distance < b.distance:
			return 1
		}
		return 0
	})
	for _, gd := range transparent {
		packet.Geometries = append(packet.Geometries, gd.data)
	}
	return packet, nil
}

func (vw *WorldView) OnDestroyPacket(packet *metadata.RenderViewPacket) {
	vw.destroyPacket(packet)
}

func (vw *WorldView) OnRender(packet *metadata.RenderViewPacket, frameNumber uint64, renderTargetIndex int) error {
	if err := vw.checkRenderable("render"); err != nil {
		return err
	}
	return vw.eachPass(renderTargetIndex, func(pass *metadata.RenderPass) error {
		if err := vw.shaders.UseByID(vw.ShaderID); err != nil {
			core.LogError("failed to use material shader. Render frame failed")
			return err
		}
		// Apply globals
		if err := vw.materials.ApplyGlobal(vw.ShaderID, frameNumber, packet.ProjectionMatrix, packet.ViewMatrix, packet.AmbientColour, packet.ViewPosition, vw.RenderMode); err != nil {
			core.LogError("failed to apply globals for material shader. Render frame failed")
			return err
		}
		return drawGeometries(vw.materials, vw.drawer, packet.Geometries, frameNumber)
	})
}
