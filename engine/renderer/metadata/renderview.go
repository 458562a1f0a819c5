package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/math"
)

/** @brief Known render view types, which have logic associated with them. */
type RenderViewKnownType int

const (
	/** @brief A view which only renders objects with *no* transparency. */
	RENDERER_VIEW_KNOWN_TYPE_WORLD RenderViewKnownType = 0x01
	/** @brief A view which only renders ui objects. */
	RENDERER_VIEW_KNOWN_TYPE_UI RenderViewKnownType = 0x02
	/** @brief A view which only renders skybox objects. */
	RENDERER_VIEW_KNOWN_TYPE_SKYBOX RenderViewKnownType = 0x03
)

func (t RenderViewKnownType) String() string {
	switch t {
	case RENDERER_VIEW_KNOWN_TYPE_WORLD:
		return "world"
	case RENDERER_VIEW_KNOWN_TYPE_UI:
		return "ui"
	case RENDERER_VIEW_KNOWN_TYPE_SKYBOX:
		return "skybox"
	}
	return "unknown"
}

// ParseRenderViewKnownType maps the names used in configuration files.
func ParseRenderViewKnownType(s string) (RenderViewKnownType, bool) {
	switch s {
	case "world":
		return RENDERER_VIEW_KNOWN_TYPE_WORLD, true
	case "ui":
		return RENDERER_VIEW_KNOWN_TYPE_UI, true
	case "skybox":
		return RENDERER_VIEW_KNOWN_TYPE_SKYBOX, true
	}
	return 0, false
}

/** @brief Known view matrix sources. */
type RenderViewViewMatrixSource int

const (
	RENDER_VIEW_VIEW_MATRIX_SOURCE_SCENE_CAMERA RenderViewViewMatrixSource = 0x01
	RENDER_VIEW_VIEW_MATRIX_SOURCE_UI_CAMERA    RenderViewViewMatrixSource = 0x02
	RENDER_VIEW_VIEW_MATRIX_SOURCE_LIGHT_CAMERA RenderViewViewMatrixSource = 0x03
)

func ParseRenderViewViewMatrixSource(s string) RenderViewViewMatrixSource {
	switch s {
	case "ui_camera":
		return RENDER_VIEW_VIEW_MATRIX_SOURCE_UI_CAMERA
	case "light_camera":
		return RENDER_VIEW_VIEW_MATRIX_SOURCE_LIGHT_CAMERA
	}
	return RENDER_VIEW_VIEW_MATRIX_SOURCE_SCENE_CAMERA
}

/** @brief Known projection matrix sources. */
type RenderViewProjectionMatrixSource int

const (
	RENDER_VIEW_PROJECTION_MATRIX_SOURCE_DEFAULT_PERSPECTIVE  RenderViewProjectionMatrixSource = 0x01
	RENDER_VIEW_PROJECTION_MATRIX_SOURCE_DEFAULT_ORTHOGRAPHIC RenderViewProjectionMatrixSource = 0x02
)

/** @brief Configuration for a renderpass to be associated with a view. */
type RenderViewPassConfig struct {
	Name string
}

/**
 * @brief The configuration of a render view.
 * Used as a serialization target.
 */
type RenderViewConfig struct {
	Name string
	/** @brief The name of a custom shader to be used instead of the view's default. Optional. */
	CustomShaderName string
	/** @brief The width of the view. Set to 0 for 100% width. */
	Width uint32
	/** @brief The height of the view. Set to 0 for 100% height. */
	Height           uint32
	RenderViewType   RenderViewKnownType
	ViewMatrixSource RenderViewViewMatrixSource
	/** @brief The source of the projection matrix. */
	ProjectionMatrixSource RenderViewProjectionMatrixSource
	Passes                 []RenderViewPassConfig
}

/** @brief Lifecycle of a render view. */
type RenderViewState int

const (
	RenderViewStateUninitialized RenderViewState = iota
	RenderViewStateCreated
	RenderViewStateResized
	RenderViewStateDestroyed
)

func (s RenderViewState) String() string {
	switch s {
	case RenderViewStateCreated:
		return "created"
	case RenderViewStateResized:
		return "resized"
	case RenderViewStateDestroyed:
		return "destroyed"
	}
	return "uninitialized"
}

// CanRender reports whether packets may be built and rendered in this state.
func (s RenderViewState) CanRender() bool {
	return s == RenderViewStateCreated || s == RenderViewStateResized
}

/**
 * @brief A render view instance, responsible for the generation
 * of view packets based on internal logic and given config.
 */
type RenderView interface {
	ID() uint16
	SetID(id uint16)
	Name() string
	Type() RenderViewKnownType
	State() RenderViewState
	Passes() []*RenderPass

	OnCreate(config *RenderViewConfig) error
	OnDestroy()
	OnResize(width, height uint32)
	OnBuildPacket(data interface{}) (*RenderViewPacket, error)
	OnDestroyPacket(packet *RenderViewPacket)
	OnRender(packet *RenderViewPacket, frameNumber uint64, renderTargetIndex int) error
}

/**
 * @brief A packet for and generated by a render view, which contains
 * data about what is to be rendered.
 */
type RenderViewPacket struct {
	View             RenderView
	ViewMatrix       mgl32.Mat4
	ProjectionMatrix mgl32.Mat4
	ViewPosition     mgl32.Vec3
	AmbientColour    mgl32.Vec4
	Geometries       []GeometryRenderData
	CustomShaderName string
	/** @brief Holds a pointer to freeform data, typically understood both by the object and consuming view. */
	ExtendedData interface{}
}

/** @brief Everything the renderer needs for one frame. */
type RenderPacket struct {
	DeltaTime float64
	Views     []*RenderViewPacket
}

type RenderTarget struct {
	Attachments         []*Texture
	InternalFramebuffer interface{}
}

type RenderPass struct {
	ID           uint16
	Name         string
	RenderArea   mgl32.Vec4
	ClearColour  mgl32.Vec4
	Targets      []*RenderTarget
	InternalData interface{}
}

/** @brief Input of the world view: meshes plus the arena their transforms live in. */
type MeshPacketData struct {
	Meshes     []*Mesh
	Transforms *math.TransformArena
}

type SkyboxPacketData struct {
	Skybox *Skybox
}

type UIPacketData struct {
	MeshData MeshPacketData
	Texts    []*UIText
}
