package renderer

import "github.com/spaghettifunk/kiln/engine/renderer/metadata"

//go:generate mockgen -source=backend.go -destination=mocks/backend.go -package=mocks

// Backend is the graphics capability the registries and views drive. Every call is
// made from the primary thread.
type Backend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32)
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	TextureCreate(pixels []uint8, texture *metadata.Texture) error
	TextureCreateWriteable(texture *metadata.Texture) error
	TextureWriteData(texture *metadata.Texture, offset uint32, pixels []uint8) error
	TextureDestroy(texture *metadata.Texture)
	TextureMapAcquireResources(textureMap *metadata.TextureMap) error
	TextureMapReleaseResources(textureMap *metadata.TextureMap)

	GeometryCreate(geometry *metadata.Geometry, vertexSize, vertexCount uint32, vertices []byte, indexSize, indexCount uint32, indices []uint32) error
	GeometryDestroy(geometry *metadata.Geometry)
	DrawGeometry(data *metadata.GeometryRenderData)

	RenderPassBegin(pass *metadata.RenderPass, target *metadata.RenderTarget) error
	RenderPassEnd(pass *metadata.RenderPass) error

	ShaderCreate(shader *metadata.Shader, config *metadata.ShaderConfig) error
	ShaderDestroy(shader *metadata.Shader)
	ShaderUse(shader *metadata.Shader) error
	ShaderBindGlobals(shader *metadata.Shader) error
	ShaderBindInstance(shader *metadata.Shader, instanceID uint32) error
	ShaderApplyGlobals(shader *metadata.Shader) error
	// ShaderApplyInstance uploads the bound instance's uniforms when needsUpdate is set,
	// otherwise it only binds what was uploaded before.
	ShaderApplyInstance(shader *metadata.Shader, needsUpdate bool) error
	ShaderAcquireInstanceResources(shader *metadata.Shader, maps []*metadata.TextureMap) (uint32, error)
	ShaderReleaseInstanceResources(shader *metadata.Shader, instanceID uint32) error
	SetUniform(shader *metadata.Shader, uniform *metadata.ShaderUniform, value any) error
}
