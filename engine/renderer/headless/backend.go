// Package headless implements the renderer backend without a GPU. Resources live in
// host memory and every call is counted, which makes it the backend of choice for
// tooling and tests.
package headless

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

var _ renderer.Backend = (*Backend)(nil)

// Stats counts backend calls.
type Stats struct {
	TexturesCreated           int
	TexturesDestroyed         int
	TextureWrites             int
	TextureMapsAcquired       int
	TextureMapsReleased       int
	GeometriesCreated         int
	GeometriesDestroyed       int
	Draws                     int
	PassesBegun               int
	PassesEnded               int
	ShadersCreated            int
	ShaderUses                int
	GlobalBinds               int
	GlobalApplies             int
	InstanceBinds             int
	InstanceUploads           int
	InstanceApplies           int
	InstanceResourcesAcquired int
	InstanceResourcesReleased int
	UniformWrites             int
	Frames                    int
}

type textureData struct {
	pixels []uint8
}

type geometryData struct {
	vertices []byte
	indices  []uint32
}

type shaderData struct {
	instances map[uint32][]*metadata.TextureMap
	nextID    uint32
}

type Backend struct {
	Stats Stats

	// FailTexture and FailGeometry, when set, make uploads of matching names fail.
	FailTexture  func(name string) bool
	FailGeometry func(name string) bool

	width, height uint32
	inFrame       bool
	nextGeometry  uint32
	liveTextures  map[*textureData]struct{}
	liveGeometry  map[uint32]*geometryData
}

func New() *Backend {
	return &Backend{
		liveTextures: make(map[*textureData]struct{}),
		liveGeometry: make(map[uint32]*geometryData),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.width, b.height = appWidth, appHeight
	core.LogInfo("headless backend initialized for '%s' (%dx%d)", appName, appWidth, appHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	if n := len(b.liveTextures); n > 0 {
		core.LogDebug("headless backend shut down with %d live textures", n)
	}
	clear(b.liveTextures)
	clear(b.liveGeometry)
	return nil
}

func (b *Backend) Resized(width, height uint32) {
	b.width, b.height = width, height
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	if b.inFrame {
		return errors.Wrap(core.ErrInvalidState, "begin frame called twice")
	}
	b.inFrame = true
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	if !b.inFrame {
		return errors.Wrap(core.ErrInvalidState, "end frame called outside a frame")
	}
	b.inFrame = false
	b.Stats.Frames++
	return nil
}

func (b *Backend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	if b.FailTexture != nil && b.FailTexture(texture.Name) {
		return errors.Wrapf(core.ErrLoadFailure, "upload of texture '%s' rejected", texture.Name)
	}
	expected := int(texture.Width) * int(texture.Height) * int(texture.ChannelCount)
	if texture.TextureType == metadata.TextureTypeCube {
		expected *= 6
	}
	if len(pixels) != expected {
		return errors.Wrapf(core.ErrLoadFailure, "texture '%s': got %d bytes, expected %d", texture.Name, len(pixels), expected)
	}
	data := &textureData{pixels: append([]uint8(nil), pixels...)}
	texture.InternalData = data
	b.liveTextures[data] = struct{}{}
	b.Stats.TexturesCreated++
	return nil
}

func (b *Backend) TextureCreateWriteable(texture *metadata.Texture) error {
	size := int(texture.Width) * int(texture.Height) * int(texture.ChannelCount)
	return b.TextureCreate(make([]uint8, size), texture)
}

func (b *Backend) TextureWriteData(texture *metadata.Texture, offset uint32, pixels []uint8) error {
	data, ok := texture.InternalData.(*textureData)
	if !ok {
		return errors.Wrapf(core.ErrNotFound, "texture '%s' has no backend data", texture.Name)
	}
	if int(offset)+len(pixels) > len(data.pixels) {
		return errors.Wrapf(core.ErrConsistency, "write past the end of texture '%s'", texture.Name)
	}
	copy(data.pixels[offset:], pixels)
	b.Stats.TextureWrites++
	return nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) {
	if texture == nil {
		return
	}
	data, ok := texture.InternalData.(*textureData)
	if !ok {
		return
	}
	delete(b.liveTextures, data)
	texture.InternalData = nil
	b.Stats.TexturesDestroyed++
}

// TexturePixels returns the host copy of an uploaded texture.
func (b *Backend) TexturePixels(texture *metadata.Texture) []uint8 {
	if data, ok := texture.InternalData.(*textureData); ok {
		return data.pixels
	}
	return nil
}

func (b *Backend) TextureMapAcquireResources(textureMap *metadata.TextureMap) error {
	textureMap.InternalData = struct{}{}
	b.Stats.TextureMapsAcquired++
	return nil
}

func (b *Backend) TextureMapReleaseResources(textureMap *metadata.TextureMap) {
	if textureMap == nil || textureMap.InternalData == nil {
		return
	}
	textureMap.InternalData = nil
	b.Stats.TextureMapsReleased++
}

func (b *Backend) GeometryCreate(geometry *metadata.Geometry, vertexSize, vertexCount uint32, vertices []byte, indexSize, indexCount uint32, indices []uint32) error {
	if b.FailGeometry != nil && b.FailGeometry(geometry.Name) {
		return errors.Wrapf(core.ErrLoadFailure, "upload of geometry '%s' rejected", geometry.Name)
	}
	if vertexCount == 0 {
		return errors.Wrapf(core.ErrLoadFailure, "geometry '%s' has no vertices", geometry.Name)
	}
	if uint32(len(vertices)) != vertexSize*vertexCount {
		return errors.Wrapf(core.ErrLoadFailure, "geometry '%s': got %d vertex bytes, expected %d", geometry.Name, len(vertices), vertexSize*vertexCount)
	}
	if uint32(len(indices)) != indexCount {
		return errors.Wrapf(core.ErrLoadFailure, "geometry '%s': got %d indices, expected %d", geometry.Name, len(indices), indexCount)
	}
	id := b.nextGeometry
	b.nextGeometry++
	b.liveGeometry[id] = &geometryData{
		vertices: append([]byte(nil), vertices...),
		indices:  append([]uint32(nil), indices...),
	}
	geometry.InternalID = id
	geometry.VertexCount = vertexCount
	geometry.VertexSize = vertexSize
	geometry.IndexCount = indexCount
	b.Stats.GeometriesCreated++
	return nil
}

func (b *Backend) GeometryDestroy(geometry *metadata.Geometry) {
	if geometry == nil || geometry.InternalID == metadata.InvalidID {
		return
	}
	if _, ok := b.liveGeometry[geometry.InternalID]; !ok {
		return
	}
	delete(b.liveGeometry, geometry.InternalID)
	geometry.InternalID = metadata.InvalidID
	b.Stats.GeometriesDestroyed++
}

// GeometryBuffers returns the host copy of an uploaded geometry.
func (b *Backend) GeometryBuffers(geometry *metadata.Geometry) ([]byte, []uint32, bool) {
	g, ok := b.liveGeometry[geometry.InternalID]
	if !ok {
		return nil, nil, false
	}
	return g.vertices, g.indices, true
}

func (b *Backend) LiveGeometryCount() int {
	return len(b.liveGeometry)
}

func (b *Backend) LiveTextureCount() int {
	return len(b.liveTextures)
}

func (b *Backend) DrawGeometry(data *metadata.GeometryRenderData) {
	if data == nil || data.Geometry == nil {
		return
	}
	b.Stats.Draws++
}

func (b *Backend) RenderPassBegin(pass *metadata.RenderPass, target *metadata.RenderTarget) error {
	if pass == nil {
		return errors.Wrap(core.ErrNotFound, "nil renderpass")
	}
	b.Stats.PassesBegun++
	return nil
}

func (b *Backend) RenderPassEnd(pass *metadata.RenderPass) error {
	b.Stats.PassesEnded++
	return nil
}

func (b *Backend) ShaderCreate(shader *metadata.Shader, config *metadata.ShaderConfig) error {
	shader.InternalData = &shaderData{instances: make(map[uint32][]*metadata.TextureMap)}
	b.Stats.ShadersCreated++
	return nil
}

func (b *Backend) ShaderDestroy(shader *metadata.Shader) {
	shader.InternalData = nil
}

func (b *Backend) ShaderUse(shader *metadata.Shader) error {
	b.Stats.ShaderUses++
	return nil
}

func (b *Backend) ShaderBindGlobals(shader *metadata.Shader) error {
	shader.BoundScope = metadata.ShaderScopeGlobal
	b.Stats.GlobalBinds++
	return nil
}

func (b *Backend) ShaderBindInstance(shader *metadata.Shader, instanceID uint32) error {
	data, ok := shader.InternalData.(*shaderData)
	if !ok {
		return errors.Wrapf(core.ErrNotFound, "shader '%s' was not created", shader.Name)
	}
	if _, ok := data.instances[instanceID]; !ok {
		return errors.Wrapf(core.ErrNotFound, "shader '%s' has no instance %d", shader.Name, instanceID)
	}
	shader.BoundInstanceID = instanceID
	shader.BoundScope = metadata.ShaderScopeInstance
	b.Stats.InstanceBinds++
	return nil
}

func (b *Backend) ShaderApplyGlobals(shader *metadata.Shader) error {
	b.Stats.GlobalApplies++
	return nil
}

func (b *Backend) ShaderApplyInstance(shader *metadata.Shader, needsUpdate bool) error {
	b.Stats.InstanceApplies++
	if needsUpdate {
		b.Stats.InstanceUploads++
	}
	return nil
}

func (b *Backend) ShaderAcquireInstanceResources(shader *metadata.Shader, maps []*metadata.TextureMap) (uint32, error) {
	data, ok := shader.InternalData.(*shaderData)
	if !ok {
		return metadata.InvalidID, errors.Wrapf(core.ErrNotFound, "shader '%s' was not created", shader.Name)
	}
	id := data.nextID
	data.nextID++
	data.instances[id] = maps
	b.Stats.InstanceResourcesAcquired++
	return id, nil
}

func (b *Backend) ShaderReleaseInstanceResources(shader *metadata.Shader, instanceID uint32) error {
	data, ok := shader.InternalData.(*shaderData)
	if !ok {
		return errors.Wrapf(core.ErrNotFound, "shader '%s' was not created", shader.Name)
	}
	if _, ok := data.instances[instanceID]; !ok {
		return errors.Wrapf(core.ErrNotFound, "shader '%s' has no instance %d", shader.Name, instanceID)
	}
	delete(data.instances, instanceID)
	b.Stats.InstanceResourcesReleased++
	return nil
}

func (b *Backend) SetUniform(shader *metadata.Shader, uniform *metadata.ShaderUniform, value any) error {
	if uniform == nil {
		return errors.Wrap(core.ErrNotFound, "nil uniform")
	}
	b.Stats.UniformWrites++
	return nil
}
