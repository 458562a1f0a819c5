package systems

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spaghettifunk/kiln/engine/assets/loaders"
	"github.com/spaghettifunk/kiln/engine/containers"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

// cubeFaceSuffixes are +X,-X,+Y,-Y,+Z,-Z in cubemap space, which is LH y-down.
var cubeFaceSuffixes = []string{"_r", "_l", "_u", "_d", "_f", "_b"}

const (
	defaultTextureDimension uint32 = 256
	defaultTextureSquare    uint32 = 8
	defaultMapDimension     uint32 = 16
)

type TextureSystem struct {
	Config *TextureSystemConfig
	// Array of registered textures.
	RegisteredTextures []*metadata.Texture
	// Table for texture lookups by name.
	RegisteredTextureTable *containers.ReferenceTable

	defaultTexture         *metadata.Texture
	defaultDiffuseTexture  *metadata.Texture
	defaultSpecularTexture *metadata.Texture
	defaultNormalTexture   *metadata.Texture

	resourceSystem *ResourceSystem
	backend        renderer.Backend
}

func NewTextureSystem(config *TextureSystemConfig, rs *ResourceSystem, backend renderer.Backend) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := errors.Wrap(core.ErrConfig, "func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogFatal(err.Error())
		return nil, err
	}
	if backend == nil {
		err := errors.Wrap(core.ErrConfig, "func NewTextureSystem - backend is required")
		core.LogFatal(err.Error())
		return nil, err
	}

	ts := &TextureSystem{
		Config:                 config,
		RegisteredTextures:     make([]*metadata.Texture, config.MaxTextureCount),
		RegisteredTextureTable: containers.NewReferenceTable(config.MaxTextureCount),
		resourceSystem:         rs,
		backend:                backend,
	}

	// Invalidate all textures in the array.
	for i := range ts.RegisteredTextures {
		t := &metadata.Texture{}
		t.Invalidate()
		ts.RegisteredTextures[i] = t
	}

	if err := ts.createDefaultTextures(); err != nil {
		core.LogFatal("func NewTextureSystem - failed to create default textures: %v", err)
		return nil, err
	}
	return ts, nil
}

func newDefaultTexture(name string, size uint32, fill func(x, y uint32) [4]uint8) (*metadata.Texture, []uint8) {
	t := &metadata.Texture{
		ID:           metadata.InvalidID,
		TextureType:  metadata.TextureType2d,
		Width:        size,
		Height:       size,
		ChannelCount: 4,
		Generation:   metadata.InvalidID,
		Name:         name,
	}
	pixels := make([]uint8, size*size*4)
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			c := fill(x, y)
			copy(pixels[(y*size+x)*4:], c[:])
		}
	}
	return t, pixels
}

func (ts *TextureSystem) createDefaultTextures() error {
	// NOTE: Create default texture, a blue/white checkerboard pattern.
	checker, checkerPixels := newDefaultTexture(metadata.DEFAULT_TEXTURE_NAME, defaultTextureDimension, func(x, y uint32) [4]uint8 {
		if (x/defaultTextureSquare)%2 == (y/defaultTextureSquare)%2 {
			return [4]uint8{255, 255, 255, 255}
		}
		return [4]uint8{0, 0, 255, 255}
	})
	diffuse, diffusePixels := newDefaultTexture(metadata.DEFAULT_DIFFUSE_TEXTURE_NAME, defaultMapDimension, func(x, y uint32) [4]uint8 {
		return [4]uint8{255, 255, 255, 255}
	})
	// Default specular map is black (no specular).
	specular, specularPixels := newDefaultTexture(metadata.DEFAULT_SPECULAR_TEXTURE_NAME, defaultMapDimension, func(x, y uint32) [4]uint8 {
		return [4]uint8{0, 0, 0, 255}
	})
	// Default normal map points straight up, z-axis.
	normal, normalPixels := newDefaultTexture(metadata.DEFAULT_NORMAL_TEXTURE_NAME, defaultMapDimension, func(x, y uint32) [4]uint8 {
		return [4]uint8{128, 128, 255, 255}
	})

	defaults := []struct {
		texture *metadata.Texture
		pixels  []uint8
	}{
		{checker, checkerPixels},
		{diffuse, diffusePixels},
		{specular, specularPixels},
		{normal, normalPixels},
	}
	for _, d := range defaults {
		if err := ts.backend.TextureCreate(d.pixels, d.texture); err != nil {
			return errors.Wrapf(core.ErrLoadFailure, "default texture '%s': %v", d.texture.Name, err)
		}
		// Defaults live outside the slot array, so they keep an invalid id and generation 0.
		d.texture.Generation = 0
	}

	ts.defaultTexture = checker
	ts.defaultDiffuseTexture = diffuse
	ts.defaultSpecularTexture = specular
	ts.defaultNormalTexture = normal
	return nil
}

// defaultByName maps the reserved names to their default texture.
func (ts *TextureSystem) defaultByName(name string) *metadata.Texture {
	switch containers.NormalizeName(name) {
	case containers.NormalizeName(metadata.DEFAULT_TEXTURE_NAME):
		return ts.defaultTexture
	case containers.NormalizeName(metadata.DEFAULT_DIFFUSE_TEXTURE_NAME):
		return ts.defaultDiffuseTexture
	case containers.NormalizeName(metadata.DEFAULT_SPECULAR_TEXTURE_NAME):
		return ts.defaultSpecularTexture
	case containers.NormalizeName(metadata.DEFAULT_NORMAL_TEXTURE_NAME):
		return ts.defaultNormalTexture
	}
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures.
	for _, t := range ts.RegisteredTextures {
		if t.ID != metadata.InvalidID {
			ts.backend.TextureDestroy(t)
			t.Invalidate()
		}
	}
	for _, t := range []*metadata.Texture{ts.defaultTexture, ts.defaultDiffuseTexture, ts.defaultSpecularTexture, ts.defaultNormalTexture} {
		if t != nil {
			ts.backend.TextureDestroy(t)
		}
	}
	core.LogDebug("texture system stats: %s", ts.BuildStatsString())
	return nil
}

/**
 * @brief Attempts to acquire a texture with the given name. If it has not yet been loaded,
 * this triggers it to load. The auto release flag is only taken into account by the
 * first acquisition of a name.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	if t := ts.defaultByName(name); t != nil {
		core.LogWarn("func TextureSystem.Acquire called for default texture '%s'. Use GetDefaultTexture instead", name)
		return t, nil
	}
	return ts.acquire(name, autoRelease, func(t *metadata.Texture) error {
		return ts.loadTexture(name, t)
	})
}

/**
 * @brief Attempts to acquire a cubemap texture with the given name. Requires one image per
 * side of the cube, named after the base name:
 * - name_r Right
 * - name_l Left
 * - name_u Up
 * - name_d Down
 * - name_f Front
 * - name_b Back
 */
func (ts *TextureSystem) AcquireCube(name string, autoRelease bool) (*metadata.Texture, error) {
	if t := ts.defaultByName(name); t != nil {
		core.LogWarn("func TextureSystem.AcquireCube called for default texture '%s'", name)
		return t, nil
	}
	return ts.acquire(name, autoRelease, func(t *metadata.Texture) error {
		return ts.loadCubeTextures(name, t)
	})
}

// AcquireWriteable creates an empty texture the renderer can write to. Writeable textures
// are never auto released since their contents are managed by whoever writes them.
func (ts *TextureSystem) AcquireWriteable(name string, width, height uint32, channelCount uint8, hasTransparency bool) (*metadata.Texture, error) {
	if name == "" {
		name = fmt.Sprintf("writeable_%s", uuid.NewString())
	}
	if ts.defaultByName(name) != nil {
		return nil, errors.Wrapf(core.ErrConsistency, "cannot create writeable texture with reserved name '%s'", name)
	}
	return ts.acquire(name, false, func(t *metadata.Texture) error {
		t.TextureType = metadata.TextureType2d
		t.Name = name
		t.Width = width
		t.Height = height
		t.ChannelCount = channelCount
		t.Flags = metadata.TextureFlagIsWriteable
		if hasTransparency {
			t.Flags |= metadata.TextureFlagHasTransparency
		}
		t.InternalData = nil
		if err := ts.backend.TextureCreateWriteable(t); err != nil {
			return err
		}
		t.Generation = 0
		return nil
	})
}

// acquire implements the reference counted lookup. load runs once per claimed slot.
func (ts *TextureSystem) acquire(name string, autoRelease bool, load func(t *metadata.Texture) error) (*metadata.Texture, error) {
	ref := ts.RegisteredTextureTable.Get(name)

	// This can only be changed the first time a texture is loaded.
	if ref.ReferenceCount == 0 {
		ref.AutoRelease = autoRelease
	}
	ref.ReferenceCount++

	if ref.Handle == containers.InvalidHandle {
		idx, ok := containers.FirstFree(ts.RegisteredTextures, func(t *metadata.Texture) bool {
			return t.ID == metadata.InvalidID
		})
		if !ok {
			err := errors.Wrapf(core.ErrCapacityExceeded, "texture system cannot hold more than %d textures, '%s' not loaded", ts.Config.MaxTextureCount, name)
			core.LogError(err.Error())
			return nil, err
		}

		t := ts.RegisteredTextures[idx]
		if err := load(t); err != nil {
			t.Invalidate()
			ts.RegisteredTextureTable.Set(name, containers.NotLoaded())
			err = errors.Wrapf(core.ErrLoadFailure, "texture '%s': %v", name, err)
			core.LogError(err.Error())
			return nil, err
		}
		t.ID = idx
		ref.Handle = idx
		core.LogDebug("Texture '%s' did not yet exist. Created, and ref_count is now %d.", name, ref.ReferenceCount)
	} else {
		core.LogDebug("Texture '%s' already exists, ref_count increased to %d.", name, ref.ReferenceCount)
	}

	ts.RegisteredTextureTable.Set(name, ref)
	return ts.RegisteredTextures[ref.Handle], nil
}

// AcquireByHandle bumps the reference count of a live texture.
func (ts *TextureSystem) AcquireByHandle(handle uint32) (*metadata.Texture, error) {
	if handle >= uint32(len(ts.RegisteredTextures)) || ts.RegisteredTextures[handle].ID == metadata.InvalidID {
		return nil, errors.Wrapf(core.ErrNotFound, "no texture with handle %d", handle)
	}
	t := ts.RegisteredTextures[handle]
	ref := ts.RegisteredTextureTable.Get(t.Name)
	if ref.Handle != handle {
		return nil, errors.Wrapf(core.ErrConsistency, "texture '%s' is in slot %d but referenced as %d", t.Name, handle, ref.Handle)
	}
	ref.ReferenceCount++
	ts.RegisteredTextureTable.Set(t.Name, ref)
	return t, nil
}

/**
 * @brief Releases a texture with the given name. Ignores non-existant textures.
 * Decreases the reference counter by 1. If the reference counter reaches 0 and
 * auto release was set, the texture is unloaded.
 */
func (ts *TextureSystem) Release(name string) error {
	// Ignore release requests for the default textures.
	if ts.defaultByName(name) != nil {
		return nil
	}
	ref := ts.RegisteredTextureTable.Get(name)
	if ref.ReferenceCount == 0 {
		core.LogWarn("Tried to release non-existent texture: '%s'", name)
		return errors.Wrapf(core.ErrNotFound, "texture '%s' is not referenced", name)
	}

	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		t := ts.RegisteredTextures[ref.Handle]
		ts.backend.TextureDestroy(t)
		t.Invalidate()
		ts.RegisteredTextureTable.Set(name, containers.NotLoaded())
		core.LogDebug("Released texture '%s'. Texture unloaded because reference count=0 and auto_release=true.", name)
		return nil
	}

	ts.RegisteredTextureTable.Set(name, ref)
	core.LogDebug("Released texture '%s', now has a reference count of '%d' (auto_release=%t).", name, ref.ReferenceCount, ref.AutoRelease)
	return nil
}

// Reload re-reads the image behind a loaded texture and swaps it in. The handle
// stays the same, the generation is bumped.
func (ts *TextureSystem) Reload(name string) (*metadata.Texture, error) {
	ref := ts.RegisteredTextureTable.Get(name)
	if !ref.IsLoaded() {
		return nil, errors.Wrapf(core.ErrNotFound, "texture '%s' is not loaded", name)
	}
	t := ts.RegisteredTextures[ref.Handle]
	if t.IsWriteable() {
		return nil, errors.Wrapf(core.ErrInvalidState, "texture '%s' is writeable and has no source image", name)
	}

	temp := &metadata.Texture{}
	var err error
	if t.TextureType == metadata.TextureTypeCube {
		err = ts.loadCubeTextures(name, temp)
	} else {
		err = ts.loadTexture(name, temp)
	}
	if err != nil {
		// The old contents stay in use.
		err = errors.Wrapf(core.ErrLoadFailure, "reloading texture '%s': %v", name, err)
		core.LogError(err.Error())
		return t, err
	}

	generation := t.Generation
	ts.backend.TextureDestroy(t)
	*t = *temp
	t.ID = ref.Handle
	if generation == metadata.InvalidID {
		t.Generation = 0
	} else {
		t.Generation = generation + 1
	}
	core.LogInfo("Texture '%s' reloaded, generation %d.", name, t.Generation)
	return t, nil
}

func (ts *TextureSystem) WriteData(texture *metadata.Texture, offset uint32, pixels []uint8) error {
	if texture == nil {
		return errors.Wrap(core.ErrNotFound, "nil texture")
	}
	if !texture.IsWriteable() {
		return errors.Wrapf(core.ErrInvalidState, "texture '%s' is not writeable", texture.Name)
	}
	return ts.backend.TextureWriteData(texture, offset, pixels)
}

func (ts *TextureSystem) GetDefaultTexture() *metadata.Texture {
	return ts.defaultTexture
}

func (ts *TextureSystem) GetDefaultDiffuseTexture() *metadata.Texture {
	return ts.defaultDiffuseTexture
}

func (ts *TextureSystem) GetDefaultSpecularTexture() *metadata.Texture {
	return ts.defaultSpecularTexture
}

func (ts *TextureSystem) GetDefaultNormalTexture() *metadata.Texture {
	return ts.defaultNormalTexture
}

// ReferenceOf exposes the bookkeeping entry of a name.
func (ts *TextureSystem) ReferenceOf(name string) containers.Reference {
	return ts.RegisteredTextureTable.Get(name)
}

func (ts *TextureSystem) loadImage(name string, flipY bool) (*metadata.ImageResourceData, error) {
	if ts.resourceSystem == nil {
		return nil, errors.Wrap(core.ErrConsistency, "texture system has no resource system")
	}
	res, err := ts.resourceSystem.Load(name, metadata.ResourceTypeImage, &loaders.ImageResourceParams{FlipY: flipY})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ts.resourceSystem.Unload(res); err != nil {
			core.LogWarn("unloading image resource '%s': %v", name, err)
		}
	}()
	data, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		return nil, errors.Wrapf(core.ErrConsistency, "image resource '%s' carries %T", name, res.Data)
	}
	return data, nil
}

func (ts *TextureSystem) loadTexture(name string, t *metadata.Texture) error {
	data, err := ts.loadImage(name, true)
	if err != nil {
		return err
	}

	t.TextureType = metadata.TextureType2d
	t.Name = name
	t.Width = data.Width
	t.Height = data.Height
	t.ChannelCount = data.ChannelCount
	t.Flags = 0
	if data.HasTransparency() {
		t.Flags |= metadata.TextureFlagHasTransparency
	}
	if err := ts.backend.TextureCreate(data.Pixels, t); err != nil {
		return err
	}
	t.Generation = 0
	return nil
}

func (ts *TextureSystem) loadCubeTextures(name string, t *metadata.Texture) error {
	var pixels []uint8
	for i, suffix := range cubeFaceSuffixes {
		// Cube faces are not flipped.
		data, err := ts.loadImage(name+suffix, false)
		if err != nil {
			return err
		}
		if i == 0 {
			t.Width = data.Width
			t.Height = data.Height
			t.ChannelCount = data.ChannelCount
			pixels = make([]uint8, 0, len(data.Pixels)*len(cubeFaceSuffixes))
		} else if t.Width != data.Width || t.Height != data.Height || t.ChannelCount != data.ChannelCount {
			return errors.Wrapf(core.ErrLoadFailure, "cube texture '%s': all faces must be the same resolution and bit depth", name)
		}
		pixels = append(pixels, data.Pixels...)
	}

	t.TextureType = metadata.TextureTypeCube
	t.Name = name
	// NOTE: no need for transparency in cube maps, so not checking for it.
	t.Flags = 0
	if err := ts.backend.TextureCreate(pixels, t); err != nil {
		return err
	}
	t.Generation = 0
	return nil
}

// BuildStatsString dumps the registry occupancy as JSON.
func (ts *TextureSystem) BuildStatsString() string {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("Capacity").Int(int(ts.Config.MaxTextureCount))
	obj.Name("Referenced").Int(ts.RegisteredTextureTable.Len())

	entries := obj.Name("Textures").Array()
	ts.RegisteredTextureTable.Each(func(name string, ref containers.Reference) bool {
		o := entries.Object()
		o.Name("Name").String(name)
		o.Name("Handle").Int(int(ref.Handle))
		o.Name("References").Int(int(ref.ReferenceCount))
		o.Name("AutoRelease").Bool(ref.AutoRelease)
		if ref.IsLoaded() {
			t := ts.RegisteredTextures[ref.Handle]
			o.Name("Width").Int(int(t.Width))
			o.Name("Height").Int(int(t.Height))
			o.Name("Generation").Int(int(t.Generation))
		}
		o.End()
		return true
	})
	entries.End()
	obj.End()
	return string(w.Bytes())
}
