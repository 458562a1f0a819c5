package systems

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/containers"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

// Codepoint used for glyphs missing from the font.
const unknownCodepoint int32 = -1

type bitmapFontLookup struct {
	ID             uint16
	ReferenceCount uint16
	Name           string
	Font           *metadata.FontData
	// Name of the atlas texture, released with the font.
	AtlasTextureName string
}

type FontSystemConfig struct {
	MaxBitmapFontCount uint8
	// Bitmap fonts loaded on startup.
	DefaultBitmapFonts []string
}

type FontSystem struct {
	Config           *FontSystemConfig
	BitmapFontLookup map[string]uint16
	BitmapFonts      []*bitmapFontLookup

	ids        *core.IDAllocator
	transforms *math.TransformArena
	// subsystems
	resourceSystem *ResourceSystem
	textureSystem  *TextureSystem
	shaderSystem   *ShaderSystem
	geometrySystem *GeometrySystem
	backend        renderer.Backend
}

func NewFontSystem(config *FontSystemConfig, rs *ResourceSystem, ts *TextureSystem, ss *ShaderSystem, gs *GeometrySystem, transforms *math.TransformArena, backend renderer.Backend) (*FontSystem, error) {
	if config.MaxBitmapFontCount == 0 {
		err := errors.Wrap(core.ErrConfig, "func NewFontSystem - config.MaxBitmapFontCount must be > 0")
		core.LogFatal(err.Error())
		return nil, err
	}
	if transforms == nil || backend == nil {
		return nil, errors.Wrap(core.ErrConfig, "func NewFontSystem - transform arena and backend are required")
	}
	fs := &FontSystem{
		Config:           config,
		BitmapFontLookup: make(map[string]uint16),
		BitmapFonts:      make([]*bitmapFontLookup, config.MaxBitmapFontCount),
		ids:              core.NewIDAllocator(16),
		transforms:       transforms,
		resourceSystem:   rs,
		textureSystem:    ts,
		shaderSystem:     ss,
		geometrySystem:   gs,
		backend:          backend,
	}
	// Invalidate all entries.
	for i := range fs.BitmapFonts {
		fs.BitmapFonts[i] = &bitmapFontLookup{ID: metadata.InvalidIDUint16}
	}
	// Load up any default fonts.
	for _, name := range config.DefaultBitmapFonts {
		if err := fs.LoadBitmapFont(name); err != nil {
			core.LogError("failed to load bitmap font: %s", name)
			return nil, err
		}
	}
	return fs, nil
}

func (fs *FontSystem) Shutdown() error {
	for _, lookup := range fs.BitmapFonts {
		if lookup.ID != metadata.InvalidIDUint16 {
			fs.cleanupFontData(lookup)
		}
	}
	clear(fs.BitmapFontLookup)
	return nil
}

/**
 * @brief Loads a bitmap font through the resource system and registers it under its
 * resource name. The first page of the font becomes the atlas texture.
 */
func (fs *FontSystem) LoadBitmapFont(name string) error {
	key := containers.NormalizeName(name)
	if _, ok := fs.BitmapFontLookup[key]; ok {
		core.LogWarn("A font named '%s' already exists and will not be loaded again.", name)
		return nil
	}

	free, found := containers.FirstFree(fs.BitmapFonts, func(l *bitmapFontLookup) bool {
		return l.ID == metadata.InvalidIDUint16
	})
	if !found {
		return errors.Wrap(core.ErrCapacityExceeded, "no space left to allocate a new bitmap font. Increase MaxBitmapFontCount")
	}

	res, err := fs.resourceSystem.Load(name, metadata.ResourceTypeBitmapFont, nil)
	if err != nil {
		core.LogError("failed to load bitmap font '%s': %v", name, err)
		return err
	}
	data, ok := res.Data.(*metadata.BitmapFontResourceData)
	if !ok || data.Data == nil || len(data.Pages) == 0 {
		_ = fs.resourceSystem.Unload(res)
		return errors.Wrapf(core.ErrLoadFailure, "bitmap font '%s' carries no pages", name)
	}
	font := data.Data
	atlasName := data.Pages[0].File
	// The resource only holds the parsed descriptor, the font data is kept.
	data.Data = nil
	if err := fs.resourceSystem.Unload(res); err != nil {
		core.LogWarn("unloading font resource '%s': %v", name, err)
	}

	if err := fs.setupFontData(font, atlasName); err != nil {
		return err
	}

	lookup := fs.BitmapFonts[free]
	lookup.ID = uint16(free)
	lookup.Name = name
	lookup.Font = font
	lookup.AtlasTextureName = atlasName
	lookup.ReferenceCount = 0
	fs.BitmapFontLookup[key] = uint16(free)
	return nil
}

func (fs *FontSystem) setupFontData(font *metadata.FontData, atlasName string) error {
	atlas := metadata.NewTextureMap(metadata.TextureUseMapDiffuse)
	atlas.FilterMinify = metadata.TextureFilterModeLinear
	atlas.FilterMagnify = metadata.TextureFilterModeLinear
	atlas.RepeatU = metadata.TextureRepeatClampToEdge
	atlas.RepeatV = metadata.TextureRepeatClampToEdge
	atlas.RepeatW = metadata.TextureRepeatClampToEdge

	t, err := fs.textureSystem.Acquire(atlasName, true)
	if err != nil {
		core.LogError("unable to acquire atlas texture '%s' for font '%s'", atlasName, font.Face)
		return err
	}
	atlas.Texture = t
	if err := fs.backend.TextureMapAcquireResources(atlas); err != nil {
		_ = fs.textureSystem.Release(atlasName)
		return err
	}
	font.Atlas = atlas

	// The unknown glyph falls back to the space glyph when the font has none.
	if _, ok := font.Glyphs[unknownCodepoint]; !ok {
		if space, ok := font.Glyphs[' ']; ok {
			font.Glyphs[unknownCodepoint] = space
		}
	}
	return nil
}

func (fs *FontSystem) cleanupFontData(lookup *bitmapFontLookup) {
	if lookup.Font != nil && lookup.Font.Atlas != nil {
		fs.backend.TextureMapReleaseResources(lookup.Font.Atlas)
		if err := fs.textureSystem.Release(lookup.AtlasTextureName); err != nil {
			core.LogWarn("releasing font atlas '%s': %v", lookup.AtlasTextureName, err)
		}
		lookup.Font.Atlas = nil
	}
	*lookup = bitmapFontLookup{ID: metadata.InvalidIDUint16}
}

/**
 * @brief Acquires font data by name and increments its reference count.
 */
func (fs *FontSystem) Acquire(fontName string) (*metadata.FontData, error) {
	id, ok := fs.BitmapFontLookup[containers.NormalizeName(fontName)]
	if !ok {
		return nil, errors.Wrapf(core.ErrNotFound, "a bitmap font named '%s' was not found", fontName)
	}
	lookup := fs.BitmapFonts[id]
	lookup.ReferenceCount++
	return lookup.Font, nil
}

/**
 * @brief Releases a reference to a font. The font stays resident until shutdown.
 */
func (fs *FontSystem) Release(fontName string) error {
	id, ok := fs.BitmapFontLookup[containers.NormalizeName(fontName)]
	if !ok {
		return errors.Wrapf(core.ErrNotFound, "a bitmap font named '%s' was not found", fontName)
	}
	lookup := fs.BitmapFonts[id]
	if lookup.ReferenceCount == 0 {
		core.LogWarn("Tried to release non-existent font reference: '%s'", fontName)
		return errors.Wrapf(core.ErrNotFound, "font '%s' has no references", fontName)
	}
	lookup.ReferenceCount--
	return nil
}

/**
 * @brief Creates a ui text drawn by the ui view. The glyph quads are uploaded as a
 * 2D geometry and the atlas is bound through a ui shader instance.
 */
func (fs *FontSystem) CreateText(fontName string, content string, position mgl32.Vec3, colour mgl32.Vec4) (*metadata.UIText, error) {
	font, err := fs.Acquire(fontName)
	if err != nil {
		core.LogError("CreateText - unable to acquire font '%s'", fontName)
		return nil, err
	}

	shaderID := fs.shaderSystem.GetID(metadata.BUILTIN_SHADER_NAME_UI)
	instanceID, err := fs.shaderSystem.AcquireInstanceResources(shaderID, []*metadata.TextureMap{font.Atlas})
	if err != nil {
		_ = fs.Release(fontName)
		core.LogError("unable to acquire shader resources for font texture map")
		return nil, err
	}

	text := &metadata.UIText{
		InstanceID:        instanceID,
		Data:              font,
		Colour:            colour,
		Transform:         fs.transforms.CreateFromPosition(position),
		RenderFrameNumber: metadata.InvalidIDUint64,
	}
	text.UniqueID = fs.ids.Acquire(text)

	if err := fs.SetText(text, content); err != nil {
		fs.DestroyText(text)
		return nil, err
	}
	return text, nil
}

// SetText replaces the content of a ui text and rebuilds its geometry.
func (fs *FontSystem) SetText(text *metadata.UIText, content string) error {
	if text.Data == nil {
		return errors.Wrap(core.ErrInvalidState, "ui text has no font")
	}
	if !utf8.ValidString(content) {
		core.LogWarn("invalid UTF-8 found in string, unknown glyphs will be used")
	}
	text.Text = content
	return fs.regenerateGeometry(text)
}

func (fs *FontSystem) SetPosition(text *metadata.UIText, position mgl32.Vec3) {
	fs.transforms.SetPosition(text.Transform, position)
}

// DestroyText releases the geometry, shader instance and transform of a ui text.
func (fs *FontSystem) DestroyText(text *metadata.UIText) {
	if text == nil {
		return
	}
	if text.Geometry != nil {
		if err := fs.geometrySystem.Release(text.Geometry); err != nil {
			core.LogWarn("releasing ui text geometry: %v", err)
		}
		text.Geometry = nil
	}
	shaderID := fs.shaderSystem.GetID(metadata.BUILTIN_SHADER_NAME_UI)
	if err := fs.shaderSystem.ReleaseInstanceResources(shaderID, text.InstanceID); err != nil {
		core.LogWarn("releasing ui text instance: %v", err)
	}
	text.InstanceID = metadata.InvalidID
	fs.transforms.Destroy(text.Transform)
	text.Transform = math.NoTransform
	if text.Data != nil {
		for _, lookup := range fs.BitmapFonts {
			if lookup.Font == text.Data {
				_ = fs.Release(lookup.Name)
				break
			}
		}
		text.Data = nil
	}
	_ = fs.ids.Release(text.UniqueID)
}

func (fs *FontSystem) regenerateGeometry(text *metadata.UIText) error {
	cfg := BuildTextGeometryConfig(text.Data, text.Text)

	if text.Geometry != nil {
		if err := fs.geometrySystem.Release(text.Geometry); err != nil {
			core.LogWarn("releasing old ui text geometry: %v", err)
		}
		text.Geometry = nil
	}
	// Nothing visible, nothing to upload.
	if cfg.VertexCount() == 0 {
		return nil
	}
	g, err := fs.geometrySystem.AcquireFromConfig(cfg, true)
	if err != nil {
		core.LogError("regenerate_geometry for ui text failed to upload the glyph quads")
		return err
	}
	text.Geometry = g
	return nil
}

func findKerning(font *metadata.FontData, codepoint, next int32) int32 {
	for _, k := range font.Kernings {
		if k.Codepoint0 == codepoint && k.Codepoint1 == next {
			return int32(k.Amount)
		}
	}
	return 0
}

/**
 * @brief Lays out the glyph quads of a string. Newlines reset x and advance by the
 * line height, tabs advance by four spaces. Glyphs the font lacks use the unknown glyph.
 */
func BuildTextGeometryConfig(font *metadata.FontData, content string) *metadata.GeometryConfig {
	runes := []rune(content)
	vertices := make([]math.Vertex2D, 0, len(runes)*4)
	indices := make([]uint32, 0, len(runes)*6)

	tabAdvance := float32(0)
	if space, ok := font.Glyphs[' ']; ok {
		tabAdvance = float32(space.XAdvance) * 4
	}

	x := float32(0)
	y := float32(0)
	atlasX := float32(font.AtlasSizeX)
	atlasY := float32(font.AtlasSizeY)
	for i, r := range runes {
		codepoint := int32(r)
		// Continue to next line for newline.
		if codepoint == '\n' {
			x = 0
			y += float32(font.LineHeight)
			continue
		}
		if codepoint == '\t' {
			x += tabAdvance
			continue
		}
		if r == utf8.RuneError {
			codepoint = unknownCodepoint
		}

		g, ok := font.Glyphs[codepoint]
		if !ok {
			// If not found, use the codepoint -1
			codepoint = unknownCodepoint
			g, ok = font.Glyphs[codepoint]
		}
		if !ok {
			core.LogError("unable to find unknown codepoint. Skipping")
			continue
		}

		minx := x + float32(g.XOffset)
		miny := y + float32(g.YOffset)
		maxx := minx + float32(g.Width)
		maxy := miny + float32(g.Height)
		tminx := float32(g.X) / atlasX
		tmaxx := float32(g.X+g.Width) / atlasX
		tminy := float32(g.Y) / atlasY
		tmaxy := float32(g.Y+g.Height) / atlasY

		base := uint32(len(vertices))
		vertices = append(vertices,
			math.Vertex2D{Position: mgl32.Vec2{minx, miny}, Texcoord: mgl32.Vec2{tminx, tminy}}, // 0    3
			math.Vertex2D{Position: mgl32.Vec2{maxx, maxy}, Texcoord: mgl32.Vec2{tmaxx, tmaxy}}, //
			math.Vertex2D{Position: mgl32.Vec2{minx, maxy}, Texcoord: mgl32.Vec2{tminx, tmaxy}}, //
			math.Vertex2D{Position: mgl32.Vec2{maxx, miny}, Texcoord: mgl32.Vec2{tmaxx, tminy}}, // 2    1
		)
		// Index data 210301
		indices = append(indices, base+2, base+1, base+0, base+3, base+0, base+1)

		kerning := int32(0)
		if i+1 < len(runes) {
			kerning = findKerning(font, codepoint, int32(runes[i+1]))
		}
		x += float32(int32(g.XAdvance) + kerning)
	}

	return &metadata.GeometryConfig{
		VertexSize: math.Vertex2DSize,
		Vertices2D: vertices,
		IndexSize:  math.IndexSize,
		Indices:    indices,
		Name:       "ui_text_" + font.Face,
	}
}
