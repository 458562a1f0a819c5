package systems

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

func testFont() *metadata.FontData {
	return &metadata.FontData{
		Face:       "test",
		Size:       12,
		LineHeight: 14,
		AtlasSizeX: 100,
		AtlasSizeY: 50,
		Glyphs: map[int32]*metadata.FontGlyph{
			'A': {Codepoint: 'A', X: 0, Y: 0, Width: 10, Height: 12, XAdvance: 11},
			'B': {Codepoint: 'B', X: 10, Y: 0, Width: 10, Height: 12, XOffset: 1, YOffset: 2, XAdvance: 11},
			' ': {Codepoint: ' ', X: 20, Y: 0, Width: 0, Height: 0, XAdvance: 5},
		},
		Kernings: []*metadata.FontKerning{{Codepoint0: 'A', Codepoint1: 'B', Amount: -2}},
	}
}

// registerTestFont installs testFont under the name "test" with an atlas on disk,
// the way LoadBitmapFont would after parsing a descriptor.
func registerTestFont(t *testing.T, sm *SystemManager, base string) *metadata.FontData {
	t.Helper()
	writeTexture(t, base, "test_atlas", red)
	font := testFont()
	require.NoError(t, sm.FontSystem.setupFontData(font, "test_atlas"))

	lookup := sm.FontSystem.BitmapFonts[0]
	lookup.ID = 0
	lookup.Name = "test"
	lookup.Font = font
	lookup.AtlasTextureName = "test_atlas"
	sm.FontSystem.BitmapFontLookup["test"] = 0
	return font
}

func TestBuildTextGeometryConfigLayout(t *testing.T) {
	cfg := BuildTextGeometryConfig(testFont(), "AB")
	require.Equal(t, math.Vertex2DSize, cfg.VertexSize)
	require.Equal(t, uint32(8), cfg.VertexCount())
	require.Equal(t, []uint32{2, 1, 0, 3, 0, 1, 6, 5, 4, 7, 4, 5}, cfg.Indices)

	a := cfg.Vertices2D[0:4]
	require.Equal(t, mgl32.Vec2{0, 0}, a[0].Position)
	require.Equal(t, mgl32.Vec2{10, 12}, a[1].Position)
	require.InDelta(t, 0.1, a[1].Texcoord.X(), 1e-6)
	require.InDelta(t, 0.24, a[1].Texcoord.Y(), 1e-6)

	// B starts at the advance of A plus the kerning of the pair, then its offsets.
	b := cfg.Vertices2D[4:8]
	require.Equal(t, mgl32.Vec2{11 - 2 + 1, 2}, b[0].Position)
}

func TestBuildTextGeometryConfigWhitespace(t *testing.T) {
	font := testFont()

	cfg := BuildTextGeometryConfig(font, "A\nA")
	require.Equal(t, uint32(8), cfg.VertexCount())
	require.Equal(t, mgl32.Vec2{0, 14}, cfg.Vertices2D[4].Position)

	cfg = BuildTextGeometryConfig(font, "A\tA")
	require.Equal(t, mgl32.Vec2{11 + 4*5, 0}, cfg.Vertices2D[4].Position)

	require.Zero(t, BuildTextGeometryConfig(font, "\n\t").VertexCount())
}

func TestBuildTextGeometryConfigUnknownGlyphs(t *testing.T) {
	font := testFont()
	// Without an unknown glyph missing codepoints are skipped.
	require.Zero(t, BuildTextGeometryConfig(font, "Z").VertexCount())

	font.Glyphs[unknownCodepoint] = font.Glyphs['A']
	require.Equal(t, uint32(4), BuildTextGeometryConfig(font, "Z").VertexCount())
}

func TestFontSystemTextLifecycle(t *testing.T) {
	sm, backend, base := newTestManager(t)
	font := registerTestFont(t, sm, base)
	require.Equal(t, "test_atlas", font.Atlas.Texture.Name)
	// The space glyph stands in for unknown codepoints.
	require.Same(t, font.Glyphs[' '], font.Glyphs[unknownCodepoint])

	released := backend.Stats.InstanceResourcesReleased
	text, err := sm.FontSystem.CreateText("TEST", "AB", mgl32.Vec3{20, 20, 0}, mgl32.Vec4{1, 1, 1, 1})
	require.NoError(t, err)
	require.NotNil(t, text.Geometry)
	require.Equal(t, uint32(8), text.Geometry.VertexCount)
	require.Equal(t, uint16(1), sm.FontSystem.BitmapFonts[0].ReferenceCount)
	require.Equal(t, mgl32.Vec3{20, 20, 0}, sm.MeshSystem.Transforms.World(text.Transform).Col(3).Vec3())

	live := backend.LiveGeometryCount()
	require.NoError(t, sm.FontSystem.SetText(text, "A"))
	require.Equal(t, uint32(4), text.Geometry.VertexCount)
	// The old glyph quads were released.
	require.Equal(t, live, backend.LiveGeometryCount())

	require.NoError(t, sm.FontSystem.SetText(text, ""))
	require.Nil(t, text.Geometry)
	require.Equal(t, live-1, backend.LiveGeometryCount())

	sm.FontSystem.SetPosition(text, mgl32.Vec3{1, 2, 0})
	require.Equal(t, mgl32.Vec3{1, 2, 0}, sm.MeshSystem.Transforms.World(text.Transform).Col(3).Vec3())

	sm.FontSystem.DestroyText(text)
	require.Equal(t, released+1, backend.Stats.InstanceResourcesReleased)
	require.Zero(t, sm.FontSystem.BitmapFonts[0].ReferenceCount)
	require.Equal(t, math.NoTransform, text.Transform)
}

func TestFontSystemUnknownFont(t *testing.T) {
	sm, _, _ := newTestManager(t)

	_, err := sm.FontSystem.CreateText("missing", "hi", mgl32.Vec3{}, mgl32.Vec4{1, 1, 1, 1})
	require.True(t, errors.Is(err, core.ErrNotFound))
	require.True(t, errors.Is(sm.FontSystem.Release("missing"), core.ErrNotFound))
	require.Error(t, sm.FontSystem.LoadBitmapFont("missing"))
}
