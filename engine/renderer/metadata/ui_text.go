package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/math"
)

type FontGlyph struct {
	Codepoint int32
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 int32
	Codepoint1 int32
	Amount     int16
}

type FontData struct {
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Atlas      *TextureMap
	Glyphs     map[int32]*FontGlyph
	Kernings   []*FontKerning
}

type BitmapFontPage struct {
	ID   int8
	File string
}

type BitmapFontResourceData struct {
	Data  *FontData
	Pages []*BitmapFontPage
}

/** @brief A string of text drawn by the ui view with a bitmap font. */
type UIText struct {
	UniqueID   uint32
	InstanceID uint32
	Data       *FontData
	Text       string
	Colour     mgl32.Vec4
	Transform  math.TransformHandle
	// Geometry holds the glyph quads.
	Geometry          *Geometry
	RenderFrameNumber uint64
}
