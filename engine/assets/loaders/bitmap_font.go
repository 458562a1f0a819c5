package loaders

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

type BitmapFontFileType int

const (
	BITMAP_FONT_FILE_TYPE_NOT_FOUND BitmapFontFileType = iota
	BITMAP_FONT_FILE_TYPE_FNT
)

// BitmapFontLoader reads AngelCode .fnt descriptors from <base>/fonts. Page images are
// not decoded here, the font system acquires them as textures by file name.
type BitmapFontLoader struct {
	BasePath string
}

var _ assets.Loader = (*BitmapFontLoader)(nil)

func NewBitmapFontLoader(basePath string) *BitmapFontLoader {
	return &BitmapFontLoader{BasePath: basePath}
}

func (fl *BitmapFontLoader) Type() metadata.ResourceType { return metadata.ResourceTypeBitmapFont }

func (fl *BitmapFontLoader) CustomType() string { return "" }

func (fl *BitmapFontLoader) Load(name string, params interface{}) (*metadata.Resource, error) {
	path, err := assets.ResolvePath(fl.BasePath, assets.FontsPath, name, ".fnt")
	if err != nil {
		return nil, errors.Wrapf(core.ErrNotFound, "unable to find bitmap font of supported type called '%s'", name)
	}
	data, err := importFNTFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(data.Data.Glyphs)),
		Data:     data,
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *metadata.Resource) error {
	if resource == nil {
		return errors.Wrap(core.ErrNotFound, "nil resource")
	}
	if data, ok := resource.Data.(*metadata.BitmapFontResourceData); ok && data.Data != nil {
		data.Data.Glyphs = nil
		data.Data.Kernings = nil
		data.Pages = nil
	}
	return unloadResource(resource)
}

func importFNTFile(path string) (*metadata.BitmapFontResourceData, error) {
	desc, err := bmfont.LoadDescriptor(path)
	if err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "parsing %s: %v", path, err)
	}
	if len(desc.Pages) == 0 {
		return nil, errors.Wrapf(core.ErrLoadFailure, "%s: font has no pages", path)
	}
	if len(desc.Pages) > 1 {
		core.LogWarn("%s: font has %d pages, only page 0 is used as the atlas", path, len(desc.Pages))
	}

	out := &metadata.BitmapFontResourceData{
		Data: &metadata.FontData{
			Face:       desc.Info.Face,
			Size:       uint32(desc.Info.Size),
			LineHeight: int32(desc.Common.LineHeight),
			Baseline:   int32(desc.Common.Base),
			AtlasSizeX: int32(desc.Common.ScaleW),
			AtlasSizeY: int32(desc.Common.ScaleH),
			Glyphs:     make(map[int32]*metadata.FontGlyph, len(desc.Chars)),
			Kernings:   make([]*metadata.FontKerning, 0, len(desc.Kerning)),
		},
		Pages: make([]*metadata.BitmapFontPage, 0, len(desc.Pages)),
	}

	for _, p := range desc.Pages {
		file := filepath.Base(p.File)
		out.Pages = append(out.Pages, &metadata.BitmapFontPage{
			ID:   int8(p.ID),
			File: strings.TrimSuffix(file, filepath.Ext(file)),
		})
	}
	sort.Slice(out.Pages, func(i, j int) bool { return out.Pages[i].ID < out.Pages[j].ID })

	for _, g := range desc.Chars {
		out.Data.Glyphs[int32(g.ID)] = &metadata.FontGlyph{
			Codepoint: int32(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		}
	}

	for pair, k := range desc.Kerning {
		out.Data.Kernings = append(out.Data.Kernings, &metadata.FontKerning{
			Codepoint0: int32(pair.First),
			Codepoint1: int32(pair.Second),
			Amount:     int16(k.Amount),
		})
	}
	// Map order is random, keep the output stable.
	sort.Slice(out.Data.Kernings, func(i, j int) bool {
		a, b := out.Data.Kernings[i], out.Data.Kernings[j]
		if a.Codepoint0 != b.Codepoint0 {
			return a.Codepoint0 < b.Codepoint0
		}
		return a.Codepoint1 < b.Codepoint1
	})
	return out, nil
}
