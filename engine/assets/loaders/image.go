package loaders

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Extensions tried, in order, when an image name has none.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tiff", ".webp"}

type ImageResourceParams struct {
	// FlipY flips rows so the first row is the bottom of the image.
	FlipY bool
}

// ImageLoader decodes textures into tightly packed 8-bit RGBA.
type ImageLoader struct {
	BasePath string
}

var _ assets.Loader = (*ImageLoader)(nil)

func NewImageLoader(basePath string) *ImageLoader {
	return &ImageLoader{BasePath: basePath}
}

func (il *ImageLoader) Type() metadata.ResourceType { return metadata.ResourceTypeImage }

func (il *ImageLoader) CustomType() string { return "" }

func (il *ImageLoader) Load(name string, params interface{}) (*metadata.Resource, error) {
	flip := true
	if p, ok := params.(*ImageResourceParams); ok && p != nil {
		flip = p.FlipY
	}

	path, err := assets.ResolvePath(il.BasePath, assets.TexturesPath, name, imageExtensions...)
	if err != nil {
		return nil, err
	}
	data, err := DecodeImageFile(path, flip)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (il *ImageLoader) Unload(resource *metadata.Resource) error {
	return unloadResource(resource)
}

// DecodeImageFile decodes any registered image format.
func DecodeImageFile(path string, flipY bool) (*metadata.ImageResourceData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "opening image %s: %v", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "decoding image %s: %v", path, err)
	}
	core.LogDebug("decoded %s image '%s' (%dx%d)", format, path, img.Bounds().Dx(), img.Bounds().Dy())
	return ImageToRGBA(img, flipY), nil
}

// ImageToRGBA converts any image to 4 channel pixels.
func ImageToRGBA(img image.Image, flipY bool) *metadata.ImageResourceData {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	pixels := make([]uint8, len(rgba.Pix))
	if flipY {
		rowSize := w * 4
		for y := 0; y < h; y++ {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+rowSize]
			copy(pixels[(h-1-y)*rowSize:], src)
		}
	} else {
		copy(pixels, rgba.Pix)
	}
	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(w),
		Height:       uint32(h),
		Pixels:       pixels,
	}
}
