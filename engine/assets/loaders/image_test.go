package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageLoaderFlipsRows(t *testing.T) {
	base := t.TempDir()
	writePNG(t, filepath.Join(base, assets.TexturesPath), "quad.png")
	loader := NewImageLoader(base)

	res, err := loader.Load("quad", nil)
	require.NoError(t, err)
	data := res.Data.(*metadata.ImageResourceData)
	require.Equal(t, uint32(2), data.Width)
	require.Equal(t, uint32(2), data.Height)
	require.Equal(t, uint8(4), data.ChannelCount)
	// Flipped by default: the blue pixel of the bottom row comes first.
	require.Equal(t, []uint8{0, 0, 255, 255}, data.Pixels[0:4])
	require.False(t, data.HasTransparency())

	res, err = loader.Load("quad", &ImageResourceParams{FlipY: false})
	require.NoError(t, err)
	data = res.Data.(*metadata.ImageResourceData)
	require.Equal(t, []uint8{255, 0, 0, 255}, data.Pixels[0:4])
	require.NoError(t, loader.Unload(res))
}
