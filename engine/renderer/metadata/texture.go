package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default diffuse texture name. */
	DEFAULT_DIFFUSE_TEXTURE_NAME string = "default_DIFF"
	/** @brief The default specular texture name. */
	DEFAULT_SPECULAR_TEXTURE_NAME string = "default_SPEC"
	/** @brief The default normal texture name. */
	DEFAULT_NORMAL_TEXTURE_NAME string = "default_NORM"
)

/** @brief Holds bit flags for textures. */
type TextureFlagBits uint8

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlagBits = 0x1
	/** @brief Indicates if the texture can be written (rendered) to. */
	TextureFlagIsWriteable TextureFlagBits = 0x2
)

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/**
 * @brief Represents a texture slot.
 */
type Texture struct {
	/** @brief The texture identifier, equal to its registry handle. */
	ID uint32
	/** @brief The texture type. */
	TextureType TextureType
	Width       uint32
	Height      uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	Flags        TextureFlagBits
	/** @brief Incremented every time the data is reloaded. */
	Generation uint32
	Name       string
	/** @brief Backend specific data. */
	InternalData interface{}
}

func (t *Texture) HasTransparency() bool {
	return t.Flags&TextureFlagHasTransparency != 0
}

func (t *Texture) IsWriteable() bool {
	return t.Flags&TextureFlagIsWriteable != 0
}

// Invalidate puts the slot back in its free state.
func (t *Texture) Invalidate() {
	*t = Texture{
		ID:         InvalidID,
		Generation: InvalidID,
	}
}

/** @brief A collection of texture uses */
type TextureUse int

const (
	TextureUseUnknown           TextureUse = 0x00
	TextureUseMapDiffuse        TextureUse = 0x01
	TextureUseMapSpecular       TextureUse = 0x02
	TextureUseMapNormal         TextureUse = 0x03
	TextureUseMapCubemap        TextureUse = 0x04
	TextureUseRoughnessMetallic TextureUse = 0x05
)

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
	TextureRepeatClampToBorder  TextureRepeat = 0x4
)

/**
 * @brief A structure which maps a texture, use and
 * other properties.
 */
type TextureMap struct {
	Texture       *Texture
	Use           TextureUse
	FilterMinify  TextureFilter
	FilterMagnify TextureFilter
	RepeatU       TextureRepeat
	RepeatV       TextureRepeat
	RepeatW       TextureRepeat
	/** @brief Backend specific sampler data. */
	InternalData interface{}
}

// NewTextureMap returns a linear, repeating map for the given use.
func NewTextureMap(use TextureUse) *TextureMap {
	return &TextureMap{
		Use:           use,
		FilterMinify:  TextureFilterModeLinear,
		FilterMagnify: TextureFilterModeLinear,
		RepeatU:       TextureRepeatRepeat,
		RepeatV:       TextureRepeatRepeat,
		RepeatW:       TextureRepeatRepeat,
	}
}

// ImageResourceData is what the image loader hands to the texture system.
type ImageResourceData struct {
	ChannelCount uint8
	Width        uint32
	Height       uint32
	Pixels       []uint8
}

// HasTransparency scans the alpha channel of RGBA pixels.
func (d *ImageResourceData) HasTransparency() bool {
	if d.ChannelCount != 4 {
		return false
	}
	for i := 3; i < len(d.Pixels); i += 4 {
		if d.Pixels[i] < 255 {
			return true
		}
	}
	return false
}
