package metadata

import "github.com/go-gl/mathgl/mgl32"

const (
	/** @brief The name of the default material. */
	DEFAULT_MATERIAL_NAME string = "default"
	/** @brief The shader every imported material binds unless told otherwise. */
	BUILTIN_SHADER_NAME_MATERIAL string = "Shader.Builtin.World"
	BUILTIN_SHADER_NAME_UI       string = "Shader.Builtin.UI"
	BUILTIN_SHADER_NAME_SKYBOX   string = "Shader.Builtin.Skybox"
)

/**
 * @brief Material configuration typically loaded from
 * a file or created in code to load a material from.
 */
type MaterialConfig struct {
	Name       string
	ShaderName string
	/** @brief Indicates if the material should be automatically released when no references to it remain. */
	AutoRelease      bool
	DiffuseColour    mgl32.Vec4
	Shininess        float32
	Metallic         float32
	Roughness        float32
	AmbientOcclusion float32
	DiffuseMapName   string
	SpecularMapName  string
	NormalMapName    string
	/** @brief Combined roughness (G) and metallic (B) map. */
	RoughnessMetallicMapName string
}

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as texture, colour,
 * bumpiness, shininess and more.
 */
type Material struct {
	/** @brief The material id, equal to its registry handle. */
	ID uint32
	/** @brief The material generation. Incremented every time the material is changed. */
	Generation uint32
	/** @brief The backend instance resource id. */
	InternalID       uint32
	Name             string
	DiffuseColour    mgl32.Vec4
	Shininess        float32
	Metallic         float32
	Roughness        float32
	AmbientOcclusion float32

	DiffuseMap           *TextureMap
	SpecularMap          *TextureMap
	NormalMap            *TextureMap
	RoughnessMetallicMap *TextureMap

	ShaderID uint32
	/** @brief The frame number its instance uniforms were last applied on. */
	RenderFrameNumber uint64
}

// Maps returns the texture maps in the order the backend binds them.
func (m *Material) Maps() []*TextureMap {
	return []*TextureMap{m.DiffuseMap, m.SpecularMap, m.NormalMap, m.RoughnessMetallicMap}
}

func (m *Material) Invalidate() {
	*m = Material{
		ID:                InvalidID,
		Generation:        InvalidID,
		InternalID:        InvalidID,
		ShaderID:          InvalidID,
		RenderFrameNumber: InvalidIDUint64,
	}
}
