package metadata

/** @brief Shader scope. */
type ShaderScope int

const (
	/** @brief Global shader scope, generally updated once per frame. */
	ShaderScopeGlobal ShaderScope = iota
	/** @brief Instance shader scope, generally updated "per-instance" of the shader. */
	ShaderScopeInstance
	/** @brief Local shader scope, generally updated per-object */
	ShaderScopeLocal
)

/** @brief Available uniform types. */
type ShaderUniformType int

const (
	ShaderUniformTypeFloat32 ShaderUniformType = iota
	ShaderUniformTypeFloat32_3
	ShaderUniformTypeFloat32_4
	ShaderUniformTypeUint32
	ShaderUniformTypeMatrix4
	ShaderUniformTypeSampler
)

type ShaderUniformConfig struct {
	Name  string
	Type  ShaderUniformType
	Scope ShaderScope
}

/** @brief Configuration for a shader. */
type ShaderConfig struct {
	Name           string
	RenderpassName string
	Uniforms       []ShaderUniformConfig
}

/** @brief A uniform as resolved on a created shader. */
type ShaderUniform struct {
	Index uint16
	Name  string
	Type  ShaderUniformType
	Scope ShaderScope
}

type ShaderState int

const (
	ShaderStateNotCreated ShaderState = iota
	ShaderStateUninitialized
	ShaderStateInitialized
)

type Shader struct {
	ID       uint32
	Name     string
	Uniforms []ShaderUniform
	// UniformLookup maps uniform names to their index in Uniforms.
	UniformLookup map[string]uint16
	// BoundInstanceID is the instance whose uniforms are currently targeted.
	BoundInstanceID uint32
	// BoundScope is the scope uniform writes currently go to.
	BoundScope ShaderScope
	// RenderFrameNumber is the frame globals were last applied on.
	RenderFrameNumber uint64
	State             ShaderState
	InternalData      interface{}
}
