package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

const (
	BUILTIN_RENDERPASS_SKYBOX string = "Renderpass.Builtin.Skybox"
	BUILTIN_RENDERPASS_WORLD  string = "Renderpass.Builtin.World"
	BUILTIN_RENDERPASS_UI     string = "Renderpass.Builtin.UI"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint32
	/** @brief The maximum number of uniforms allowed in a single shader. */
	MaxUniformCount uint8
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->id
	Lookup map[string]uint32
	// The identifier for the currently bound shader.
	CurrentShaderID uint32
	// A collection of created shaders.
	Shaders []*metadata.Shader

	backend renderer.Backend
}

// BuiltinShaderConfigs describes the shaders the builtin views draw with.
func BuiltinShaderConfigs() []*metadata.ShaderConfig {
	return []*metadata.ShaderConfig{
		{
			Name:           metadata.BUILTIN_SHADER_NAME_MATERIAL,
			RenderpassName: BUILTIN_RENDERPASS_WORLD,
			Uniforms: []metadata.ShaderUniformConfig{
				{Name: "projection", Type: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeGlobal},
				{Name: "view", Type: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeGlobal},
				{Name: "ambient_colour", Type: metadata.ShaderUniformTypeFloat32_4, Scope: metadata.ShaderScopeGlobal},
				{Name: "view_position", Type: metadata.ShaderUniformTypeFloat32_3, Scope: metadata.ShaderScopeGlobal},
				{Name: "mode", Type: metadata.ShaderUniformTypeUint32, Scope: metadata.ShaderScopeGlobal},
				{Name: "diffuse_colour", Type: metadata.ShaderUniformTypeFloat32_4, Scope: metadata.ShaderScopeInstance},
				{Name: "diffuse_texture", Type: metadata.ShaderUniformTypeSampler, Scope: metadata.ShaderScopeInstance},
				{Name: "specular_texture", Type: metadata.ShaderUniformTypeSampler, Scope: metadata.ShaderScopeInstance},
				{Name: "normal_texture", Type: metadata.ShaderUniformTypeSampler, Scope: metadata.ShaderScopeInstance},
				{Name: "roughness_metallic_texture", Type: metadata.ShaderUniformTypeSampler, Scope: metadata.ShaderScopeInstance},
				{Name: "shininess", Type: metadata.ShaderUniformTypeFloat32, Scope: metadata.ShaderScopeInstance},
				{Name: "metallic", Type: metadata.ShaderUniformTypeFloat32, Scope: metadata.ShaderScopeInstance},
				{Name: "roughness", Type: metadata.ShaderUniformTypeFloat32, Scope: metadata.ShaderScopeInstance},
				{Name: "ambient_occlusion", Type: metadata.ShaderUniformTypeFloat32, Scope: metadata.ShaderScopeInstance},
				{Name: "model", Type: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeLocal},
			},
		},
		{
			Name:           metadata.BUILTIN_SHADER_NAME_UI,
			RenderpassName: BUILTIN_RENDERPASS_UI,
			Uniforms: []metadata.ShaderUniformConfig{
				{Name: "projection", Type: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeGlobal},
				{Name: "view", Type: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeGlobal},
				{Name: "diffuse_colour", Type: metadata.ShaderUniformTypeFloat32_4, Scope: metadata.ShaderScopeInstance},
				{Name: "diffuse_texture", Type: metadata.ShaderUniformTypeSampler, Scope: metadata.ShaderScopeInstance},
				{Name: "model", Type: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeLocal},
			},
		},
		{
			Name:           metadata.BUILTIN_SHADER_NAME_SKYBOX,
			RenderpassName: BUILTIN_RENDERPASS_SKYBOX,
			Uniforms: []metadata.ShaderUniformConfig{
				{Name: "projection", Type: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeGlobal},
				{Name: "view", Type: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeGlobal},
				{Name: "cube_texture", Type: metadata.ShaderUniformTypeSampler, Scope: metadata.ShaderScopeInstance},
			},
		},
	}
}

// NewShaderSystem creates the system and the builtin shaders.
func NewShaderSystem(config *ShaderSystemConfig, backend renderer.Backend) (*ShaderSystem, error) {
	if config.MaxShaderCount == 0 {
		err := errors.Wrap(core.ErrConfig, "NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogFatal(err.Error())
		return nil, err
	}
	if backend == nil {
		err := errors.Wrap(core.ErrConfig, "NewShaderSystem - backend is required")
		core.LogFatal(err.Error())
		return nil, err
	}
	if config.MaxUniformCount == 0 {
		config.MaxUniformCount = 128
	}

	shaderSystem := &ShaderSystem{
		Config:          config,
		Shaders:         make([]*metadata.Shader, config.MaxShaderCount),
		CurrentShaderID: metadata.InvalidID,
		Lookup:          make(map[string]uint32),
		backend:         backend,
	}

	// Invalidate all shader ids.
	for i := range shaderSystem.Shaders {
		shaderSystem.Shaders[i] = &metadata.Shader{
			ID:                metadata.InvalidID,
			RenderFrameNumber: metadata.InvalidIDUint64,
		}
	}

	for _, cfg := range BuiltinShaderConfigs() {
		if _, err := shaderSystem.CreateShader(cfg); err != nil {
			return nil, err
		}
	}
	return shaderSystem, nil
}

/**
 * @brief Shuts down the shader system.
 */
func (shaderSystem *ShaderSystem) Shutdown() error {
	// Destroy any shaders still in existence.
	for _, sh := range shaderSystem.Shaders {
		if sh.ID != metadata.InvalidID {
			shaderSystem.shaderDestroy(sh)
		}
	}
	clear(shaderSystem.Lookup)
	shaderSystem.CurrentShaderID = metadata.InvalidID
	return nil
}

/**
 * @brief Creates a new shader with the given config.
 */
func (shaderSystem *ShaderSystem) CreateShader(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	if config.Name == "" {
		return nil, errors.Wrap(core.ErrConfig, "shader name must exist")
	}
	if _, ok := shaderSystem.Lookup[config.Name]; ok {
		return nil, errors.Wrapf(core.ErrConsistency, "a shader named '%s' already exists", config.Name)
	}
	if len(config.Uniforms) > int(shaderSystem.Config.MaxUniformCount) {
		return nil, errors.Wrapf(core.ErrConfig, "shader '%s' has %d uniforms, max is %d", config.Name, len(config.Uniforms), shaderSystem.Config.MaxUniformCount)
	}

	id := shaderSystem.newShaderID()
	if id == metadata.InvalidID {
		err := errors.Wrapf(core.ErrCapacityExceeded, "unable to find free slot to create shader '%s'", config.Name)
		core.LogError(err.Error())
		return nil, err
	}

	shader := shaderSystem.Shaders[id]
	shader.State = metadata.ShaderStateNotCreated
	shader.Name = config.Name
	shader.BoundInstanceID = metadata.InvalidID
	shader.RenderFrameNumber = metadata.InvalidIDUint64
	shader.Uniforms = make([]metadata.ShaderUniform, 0, len(config.Uniforms))
	shader.UniformLookup = make(map[string]uint16, len(config.Uniforms))

	for _, u := range config.Uniforms {
		if err := shaderSystem.addUniform(shader, u); err != nil {
			shader.Uniforms = nil
			shader.UniformLookup = nil
			return nil, err
		}
	}

	if err := shaderSystem.backend.ShaderCreate(shader, config); err != nil {
		err = errors.Wrapf(core.ErrLoadFailure, "shader '%s' was not created: %v", config.Name, err)
		core.LogError(err.Error())
		return nil, err
	}

	shader.ID = id
	shader.State = metadata.ShaderStateInitialized
	// At this point, creation is successful, so store the shader id so it can be looked up by name later.
	shaderSystem.Lookup[config.Name] = id
	core.LogDebug("Shader '%s' created with %d uniforms.", config.Name, len(shader.Uniforms))
	return shader, nil
}

func (shaderSystem *ShaderSystem) addUniform(shader *metadata.Shader, config metadata.ShaderUniformConfig) error {
	if config.Name == "" {
		return errors.Wrapf(core.ErrConfig, "shader '%s': uniform name must exist", shader.Name)
	}
	if _, ok := shader.UniformLookup[config.Name]; ok {
		return errors.Wrapf(core.ErrConfig, "a uniform by the name '%s' already exists on shader '%s'", config.Name, shader.Name)
	}
	// Samplers can't be used for push constants.
	if config.Type == metadata.ShaderUniformTypeSampler && config.Scope == metadata.ShaderScopeLocal {
		return errors.Wrapf(core.ErrConfig, "shader '%s': sampler '%s' cannot be at local scope", shader.Name, config.Name)
	}
	index := uint16(len(shader.Uniforms))
	shader.Uniforms = append(shader.Uniforms, metadata.ShaderUniform{
		Index: index,
		Name:  config.Name,
		Type:  config.Type,
		Scope: config.Scope,
	})
	shader.UniformLookup[config.Name] = index
	return nil
}

/**
 * @brief Gets the identifier of a shader by name.
 * @return The shader id, if found; otherwise INVALID_ID.
 */
func (shaderSystem *ShaderSystem) GetID(shaderName string) uint32 {
	id, ok := shaderSystem.Lookup[shaderName]
	if !ok {
		core.LogError("There is no shader registered named '%s'.", shaderName)
		return metadata.InvalidID
	}
	return id
}

func (shaderSystem *ShaderSystem) GetByID(shaderID uint32) (*metadata.Shader, error) {
	if shaderID >= uint32(len(shaderSystem.Shaders)) || shaderSystem.Shaders[shaderID].ID == metadata.InvalidID {
		return nil, errors.Wrapf(core.ErrNotFound, "shader with ID `%d` not found", shaderID)
	}
	return shaderSystem.Shaders[shaderID], nil
}

func (shaderSystem *ShaderSystem) Get(shaderName string) (*metadata.Shader, error) {
	id := shaderSystem.GetID(shaderName)
	if id == metadata.InvalidID {
		return nil, errors.Wrapf(core.ErrNotFound, "shader with name `%s` not found", shaderName)
	}
	return shaderSystem.GetByID(id)
}

func (shaderSystem *ShaderSystem) Use(shaderName string) error {
	id := shaderSystem.GetID(shaderName)
	if id == metadata.InvalidID {
		return errors.Wrapf(core.ErrNotFound, "shader with name `%s` not found", shaderName)
	}
	return shaderSystem.UseByID(id)
}

// UseByID makes the shader current and binds its globals. Using the current shader again
// does nothing.
func (shaderSystem *ShaderSystem) UseByID(shaderID uint32) error {
	if shaderSystem.CurrentShaderID == shaderID {
		return nil
	}
	next, err := shaderSystem.GetByID(shaderID)
	if err != nil {
		return err
	}
	if err := shaderSystem.backend.ShaderUse(next); err != nil {
		return errors.Wrapf(err, "failed to use shader '%s'", next.Name)
	}
	shaderSystem.CurrentShaderID = shaderID
	if err := shaderSystem.backend.ShaderBindGlobals(next); err != nil {
		return errors.Wrapf(err, "failed to bind globals for shader '%s'", next.Name)
	}
	next.BoundScope = metadata.ShaderScopeGlobal
	return nil
}

// GetUniformIndex returns InvalidIDUint16 when the shader has no such uniform.
func (shaderSystem *ShaderSystem) GetUniformIndex(shader *metadata.Shader, uniformName string) uint16 {
	if shader == nil || shader.ID == metadata.InvalidID {
		core.LogError("func GetUniformIndex called with invalid shader.")
		return metadata.InvalidIDUint16
	}
	index, ok := shader.UniformLookup[uniformName]
	if !ok {
		core.LogError("Shader '%s' does not have a registered uniform named '%s'", shader.Name, uniformName)
		return metadata.InvalidIDUint16
	}
	return index
}

func (shaderSystem *ShaderSystem) current() (*metadata.Shader, error) {
	if shaderSystem.CurrentShaderID == metadata.InvalidID {
		return nil, errors.Wrap(core.ErrInvalidState, "no shader in use")
	}
	return shaderSystem.GetByID(shaderSystem.CurrentShaderID)
}

/**
 * @brief Sets the value of a uniform with the given name to the supplied value.
 * NOTE: Operates against the currently-used shader.
 */
func (shaderSystem *ShaderSystem) SetUniform(uniformName string, value interface{}) error {
	shader, err := shaderSystem.current()
	if err != nil {
		return err
	}
	index := shaderSystem.GetUniformIndex(shader, uniformName)
	return shaderSystem.SetUniformByIndex(index, value)
}

/**
 * @brief Sets a uniform value by index, switching the bound scope when needed.
 * NOTE: Operates against the currently-used shader.
 */
func (shaderSystem *ShaderSystem) SetUniformByIndex(index uint16, value interface{}) error {
	shader, err := shaderSystem.current()
	if err != nil {
		return err
	}
	if int(index) >= len(shader.Uniforms) {
		return errors.Wrapf(core.ErrNotFound, "shader '%s' has no uniform at index %d", shader.Name, index)
	}
	uniform := &shader.Uniforms[index]
	if shader.BoundScope != uniform.Scope {
		switch uniform.Scope {
		case metadata.ShaderScopeGlobal:
			if err := shaderSystem.backend.ShaderBindGlobals(shader); err != nil {
				return err
			}
		case metadata.ShaderScopeInstance:
			if err := shaderSystem.backend.ShaderBindInstance(shader, shader.BoundInstanceID); err != nil {
				return err
			}
		}
		// NOTE: Nothing to bind for locals, just set the uniform.
		shader.BoundScope = uniform.Scope
	}
	return shaderSystem.backend.SetUniform(shader, uniform, value)
}

func (shaderSystem *ShaderSystem) BindGlobals() error {
	shader, err := shaderSystem.current()
	if err != nil {
		return err
	}
	if err := shaderSystem.backend.ShaderBindGlobals(shader); err != nil {
		return err
	}
	shader.BoundScope = metadata.ShaderScopeGlobal
	return nil
}

/**
 * @brief Binds the instance with the given id for use. Must be done before setting
 * instance-scoped uniforms.
 * NOTE: Operates against the currently-used shader.
 */
func (shaderSystem *ShaderSystem) BindInstance(instanceID uint32) error {
	shader, err := shaderSystem.current()
	if err != nil {
		return err
	}
	if err := shaderSystem.backend.ShaderBindInstance(shader, instanceID); err != nil {
		return err
	}
	shader.BoundInstanceID = instanceID
	shader.BoundScope = metadata.ShaderScopeInstance
	return nil
}

func (shaderSystem *ShaderSystem) ApplyGlobal() error {
	shader, err := shaderSystem.current()
	if err != nil {
		return err
	}
	return shaderSystem.backend.ShaderApplyGlobals(shader)
}

/**
 * @brief Applies instance-scoped uniforms.
 * @param needsUpdate Indicates if shader internals need to be updated, or just to be bound.
 */
func (shaderSystem *ShaderSystem) ApplyInstance(needsUpdate bool) error {
	shader, err := shaderSystem.current()
	if err != nil {
		return err
	}
	return shaderSystem.backend.ShaderApplyInstance(shader, needsUpdate)
}

func (shaderSystem *ShaderSystem) AcquireInstanceResources(shaderID uint32, maps []*metadata.TextureMap) (uint32, error) {
	shader, err := shaderSystem.GetByID(shaderID)
	if err != nil {
		return metadata.InvalidID, err
	}
	return shaderSystem.backend.ShaderAcquireInstanceResources(shader, maps)
}

func (shaderSystem *ShaderSystem) ReleaseInstanceResources(shaderID uint32, instanceID uint32) error {
	shader, err := shaderSystem.GetByID(shaderID)
	if err != nil {
		return err
	}
	return shaderSystem.backend.ShaderReleaseInstanceResources(shader, instanceID)
}

func (shaderSystem *ShaderSystem) newShaderID() uint32 {
	for i, s := range shaderSystem.Shaders {
		if s.ID == metadata.InvalidID && s.State == metadata.ShaderStateNotCreated {
			return uint32(i)
		}
	}
	return metadata.InvalidID
}

func (shaderSystem *ShaderSystem) shaderDestroy(shader *metadata.Shader) {
	shaderSystem.backend.ShaderDestroy(shader)
	delete(shaderSystem.Lookup, shader.Name)
	// Set it to be unusable right away.
	*shader = metadata.Shader{
		ID:                metadata.InvalidID,
		State:             metadata.ShaderStateNotCreated,
		RenderFrameNumber: metadata.InvalidIDUint64,
	}
}
