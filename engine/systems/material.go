package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spaghettifunk/kiln/engine/containers"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

type MaterialSystemConfig struct {
	/** @brief The maximum number of loaded materials. */
	MaxMaterialCount uint32
}

type materialShaderUniformLocations struct {
	Projection               uint16
	View                     uint16
	AmbientColour            uint16
	ViewPosition             uint16
	Shininess                uint16
	DiffuseColour            uint16
	DiffuseTexture           uint16
	SpecularTexture          uint16
	NormalTexture            uint16
	RoughnessMetallicTexture uint16
	Metallic                 uint16
	Roughness                uint16
	AmbientOcclusion         uint16
	Model                    uint16
	RenderMode               uint16
}

type uiShaderUniformLocations struct {
	Projection     uint16
	View           uint16
	DiffuseColour  uint16
	DiffuseTexture uint16
	Model          uint16
}

type MaterialSystem struct {
	Config                  *MaterialSystemConfig
	RegisteredMaterials     []*metadata.Material
	RegisteredMaterialTable *containers.ReferenceTable

	defaultMaterial *metadata.Material

	// Known locations for the material shader.
	MaterialLocations materialShaderUniformLocations
	MaterialShaderID  uint32
	// Known locations for the UI shader.
	UILocations uiShaderUniformLocations
	UIShaderID  uint32

	textureSystem  *TextureSystem
	shaderSystem   *ShaderSystem
	resourceSystem *ResourceSystem
	backend        renderer.Backend
}

func NewMaterialSystem(config *MaterialSystemConfig, ts *TextureSystem, ss *ShaderSystem, rs *ResourceSystem, backend renderer.Backend) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := errors.Wrap(core.ErrConfig, "func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogFatal(err.Error())
		return nil, err
	}
	if backend == nil || ts == nil || ss == nil {
		err := errors.Wrap(core.ErrConfig, "func NewMaterialSystem - backend, texture and shader systems are required")
		core.LogFatal(err.Error())
		return nil, err
	}

	ms := &MaterialSystem{
		Config:                  config,
		RegisteredMaterials:     make([]*metadata.Material, config.MaxMaterialCount),
		RegisteredMaterialTable: containers.NewReferenceTable(config.MaxMaterialCount),
		MaterialShaderID:        metadata.InvalidID,
		UIShaderID:              metadata.InvalidID,
		textureSystem:           ts,
		shaderSystem:            ss,
		resourceSystem:          rs,
		backend:                 backend,
	}

	// Invalidate all materials in the array.
	for i := range ms.RegisteredMaterials {
		m := &metadata.Material{}
		m.Invalidate()
		ms.RegisteredMaterials[i] = m
	}

	ms.cacheUniformLocations()

	if err := ms.createDefaultMaterial(); err != nil {
		core.LogFatal("func NewMaterialSystem - failed to create default material: %v", err)
		return nil, err
	}
	return ms, nil
}

// cacheUniformLocations saves off the locations of the builtin shaders for quick lookups.
func (ms *MaterialSystem) cacheUniformLocations() {
	if s, err := ms.shaderSystem.Get(metadata.BUILTIN_SHADER_NAME_MATERIAL); err == nil {
		ms.MaterialShaderID = s.ID
		idx := func(name string) uint16 { return ms.shaderSystem.GetUniformIndex(s, name) }
		ms.MaterialLocations = materialShaderUniformLocations{
			Projection:               idx("projection"),
			View:                     idx("view"),
			AmbientColour:            idx("ambient_colour"),
			ViewPosition:             idx("view_position"),
			Shininess:                idx("shininess"),
			DiffuseColour:            idx("diffuse_colour"),
			DiffuseTexture:           idx("diffuse_texture"),
			SpecularTexture:          idx("specular_texture"),
			NormalTexture:            idx("normal_texture"),
			RoughnessMetallicTexture: idx("roughness_metallic_texture"),
			Metallic:                 idx("metallic"),
			Roughness:                idx("roughness"),
			AmbientOcclusion:         idx("ambient_occlusion"),
			Model:                    idx("model"),
			RenderMode:               idx("mode"),
		}
	}
	if s, err := ms.shaderSystem.Get(metadata.BUILTIN_SHADER_NAME_UI); err == nil {
		ms.UIShaderID = s.ID
		idx := func(name string) uint16 { return ms.shaderSystem.GetUniformIndex(s, name) }
		ms.UILocations = uiShaderUniformLocations{
			Projection:     idx("projection"),
			View:           idx("view"),
			DiffuseColour:  idx("diffuse_colour"),
			DiffuseTexture: idx("diffuse_texture"),
			Model:          idx("model"),
		}
	}
}

func (ms *MaterialSystem) createDefaultMaterial() error {
	m := &metadata.Material{}
	m.Invalidate()
	m.Name = metadata.DEFAULT_MATERIAL_NAME
	m.DiffuseColour = mgl32.Vec4{1, 1, 1, 1}
	m.Shininess = 8.0
	m.Roughness = 1.0
	m.AmbientOcclusion = 1.0

	m.DiffuseMap = metadata.NewTextureMap(metadata.TextureUseMapDiffuse)
	m.DiffuseMap.Texture = ms.textureSystem.GetDefaultDiffuseTexture()
	m.SpecularMap = metadata.NewTextureMap(metadata.TextureUseMapSpecular)
	m.SpecularMap.Texture = ms.textureSystem.GetDefaultSpecularTexture()
	m.NormalMap = metadata.NewTextureMap(metadata.TextureUseMapNormal)
	m.NormalMap.Texture = ms.textureSystem.GetDefaultNormalTexture()
	m.RoughnessMetallicMap = metadata.NewTextureMap(metadata.TextureUseRoughnessMetallic)
	m.RoughnessMetallicMap.Texture = ms.textureSystem.GetDefaultTexture()

	for _, tm := range m.Maps() {
		if err := ms.backend.TextureMapAcquireResources(tm); err != nil {
			return errors.Wrapf(core.ErrLoadFailure, "default material texture map: %v", err)
		}
	}

	shaderID := ms.shaderSystem.GetID(metadata.BUILTIN_SHADER_NAME_MATERIAL)
	if shaderID == metadata.InvalidID {
		return errors.Wrapf(core.ErrNotFound, "shader '%s' is required by the default material", metadata.BUILTIN_SHADER_NAME_MATERIAL)
	}
	internalID, err := ms.shaderSystem.AcquireInstanceResources(shaderID, m.Maps())
	if err != nil {
		return errors.Wrapf(core.ErrLoadFailure, "default material instance resources: %v", err)
	}
	m.InternalID = internalID
	// Make sure to assign the shader id.
	m.ShaderID = shaderID
	m.Generation = 0
	ms.defaultMaterial = m
	return nil
}

func (ms *MaterialSystem) Shutdown() error {
	for _, m := range ms.RegisteredMaterials {
		if m.ID != metadata.InvalidID {
			ms.destroyMaterial(m)
		}
	}
	if ms.defaultMaterial != nil {
		ms.destroyMaterial(ms.defaultMaterial)
		ms.defaultMaterial = nil
	}
	core.LogDebug("material system stats: %s", ms.BuildStatsString())
	return nil
}

func (ms *MaterialSystem) GetDefault() *metadata.Material {
	return ms.defaultMaterial
}

// Acquire loads the .dmt material file of the given name and acquires it from its config.
func (ms *MaterialSystem) Acquire(name string) (*metadata.Material, error) {
	if metadata.IsDefaultName(name) {
		return ms.defaultMaterial, nil
	}
	// Already loaded materials do not touch the disk again.
	if ref := ms.RegisteredMaterialTable.Get(name); ref.IsLoaded() {
		return ms.AcquireFromConfig(&metadata.MaterialConfig{Name: name, AutoRelease: ref.AutoRelease})
	}
	if ms.resourceSystem == nil {
		return nil, errors.Wrap(core.ErrConsistency, "material system has no resource system")
	}

	res, err := ms.resourceSystem.Load(name, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		err = errors.Wrapf(core.ErrLoadFailure, "failed to load material resource '%s': %v", name, err)
		core.LogError(err.Error())
		return nil, err
	}
	defer func() {
		if err := ms.resourceSystem.Unload(res); err != nil {
			core.LogWarn("unloading material resource '%s': %v", name, err)
		}
	}()

	cfg, ok := res.Data.(*metadata.MaterialConfig)
	if !ok {
		return nil, errors.Wrapf(core.ErrConsistency, "material resource '%s' carries %T", name, res.Data)
	}
	return ms.AcquireFromConfig(cfg)
}

/**
 * @brief Acquires a material from the given config. If the name is already
 * registered its reference count is increased and the config is otherwise ignored.
 */
func (ms *MaterialSystem) AcquireFromConfig(config *metadata.MaterialConfig) (*metadata.Material, error) {
	// Return default material.
	if metadata.IsDefaultName(config.Name) {
		return ms.defaultMaterial, nil
	}
	if config.Name == "" {
		return nil, errors.Wrap(core.ErrLoadFailure, "material config has no name")
	}

	ref := ms.RegisteredMaterialTable.Get(config.Name)
	// This can only be changed the first time a material is loaded.
	if ref.ReferenceCount == 0 {
		ref.AutoRelease = config.AutoRelease
	}
	ref.ReferenceCount++

	if ref.Handle == containers.InvalidHandle {
		// This means no material exists here. Find a free index first.
		idx, ok := containers.FirstFree(ms.RegisteredMaterials, func(m *metadata.Material) bool {
			return m.ID == metadata.InvalidID
		})
		if !ok {
			err := errors.Wrapf(core.ErrCapacityExceeded, "material system cannot hold more than %d materials, '%s' not loaded", ms.Config.MaxMaterialCount, config.Name)
			core.LogFatal(err.Error())
			return nil, err
		}

		m := ms.RegisteredMaterials[idx]
		if err := ms.loadMaterial(config, m); err != nil {
			ms.RegisteredMaterialTable.Set(config.Name, containers.NotLoaded())
			err = errors.Wrapf(core.ErrLoadFailure, "load %s material failed: %v", config.Name, err)
			core.LogError(err.Error())
			return nil, err
		}

		if m.Generation == metadata.InvalidID {
			m.Generation = 0
		} else {
			m.Generation++
		}
		// Also use the handle as the material id.
		m.ID = idx
		ref.Handle = idx
		core.LogDebug("Material '%s' does not yet exist. Created and ref_count is now %d.", config.Name, ref.ReferenceCount)
	} else {
		core.LogDebug("Material '%s' already exist. ref_count increased to %d.", config.Name, ref.ReferenceCount)
	}

	ms.RegisteredMaterialTable.Set(config.Name, ref)
	return ms.RegisteredMaterials[ref.Handle], nil
}

// AcquireByHandle bumps the reference count of a live material.
func (ms *MaterialSystem) AcquireByHandle(handle uint32) (*metadata.Material, error) {
	if handle >= uint32(len(ms.RegisteredMaterials)) || ms.RegisteredMaterials[handle].ID == metadata.InvalidID {
		return nil, errors.Wrapf(core.ErrNotFound, "no material with handle %d", handle)
	}
	m := ms.RegisteredMaterials[handle]
	ref := ms.RegisteredMaterialTable.Get(m.Name)
	if ref.Handle != handle {
		return nil, errors.Wrapf(core.ErrConsistency, "material '%s' is in slot %d but referenced as %d", m.Name, handle, ref.Handle)
	}
	ref.ReferenceCount++
	ms.RegisteredMaterialTable.Set(m.Name, ref)
	return m, nil
}

func (ms *MaterialSystem) Release(name string) error {
	// Ignore release requests for the default material.
	if metadata.IsDefaultName(name) {
		return nil
	}
	ref := ms.RegisteredMaterialTable.Get(name)
	if ref.ReferenceCount == 0 {
		core.LogWarn("Tried to release non-existent material: %s", name)
		return errors.Wrapf(core.ErrNotFound, "material '%s' is not referenced", name)
	}

	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		ms.destroyMaterial(ms.RegisteredMaterials[ref.Handle])
		ms.RegisteredMaterialTable.Set(name, containers.NotLoaded())
		core.LogDebug("Released material '%s'. Material unloaded.", name)
		return nil
	}
	ms.RegisteredMaterialTable.Set(name, ref)
	return nil
}

// ReferenceOf exposes the bookkeeping entry of a name.
func (ms *MaterialSystem) ReferenceOf(name string) containers.Reference {
	return ms.RegisteredMaterialTable.Get(name)
}

// acquireMap fills a texture map, falling back to the given default when the texture
// is missing or fails to load.
func (ms *MaterialSystem) acquireMap(materialName, textureName string, use metadata.TextureUse, fallback *metadata.Texture) (*metadata.TextureMap, error) {
	tm := metadata.NewTextureMap(use)
	if err := ms.backend.TextureMapAcquireResources(tm); err != nil {
		return nil, errors.Wrapf(err, "unable to acquire resources for texture map of '%s'", materialName)
	}
	tm.Texture = fallback
	if textureName == "" {
		return tm, nil
	}
	t, err := ms.textureSystem.Acquire(textureName, true)
	if err != nil {
		core.LogWarn("Unable to load texture '%s' for material '%s', using default.", textureName, materialName)
		return tm, nil
	}
	tm.Texture = t
	return tm, nil
}

func (ms *MaterialSystem) loadMaterial(config *metadata.MaterialConfig, m *metadata.Material) error {
	shaderName := config.ShaderName
	if shaderName == "" {
		shaderName = metadata.BUILTIN_SHADER_NAME_MATERIAL
	}
	shaderID := ms.shaderSystem.GetID(shaderName)
	if shaderID == metadata.InvalidID {
		return errors.Wrapf(core.ErrNotFound, "unable to load material because its shader was not found: '%s'", shaderName)
	}

	m.Name = config.Name
	m.ShaderID = shaderID
	m.DiffuseColour = config.DiffuseColour
	m.Shininess = config.Shininess
	m.Metallic = config.Metallic
	m.Roughness = config.Roughness
	m.AmbientOcclusion = config.AmbientOcclusion

	maps := []struct {
		name     string
		use      metadata.TextureUse
		fallback *metadata.Texture
		out      **metadata.TextureMap
	}{
		{config.DiffuseMapName, metadata.TextureUseMapDiffuse, ms.textureSystem.GetDefaultDiffuseTexture(), &m.DiffuseMap},
		{config.SpecularMapName, metadata.TextureUseMapSpecular, ms.textureSystem.GetDefaultSpecularTexture(), &m.SpecularMap},
		{config.NormalMapName, metadata.TextureUseMapNormal, ms.textureSystem.GetDefaultNormalTexture(), &m.NormalMap},
		{config.RoughnessMetallicMapName, metadata.TextureUseRoughnessMetallic, ms.textureSystem.GetDefaultTexture(), &m.RoughnessMetallicMap},
	}
	for _, mp := range maps {
		tm, err := ms.acquireMap(m.Name, mp.name, mp.use, mp.fallback)
		if err != nil {
			ms.destroyMaterial(m)
			return err
		}
		*mp.out = tm
	}

	// Send it off to the renderer to acquire resources.
	internalID, err := ms.shaderSystem.AcquireInstanceResources(shaderID, m.Maps())
	if err != nil {
		ms.destroyMaterial(m)
		return errors.Wrapf(err, "failed to acquire renderer resources for material '%s'", config.Name)
	}
	m.InternalID = internalID
	return nil
}

func (ms *MaterialSystem) destroyMaterial(m *metadata.Material) {
	core.LogDebug("Destroying material '%s'...", m.Name)
	for _, tm := range m.Maps() {
		if tm == nil {
			continue
		}
		// Release texture references. Defaults ignore the release.
		if tm.Texture != nil && tm.Texture.ID != metadata.InvalidID {
			_ = ms.textureSystem.Release(tm.Texture.Name)
		}
		ms.backend.TextureMapReleaseResources(tm)
	}

	// Release renderer resources.
	if m.ShaderID != metadata.InvalidID && m.InternalID != metadata.InvalidID {
		if err := ms.shaderSystem.ReleaseInstanceResources(m.ShaderID, m.InternalID); err != nil {
			core.LogWarn("releasing instance resources of material '%s': %v", m.Name, err)
		}
	}
	m.Invalidate()
}

/**
 * @brief Applies global-level data for the material shader id. Only done once
 * per frame per shader.
 */
func (ms *MaterialSystem) ApplyGlobal(shaderID uint32, frameNumber uint64, projection, view mgl32.Mat4, ambientColour mgl32.Vec4, viewPosition mgl32.Vec3, renderMode uint32) error {
	s, err := ms.shaderSystem.GetByID(shaderID)
	if err != nil {
		return err
	}
	if s.RenderFrameNumber == frameNumber {
		return nil
	}

	var uniforms []struct {
		index uint16
		value interface{}
	}
	switch shaderID {
	case ms.MaterialShaderID:
		uniforms = []struct {
			index uint16
			value interface{}
		}{
			{ms.MaterialLocations.Projection, projection},
			{ms.MaterialLocations.View, view},
			{ms.MaterialLocations.AmbientColour, ambientColour},
			{ms.MaterialLocations.ViewPosition, viewPosition},
			{ms.MaterialLocations.RenderMode, renderMode},
		}
	case ms.UIShaderID:
		uniforms = []struct {
			index uint16
			value interface{}
		}{
			{ms.UILocations.Projection, projection},
			{ms.UILocations.View, view},
		}
	default:
		return errors.Wrapf(core.ErrNotFound, "ApplyGlobal: unrecognized shader id '%d'", shaderID)
	}
	for _, u := range uniforms {
		if err := ms.shaderSystem.SetUniformByIndex(u.index, u.value); err != nil {
			return errors.Wrap(err, "failed to apply material globals")
		}
	}
	if err := ms.shaderSystem.ApplyGlobal(); err != nil {
		return err
	}

	// Sync
	s.RenderFrameNumber = frameNumber
	return nil
}

/**
 * @brief Applies instance-level material data for the given material.
 * @param needsUpdate Indicates if the material needs its uniforms uploaded or just bound.
 */
func (ms *MaterialSystem) ApplyInstance(m *metadata.Material, needsUpdate bool) error {
	if m == nil || m.InternalID == metadata.InvalidID {
		return errors.Wrap(core.ErrNotFound, "material has no instance resources")
	}
	// Apply instance-level uniforms.
	if err := ms.shaderSystem.BindInstance(m.InternalID); err != nil {
		return err
	}
	if needsUpdate {
		var uniforms []struct {
			index uint16
			value interface{}
		}
		switch m.ShaderID {
		case ms.MaterialShaderID:
			uniforms = []struct {
				index uint16
				value interface{}
			}{
				{ms.MaterialLocations.DiffuseColour, m.DiffuseColour},
				{ms.MaterialLocations.DiffuseTexture, m.DiffuseMap},
				{ms.MaterialLocations.SpecularTexture, m.SpecularMap},
				{ms.MaterialLocations.NormalTexture, m.NormalMap},
				{ms.MaterialLocations.RoughnessMetallicTexture, m.RoughnessMetallicMap},
				{ms.MaterialLocations.Shininess, m.Shininess},
				{ms.MaterialLocations.Metallic, m.Metallic},
				{ms.MaterialLocations.Roughness, m.Roughness},
				{ms.MaterialLocations.AmbientOcclusion, m.AmbientOcclusion},
			}
		case ms.UIShaderID:
			uniforms = []struct {
				index uint16
				value interface{}
			}{
				{ms.UILocations.DiffuseColour, m.DiffuseColour},
				{ms.UILocations.DiffuseTexture, m.DiffuseMap},
			}
		default:
			return errors.Wrapf(core.ErrNotFound, "ApplyInstance: unrecognized shader id '%d' on material '%s'", m.ShaderID, m.Name)
		}
		for _, u := range uniforms {
			if err := ms.shaderSystem.SetUniformByIndex(u.index, u.value); err != nil {
				return errors.Wrapf(err, "failed to apply material '%s'", m.Name)
			}
		}
	}
	return ms.shaderSystem.ApplyInstance(needsUpdate)
}

/**
 * @brief Applies local-level material data (typically just model matrix).
 */
func (ms *MaterialSystem) ApplyLocal(m *metadata.Material, model mgl32.Mat4) error {
	switch m.ShaderID {
	case ms.MaterialShaderID:
		return ms.shaderSystem.SetUniformByIndex(ms.MaterialLocations.Model, model)
	case ms.UIShaderID:
		return ms.shaderSystem.SetUniformByIndex(ms.UILocations.Model, model)
	}
	return errors.Wrapf(core.ErrNotFound, "ApplyLocal: unrecognized shader id '%d'", m.ShaderID)
}

// BuildStatsString dumps the registry occupancy as JSON.
func (ms *MaterialSystem) BuildStatsString() string {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("Capacity").Int(int(ms.Config.MaxMaterialCount))
	obj.Name("Referenced").Int(ms.RegisteredMaterialTable.Len())

	entries := obj.Name("Materials").Array()
	ms.RegisteredMaterialTable.Each(func(name string, ref containers.Reference) bool {
		o := entries.Object()
		o.Name("Name").String(name)
		o.Name("Handle").Int(int(ref.Handle))
		o.Name("References").Int(int(ref.ReferenceCount))
		o.Name("AutoRelease").Bool(ref.AutoRelease)
		if ref.IsLoaded() {
			o.Name("Generation").Int(int(ms.RegisteredMaterials[ref.Handle].Generation))
		}
		o.End()
		return true
	})
	entries.End()
	obj.End()
	return string(w.Bytes())
}
