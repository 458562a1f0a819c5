package systems

import (
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

/**
 * @brief Creates a skybox from the six faces of a cube texture. The cube geometry
 * and a skybox shader instance are acquired along with the texture.
 */
func (sm *SystemManager) CreateSkybox(cubemapName string) (*metadata.Skybox, error) {
	cubemap := metadata.NewTextureMap(metadata.TextureUseMapCubemap)
	cubemap.RepeatU = metadata.TextureRepeatClampToEdge
	cubemap.RepeatV = metadata.TextureRepeatClampToEdge
	cubemap.RepeatW = metadata.TextureRepeatClampToEdge

	t, err := sm.TextureSystem.AcquireCube(cubemapName, true)
	if err != nil {
		core.LogError("unable to acquire cube texture '%s' for skybox", cubemapName)
		return nil, err
	}
	cubemap.Texture = t
	if err := sm.backend.TextureMapAcquireResources(cubemap); err != nil {
		_ = sm.TextureSystem.Release(cubemapName)
		return nil, err
	}

	cfg := GenerateCubeConfig(10, 10, 10, 1, 1, cubemapName+"_skybox_cube", "")
	// Clear out the material name.
	cfg.MaterialName = ""
	g, err := sm.GeometrySystem.AcquireFromConfig(cfg, true)
	if err != nil {
		sm.backend.TextureMapReleaseResources(cubemap)
		_ = sm.TextureSystem.Release(cubemapName)
		return nil, err
	}

	shaderID := sm.ShaderSystem.GetID(metadata.BUILTIN_SHADER_NAME_SKYBOX)
	instanceID, err := sm.ShaderSystem.AcquireInstanceResources(shaderID, []*metadata.TextureMap{cubemap})
	if err != nil {
		_ = sm.GeometrySystem.Release(g)
		sm.backend.TextureMapReleaseResources(cubemap)
		_ = sm.TextureSystem.Release(cubemapName)
		return nil, err
	}

	return &metadata.Skybox{
		Cubemap:           cubemap,
		Geometry:          g,
		InstanceID:        instanceID,
		RenderFrameNumber: metadata.InvalidIDUint64,
	}, nil
}

func (sm *SystemManager) DestroySkybox(sb *metadata.Skybox) error {
	if sb == nil {
		return nil
	}
	shaderID := sm.ShaderSystem.GetID(metadata.BUILTIN_SHADER_NAME_SKYBOX)
	if err := sm.ShaderSystem.ReleaseInstanceResources(shaderID, sb.InstanceID); err != nil {
		core.LogWarn("releasing skybox instance: %v", err)
	}
	if sb.Geometry != nil {
		_ = sm.GeometrySystem.Release(sb.Geometry)
	}
	if sb.Cubemap != nil {
		sm.backend.TextureMapReleaseResources(sb.Cubemap)
		if sb.Cubemap.Texture != nil {
			_ = sm.TextureSystem.Release(sb.Cubemap.Texture.Name)
		}
	}
	*sb = metadata.Skybox{InstanceID: metadata.InvalidID}
	return nil
}
