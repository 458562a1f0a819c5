package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/assets/loaders"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

/** @brief The configuration for the resource system */
type ResourceSystemConfig struct {
	/** @brief The maximum number of loaders that can be registered with this system. */
	MaxLoaderCount uint32
	/** @brief The relative base path for assets. */
	AssetBasePath string
}

// ResourceSystem dispatches loads to the loader registered for a resource type.
// Loaders only touch the filesystem, so Load is safe to call from job workers once
// registration is done.
type ResourceSystem struct {
	Config            *ResourceSystemConfig
	RegisteredLoaders []assets.Loader
}

func NewResourceSystem(config *ResourceSystemConfig) (*ResourceSystem, error) {
	if config.MaxLoaderCount == 0 {
		err := errors.Wrap(core.ErrConfig, "func NewResourceSystem - config.MaxLoaderCount must be > 0")
		core.LogFatal(err.Error())
		return nil, err
	}

	rs := &ResourceSystem{
		Config:            config,
		RegisteredLoaders: make([]assets.Loader, 0, config.MaxLoaderCount),
	}

	// Auto-register known loader types here.
	known := []assets.Loader{
		loaders.NewTextLoader(config.AssetBasePath),
		loaders.NewBinaryLoader(config.AssetBasePath),
		loaders.NewImageLoader(config.AssetBasePath),
		loaders.NewMaterialLoader(config.AssetBasePath),
		loaders.NewMeshLoader(config.AssetBasePath),
		loaders.NewBitmapFontLoader(config.AssetBasePath),
	}
	for _, l := range known {
		if err := rs.RegisterLoader(l); err != nil {
			return nil, err
		}
	}

	core.LogInfo("Resource system initialized with base path '%s'.", config.AssetBasePath)
	return rs, nil
}

func (rs *ResourceSystem) Shutdown() error {
	rs.RegisteredLoaders = nil
	return nil
}

// RegisterLoader refuses a second loader for the same type (or custom type name).
func (rs *ResourceSystem) RegisterLoader(loader assets.Loader) error {
	for _, l := range rs.RegisteredLoaders {
		if l.Type() == loader.Type() && loader.Type() != metadata.ResourceTypeCustom {
			return errors.Wrapf(core.ErrConsistency, "loader of type %s already exists and will not be registered", loader.Type())
		}
		if loader.Type() == metadata.ResourceTypeCustom && l.Type() == metadata.ResourceTypeCustom && l.CustomType() == loader.CustomType() {
			return errors.Wrapf(core.ErrConsistency, "loader of custom type %s already exists and will not be registered", loader.CustomType())
		}
	}
	if uint32(len(rs.RegisteredLoaders)) >= rs.Config.MaxLoaderCount {
		return errors.Wrapf(core.ErrCapacityExceeded, "resource system cannot hold more than %d loaders", rs.Config.MaxLoaderCount)
	}
	rs.RegisteredLoaders = append(rs.RegisteredLoaders, loader)
	core.LogDebug("Loader registered for type %s.", loader.Type())
	return nil
}

func (rs *ResourceSystem) Load(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if resourceType != metadata.ResourceTypeCustom {
		for i, l := range rs.RegisteredLoaders {
			if l.Type() == resourceType {
				return rs.load(uint32(i), l, name, params)
			}
		}
	}
	err := errors.Wrapf(core.ErrNotFound, "no loader for type %s was found", resourceType)
	core.LogError("func ResourceSystem.Load - %v", err)
	return nil, err
}

func (rs *ResourceSystem) LoadCustom(name, customType string, params interface{}) (*metadata.Resource, error) {
	if customType != "" {
		for i, l := range rs.RegisteredLoaders {
			if l.Type() == metadata.ResourceTypeCustom && l.CustomType() == customType {
				return rs.load(uint32(i), l, name, params)
			}
		}
	}
	err := errors.Wrapf(core.ErrNotFound, "no loader for custom type '%s' was found", customType)
	core.LogError("func ResourceSystem.LoadCustom - %v", err)
	return nil, err
}

func (rs *ResourceSystem) load(id uint32, loader assets.Loader, name string, params interface{}) (*metadata.Resource, error) {
	if name == "" {
		return nil, errors.Wrap(core.ErrLoadFailure, "resource name is empty")
	}
	res, err := loader.Load(name, params)
	if err != nil {
		return nil, err
	}
	res.LoaderID = id
	return res, nil
}

func (rs *ResourceSystem) Unload(resource *metadata.Resource) error {
	if resource == nil || resource.LoaderID == metadata.InvalidID {
		return nil
	}
	if int(resource.LoaderID) >= len(rs.RegisteredLoaders) {
		return errors.Wrapf(core.ErrConsistency, "resource '%s' has unknown loader id %d", resource.Name, resource.LoaderID)
	}
	return rs.RegisteredLoaders[resource.LoaderID].Unload(resource)
}
