package assets

import "github.com/spaghettifunk/kiln/engine/renderer/metadata"

// Loader turns a resource name into a loaded Resource. Implementations must be safe to
// call from job workers: they read files and build values, nothing else.
type Loader interface {
	Type() metadata.ResourceType
	// CustomType names the kind when Type is ResourceTypeCustom.
	CustomType() string
	Load(name string, params interface{}) (*metadata.Resource, error)
	Unload(resource *metadata.Resource) error
}
