package loaders

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

// BinaryLoader reads a file under the base path verbatim. The name includes the
// extension, e.g. "shaders/Builtin.World.vert.spv".
type BinaryLoader struct {
	BasePath string
}

var _ assets.Loader = (*BinaryLoader)(nil)

func NewBinaryLoader(basePath string) *BinaryLoader {
	return &BinaryLoader{BasePath: basePath}
}

func (bl *BinaryLoader) Type() metadata.ResourceType { return metadata.ResourceTypeBinary }

func (bl *BinaryLoader) CustomType() string { return "" }

func (bl *BinaryLoader) Load(name string, params interface{}) (*metadata.Resource, error) {
	path, data, err := readUnder(bl.BasePath, name)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     data,
	}, nil
}

func (bl *BinaryLoader) Unload(resource *metadata.Resource) error {
	return unloadResource(resource)
}

// TextLoader is BinaryLoader returning a string.
type TextLoader struct {
	BasePath string
}

var _ assets.Loader = (*TextLoader)(nil)

func NewTextLoader(basePath string) *TextLoader {
	return &TextLoader{BasePath: basePath}
}

func (tl *TextLoader) Type() metadata.ResourceType { return metadata.ResourceTypeText }

func (tl *TextLoader) CustomType() string { return "" }

func (tl *TextLoader) Load(name string, params interface{}) (*metadata.Resource, error) {
	path, data, err := readUnder(tl.BasePath, name)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (tl *TextLoader) Unload(resource *metadata.Resource) error {
	return unloadResource(resource)
}

func readUnder(basePath, name string) (string, []byte, error) {
	path, err := assets.ResolvePath(basePath, "", name)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.Wrapf(core.ErrLoadFailure, "reading %s: %v", path, err)
	}
	return path, data, nil
}

func unloadResource(resource *metadata.Resource) error {
	if resource == nil {
		return errors.Wrap(core.ErrNotFound, "nil resource")
	}
	resource.Data = nil
	resource.DataSize = 0
	resource.FullPath = ""
	resource.LoaderID = metadata.InvalidID
	return nil
}
