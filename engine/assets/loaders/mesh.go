package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

type MeshFileType int

const (
	MESH_FILE_TYPE_NOT_FOUND MeshFileType = iota
	MESH_FILE_TYPE_DSM
	MESH_FILE_TYPE_OBJ
	MESH_FILE_TYPE_GLTF
)

type SupportedMeshFileType struct {
	Extension string
	FileType  MeshFileType
	IsBinary  bool
}

// Lookup order: the binary cache wins, then the importable formats.
var supportedMeshFileTypes = []SupportedMeshFileType{
	{Extension: ".dsm", FileType: MESH_FILE_TYPE_DSM, IsBinary: true},
	{Extension: ".obj", FileType: MESH_FILE_TYPE_OBJ, IsBinary: false},
	{Extension: ".gltf", FileType: MESH_FILE_TYPE_GLTF, IsBinary: false},
}

// MeshLoader resolves <base>/models/<name>.{dsm,obj,gltf}. Importing a text format
// writes the .dsm cache and the .dmt materials as a side effect; the next load of the
// same name reads the cache. Data is []*metadata.GeometryConfig.
type MeshLoader struct {
	BasePath string
}

var _ assets.Loader = (*MeshLoader)(nil)

func NewMeshLoader(basePath string) *MeshLoader {
	return &MeshLoader{BasePath: basePath}
}

func (ml *MeshLoader) Type() metadata.ResourceType { return metadata.ResourceTypeMesh }

func (ml *MeshLoader) CustomType() string { return "" }

func (ml *MeshLoader) Load(name string, params interface{}) (*metadata.Resource, error) {
	if name == "" {
		return nil, errors.Wrap(core.ErrLoadFailure, "mesh name is empty")
	}

	fileType := MESH_FILE_TYPE_NOT_FOUND
	var fullPath string
	for _, ft := range supportedMeshFileTypes {
		p := filepath.Join(ml.BasePath, assets.ModelsPath, name+ft.Extension)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			fileType = ft.FileType
			fullPath = p
			break
		}
	}

	var (
		geometries []*metadata.GeometryConfig
		err        error
	)
	switch fileType {
	case MESH_FILE_TYPE_DSM:
		_, geometries, err = ReadDSMFile(fullPath)
	case MESH_FILE_TYPE_OBJ:
		geometries, err = ml.importOBJ(fullPath, name)
	case MESH_FILE_TYPE_GLTF:
		geometries, err = ml.importGLTF(fullPath, name)
	default:
		return nil, errors.Wrapf(core.ErrNotFound, "unable to find mesh of supported type called '%s'", name)
	}
	if err != nil {
		core.LogError("failed to process mesh file '%s': %v", fullPath, err)
		return nil, err
	}

	return &metadata.Resource{
		Name:     name,
		FullPath: fullPath,
		DataSize: uint64(len(geometries)),
		Data:     geometries,
	}, nil
}

func (ml *MeshLoader) Unload(resource *metadata.Resource) error {
	if resource == nil {
		return errors.Wrap(core.ErrNotFound, "nil resource")
	}
	if configs, ok := resource.Data.([]*metadata.GeometryConfig); ok {
		for _, c := range configs {
			c.Dispose()
		}
	}
	return unloadResource(resource)
}

func (ml *MeshLoader) dsmPath(name string) string {
	return filepath.Join(ml.BasePath, assets.ModelsPath, name+".dsm")
}

func (ml *MeshLoader) importOBJ(path, name string) ([]*metadata.GeometryConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "opening %s: %v", path, err)
	}
	defer f.Close()

	result, err := ImportOBJ(f, name)
	if err != nil {
		return nil, err
	}
	if result.MaterialLibrary != "" {
		mtlPath := filepath.Join(filepath.Dir(path), result.MaterialLibrary)
		// A broken material library degrades to default materials, it does not fail the mesh.
		if err := ml.importMaterialLibrary(mtlPath); err != nil {
			core.LogError("error reading obj material file '%s': %v", mtlPath, err)
		}
	}
	if err := WriteDSMFile(ml.dsmPath(name), name, result.Geometries); err != nil {
		return nil, err
	}
	return result.Geometries, nil
}

func (ml *MeshLoader) importMaterialLibrary(path string) error {
	core.LogDebug("importing obj .mtl file '%s'", path)
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(core.ErrLoadFailure, "opening %s: %v", path, err)
	}
	defer f.Close()

	configs, err := ParseMTL(f, path)
	if err != nil {
		return err
	}
	return ml.writeMaterials(configs)
}

func (ml *MeshLoader) importGLTF(path, name string) ([]*metadata.GeometryConfig, error) {
	result, err := ImportGLTF(path, name)
	if err != nil {
		return nil, err
	}
	if err := ml.writeMaterials(result.Materials); err != nil {
		core.LogError("unable to write materials for '%s': %v", path, err)
	}
	if err := WriteDSMFile(ml.dsmPath(name), name, result.Geometries); err != nil {
		return nil, err
	}
	return result.Geometries, nil
}

func (ml *MeshLoader) writeMaterials(configs []*metadata.MaterialConfig) error {
	var errs []string
	for _, cfg := range configs {
		if _, err := WriteDMTFile(ml.BasePath, cfg); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.Wrapf(core.ErrLoadFailure, "writing materials: %s", strings.Join(errs, "; "))
	}
	return nil
}
