package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

const quadMTL = `newmtl stone
Kd 0.5 0.5 0.5
map_Kd stone.png
`

func TestMeshLoaderImportsOBJAndWritesCache(t *testing.T) {
	base := t.TempDir()
	models := filepath.Join(base, assets.ModelsPath)
	writeFile(t, models, "quad.obj", quadOBJ)
	writeFile(t, models, "quad.mtl", quadMTL)

	loader := NewMeshLoader(base)
	res, err := loader.Load("quad", nil)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(models, "quad.obj"), res.FullPath)
	imported := res.Data.([]*metadata.GeometryConfig)
	require.Len(t, imported, 1)

	// The material library became a .dmt next to the other materials.
	_, err = os.Stat(filepath.Join(base, assets.MaterialsPath, "stone.dmt"))
	require.NoError(t, err)

	// The second load reads the cache and yields the same geometry.
	_, err = os.Stat(filepath.Join(models, "quad.dsm"))
	require.NoError(t, err)
	cached, err := loader.Load("quad", nil)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(models, "quad.dsm"), cached.FullPath)
	require.Equal(t, imported, cached.Data.([]*metadata.GeometryConfig))

	require.NoError(t, loader.Unload(cached))
}

func TestMeshLoaderMissingMaterialLibraryStillLoads(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, assets.ModelsPath), "quad.obj", quadOBJ)

	res, err := NewMeshLoader(base).Load("quad", nil)
	require.NoError(t, err)
	require.Len(t, res.Data.([]*metadata.GeometryConfig), 1)
}

func TestMeshLoaderFailedImportLeavesNoCache(t *testing.T) {
	base := t.TempDir()
	models := filepath.Join(base, assets.ModelsPath)
	writeFile(t, models, "broken.obj", "v 0 0 0\nf 1 2 3\n")

	_, err := NewMeshLoader(base).Load("broken", nil)
	require.True(t, errors.Is(err, core.ErrLoadFailure))
	_, err = os.Stat(filepath.Join(models, "broken.dsm"))
	require.True(t, os.IsNotExist(err))
}

func TestMeshLoaderUnknownName(t *testing.T) {
	_, err := NewMeshLoader(t.TempDir()).Load("nothing", nil)
	require.True(t, errors.Is(err, core.ErrNotFound))
}
