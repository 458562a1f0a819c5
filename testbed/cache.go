package testbed

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/spaghettifunk/kiln/engine/systems"
)

// WarmMeshCache imports every .obj and .gltf model under the asset base path that has
// no .dsm cache yet. Imports run on the job workers, no graphics backend is involved.
// It returns the number of models that were imported.
func WarmMeshCache(cfg *core.EngineConfig) (int, error) {
	modelsDir := filepath.Join(cfg.Assets.BasePath, assets.ModelsPath)
	entries, err := os.ReadDir(modelsDir)
	if err != nil {
		return 0, errors.Wrapf(core.ErrNotFound, "reading %s: %v", modelsDir, err)
	}

	pending := map[string]struct{}{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".obj" && ext != ".gltf" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, err := os.Stat(filepath.Join(modelsDir, name+".dsm")); err == nil {
			continue
		}
		pending[name] = struct{}{}
	}
	if len(pending) == 0 {
		core.LogInfo("mesh cache is warm, nothing to import")
		return 0, nil
	}

	rs, err := systems.NewResourceSystem(&systems.ResourceSystemConfig{
		MaxLoaderCount: cfg.Systems.MaxLoaderCount,
		AssetBasePath:  cfg.Assets.BasePath,
	})
	if err != nil {
		return 0, err
	}
	defer rs.Shutdown()

	js, err := systems.NewJobSystem(cfg.Jobs.Workers, cfg.Jobs.QueueSize)
	if err != nil {
		return 0, err
	}
	defer js.Shutdown()

	imported := 0
	var failures error
	for name := range pending {
		job := js.CreateJob(
			func(params interface{}) (interface{}, error) {
				res, err := rs.Load(params.(string), metadata.ResourceTypeMesh, nil)
				if err != nil {
					return nil, err
				}
				return params, rs.Unload(res)
			},
			func(result interface{}) {
				imported++
				core.LogInfo("cached mesh '%s'", result)
			},
			func(params interface{}, err error) {
				failures = errors.CombineErrors(failures, errors.Wrapf(err, "importing '%s'", params))
			},
			name,
		)
		job.JobType = metadata.JOB_TYPE_RESOURCE_LOAD
		if err := js.Submit(job); err != nil {
			return imported, err
		}
	}

	for js.Pending() > 0 {
		js.Update()
		time.Sleep(time.Millisecond)
	}
	return imported, failures
}
