package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

// MeshLoadParams is the input of a mesh load job. Workers only read it.
type MeshLoadParams struct {
	ResourceName string
}

// MeshSystem creates meshes either synchronously from configs or asynchronously from
// a mesh resource. Every mesh owns one transform in the shared arena.
type MeshSystem struct {
	Transforms *math.TransformArena

	ids            *core.IDAllocator
	jobSystem      *JobSystem
	geometrySystem *GeometrySystem
	resourceSystem *ResourceSystem
}

func NewMeshSystem(js *JobSystem, gs *GeometrySystem, rs *ResourceSystem) (*MeshSystem, error) {
	if js == nil || gs == nil || rs == nil {
		err := errors.Wrap(core.ErrConfig, "func NewMeshSystem - job, geometry and resource systems are required")
		core.LogFatal(err.Error())
		return nil, err
	}
	return &MeshSystem{
		Transforms:     math.NewTransformArena(64),
		ids:            core.NewIDAllocator(64),
		jobSystem:      js,
		geometrySystem: gs,
		resourceSystem: rs,
	}, nil
}

func (ms *MeshSystem) Shutdown() error {
	return nil
}

func (ms *MeshSystem) newMesh(name string) *metadata.Mesh {
	mesh := &metadata.Mesh{
		Name:       name,
		Generation: metadata.InvalidIDUint8,
		Transform:  ms.Transforms.CreateIdentity(),
	}
	mesh.UniqueID = ms.ids.Acquire(mesh)
	return mesh
}

/**
 * @brief Loads a mesh from a mesh resource in the background. The returned mesh is not
 * renderable (its generation is INVALID) until the job completes and every geometry
 * has been uploaded. A failed load leaves the mesh not renderable.
 */
func (ms *MeshSystem) LoadFromResource(resourceName string) (*metadata.Mesh, error) {
	mesh := ms.newMesh(resourceName)

	job := ms.jobSystem.CreateJob(
		ms.meshLoadJobStart,
		func(result interface{}) {
			ms.meshLoadJobSuccess(mesh, result)
		},
		ms.meshLoadJobFail,
		&MeshLoadParams{ResourceName: resourceName},
	)
	job.JobType = metadata.JOB_TYPE_RESOURCE_LOAD
	if err := ms.jobSystem.Submit(job); err != nil {
		core.LogError("failed to submit load job for mesh '%s': %v", resourceName, err)
		return mesh, err
	}
	return mesh, nil
}

/**
 * @brief Called when a mesh loading job begins. Runs on a worker: it must only touch
 * the resource system, and hands back copies of the configs.
 */
func (ms *MeshSystem) meshLoadJobStart(params interface{}) (interface{}, error) {
	loadParams, ok := params.(*MeshLoadParams)
	if !ok {
		return nil, errors.Wrapf(core.ErrConsistency, "mesh load job got %T", params)
	}
	res, err := ms.resourceSystem.Load(loadParams.ResourceName, metadata.ResourceTypeMesh, nil)
	if err != nil {
		return nil, err
	}
	configs, ok := res.Data.([]*metadata.GeometryConfig)
	if !ok {
		_ = ms.resourceSystem.Unload(res)
		return nil, errors.Wrapf(core.ErrConsistency, "mesh resource '%s' carries %T", loadParams.ResourceName, res.Data)
	}
	out := make([]*metadata.GeometryConfig, len(configs))
	for i, c := range configs {
		out[i] = c.Clone()
	}
	if err := ms.resourceSystem.Unload(res); err != nil {
		core.LogWarn("unloading mesh resource '%s': %v", loadParams.ResourceName, err)
	}
	return out, nil
}

/**
 * @brief Called on the primary thread when the job completes successfully.
 * This also handles the GPU upload.
 */
func (ms *MeshSystem) meshLoadJobSuccess(mesh *metadata.Mesh, result interface{}) {
	configs, ok := result.([]*metadata.GeometryConfig)
	if !ok {
		core.LogError("mesh '%s' load produced %T", mesh.Name, result)
		return
	}
	// Unloaded while the job was in flight.
	if mesh.Transform == math.NoTransform {
		for _, cfg := range configs {
			cfg.Dispose()
		}
		core.LogDebug("Mesh '%s' was unloaded before its load completed, dropping it.", mesh.Name)
		return
	}
	geometries, err := ms.acquireGeometries(configs)
	if err != nil {
		core.LogError("Failed to upload mesh '%s': %v", mesh.Name, err)
		return
	}
	mesh.Geometries = geometries
	mesh.Generation++
	core.LogDebug("Successfully loaded mesh '%s'.", mesh.Name)
}

/**
 * @brief Called on the primary thread when the job fails.
 */
func (ms *MeshSystem) meshLoadJobFail(params interface{}, err error) {
	name := "<unknown>"
	if p, ok := params.(*MeshLoadParams); ok {
		name = p.ResourceName
	}
	core.LogError("Failed to load mesh '%s': %v", name, err)
}

// acquireGeometries uploads every config. On failure what was acquired is released again.
func (ms *MeshSystem) acquireGeometries(configs []*metadata.GeometryConfig) ([]*metadata.Geometry, error) {
	geometries := make([]*metadata.Geometry, 0, len(configs))
	for _, cfg := range configs {
		g, err := ms.geometrySystem.AcquireFromConfig(cfg, true)
		if err != nil {
			for _, acquired := range geometries {
				_ = ms.geometrySystem.Release(acquired)
			}
			return nil, err
		}
		cfg.Dispose()
		geometries = append(geometries, g)
	}
	return geometries, nil
}

// CreateFromConfigs builds a renderable mesh right away, typically for procedural shapes.
func (ms *MeshSystem) CreateFromConfigs(name string, configs []*metadata.GeometryConfig) (*metadata.Mesh, error) {
	mesh := ms.newMesh(name)
	geometries, err := ms.acquireGeometries(configs)
	if err != nil {
		ms.Unload(mesh)
		return nil, err
	}
	mesh.Geometries = geometries
	mesh.Generation = 0
	return mesh, nil
}

// Unload releases the geometries of the mesh and its transform. A pending load of the
// mesh is discarded when it completes.
func (ms *MeshSystem) Unload(mesh *metadata.Mesh) {
	if mesh == nil || mesh.Transform == math.NoTransform {
		return
	}
	for _, g := range mesh.Geometries {
		if err := ms.geometrySystem.Release(g); err != nil {
			core.LogWarn("releasing geometry of mesh '%s': %v", mesh.Name, err)
		}
	}
	mesh.Geometries = nil
	mesh.Generation = metadata.InvalidIDUint8
	ms.Transforms.Destroy(mesh.Transform)
	mesh.Transform = math.NoTransform
	if err := ms.ids.Release(mesh.UniqueID); err != nil {
		core.LogWarn(err.Error())
	}
}
