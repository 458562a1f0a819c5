package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/containers"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/components"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system.
	 */
	MaxCameraCount uint32
}

type cameraLookup struct {
	ID             uint32
	ReferenceCount uint64
	Camera         *components.Camera
}

type CameraSystem struct {
	Config  *CameraSystemConfig
	Lookup  map[string]uint32
	Cameras []*cameraLookup
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := errors.Wrap(core.ErrConfig, "func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogFatal(err.Error())
		return nil, err
	}
	cs := &CameraSystem{
		Config:  config,
		Cameras: make([]*cameraLookup, config.MaxCameraCount),
		Lookup:  make(map[string]uint32, config.MaxCameraCount),
	}
	// Invalidate all cameras in the array.
	for i := range cs.Cameras {
		cs.Cameras[i] = &cameraLookup{ID: metadata.InvalidID}
	}
	// Setup default camera.
	cs.DefaultCamera = components.NewCamera()
	return cs, nil
}

func (cs *CameraSystem) Shutdown() error {
	clear(cs.Lookup)
	return nil
}

/**
 * @brief Acquires a pointer to a camera by name.
 * If one is not found, a new one is created and retuned.
 * Internal reference counter is incremented.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if metadata.IsDefaultName(name) {
		return cs.DefaultCamera, nil
	}
	key := containers.NormalizeName(name)
	id, ok := cs.Lookup[key]
	if !ok {
		// Find free slot
		free, found := containers.FirstFree(cs.Cameras, func(c *cameraLookup) bool {
			return c.ID == metadata.InvalidID
		})
		if !found {
			err := errors.Wrap(core.ErrCapacityExceeded, "camera system failed to acquire new slot. Adjust camera system config to allow more")
			core.LogError(err.Error())
			return nil, err
		}

		// Create/register the new camera.
		core.LogDebug("Creating new camera named '%s'...", name)
		cs.Cameras[free].Camera = components.NewCamera()
		cs.Cameras[free].ID = free
		cs.Lookup[key] = free
		id = free
	}
	cs.Cameras[id].ReferenceCount++
	return cs.Cameras[id].Camera, nil
}

/**
 * @brief Releases a camera with the given name. Intenral reference
 * counter is decremented. If this reaches 0, the camera is reset,
 * and the reference is usable by a new camera.
 */
func (cs *CameraSystem) Release(name string) error {
	if metadata.IsDefaultName(name) {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return nil
	}
	key := containers.NormalizeName(name)
	id, ok := cs.Lookup[key]
	if !ok {
		core.LogWarn("CameraSystem.Release failed lookup of '%s'. Nothing was done.", name)
		return errors.Wrapf(core.ErrNotFound, "camera '%s' is not registered", name)
	}
	// Decrement the reference count, and reset the camera if the counter reaches 0.
	c := cs.Cameras[id]
	c.ReferenceCount--
	if c.ReferenceCount == 0 {
		c.Camera.Reset()
		c.Camera = nil
		c.ID = metadata.InvalidID
		delete(cs.Lookup, key)
	}
	return nil
}

/**
 * @brief Gets a pointer to the default camera.
 */
func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}
