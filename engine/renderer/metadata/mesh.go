package metadata

import "github.com/spaghettifunk/kiln/engine/math"

// Mesh is a named collection of geometries drawn with one transform.
// A mesh whose Generation is InvalidIDUint8 is not renderable.
type Mesh struct {
	UniqueID   uint32
	Name       string
	Generation uint8
	Geometries []*Geometry
	Transform  math.TransformHandle
}

func (m *Mesh) IsRenderable() bool {
	return m != nil && m.Generation != InvalidIDUint8
}

// Skybox is the state the skybox view renders.
type Skybox struct {
	Cubemap           *TextureMap
	Geometry          *Geometry
	InstanceID        uint32
	RenderFrameNumber uint64
}
