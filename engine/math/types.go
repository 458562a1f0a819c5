package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex3D is the engine's native vertex layout. Field order is also the byte
// order in geometry buffers and in the DSM cache.
type Vertex3D struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Texcoord mgl32.Vec2
	Colour   mgl32.Vec4
	Tangent  mgl32.Vec4
}

// Vertex2D is used by screen space geometry.
type Vertex2D struct {
	Position mgl32.Vec2
	Texcoord mgl32.Vec2
}

const (
	// Vertex3DSize is the byte stride of Vertex3D.
	Vertex3DSize uint32 = (3 + 3 + 2 + 4 + 4) * 4
	// Vertex2DSize is the byte stride of Vertex2D.
	Vertex2DSize uint32 = (2 + 2) * 4
	// IndexSize is the byte stride of a uint32 index.
	IndexSize uint32 = 4
)

// Equal compares every attribute that takes part in de-duplication. Tangents are
// derived after de-duplication and are ignored.
func (v Vertex3D) Equal(o Vertex3D) bool {
	return v.Position == o.Position &&
		v.Normal == o.Normal &&
		v.Texcoord == o.Texcoord &&
		v.Colour == o.Colour
}

type Extents3D struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center is the midpoint of the extents.
func (e Extents3D) Center() mgl32.Vec3 {
	return e.Min.Add(e.Max).Mul(0.5)
}

// Grow extends the extents so they contain p.
func (e *Extents3D) Grow(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < e.Min[i] {
			e.Min[i] = p[i]
		}
		if p[i] > e.Max[i] {
			e.Max[i] = p[i]
		}
	}
}

// ExtentsFrom returns the extents of the given positions, zero for an empty set.
func ExtentsFrom(vertices []Vertex3D) Extents3D {
	if len(vertices) == 0 {
		return Extents3D{}
	}
	e := Extents3D{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		e.Grow(v.Position)
	}
	return e
}
