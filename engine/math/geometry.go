package math

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
)

// GenerateNormals writes a flat face normal to the three vertices of every triangle.
// Smoothing is a separate pass.
func GenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)
		normal := safeNormalize(edge1.Cross(edge2))

		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GenerateTangents computes one tangent per triangle from the texcoord deltas and
// assigns it to the triangle's three vertices. W carries the handedness sign.
// Triangles with degenerate texcoords get the +X tangent.
func GenerateTangents(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := float64(vertices[i1].Texcoord[0] - vertices[i0].Texcoord[0])
		deltaV1 := float64(vertices[i1].Texcoord[1] - vertices[i0].Texcoord[1])
		deltaU2 := float64(vertices[i2].Texcoord[0] - vertices[i0].Texcoord[0])
		deltaV2 := float64(vertices[i2].Texcoord[1] - vertices[i0].Texcoord[1])

		tangent := mgl32.Vec3{1, 0, 0}
		if dividend := deltaU1*deltaV2 - deltaU2*deltaV1; dividend != 0 {
			fc := 1.0 / dividend
			t := mgl32.Vec3{
				float32(fc * (deltaV2*float64(edge1[0]) - deltaV1*float64(edge2[0]))),
				float32(fc * (deltaV2*float64(edge1[1]) - deltaV1*float64(edge2[1]))),
				float32(fc * (deltaV2*float64(edge1[2]) - deltaV1*float64(edge2[2]))),
			}
			tangent = safeNormalize(t)
		}

		handedness := float32(1.0)
		if deltaV1*deltaU2-deltaV2*deltaU1 < 0 {
			handedness = -1.0
		}
		t4 := tangent.Vec4(handedness)
		vertices[i0].Tangent = t4
		vertices[i1].Tangent = t4
		vertices[i2].Tangent = t4
	}
}

func reassignIndex(indices []uint32, from, to uint32) {
	for i := range indices {
		if indices[i] == from {
			indices[i] = to
		} else if indices[i] > from {
			// Pull in all indices higher than 'from' by 1.
			indices[i]--
		}
	}
}

// DeduplicateVertices returns the unique vertices and rewrites indices in place so
// they address the returned slice. Quadratic in the vertex count; it only runs at
// import time.
func DeduplicateVertices(vertices []Vertex3D, indices []uint32) []Vertex3D {
	unique := make([]Vertex3D, 0, len(vertices))
	foundCount := uint32(0)
	for v := range vertices {
		found := false
		for u := range unique {
			if unique[u].Equal(vertices[v]) {
				// Reassign indices, do not copy.
				reassignIndex(indices, uint32(v)-foundCount, uint32(u))
				foundCount++
				found = true
				break
			}
		}
		if !found {
			unique = append(unique, vertices[v])
		}
	}

	core.LogDebug("geometry de-duplicate vertices: removed %d vertices, origin/now %d/%d", len(vertices)-len(unique), len(vertices), len(unique))
	return unique
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || stdmath.IsNaN(float64(l)) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
