package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func triangle() []Vertex3D {
	return []Vertex3D{
		{Position: mgl32.Vec3{0, 0, 0}, Texcoord: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, Texcoord: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0, 1, 0}, Texcoord: mgl32.Vec2{0, 1}},
	}
}

func TestGenerateNormals(t *testing.T) {
	vertices := triangle()
	GenerateNormals(vertices, []uint32{0, 1, 2})
	for _, v := range vertices {
		require.Equal(t, mgl32.Vec3{0, 0, 1}, v.Normal)
	}
}

func TestGenerateTangents(t *testing.T) {
	vertices := triangle()
	GenerateTangents(vertices, []uint32{0, 1, 2})
	for _, v := range vertices {
		requireVec4InDelta(t, mgl32.Vec4{1, 0, 0, -1}, v.Tangent)
	}
}

func TestGenerateTangentsMirroredTexcoordsFlipHandedness(t *testing.T) {
	vertices := triangle()
	// U runs against X.
	vertices[0].Texcoord = mgl32.Vec2{1, 0}
	vertices[1].Texcoord = mgl32.Vec2{0, 0}
	vertices[2].Texcoord = mgl32.Vec2{1, 1}
	GenerateTangents(vertices, []uint32{0, 1, 2})
	for _, v := range vertices {
		requireVec4InDelta(t, mgl32.Vec4{-1, 0, 0, 1}, v.Tangent)
	}
}

func TestGenerateTangentsIsDeterministic(t *testing.T) {
	vertices, indices := grid(3)
	first := append([]Vertex3D(nil), vertices...)
	second := append([]Vertex3D(nil), vertices...)

	GenerateTangents(first, indices)
	GenerateTangents(second, indices)
	require.Equal(t, first, second)
	for _, v := range first {
		require.Equal(t, float32(-1), v.Tangent.W())
	}
}

func TestGenerateTangentsDegenerateTexcoords(t *testing.T) {
	vertices := triangle()
	for i := range vertices {
		vertices[i].Texcoord = mgl32.Vec2{0.5, 0.5}
	}
	GenerateTangents(vertices, []uint32{0, 1, 2})
	for _, v := range vertices {
		require.Equal(t, mgl32.Vec4{1, 0, 0, 1}, v.Tangent)
	}
}

func TestDeduplicateVertices(t *testing.T) {
	p := []Vertex3D{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{1, 1, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
	// Two triangles of a quad, each with its own copy of the shared corners.
	vertices := []Vertex3D{p[0], p[1], p[2], p[2], p[3], p[0]}
	indices := []uint32{0, 1, 2, 3, 4, 5}

	unique := DeduplicateVertices(vertices, indices)
	require.Equal(t, p, unique)
	require.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, indices)
}

// grid builds a segments x segments plane in which every quad owns its four corners,
// so neighbouring quads duplicate their shared vertices.
func grid(segments int) ([]Vertex3D, []uint32) {
	var vertices []Vertex3D
	var indices []uint32
	corner := func(x, y int) Vertex3D {
		return Vertex3D{
			Position: mgl32.Vec3{float32(x), float32(y), 0},
			Normal:   mgl32.Vec3{0, 0, 1},
			Texcoord: mgl32.Vec2{float32(x) / float32(segments), float32(y) / float32(segments)},
			Colour:   mgl32.Vec4{1, 1, 1, 1},
		}
	}
	for y := 0; y < segments; y++ {
		for x := 0; x < segments; x++ {
			base := uint32(len(vertices))
			vertices = append(vertices, corner(x, y), corner(x+1, y+1), corner(x, y+1), corner(x+1, y))
			indices = append(indices, base, base+1, base+2, base, base+3, base+1)
		}
	}
	return vertices, indices
}

func TestDeduplicateVerticesIsIdempotent(t *testing.T) {
	vertices, indices := grid(2)
	require.Len(t, vertices, 16)

	unique := DeduplicateVertices(vertices, indices)
	require.Len(t, unique, 9)
	for _, i := range indices {
		require.Less(t, i, uint32(len(unique)))
	}

	again := append([]Vertex3D(nil), unique...)
	againIndices := append([]uint32(nil), indices...)
	again = DeduplicateVertices(again, againIndices)
	require.Equal(t, unique, again)
	require.Equal(t, indices, againIndices)
}

func TestExtentsFrom(t *testing.T) {
	e := ExtentsFrom([]Vertex3D{
		{Position: mgl32.Vec3{-1, 2, 3}},
		{Position: mgl32.Vec3{4, -5, 0}},
		{Position: mgl32.Vec3{0, 0, 6}},
	})
	require.Equal(t, mgl32.Vec3{-1, -5, 0}, e.Min)
	require.Equal(t, mgl32.Vec3{4, 2, 6}, e.Max)
	require.Equal(t, mgl32.Vec3{1.5, -1.5, 3}, e.Center())

	require.Equal(t, Extents3D{}, ExtentsFrom(nil))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 3, Clamp(7, 0, 3))
	require.Equal(t, float32(0), Clamp(float32(-1), 0, 1))
	require.Equal(t, uint32(5), Clamp(uint32(5), 1, 255))
}
