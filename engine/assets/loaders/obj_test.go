package loaders

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# a textured quad
mtllib quad.mtl
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl stone
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestImportOBJQuad(t *testing.T) {
	result, err := ImportOBJ(strings.NewReader(quadOBJ), "quad")
	require.NoError(t, err)
	require.Equal(t, "quad.mtl", result.MaterialLibrary)
	require.Len(t, result.Geometries, 1)

	g := result.Geometries[0]
	require.Equal(t, "stone", g.MaterialName)
	// The quad is fanned into two triangles sharing two corners.
	require.Len(t, g.Vertices, 4)
	require.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, g.Indices)
	require.Equal(t, mgl32.Vec3{0, 0, 0}, g.MinExtents)
	require.Equal(t, mgl32.Vec3{1, 1, 0}, g.MaxExtents)
	require.Equal(t, mgl32.Vec3{0.5, 0.5, 0}, g.Center)
	for _, v := range g.Vertices {
		require.Equal(t, mgl32.Vec3{0, 0, 1}, v.Normal)
		require.Equal(t, mgl32.Vec4{1, 1, 1, 1}, v.Colour)
		require.NotEqual(t, mgl32.Vec4{}, v.Tangent)
	}
}

func TestImportOBJFaceForms(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
vt 0.5 0.5
vn 0 0 -1
f 1 2 3
f 1/1 2/1 3/1
f 1//1 2//1 3//1
f -3/1/1 -2/1/1 -1/1/1
`
	result, err := ImportOBJ(strings.NewReader(src), "forms")
	require.NoError(t, err)
	require.Len(t, result.Geometries, 1)
	g := result.Geometries[0]
	require.Equal(t, "forms", g.Name)
	require.Len(t, g.Indices, 12)

	// Position only: flat normal from the winding, default texcoord.
	require.Equal(t, mgl32.Vec3{0, 0, 1}, g.Vertices[g.Indices[0]].Normal)
	require.Equal(t, mgl32.Vec2{0, 0}, g.Vertices[g.Indices[0]].Texcoord)
	// Explicit normals win over the flat one.
	require.Equal(t, mgl32.Vec3{0, 0, -1}, g.Vertices[g.Indices[6]].Normal)
	require.Equal(t, mgl32.Vec2{0.5, 0.5}, g.Vertices[g.Indices[9]].Texcoord)
}

func TestImportOBJGroupsSplitGeometries(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
g first
usemtl a
f 1 2 3
g second
usemtl b
f 1 2 3
usemtl c
f 3 2 1
`
	result, err := ImportOBJ(strings.NewReader(src), "groups")
	require.NoError(t, err)
	require.Len(t, result.Geometries, 3)
	require.Equal(t, "a", result.Geometries[0].MaterialName)
	require.Equal(t, "b", result.Geometries[1].MaterialName)
	require.Equal(t, "c", result.Geometries[2].MaterialName)
	// Geometries flushed together after the first get an index suffix.
	require.True(t, strings.HasSuffix(result.Geometries[2].Name, "1"))
}

func TestImportOBJErrors(t *testing.T) {
	cases := map[string]string{
		"no faces":        "v 0 0 0\n",
		"bad number":      "v 0 x 0\n",
		"index too large": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"too few":         "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"no position":     "v 0 0 0\nvt 0 0\nf /1 /1 /1\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ImportOBJ(strings.NewReader(src), name)
			require.True(t, errors.Is(err, core.ErrLoadFailure))
		})
	}
}
