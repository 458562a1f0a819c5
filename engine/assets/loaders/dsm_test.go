package loaders

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

func sampleGeometry(name, material string) *metadata.GeometryConfig {
	vertices := []math.Vertex3D{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}, Texcoord: mgl32.Vec2{0, 0}, Colour: mgl32.Vec4{1, 1, 1, 1}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}, Texcoord: mgl32.Vec2{1, 0}, Colour: mgl32.Vec4{1, 1, 1, 1}},
		{Position: mgl32.Vec3{0, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, Texcoord: mgl32.Vec2{0, 1}, Colour: mgl32.Vec4{1, 1, 1, 1}},
	}
	indices := []uint32{0, 1, 2}
	math.GenerateTangents(vertices, indices)
	extents := math.ExtentsFrom(vertices)
	return &metadata.GeometryConfig{
		VertexSize:   math.Vertex3DSize,
		Vertices:     vertices,
		IndexSize:    math.IndexSize,
		Indices:      indices,
		Center:       extents.Center(),
		MinExtents:   extents.Min,
		MaxExtents:   extents.Max,
		Name:         name,
		MaterialName: material,
	}
}

func TestDSMRoundTrip(t *testing.T) {
	geometries := []*metadata.GeometryConfig{
		sampleGeometry("falcon", "hull"),
		sampleGeometry("falcon1", "glass"),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteDSM(&buf, "falcon", geometries))

	name, read, err := ReadDSM(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "falcon", name)
	require.Equal(t, geometries, read)
}

func TestDSMHeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDSM(&buf, "abc", nil))
	b := buf.Bytes()

	require.Equal(t, DSMVersion, binary.LittleEndian.Uint16(b[0:2]))
	// The name length counts the trailing NUL.
	require.Equal(t, uint32(4), binary.LittleEndian.Uint32(b[2:6]))
	require.Equal(t, []byte("abc\x00"), b[6:10])
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[10:14]))
	require.Len(t, b, 14)
}

func TestReadDSMRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDSM(&buf, "tri", []*metadata.GeometryConfig{sampleGeometry("tri", "m")}))
	good := buf.Bytes()

	// Truncated.
	_, _, err := ReadDSM(bytes.NewReader(good[:len(good)-5]))
	require.True(t, errors.Is(err, core.ErrLoadFailure))

	// Unknown version.
	bad := append([]byte(nil), good...)
	binary.LittleEndian.PutUint16(bad, 0x0002)
	_, _, err = ReadDSM(bytes.NewReader(bad))
	require.True(t, errors.Is(err, core.ErrLoadFailure))
}

func TestWriteDSMRejects2DGeometry(t *testing.T) {
	g := &metadata.GeometryConfig{Vertices2D: []math.Vertex2D{{}}}
	err := WriteDSM(&bytes.Buffer{}, "ui", []*metadata.GeometryConfig{g})
	require.True(t, errors.Is(err, core.ErrConsistency))
}

func TestWriteDSMFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.dsm")
	geometries := []*metadata.GeometryConfig{sampleGeometry("tri", "m")}
	require.NoError(t, WriteDSMFile(path, "tri", geometries))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	name, read, err := ReadDSMFile(path)
	require.NoError(t, err)
	require.Equal(t, "tri", name)
	require.Equal(t, geometries, read)
}
