package metadata

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/math"
)

const (
	DEFAULT_GEOMETRY_NAME       string = "default"
	DEFAULT_GEOMETRY_CUBE_NAME  string = "default_cube"
	DEFAULT_GEOMETRY_PLANE_NAME string = "default_plane"
)

/**
 * @brief Represents actual geometry in the world.
 * Typically (but not always, depending on use) paired with a material.
 */
type Geometry struct {
	/** @brief The geometry identifier, equal to its slot index. */
	ID uint32
	/** @brief The backend geometry id. */
	InternalID uint32
	Generation uint16
	Center     mgl32.Vec3
	Extents    math.Extents3D
	Name       string
	Material   *Material

	VertexCount  uint32
	VertexSize   uint32
	IndexCount   uint32
	InternalData interface{}
}

func (g *Geometry) Invalidate() {
	*g = Geometry{
		ID:         InvalidID,
		InternalID: InvalidID,
		Generation: InvalidIDUint16,
	}
}

/**
 * @brief Represents the configuration for a geometry.
 * Produced by the import pipeline or generators, consumed once by the geometry system.
 */
type GeometryConfig struct {
	/** @brief The size of each vertex. */
	VertexSize uint32
	/** @brief 3D vertices. Mutually exclusive with Vertices2D. */
	Vertices   []math.Vertex3D
	Vertices2D []math.Vertex2D
	/** @brief The size of each index. */
	IndexSize    uint32
	Indices      []uint32
	Center       mgl32.Vec3
	MinExtents   mgl32.Vec3
	MaxExtents   mgl32.Vec3
	Name         string
	MaterialName string
}

func (c *GeometryConfig) VertexCount() uint32 {
	if c.Vertices2D != nil {
		return uint32(len(c.Vertices2D))
	}
	return uint32(len(c.Vertices))
}

func (c *GeometryConfig) IndexCount() uint32 {
	return uint32(len(c.Indices))
}

// VertexBytes encodes the vertices little-endian, tightly packed.
func (c *GeometryConfig) VertexBytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, int(c.VertexSize)*int(c.VertexCount())))
	if c.Vertices2D != nil {
		_ = binary.Write(buf, binary.LittleEndian, c.Vertices2D)
	} else {
		_ = binary.Write(buf, binary.LittleEndian, c.Vertices)
	}
	return buf.Bytes()
}

// Dispose drops the heap buffers once the config has been uploaded.
func (c *GeometryConfig) Dispose() {
	c.Vertices = nil
	c.Vertices2D = nil
	c.Indices = nil
}

// Clone deep copies the buffers so the result can cross goroutines.
func (c *GeometryConfig) Clone() *GeometryConfig {
	out := *c
	if c.Vertices != nil {
		out.Vertices = append([]math.Vertex3D(nil), c.Vertices...)
	}
	if c.Vertices2D != nil {
		out.Vertices2D = append([]math.Vertex2D(nil), c.Vertices2D...)
	}
	out.Indices = append([]uint32(nil), c.Indices...)
	return &out
}

/** @brief Geometry plus the matrix it is drawn with. */
type GeometryRenderData struct {
	Model    mgl32.Mat4
	Geometry *Geometry
}
