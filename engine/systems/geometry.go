package systems

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

type GeometrySystemConfig struct {
	/**
	 * @brief Max number of geometries that can be loaded at once.
	 * NOTE: Should be significantly greater than the number of static meshes because
	 * the there can and will be more than one of these per mesh.
	 * Take other systems into account as well.
	 */
	MaxGeometryCount uint32
}

type geometryReference struct {
	ReferenceCount uint64
	AutoRelease    bool
	Geometry       *metadata.Geometry
}

type GeometrySystem struct {
	Config            *GeometrySystemConfig
	DefaultGeometry   *metadata.Geometry
	Default2DGeometry *metadata.Geometry
	// Array of registered geometries.
	RegisteredGeometries []*geometryReference

	materialSystem *MaterialSystem
	backend        renderer.Backend
}

func NewGeometrySystem(config *GeometrySystemConfig, ms *MaterialSystem, backend renderer.Backend) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := errors.Wrap(core.ErrConfig, "func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogFatal(err.Error())
		return nil, err
	}
	if backend == nil || ms == nil {
		err := errors.Wrap(core.ErrConfig, "func NewGeometrySystem - backend and material system are required")
		core.LogFatal(err.Error())
		return nil, err
	}

	gs := &GeometrySystem{
		Config:               config,
		RegisteredGeometries: make([]*geometryReference, config.MaxGeometryCount),
		materialSystem:       ms,
		backend:              backend,
	}

	// Invalidate all geometries in the array.
	for i := range gs.RegisteredGeometries {
		g := &metadata.Geometry{}
		g.Invalidate()
		gs.RegisteredGeometries[i] = &geometryReference{Geometry: g}
	}

	if err := gs.createDefaultGeometries(); err != nil {
		core.LogFatal("failed to create default geometries. Application cannot continue: %v", err)
		return nil, err
	}
	return gs, nil
}

func (gs *GeometrySystem) Shutdown() error {
	for _, ref := range gs.RegisteredGeometries {
		if ref.Geometry.ID != metadata.InvalidID {
			gs.destroyGeometry(ref.Geometry)
			ref.ReferenceCount = 0
			ref.AutoRelease = false
		}
	}
	gs.backend.GeometryDestroy(gs.DefaultGeometry)
	gs.backend.GeometryDestroy(gs.Default2DGeometry)
	return nil
}

/**
 * @brief Acquires an existing geometry by id.
 */
func (gs *GeometrySystem) AcquireByID(id uint32) (*metadata.Geometry, error) {
	if id != metadata.InvalidID && id < uint32(len(gs.RegisteredGeometries)) && gs.RegisteredGeometries[id].Geometry.ID != metadata.InvalidID {
		gs.RegisteredGeometries[id].ReferenceCount++
		return gs.RegisteredGeometries[id].Geometry, nil
	}
	err := errors.Wrapf(core.ErrNotFound, "geometry system cannot acquire invalid id %d", id)
	core.LogError(err.Error())
	return nil, err
}

/**
 * @brief Registers and acquires a new geometry using the given config. Geometries are
 * not deduplicated by name: every call claims a fresh slot with a reference count of one.
 */
func (gs *GeometrySystem) AcquireFromConfig(config *metadata.GeometryConfig, autoRelease bool) (*metadata.Geometry, error) {
	var ref *geometryReference
	var id uint32
	for i, r := range gs.RegisteredGeometries {
		if r.Geometry.ID == metadata.InvalidID {
			// Found empty slot.
			ref = r
			id = uint32(i)
			break
		}
	}
	if ref == nil {
		err := errors.Wrapf(core.ErrCapacityExceeded, "unable to obtain free slot for geometry '%s'. Adjust configuration to allow more space", config.Name)
		core.LogError(err.Error())
		return nil, err
	}

	if err := gs.createGeometry(config, ref.Geometry); err != nil {
		ref.Geometry.Invalidate()
		ref.ReferenceCount = 0
		ref.AutoRelease = false
		err = errors.Wrapf(core.ErrLoadFailure, "failed to create geometry '%s': %v", config.Name, err)
		core.LogError(err.Error())
		return nil, err
	}
	ref.Geometry.ID = id
	ref.ReferenceCount = 1
	ref.AutoRelease = autoRelease
	return ref.Geometry, nil
}

/**
 * @brief Releases a reference to the provided geometry.
 */
func (gs *GeometrySystem) Release(geometry *metadata.Geometry) error {
	if geometry == nil {
		return nil
	}
	if geometry == gs.DefaultGeometry || geometry == gs.Default2DGeometry {
		return nil
	}
	if geometry.ID == metadata.InvalidID || geometry.ID >= uint32(len(gs.RegisteredGeometries)) {
		core.LogWarn("geometry system cannot release invalid geometry id. Nothing was done.")
		return errors.Wrap(core.ErrNotFound, "release of invalid geometry id")
	}

	ref := gs.RegisteredGeometries[geometry.ID]
	if ref.Geometry != geometry {
		err := errors.Wrapf(core.ErrConsistency, "geometry id mismatch for id %d. Check registration logic, as this should never occur", geometry.ID)
		core.LogFatal(err.Error())
		return err
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("Tried to release geometry '%s' with no references.", geometry.Name)
		return errors.Wrapf(core.ErrNotFound, "geometry '%s' is not referenced", geometry.Name)
	}
	ref.ReferenceCount--
	// Also blanks out the geometry id.
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		gs.destroyGeometry(geometry)
		ref.AutoRelease = false
	}
	return nil
}

// ReferenceCount reports the count of a geometry slot.
func (gs *GeometrySystem) ReferenceCount(id uint32) uint64 {
	if id >= uint32(len(gs.RegisteredGeometries)) {
		return 0
	}
	return gs.RegisteredGeometries[id].ReferenceCount
}

func (gs *GeometrySystem) GetDefault() *metadata.Geometry {
	return gs.DefaultGeometry
}

func (gs *GeometrySystem) GetDefault2D() *metadata.Geometry {
	return gs.Default2DGeometry
}

func (gs *GeometrySystem) createGeometry(config *metadata.GeometryConfig, g *metadata.Geometry) error {
	if config.VertexSize == 0 {
		return errors.Wrapf(core.ErrLoadFailure, "geometry '%s' has no vertex size", config.Name)
	}
	g.Name = config.Name

	// Send the geometry off to the renderer to be uploaded to the GPU.
	if err := gs.backend.GeometryCreate(g, config.VertexSize, config.VertexCount(), config.VertexBytes(), config.IndexSize, config.IndexCount(), config.Indices); err != nil {
		return err
	}

	// Copy over extents, center, etc.
	g.Center = config.Center
	g.Extents = math.Extents3D{Min: config.MinExtents, Max: config.MaxExtents}
	g.Generation = 0

	// Acquire the material.
	if config.MaterialName != "" {
		m, err := gs.materialSystem.Acquire(config.MaterialName)
		if err != nil {
			core.LogWarn("Unable to acquire material '%s' for geometry '%s', using default.", config.MaterialName, config.Name)
		}
		g.Material = m
	}
	if g.Material == nil {
		g.Material = gs.materialSystem.GetDefault()
	}
	return nil
}

func (gs *GeometrySystem) destroyGeometry(g *metadata.Geometry) {
	gs.backend.GeometryDestroy(g)
	// Release the material.
	if g.Material != nil && g.Material != gs.materialSystem.GetDefault() {
		_ = gs.materialSystem.Release(g.Material.Name)
	}
	g.Invalidate()
}

func (gs *GeometrySystem) createDefaultGeometries() error {
	const f float32 = 10.0
	verts := []math.Vertex3D{
		{Position: mgl32.Vec3{-0.5 * f, -0.5 * f, 0}, Texcoord: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{0.5 * f, 0.5 * f, 0}, Texcoord: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-0.5 * f, 0.5 * f, 0}, Texcoord: mgl32.Vec2{0, 1}},
		{Position: mgl32.Vec3{0.5 * f, -0.5 * f, 0}, Texcoord: mgl32.Vec2{1, 0}},
	}
	for i := range verts {
		verts[i].Normal = mgl32.Vec3{0, 0, 1}
		verts[i].Colour = mgl32.Vec4{1, 1, 1, 1}
	}
	indices := []uint32{0, 1, 2, 0, 3, 1}
	math.GenerateTangents(verts, indices)

	cfg := &metadata.GeometryConfig{
		VertexSize: math.Vertex3DSize,
		Vertices:   verts,
		IndexSize:  math.IndexSize,
		Indices:    indices,
		Name:       metadata.DEFAULT_GEOMETRY_NAME,
	}
	g := &metadata.Geometry{}
	g.Invalidate()
	g.Name = cfg.Name
	// Send the geometry off to the renderer to be uploaded to the GPU.
	if err := gs.backend.GeometryCreate(g, cfg.VertexSize, cfg.VertexCount(), cfg.VertexBytes(), cfg.IndexSize, cfg.IndexCount(), cfg.Indices); err != nil {
		return errors.Wrapf(core.ErrLoadFailure, "default geometry: %v", err)
	}
	ext := math.ExtentsFrom(verts)
	g.Extents = ext
	g.Center = ext.Center()
	g.Generation = 0
	g.Material = gs.materialSystem.GetDefault()
	gs.DefaultGeometry = g

	// Create default 2d geometry.
	const uf float32 = 100.0
	verts2D := []math.Vertex2D{
		{Position: mgl32.Vec2{-0.5 * uf, -0.5 * uf}, Texcoord: mgl32.Vec2{0, 0}}, // 0    3
		{Position: mgl32.Vec2{0.5 * uf, 0.5 * uf}, Texcoord: mgl32.Vec2{1, 1}},   //
		{Position: mgl32.Vec2{-0.5 * uf, 0.5 * uf}, Texcoord: mgl32.Vec2{0, 1}},  //
		{Position: mgl32.Vec2{0.5 * uf, -0.5 * uf}, Texcoord: mgl32.Vec2{1, 0}},  // 2    1
	}
	// Indices (NOTE: counter-clockwise)
	indices2D := []uint32{2, 1, 0, 3, 0, 1}
	cfg2D := &metadata.GeometryConfig{
		VertexSize: math.Vertex2DSize,
		Vertices2D: verts2D,
		IndexSize:  math.IndexSize,
		Indices:    indices2D,
		Name:       metadata.DEFAULT_GEOMETRY_NAME + "_2d",
	}
	g2D := &metadata.Geometry{}
	g2D.Invalidate()
	g2D.Name = cfg2D.Name
	if err := gs.backend.GeometryCreate(g2D, cfg2D.VertexSize, cfg2D.VertexCount(), cfg2D.VertexBytes(), cfg2D.IndexSize, cfg2D.IndexCount(), cfg2D.Indices); err != nil {
		return errors.Wrapf(core.ErrLoadFailure, "default 2d geometry: %v", err)
	}
	g2D.Generation = 0
	g2D.Material = gs.materialSystem.GetDefault()
	gs.Default2DGeometry = g2D
	return nil
}

func nonZero(name string, v float32) float32 {
	if v == 0 {
		core.LogWarn("%s must be non-zero. Defaulting to one.", name)
		return 1
	}
	return v
}

/**
 * @brief Generates configuration for plane geometries given the provided parameters.
 * NOTE: vertex and index arrays are dynamically allocated and should be freed upon object disposal.
 * Thus, this should not be considered production code.
 */
func GeneratePlaneConfig(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, name, materialName string) *metadata.GeometryConfig {
	width = nonZero("width", width)
	height = nonZero("height", height)
	tileX = nonZero("tile_x", tileX)
	tileY = nonZero("tile_y", tileY)
	if xSegmentCount < 1 {
		core.LogWarn("x_segment_count must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("y_segment_count must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}

	// 4 vertices and 6 indices per segment.
	vertices := make([]math.Vertex3D, xSegmentCount*ySegmentCount*4)
	indices := make([]uint32, xSegmentCount*ySegmentCount*6)

	// TODO: This generates extra vertices, but we can always deduplicate them later.
	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := float32(x)*segWidth - halfWidth
			minY := float32(y)*segHeight - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minUVX := (float32(x) / float32(xSegmentCount)) * tileX
			minUVY := (float32(y) / float32(ySegmentCount)) * tileY
			maxUVX := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxUVY := (float32(y+1) / float32(ySegmentCount)) * tileY

			vOffset := (y*xSegmentCount + x) * 4
			vertices[vOffset+0] = math.Vertex3D{Position: mgl32.Vec3{minX, minY, 0}, Texcoord: mgl32.Vec2{minUVX, minUVY}}
			vertices[vOffset+1] = math.Vertex3D{Position: mgl32.Vec3{maxX, maxY, 0}, Texcoord: mgl32.Vec2{maxUVX, maxUVY}}
			vertices[vOffset+2] = math.Vertex3D{Position: mgl32.Vec3{minX, maxY, 0}, Texcoord: mgl32.Vec2{minUVX, maxUVY}}
			vertices[vOffset+3] = math.Vertex3D{Position: mgl32.Vec3{maxX, minY, 0}, Texcoord: mgl32.Vec2{maxUVX, minUVY}}
			for i := vOffset; i < vOffset+4; i++ {
				vertices[i].Normal = mgl32.Vec3{0, 0, 1}
				vertices[i].Colour = mgl32.Vec4{1, 1, 1, 1}
			}

			iOffset := (y*xSegmentCount + x) * 6
			copy(indices[iOffset:], []uint32{vOffset + 0, vOffset + 1, vOffset + 2, vOffset + 0, vOffset + 3, vOffset + 1})
		}
	}
	math.GenerateTangents(vertices, indices)

	if name == "" {
		name = metadata.DEFAULT_GEOMETRY_PLANE_NAME
	}
	if materialName == "" {
		materialName = metadata.DEFAULT_MATERIAL_NAME
	}
	ext := math.ExtentsFrom(vertices)
	return &metadata.GeometryConfig{
		VertexSize:   math.Vertex3DSize,
		Vertices:     vertices,
		IndexSize:    math.IndexSize,
		Indices:      indices,
		Center:       ext.Center(),
		MinExtents:   ext.Min,
		MaxExtents:   ext.Max,
		Name:         name,
		MaterialName: materialName,
	}
}

type cubeFace struct {
	normal    mgl32.Vec3
	positions [4]mgl32.Vec3
}

/**
 * @brief Generates configuration for a box centered on the origin.
 */
func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name, materialName string) *metadata.GeometryConfig {
	width = nonZero("width", width)
	height = nonZero("height", height)
	depth = nonZero("depth", depth)
	tileX = nonZero("tile_x", tileX)
	tileY = nonZero("tile_y", tileY)

	minX, maxX := -width*0.5, width*0.5
	minY, maxY := -height*0.5, height*0.5
	minZ, maxZ := -depth*0.5, depth*0.5

	faces := []cubeFace{
		// Front
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{minX, minY, maxZ}, {maxX, maxY, maxZ}, {minX, maxY, maxZ}, {maxX, minY, maxZ}}},
		// Back
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{maxX, minY, minZ}, {minX, maxY, minZ}, {maxX, maxY, minZ}, {minX, minY, minZ}}},
		// Left
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{minX, minY, minZ}, {minX, maxY, maxZ}, {minX, maxY, minZ}, {minX, minY, maxZ}}},
		// Right
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{maxX, minY, maxZ}, {maxX, maxY, minZ}, {maxX, maxY, maxZ}, {maxX, minY, minZ}}},
		// Bottom
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{maxX, minY, maxZ}, {minX, minY, minZ}, {maxX, minY, minZ}, {minX, minY, maxZ}}},
		// Top
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{minX, maxY, maxZ}, {maxX, maxY, minZ}, {minX, maxY, minZ}, {maxX, maxY, maxZ}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {tileX, tileY}, {0, tileY}, {tileX, 0}}

	vertices := make([]math.Vertex3D, 0, len(faces)*4)
	indices := make([]uint32, 0, len(faces)*6)
	for i, f := range faces {
		for j, p := range f.positions {
			vertices = append(vertices, math.Vertex3D{
				Position: p,
				Normal:   f.normal,
				Texcoord: uvs[j],
				Colour:   mgl32.Vec4{1, 1, 1, 1},
			})
		}
		base := uint32(i * 4)
		indices = append(indices, base+0, base+1, base+2, base+0, base+3, base+1)
	}
	math.GenerateTangents(vertices, indices)

	if name == "" {
		name = metadata.DEFAULT_GEOMETRY_CUBE_NAME
	}
	if materialName == "" {
		materialName = metadata.DEFAULT_MATERIAL_NAME
	}
	return &metadata.GeometryConfig{
		VertexSize: math.Vertex3DSize,
		Vertices:   vertices,
		IndexSize:  math.IndexSize,
		Indices:    indices,
		// Always 0 since min/max of each axis are -/+ half of the size.
		Center:       mgl32.Vec3{0, 0, 0},
		MinExtents:   mgl32.Vec3{minX, minY, minZ},
		MaxExtents:   mgl32.Vec3{maxX, maxY, maxZ},
		Name:         name,
		MaterialName: materialName,
	}
}
