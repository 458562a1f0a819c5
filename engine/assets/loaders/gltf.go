package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

// GLTFResult is the outcome of a glTF import before any caching.
type GLTFResult struct {
	Geometries []*metadata.GeometryConfig
	Materials  []*metadata.MaterialConfig
}

// ImportGLTF reads a .gltf (or .glb) document. Every triangle primitive becomes one
// geometry named after the mesh, suffixed with its index after the first one.
func ImportGLTF(path, meshName string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "opening gltf %s: %v", path, err)
	}

	result := &GLTFResult{}
	materialNames := make([]string, len(doc.Materials))
	for i, m := range doc.Materials {
		cfg := gltfMaterialConfig(doc, m, fmt.Sprintf("%s_material%d", meshName, i))
		materialNames[i] = cfg.Name
		result.Materials = append(result.Materials, cfg)
	}

	index := 0
	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				core.LogWarn("gltf %s: mesh %d primitive %d is not a triangle list, skipping", path, mi, pi)
				continue
			}
			g, err := gltfPrimitive(doc, prim)
			if err != nil {
				return nil, errors.Wrapf(core.ErrLoadFailure, "gltf %s: mesh %d primitive %d: %v", path, mi, pi, err)
			}
			g.Name = meshName
			if index > 0 {
				g.Name = fmt.Sprintf("%s%d", meshName, index)
			}
			if prim.Material != nil && *prim.Material < len(materialNames) {
				g.MaterialName = materialNames[*prim.Material]
			}
			result.Geometries = append(result.Geometries, g)
			index++
		}
	}
	if len(result.Geometries) == 0 {
		return nil, errors.Wrapf(core.ErrLoadFailure, "gltf %s: no triangle primitives", path)
	}
	return result, nil
}

func gltfAccessor(doc *gltf.Document, prim *gltf.Primitive, attribute string) (*gltf.Accessor, bool) {
	idx, ok := prim.Attributes[attribute]
	if !ok || idx < 0 || idx >= len(doc.Accessors) {
		return nil, false
	}
	return doc.Accessors[idx], true
}

func gltfPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*metadata.GeometryConfig, error) {
	posAccessor, ok := gltfAccessor(doc, prim, "POSITION")
	if !ok {
		return nil, errors.New("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, posAccessor, nil)
	if err != nil {
		return nil, errors.Wrap(err, "reading positions")
	}

	vertices := make([]math.Vertex3D, len(positions))
	for i, p := range positions {
		vertices[i] = math.Vertex3D{
			Position: mgl32.Vec3(p),
			Colour:   mgl32.Vec4{1, 1, 1, 1},
		}
	}

	hasNormals := false
	if acr, ok := gltfAccessor(doc, prim, "NORMAL"); ok {
		normals, err := modeler.ReadNormal(doc, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "reading normals")
		}
		for i := 0; i < len(normals) && i < len(vertices); i++ {
			vertices[i].Normal = mgl32.Vec3(normals[i])
		}
		hasNormals = true
	}
	if acr, ok := gltfAccessor(doc, prim, "TEXCOORD_0"); ok {
		texcoords, err := modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "reading texcoords")
		}
		for i := 0; i < len(texcoords) && i < len(vertices); i++ {
			vertices[i].Texcoord = mgl32.Vec2(texcoords[i])
		}
	}
	hasTangents := false
	if acr, ok := gltfAccessor(doc, prim, "TANGENT"); ok {
		tangents, err := modeler.ReadTangent(doc, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "reading tangents")
		}
		for i := 0; i < len(tangents) && i < len(vertices); i++ {
			vertices[i].Tangent = mgl32.Vec4(tangents[i])
		}
		hasTangents = true
	}

	var indices []uint32
	if prim.Indices != nil {
		if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
			return nil, errors.Newf("index accessor %d out of range", *prim.Indices)
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, errors.Wrap(err, "reading indices")
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, errors.Newf("index %d out of range (have %d vertices)", idx, len(vertices))
		}
	}

	if !hasNormals {
		math.GenerateNormals(vertices, indices)
	}
	// Tangents from the file belong to their vertex, merging would mix them up.
	if !hasTangents {
		vertices = math.DeduplicateVertices(vertices, indices)
		math.GenerateTangents(vertices, indices)
	}

	extents := math.ExtentsFrom(vertices)
	return &metadata.GeometryConfig{
		VertexSize: math.Vertex3DSize,
		Vertices:   vertices,
		IndexSize:  math.IndexSize,
		Indices:    indices,
		Center:     extents.Center(),
		MinExtents: extents.Min,
		MaxExtents: extents.Max,
	}, nil
}

// gltfMaterialConfig maps the metallic-roughness model. Missing factors default to
// metallic 0 and roughness 1.
func gltfMaterialConfig(doc *gltf.Document, m *gltf.Material, fallbackName string) *metadata.MaterialConfig {
	cfg := &metadata.MaterialConfig{
		Name:             m.Name,
		ShaderName:       metadata.BUILTIN_SHADER_NAME_MATERIAL,
		AutoRelease:      true,
		DiffuseColour:    mgl32.Vec4{1, 1, 1, 1},
		Shininess:        defaultImportedShininess,
		Metallic:         0.0,
		Roughness:        1.0,
		AmbientOcclusion: 1.0,
	}
	if cfg.Name == "" {
		cfg.Name = fallbackName
	}
	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		return cfg
	}
	if pbr.BaseColorFactor != nil {
		c := pbr.BaseColorFactor
		cfg.DiffuseColour = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
	}
	if pbr.MetallicFactor != nil {
		cfg.Metallic = float32(*pbr.MetallicFactor)
	}
	if pbr.RoughnessFactor != nil {
		cfg.Roughness = float32(*pbr.RoughnessFactor)
	}
	if pbr.BaseColorTexture != nil {
		cfg.DiffuseMapName = gltfTextureName(doc, pbr.BaseColorTexture.Index)
	}
	return cfg
}

func gltfTextureName(doc *gltf.Document, textureIndex int) string {
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return ""
	}
	src := doc.Textures[textureIndex].Source
	if src == nil || *src < 0 || *src >= len(doc.Images) {
		return ""
	}
	img := doc.Images[*src]
	if img.URI == "" || img.IsEmbeddedResource() {
		return img.Name
	}
	base := filepath.Base(img.URI)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
