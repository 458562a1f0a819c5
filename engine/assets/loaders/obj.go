package loaders

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

type objVertexIndex struct {
	position int
	texcoord int
	normal   int
}

type objFace [3]objVertexIndex

type objGroup struct {
	materialName string
	faces        []objFace
}

// OBJResult is the outcome of an OBJ import before any caching.
type OBJResult struct {
	Geometries []*metadata.GeometryConfig
	// MaterialLibrary is the file named by mtllib, relative to the OBJ file.
	MaterialLibrary string
}

type objParser struct {
	source    string
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	texcoords []mgl32.Vec2
	groups    []*objGroup
	name      string
	out       []*metadata.GeometryConfig
}

// ImportOBJ parses Wavefront OBJ text. A usemtl directive starts a new group and
// g/o directives flush the groups collected so far into geometries. Every geometry
// is de-duplicated and gets flat tangents before it is returned.
func ImportOBJ(r io.Reader, meshName string) (*OBJResult, error) {
	p := &objParser{source: meshName, name: meshName}
	result := &OBJResult{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			var v mgl32.Vec3
			v, err = parseVec3Fields(fields[1:])
			p.positions = append(p.positions, v)
		case "vn":
			var v mgl32.Vec3
			v, err = parseVec3Fields(fields[1:])
			p.normals = append(p.normals, v)
		case "vt":
			var v mgl32.Vec2
			v, err = parseVec2Fields(fields[1:])
			p.texcoords = append(p.texcoords, v)
		case "f":
			err = p.addFace(fields[1:])
		case "usemtl":
			material := ""
			if len(fields) > 1 {
				material = fields[1]
			}
			p.groups = append(p.groups, &objGroup{materialName: material})
			p.name = material
		case "g", "o":
			p.flush()
			if len(fields) > 1 {
				p.name = strings.Join(fields[1:], " ")
			} else {
				p.name = meshName
			}
		case "mtllib":
			if len(fields) > 1 {
				result.MaterialLibrary = strings.Join(fields[1:], " ")
			}
		case "s", "l", "p":
			// Smoothing groups, lines and points are not used.
		default:
			core.LogDebug("%s:%d: unsupported directive '%s'", meshName, lineNumber, fields[0])
		}
		if err != nil {
			return nil, errors.Wrapf(core.ErrLoadFailure, "%s:%d: %v", meshName, lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "reading %s: %v", meshName, err)
	}
	p.flush()
	if len(p.out) == 0 {
		return nil, errors.Wrapf(core.ErrLoadFailure, "%s: no faces found", meshName)
	}

	for _, g := range p.out {
		core.LogDebug("geometry de-duplication process starting on geometry object named '%s'", g.Name)
		g.Vertices = math.DeduplicateVertices(g.Vertices, g.Indices)
		math.GenerateTangents(g.Vertices, g.Indices)
	}
	result.Geometries = p.out
	return result, nil
}

// addFace accepts the p, p/t, p//n and p/t/n forms. Polygons are fanned into
// triangles around their first vertex.
func (p *objParser) addFace(tokens []string) error {
	if len(tokens) < 3 {
		return errors.Newf("face needs at least 3 vertices, got %d", len(tokens))
	}
	verts := make([]objVertexIndex, len(tokens))
	for i, tok := range tokens {
		v, err := p.parseFaceVertex(tok)
		if err != nil {
			return err
		}
		verts[i] = v
	}
	if len(p.groups) == 0 {
		p.groups = append(p.groups, &objGroup{})
	}
	g := p.groups[len(p.groups)-1]
	for i := 1; i+1 < len(verts); i++ {
		g.faces = append(g.faces, objFace{verts[0], verts[i], verts[i+1]})
	}
	return nil
}

// parseFaceVertex resolves 1-based (or negative, relative) indices to 0-based ones.
// Missing components are -1.
func (p *objParser) parseFaceVertex(tok string) (objVertexIndex, error) {
	out := objVertexIndex{position: -1, texcoord: -1, normal: -1}
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return out, errors.Newf("malformed face vertex '%s'", tok)
	}
	resolve := func(s string, count int, what string) (int, error) {
		if s == "" {
			return -1, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return -1, errors.Newf("malformed %s index '%s'", what, s)
		}
		if n < 0 {
			n = count + n + 1
		}
		if n < 1 || n > count {
			return -1, errors.Newf("%s index %s out of range (have %d)", what, s, count)
		}
		return n - 1, nil
	}

	var err error
	if out.position, err = resolve(parts[0], len(p.positions), "position"); err != nil {
		return out, err
	}
	if out.position < 0 {
		return out, errors.Newf("face vertex '%s' has no position", tok)
	}
	if len(parts) > 1 {
		if out.texcoord, err = resolve(parts[1], len(p.texcoords), "texcoord"); err != nil {
			return out, err
		}
	}
	if len(parts) > 2 {
		if out.normal, err = resolve(parts[2], len(p.normals), "normal"); err != nil {
			return out, err
		}
	}
	return out, nil
}

// flush turns every pending group into a geometry config.
func (p *objParser) flush() {
	index := 0
	for _, g := range p.groups {
		if len(g.faces) == 0 {
			continue
		}
		name := p.name
		if name == "" {
			name = p.source
		}
		if index > 0 {
			name = fmt.Sprintf("%s%d", name, index)
		}
		p.out = append(p.out, p.processSubobject(name, g))
		index++
	}
	p.groups = nil
}

func (p *objParser) processSubobject(name string, g *objGroup) *metadata.GeometryConfig {
	vertices := make([]math.Vertex3D, 0, len(g.faces)*3)
	indices := make([]uint32, 0, len(g.faces)*3)

	for _, face := range g.faces {
		var flatNormal mgl32.Vec3
		hasNormals := face[0].normal >= 0 && face[1].normal >= 0 && face[2].normal >= 0
		if !hasNormals {
			p1 := p.positions[face[0].position]
			p2 := p.positions[face[1].position]
			p3 := p.positions[face[2].position]
			flatNormal = p2.Sub(p1).Cross(p3.Sub(p2))
			if flatNormal.Len() > 0 {
				flatNormal = flatNormal.Normalize()
			} else {
				flatNormal = mgl32.Vec3{0, 0, 1}
			}
		}
		for _, idx := range face {
			v := math.Vertex3D{
				Position: p.positions[idx.position],
				Colour:   mgl32.Vec4{1, 1, 1, 1},
			}
			if hasNormals {
				v.Normal = p.normals[idx.normal]
			} else {
				v.Normal = flatNormal
			}
			if idx.texcoord >= 0 {
				v.Texcoord = p.texcoords[idx.texcoord]
			}
			indices = append(indices, uint32(len(vertices)))
			vertices = append(vertices, v)
		}
	}

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
		MaterialName: g.materialName,
	}
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, errors.Newf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, errors.Newf("malformed number '%s'", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseVec3Fields(fields []string) (mgl32.Vec3, error) {
	f, err := parseFloats(fields, 3)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{f[0], f[1], f[2]}, nil
}

func parseVec2Fields(fields []string) (mgl32.Vec2, error) {
	f, err := parseFloats(fields, 2)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{f[0], f[1]}, nil
}
