package loaders

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

// Shininess of 0 breaks the specular term, imported materials get this instead.
const defaultImportedShininess float32 = 8.0

// ParseMTL converts a Wavefront material library into material configs. Texture map
// names are reduced to the file name without extension, the name textures are
// acquired by.
func ParseMTL(r io.Reader, source string) ([]*metadata.MaterialConfig, error) {
	var out []*metadata.MaterialConfig
	var current *metadata.MaterialConfig

	finish := func() {
		if current == nil {
			return
		}
		if current.Shininess == 0 {
			current.Shininess = defaultImportedShininess
		}
		out = append(out, current)
	}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		directive := strings.ToLower(fields[0])

		if directive == "newmtl" {
			finish()
			name := ""
			if len(fields) > 1 {
				name = fields[1]
			}
			current = &metadata.MaterialConfig{
				Name:             name,
				ShaderName:       metadata.BUILTIN_SHADER_NAME_MATERIAL,
				AutoRelease:      true,
				DiffuseColour:    mgl32.Vec4{1, 1, 1, 1},
				Roughness:        1.0,
				AmbientOcclusion: 1.0,
			}
			continue
		}
		if current == nil {
			core.LogWarn("%s:%d: '%s' before any newmtl, skipping", source, lineNumber, fields[0])
			continue
		}

		switch directive {
		case "ka", "kd":
			// Ambient and diffuse are treated the same, the ambient term comes from the scene.
			v, err := parseVec3Fields(fields[1:])
			if err != nil {
				return nil, errors.Wrapf(core.ErrLoadFailure, "%s:%d: %v", source, lineNumber, err)
			}
			current.DiffuseColour = v.Vec4(1.0)
		case "ks":
			// Specular colour is not used.
		case "ns":
			f, err := parseFloats(fields[1:], 1)
			if err != nil {
				return nil, errors.Wrapf(core.ErrLoadFailure, "%s:%d: %v", source, lineNumber, err)
			}
			current.Shininess = f[0]
		case "map_kd":
			current.DiffuseMapName = textureNameFromPath(fields)
		case "map_ks":
			current.SpecularMapName = textureNameFromPath(fields)
		case "map_bump", "bump":
			current.NormalMapName = textureNameFromPath(fields)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "reading %s: %v", source, err)
	}
	finish()
	return out, nil
}

// textureNameFromPath takes the last field, map options come before the file.
func textureNameFromPath(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	base := filepath.Base(strings.ReplaceAll(fields[len(fields)-1], "\\", "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
