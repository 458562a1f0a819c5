package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

const dmtVersion = "0.1"

// MaterialLoader reads .dmt material definitions from <base>/materials.
type MaterialLoader struct {
	BasePath string
}

var _ assets.Loader = (*MaterialLoader)(nil)

func NewMaterialLoader(basePath string) *MaterialLoader {
	return &MaterialLoader{BasePath: basePath}
}

func (ml *MaterialLoader) Type() metadata.ResourceType { return metadata.ResourceTypeMaterial }

func (ml *MaterialLoader) CustomType() string { return "" }

func (ml *MaterialLoader) Load(name string, params interface{}) (*metadata.Resource, error) {
	path, err := assets.ResolvePath(ml.BasePath, assets.MaterialsPath, name, ".dmt")
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "opening %s: %v", path, err)
	}
	defer f.Close()

	cfg, err := ParseMaterialConfig(f, path)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: 1,
		Data:     cfg,
	}, nil
}

func (ml *MaterialLoader) Unload(resource *metadata.Resource) error {
	return unloadResource(resource)
}

// ParseMaterialConfig reads key=value lines. Unknown keys are logged and skipped,
// malformed values fail the whole file.
func ParseMaterialConfig(r io.Reader, source string) (*metadata.MaterialConfig, error) {
	cfg := &metadata.MaterialConfig{
		ShaderName:    metadata.BUILTIN_SHADER_NAME_MATERIAL,
		AutoRelease:   true,
		DiffuseColour: mgl32.Vec4{1, 1, 1, 1},
		Shininess:     32.0,
		Roughness:     1.0,
		// No occlusion unless a file says otherwise.
		AmbientOcclusion: 1.0,
	}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			core.LogWarn("%s:%d: potential formatting issue, '=' not found, skipping line", source, lineNumber)
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		var err error
		switch key {
		case "version":
			// Only one version so far.
		case "name":
			cfg.Name = value
		case "shader":
			cfg.ShaderName = value
		case "diffuse_color", "diffuse_colour":
			cfg.DiffuseColour, err = parseVec4(value)
		case "shininess":
			cfg.Shininess, err = parseFloat32(value)
		case "metallic":
			cfg.Metallic, err = parseFloat32(value)
		case "roughness":
			cfg.Roughness, err = parseFloat32(value)
		case "ambient_occlusion":
			cfg.AmbientOcclusion, err = parseFloat32(value)
		case "diffuse_map_name":
			cfg.DiffuseMapName = value
		case "specular_map_name":
			cfg.SpecularMapName = value
		case "normal_map_name":
			cfg.NormalMapName = value
		case "roughness_metallic_map_name":
			cfg.RoughnessMetallicMapName = value
		case "auto_release", "autorelease":
			cfg.AutoRelease, err = strconv.ParseBool(value)
		default:
			core.LogWarn("%s:%d: unknown key '%s', skipping", source, lineNumber, key)
		}
		if err != nil {
			return nil, errors.Wrapf(core.ErrLoadFailure, "%s:%d: invalid value for '%s': %v", source, lineNumber, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(core.ErrLoadFailure, "reading %s: %v", source, err)
	}
	if cfg.Shininess < 0 {
		return nil, errors.Wrapf(core.ErrLoadFailure, "%s: shininess must not be negative", source)
	}
	return cfg, nil
}

func parseFloat32(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

func parseVec4(s string) (mgl32.Vec4, error) {
	var out mgl32.Vec4
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return out, errors.Newf("expected 4 values, got %d", len(fields))
	}
	for i, field := range fields {
		f, err := parseFloat32(field)
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
}

// WriteDMT writes cfg in the format ParseMaterialConfig reads.
func WriteDMT(w io.Writer, cfg *metadata.MaterialConfig) error {
	bw := bufio.NewWriter(w)
	c := cfg.DiffuseColour
	fmt.Fprintln(bw, "#material file")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "version=%s\n", dmtVersion)
	fmt.Fprintf(bw, "name=%s\n", cfg.Name)
	fmt.Fprintf(bw, "diffuse_color=%.6f %.6f %.6f %.6f\n", c[0], c[1], c[2], c[3])
	fmt.Fprintf(bw, "shininess=%.6f\n", cfg.Shininess)
	fmt.Fprintf(bw, "metallic=%.6f\n", cfg.Metallic)
	fmt.Fprintf(bw, "roughness=%.6f\n", cfg.Roughness)
	fmt.Fprintf(bw, "ambient_occlusion=%.6f\n", cfg.AmbientOcclusion)
	for _, m := range []struct{ key, value string }{
		{"diffuse_map_name", cfg.DiffuseMapName},
		{"specular_map_name", cfg.SpecularMapName},
		{"normal_map_name", cfg.NormalMapName},
		{"roughness_metallic_map_name", cfg.RoughnessMetallicMapName},
	} {
		if m.value != "" {
			fmt.Fprintf(bw, "%s=%s\n", m.key, m.value)
		}
	}
	fmt.Fprintf(bw, "shader=%s\n", cfg.ShaderName)
	return bw.Flush()
}

// WriteDMTFile writes <base>/materials/<name>.dmt.
func WriteDMTFile(basePath string, cfg *metadata.MaterialConfig) (string, error) {
	if cfg.Name == "" {
		return "", errors.Wrap(core.ErrLoadFailure, "material without a name cannot be written")
	}
	dir := filepath.Join(basePath, assets.MaterialsPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(core.ErrLoadFailure, "creating %s: %v", dir, err)
	}
	path := filepath.Join(dir, cfg.Name+".dmt")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(core.ErrLoadFailure, "creating %s: %v", path, err)
	}
	defer f.Close()
	if err := WriteDMT(f, cfg); err != nil {
		return "", errors.Wrapf(core.ErrLoadFailure, "writing %s: %v", path, err)
	}
	core.LogDebug("wrote material file '%s'", path)
	return path, nil
}
