package core

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

type ApplicationSection struct {
	Name       string `toml:"name"`
	Width      uint32 `toml:"width"`
	Height     uint32 `toml:"height"`
	FrameLimit uint64 `toml:"frame_limit"`
}

type LoggingSection struct {
	Level string `toml:"level"`
}

type AssetsSection struct {
	BasePath string `toml:"base_path"`
	// Watch enables texture hot reload.
	Watch bool `toml:"watch"`
}

type JobsSection struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type SystemsSection struct {
	MaxTextureCount  uint32 `toml:"max_texture_count"`
	MaxMaterialCount uint32 `toml:"max_material_count"`
	MaxGeometryCount uint32 `toml:"max_geometry_count"`
	MaxShaderCount   uint32 `toml:"max_shader_count"`
	MaxCameraCount   uint32 `toml:"max_camera_count"`
	MaxViewCount     uint32 `toml:"max_view_count"`
	MaxLoaderCount   uint32 `toml:"max_loader_count"`
	MaxFontCount     uint32 `toml:"max_font_count"`
}

type ViewPassSection struct {
	Name string `toml:"name"`
}

type ViewSection struct {
	Name             string            `toml:"name"`
	Type             string            `toml:"type"`
	CustomShaderName string            `toml:"custom_shader_name"`
	ViewMatrixSource string            `toml:"view_matrix_source"`
	Passes           []ViewPassSection `toml:"passes"`
}

// EngineConfig is the on-disk configuration of the engine. Every field has a default,
// a TOML file only needs to carry the values it overrides.
type EngineConfig struct {
	Application ApplicationSection `toml:"application"`
	Logging     LoggingSection     `toml:"logging"`
	Assets      AssetsSection      `toml:"assets"`
	Jobs        JobsSection        `toml:"jobs"`
	Systems     SystemsSection     `toml:"systems"`
	Views       []ViewSection      `toml:"views"`
}

func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Application: ApplicationSection{
			Name:   "Kiln Testbed",
			Width:  1280,
			Height: 720,
		},
		Logging: LoggingSection{Level: "debug"},
		Assets:  AssetsSection{BasePath: "assets"},
		Jobs: JobsSection{
			Workers:   4,
			QueueSize: 64,
		},
		Systems: SystemsSection{
			MaxTextureCount:  65536,
			MaxMaterialCount: 4096,
			MaxGeometryCount: 4096,
			MaxShaderCount:   1024,
			MaxCameraCount:   61,
			MaxViewCount:     251,
			MaxLoaderCount:   32,
			MaxFontCount:     16,
		},
		Views: []ViewSection{
			{Name: "skybox", Type: "skybox", ViewMatrixSource: "scene_camera", Passes: []ViewPassSection{{Name: "Renderpass.Builtin.Skybox"}}},
			{Name: "world", Type: "world", ViewMatrixSource: "scene_camera", Passes: []ViewPassSection{{Name: "Renderpass.Builtin.World"}}},
			{Name: "ui", Type: "ui", ViewMatrixSource: "ui_camera", Passes: []ViewPassSection{{Name: "Renderpass.Builtin.UI"}}},
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig and validates the result.
func LoadConfig(path string) (*EngineConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrConfig, "reading %s: %v", path, err)
	}
	// Views replace the defaults entirely when present in the file.
	var declared struct {
		Views []ViewSection `toml:"views"`
	}
	if err := toml.Unmarshal(data, &declared); err != nil {
		return nil, errors.Wrapf(ErrConfig, "parsing %s: %v", path, err)
	}
	if len(declared.Views) > 0 {
		cfg.Views = nil
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(ErrConfig, "parsing %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EngineConfig) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return errors.Wrap(ErrConfig, "application width and height must be > 0")
	}
	if _, ok := ParseLogLevel(c.Logging.Level); !ok {
		return errors.Wrapf(ErrConfig, "unknown log level %q", c.Logging.Level)
	}
	if c.Jobs.Workers <= 0 {
		return errors.Wrap(ErrConfig, "jobs.workers must be > 0")
	}
	if c.Jobs.QueueSize < 0 {
		return errors.Wrap(ErrConfig, "jobs.queue_size must be >= 0")
	}
	s := c.Systems
	counts := []struct {
		name  string
		value uint32
	}{
		{"max_texture_count", s.MaxTextureCount},
		{"max_material_count", s.MaxMaterialCount},
		{"max_geometry_count", s.MaxGeometryCount},
		{"max_shader_count", s.MaxShaderCount},
		{"max_camera_count", s.MaxCameraCount},
		{"max_view_count", s.MaxViewCount},
		{"max_loader_count", s.MaxLoaderCount},
		{"max_font_count", s.MaxFontCount},
	}
	for _, cnt := range counts {
		if cnt.value == 0 {
			return errors.Wrapf(ErrConfig, "systems.%s must be > 0", cnt.name)
		}
	}
	for i, v := range c.Views {
		if v.Name == "" {
			return errors.Wrapf(ErrConfig, "views[%d] has no name", i)
		}
		if len(v.Passes) == 0 {
			return errors.Wrapf(ErrConfig, "view %q has no passes", v.Name)
		}
	}
	return nil
}

// Encode renders the configuration back to TOML.
func (c *EngineConfig) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
