package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, uint32(65536), cfg.Systems.MaxTextureCount)
	require.Equal(t, uint32(4096), cfg.Systems.MaxMaterialCount)
	require.Equal(t, uint32(4096), cfg.Systems.MaxGeometryCount)
	require.Len(t, cfg.Views, 3)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[application]
name = "overlay"

[systems]
max_texture_count = 2
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "overlay", cfg.Application.Name)
	require.Equal(t, uint32(2), cfg.Systems.MaxTextureCount)
	// Untouched keys keep their defaults.
	require.Equal(t, uint32(1280), cfg.Application.Width)
	require.Equal(t, uint32(4096), cfg.Systems.MaxMaterialCount)
	require.Len(t, cfg.Views, 3)
}

func TestLoadConfigViewsReplaceDefaults(t *testing.T) {
	path := writeConfig(t, `
[[views]]
name = "world"
type = "world"
passes = [{ name = "Renderpass.Builtin.World" }]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Views, 1)
	require.Equal(t, "world", cfg.Views[0].Name)
	require.Equal(t, "Renderpass.Builtin.World", cfg.Views[0].Passes[0].Name)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, errors.Is(err, ErrConfig))

	_, err = LoadConfig(writeConfig(t, "[application\nname ="))
	require.True(t, errors.Is(err, ErrConfig))

	_, err = LoadConfig(writeConfig(t, "[systems]\nmax_geometry_count = 0\n"))
	require.True(t, errors.Is(err, ErrConfig))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *EngineConfig){
		"zero width":      func(c *EngineConfig) { c.Application.Width = 0 },
		"bad log level":   func(c *EngineConfig) { c.Logging.Level = "chatty" },
		"no workers":      func(c *EngineConfig) { c.Jobs.Workers = 0 },
		"zero capacity":   func(c *EngineConfig) { c.Systems.MaxShaderCount = 0 },
		"unnamed view":    func(c *EngineConfig) { c.Views[0].Name = "" },
		"view w/o passes": func(c *EngineConfig) { c.Views[1].Passes = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			require.True(t, errors.Is(cfg.Validate(), ErrConfig))
		})
	}
}

func TestEncodeLoadsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Application.Name = "encoded"
	cfg.Assets.Watch = true
	data, err := cfg.Encode()
	require.NoError(t, err)

	loaded, err := LoadConfig(writeConfig(t, string(data)))
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestParseLogLevel(t *testing.T) {
	level, ok := ParseLogLevel("WARN")
	require.True(t, ok)
	require.Equal(t, LogLevelWarn, level)

	level, ok = ParseLogLevel("")
	require.True(t, ok)
	require.Equal(t, LogLevelDebug, level)

	_, ok = ParseLogLevel("verbose")
	require.False(t, ok)
}
