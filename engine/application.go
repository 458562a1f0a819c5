package engine

import (
	"github.com/spaghettifunk/kiln/engine/core"
)

type ApplicationConfig struct {
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel
	// Stop after this many frames. 0 runs until quit.
	FrameLimit uint64
}

// ApplicationConfigFrom takes the application section of the engine configuration.
func ApplicationConfigFrom(cfg *core.EngineConfig) *ApplicationConfig {
	level, _ := core.ParseLogLevel(cfg.Logging.Level)
	return &ApplicationConfig{
		StartWidth:  cfg.Application.Width,
		StartHeight: cfg.Application.Height,
		Name:        cfg.Application.Name,
		LogLevel:    level,
		FrameLimit:  cfg.Application.FrameLimit,
	}
}
