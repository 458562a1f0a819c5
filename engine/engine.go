package engine

import (
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
	"github.com/spaghettifunk/kiln/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const targetFrameSeconds float64 = 1.0 / 60.0

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *core.EngineConfig
	backend       renderer.Backend
	systemManager *systems.SystemManager
	events        *core.EventBus
	watcher       *assets.Watcher

	isRunning   atomic.Bool
	isSuspended bool
	width       uint32
	height      uint32
	clock       *core.Clock
	metrics     *core.FrameMetrics
	lastTime    float64
	frameCount  uint64
	// LimitFrames sleeps away what is left of the 60Hz frame budget.
	LimitFrames bool
}

func New(g *Game, cfg *core.EngineConfig, backend renderer.Backend) (*Engine, error) {
	if g == nil || cfg == nil || backend == nil {
		return nil, errors.Wrap(core.ErrConfig, "engine requires a game, a configuration and a backend")
	}
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = ApplicationConfigFrom(cfg)
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		backend:      backend,
		events:       core.NewEventBus(),
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		width:        cfg.Application.Width,
		height:       cfg.Application.Height,
		LimitFrames:  true,
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return errors.Wrap(core.ErrInvalidState, "engine already initialized")
	}
	e.currentStage = EngineStageBooting
	core.SetLogLevel(e.gameInstance.ApplicationConfig.LogLevel)

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	e.currentStage = EngineStageInitializing
	sm, err := systems.NewSystemManager(e.config, e.backend)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	e.systemManager = sm
	e.gameInstance.SystemManager = sm

	if e.config.Assets.Watch {
		if err := e.startWatcher(); err != nil {
			// Hot reload is a convenience, run without it.
			core.LogWarn("asset hot reload disabled: %v", err)
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) startWatcher() error {
	w, err := assets.NewWatcher(filepath.Join(e.config.Assets.BasePath, assets.TexturesPath))
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Close()
		return err
	}
	e.watcher = w
	return nil
}

// Events returns the bus engine events are fired on. Only use it from the primary thread.
func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Quit asks the loop to stop after the current frame. Safe to call from any goroutine.
func (e *Engine) Quit() {
	e.isRunning.Store(false)
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return errors.Wrap(core.ErrInvalidState, "engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	limit := e.gameInstance.ApplicationConfig.FrameLimit
	for e.isRunning.Load() {
		if e.isSuspended {
			time.Sleep(time.Millisecond * 16)
			continue
		}
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		if err := e.RunFrame(delta); err != nil {
			core.LogFatal("Frame failed, shutting down: %v", err)
			e.isRunning.Store(false)
			break
		}

		frameElapsed := time.Since(frameStart).Seconds()
		e.metrics.Update(frameElapsed)
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 && e.LimitFrames {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
		e.lastTime = currentTime

		if limit > 0 && e.frameCount >= limit {
			core.LogInfo("Frame limit of %d reached.", limit)
			e.isRunning.Store(false)
		}
	}
	return nil
}

/**
 * @brief Runs one frame: completed jobs first, then asset changes, then the game
 * update, and finally the packets built by the game are drawn.
 */
func (e *Engine) RunFrame(delta float64) error {
	// Job callbacks land before any packet is built this frame.
	e.systemManager.JobSystem.Update()
	e.applyAssetChanges()

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed.")
			return err
		}
	}

	packet := &metadata.RenderPacket{DeltaTime: delta}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(packet, delta); err != nil {
			core.LogError("Game render failed.")
			return err
		}
	}
	if err := e.systemManager.RendererSystem.DrawFrame(packet); err != nil {
		return err
	}
	e.frameCount++
	return nil
}

func (e *Engine) applyAssetChanges() {
	if e.watcher == nil {
		return
	}
	for _, change := range e.watcher.Drain() {
		var ctx core.EventContext
		ctx.Data.C[0] = change.Name
		e.events.Fire(core.EVENT_CODE_ASSET_CHANGED, e, ctx)

		if change.Type != metadata.ResourceTypeImage {
			continue
		}
		if _, err := e.systemManager.TextureSystem.Reload(change.Name); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				// Not in use, nothing to reload.
				continue
			}
			core.LogWarn("hot reload of texture '%s' failed: %v", change.Name, err)
			continue
		}
		core.LogInfo("Texture '%s' reloaded.", change.Name)
	}
}

func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var err error
	if e.gameInstance.FnShutdown != nil {
		err = errors.CombineErrors(err, e.gameInstance.FnShutdown())
	}
	if e.watcher != nil {
		err = errors.CombineErrors(err, e.watcher.Close())
		e.watcher = nil
	}
	if e.systemManager != nil {
		err = errors.CombineErrors(err, e.systemManager.Shutdown())
		e.systemManager = nil
	}
	e.events.Shutdown()
	e.currentStage = EngineStageUninitialized
	return err
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// Resize fires a resize event as the window layer would.
func (e *Engine) Resize(width, height uint32) {
	var ctx core.EventContext
	ctx.Data.U32[0] = width
	ctx.Data.U32[1] = height
	e.events.Fire(core.EVENT_CODE_RESIZED, e, ctx)
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	width := data.Data.U32[0]
	height := data.Data.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	if e.systemManager != nil {
		e.systemManager.RendererSystem.OnResize(width, height)
	}
	// Let other listeners see it too.
	return false
}
