/*
Runs the testbed game on top of the engine. The graphics backend is the
headless one: every frame goes through the full system and view pipeline
without a window.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/kiln/engine"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/headless"
	"github.com/spaghettifunk/kiln/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to the engine TOML configuration")
	warmCache := flag.Bool("warm-cache", false, "import every model without a .dsm cache and exit")
	frames := flag.Uint64("frames", 0, "stop after this many frames, overrides application.frame_limit")
	flag.Parse()

	cfg := core.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = core.LoadConfig(*configPath); err != nil {
			core.LogError("unable to load configuration: %v", err)
			os.Exit(1)
		}
	}
	if *frames > 0 {
		cfg.Application.FrameLimit = *frames
	}
	level, _ := core.ParseLogLevel(cfg.Logging.Level)
	core.SetLogLevel(level)

	if *warmCache {
		n, err := testbed.WarmMeshCache(cfg)
		if err != nil {
			core.LogError("mesh cache warm-up failed: %v", err)
			os.Exit(1)
		}
		core.LogInfo("%d mesh(es) imported", n)
		return
	}

	tb := testbed.NewTestGame(engine.ApplicationConfigFrom(cfg))

	e, err := engine.New(tb.Game, cfg, headless.New())
	if err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}

	if err := e.Initialize(); err != nil {
		core.LogError("engine initialization failed: %v", err)
		_ = e.Shutdown()
		os.Exit(1)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		e.Quit()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %v", err)
	}
	if runErr != nil {
		core.LogError(runErr.Error())
		os.Exit(1)
	}
}
