// Package main is a top-down viewer that ticks a scene in real time.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/spline3d/internal/config"
	"github.com/Faultbox/spline3d/internal/logger"
	"github.com/Faultbox/spline3d/internal/scene"
)

const windowTitle = "Spline3D Viewer"

func init() {
	runtime.LockOSThread()
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Options()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var path string
	if args := config.Args(); len(args) > 0 {
		path = args[0]
	} else if path, err = pickScene(); err != nil {
		fmt.Fprintln(os.Stderr, "Usage: splineview [flags] [scene.yaml]")
		os.Exit(1)
	}

	s, err := scene.LoadFile(path, cfg.SceneSettings())
	if err != nil {
		logger.Error("failed to load scene", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}

	logger.Info("=== Spline3D Viewer ===", zap.String("scene", path))

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		logger.Error("SDL init failed", zap.Error(err))
		os.Exit(1)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(
		windowTitle,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Viewer.Width), int32(cfg.Viewer.Height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI,
	)
	if err != nil {
		logger.Error("Window creation failed", zap.Error(err))
		os.Exit(1)
	}
	defer window.Destroy()

	flags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.Viewer.VSync {
		flags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, flags)
	if err != nil {
		logger.Error("Renderer creation failed", zap.Error(err))
		os.Exit(1)
	}
	defer renderer.Destroy()

	v := newViewer(s, path, cfg, renderer)
	w, h := window.GetSize()
	v.view.Resize(w, h)

	last := sdl.GetTicks()
	for v.running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			v.handleEvent(event)
		}

		now := sdl.GetTicks()
		dt := float32(now-last) / 1000
		last = now

		v.update(dt)
		if err := v.draw(); err != nil {
			logger.Error("draw failed", zap.Error(err))
			break
		}
		window.SetTitle(v.title())
	}

	logger.Info("viewer closed normally")
}
