package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"piggy-viewer/core"
	"piggy-viewer/internal/config"
	"piggy-viewer/internal/logger"
	"piggy-viewer/internal/panel"
	"piggy-viewer/internal/remote"
	"piggy-viewer/internal/viewer"
	"piggy-viewer/renderer"
)

// app owns everything that lives on the main thread.
type app struct {
	ctx        context.Context
	cfg        config.Config
	configPath string

	window *core.Window
	engine *renderer.RenderEngine

	loading    *viewer.LoadingScreen
	loadFailed bool
	session    *viewer.Session
	panel      *panel.Panel

	input   inputState
	lastErr string
}

func run(ctx context.Context, cfg config.Config, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	window, err := core.NewWindow(core.WindowConfig{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Resizable:  true,
		VSync:      cfg.Window.VSync,
		Fullscreen: cfg.Window.Fullscreen,
	})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	fbW, fbH := window.GetFramebufferSize()
	engine, err := renderer.NewRenderEngine(fbW, fbH)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer engine.Destroy()

	a := &app{
		ctx:        ctx,
		cfg:        cfg,
		configPath: configPath,
		window:     window,
		engine:     engine,
		loading:    viewer.NewLoadingScreen(),
		input:      newInputState(),
	}
	window.OnResize(a.resize)
	window.SetScrollCallback(a.scroll)

	// cancelled by the deferred cancel if the window closes mid-load
	results := viewer.LoadAsync(ctx, viewer.AssetsFromConfig(cfg.Assets), cfg.Variant)

	logger.Log.Info("viewer started",
		zap.String("variant", cfg.Variant),
		zap.String("assets", cfg.Assets.Dir))

	lastTime := time.Now()
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			window.Close()
			break
		}
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		window.PollEvents()

		select {
		case res, ok := <-results:
			if ok {
				a.ready(res)
			}
			results = nil
		default:
		}

		a.handleKeys()
		a.handlePointer()
		a.frame(dt)
		window.SwapBuffers()
	}

	if a.session != nil {
		engine.Release(a.session.Scene)
	}
	logger.Log.Info("viewer closed")
	return nil
}

// ready takes over the loaded scene: GPU upload, parameter bindings, the
// panel and the background feeds of parameter changes.
func (a *app) ready(res viewer.Result) {
	if res.Err != nil {
		assets := viewer.AssetsFromConfig(a.cfg.Assets)
		logger.Log.Error("asset load failed",
			zap.String("model", assets.Model),
			zap.String("materials", assets.Materials),
			zap.String("ground", assets.Ground),
			zap.Error(res.Err))
		a.loadFailed = true
		return
	}

	asm := res.Assembly
	if err := a.engine.Upload(asm.Scene); err != nil {
		logger.Log.Error("gpu upload", zap.Error(err))
	}

	var composer viewer.Composer
	if a.cfg.Variant != config.VariantClassic {
		composer = a.engine.Composer()
	}
	s, err := viewer.NewSession(asm, a.cfg.Variant, a.engine, composer, a.viewport())
	if err != nil {
		logger.Log.Error("start session", zap.Error(err))
		a.loadFailed = true
		return
	}
	s.ApplyOverrides(a.cfg.Params)
	s.Controls.EnableDamping = a.cfg.Controls.Damping

	a.session = s
	a.panel = panel.New(s.Params)
	a.panel.Layout(float32(a.window.Width))
	a.startFeeds(s)
	a.loading.Dismiss()

	logger.Log.Debug("scene ready", zap.String("graph", s.Scene.Describe()))
}

// startFeeds starts the goroutines that queue parameter changes into the
// session: the remote panel and the config file watcher.
func (a *app) startFeeds(s *viewer.Session) {
	if a.cfg.Remote != "" {
		srv := remote.New(s.Params, s.Changes)
		go func() {
			if err := srv.ListenAndServe(a.ctx, a.cfg.Remote); err != nil {
				logger.Log.Error("remote panel", zap.String("addr", a.cfg.Remote), zap.Error(err))
			}
		}()
	}
	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath)
		if err != nil {
			logger.Log.Warn("config reload disabled", zap.Error(err))
			return
		}
		go w.Run(a.ctx, s.Changes)
	}
}

func (a *app) frame(dt float32) {
	a.loading.Update(dt)
	if a.session == nil {
		a.engine.Clear(loadingBackground)
	} else if err := a.session.Frame(dt); err != nil {
		// log once per distinct failure, not every frame
		if msg := err.Error(); msg != a.lastErr {
			logger.Log.Error("render frame", zap.Error(err))
			a.lastErr = msg
		}
	} else {
		a.lastErr = ""
		a.session.Stats.SetDrawCounts(a.engine.DrawStats())
	}
	a.drawOverlay()
}

func (a *app) viewport() viewer.Viewport {
	return viewer.Viewport{
		Width:  a.window.Width,
		Height: a.window.Height,
		DPR:    a.window.DevicePixelRatio(),
	}
}

func (a *app) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if a.session != nil {
		a.session.Resize(a.viewport())
	} else {
		a.engine.SetSize(a.window.GetFramebufferSize())
	}
	if a.panel != nil {
		a.panel.Layout(float32(width))
	}
}
