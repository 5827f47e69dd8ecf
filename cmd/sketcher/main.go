package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"floorplan-sketcher/internal/common/config"
	"floorplan-sketcher/internal/common/middleware"
	"floorplan-sketcher/internal/sketcher/collab"
	"floorplan-sketcher/internal/sketcher/handlers"
	"floorplan-sketcher/internal/sketcher/importer"
	"floorplan-sketcher/internal/sketcher/machine"
	"floorplan-sketcher/internal/sketcher/session"
	"floorplan-sketcher/internal/sketcher/store"
)

// ============================================================
// Sketcher Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zap.L().Sync() }()

	if err := run(cfg); err != nil {
		zap.L().Fatal("sketcher stopped", zap.String("error", eris.ToString(err, true)))
	}
}

func run(cfg *config.Config) error {
	log := zap.L()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ============================================================
	// Storage
	// ============================================================

	db, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.New(db)
	if err := repo.Init(ctx); err != nil {
		return err
	}

	// ============================================================
	// Presence
	// ============================================================

	checks := map[string]handlers.Pinger{"store": repo}
	var channel collab.Channel
	switch cfg.Presence.Driver {
	case "redis":
		rc := collab.NewRedisChannel(
			collab.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB),
			cfg.Presence.ChannelPrefix,
			cfg.Presence.Buffer,
		)
		defer rc.Close()
		checks["redis"] = rc
		channel = rc
	default:
		channel = collab.NewMemoryHub(cfg.Presence.Buffer)
	}

	sessionCfg := editorConfig(cfg.Sketcher)
	manager := session.NewManager(ctx, sessionCfg, repo, channel, collab.BridgeOptions{
		CursorRate:  cfg.Presence.CursorRate,
		CursorBurst: cfg.Presence.CursorBurst,
		Outbox:      cfg.Presence.Buffer,
	}, log)

	// ============================================================
	// HTTP
	// ============================================================

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		AppName:      "Sketcher Service",
	})

	app.Use(recover.New())
	app.Use(middleware.Logger(log))
	app.Use(middleware.CORS(cfg.Server.Environment))

	handlers.Register(app,
		handlers.NewHealth(checks),
		handlers.NewProjectHandler(repo, handlers.ProjectOptions{
			Importer:     importerOptions(cfg.Sketcher),
			JointEpsilon: cfg.Sketcher.JointEpsilon,
			CanvasWidth:  cfg.Sketcher.CanvasWidth,
			CanvasHeight: cfg.Sketcher.CanvasHeight,
		}, log),
		handlers.NewSessionHandler(manager, log),
	)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting sketcher service",
			zap.String("addr", addr),
			zap.String("env", cfg.Server.Environment),
			zap.String("presence", cfg.Presence.Driver),
		)
		if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			return eris.Wrap(err, "listen")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		manager.CloseAll(shutdownCtx)
		log.Info("shutting down sketcher service")
		return app.ShutdownWithContext(shutdownCtx)
	})

	return g.Wait()
}

func editorConfig(s config.SketcherConfig) session.Config {
	cfg := session.DefaultConfig()
	m := machine.DefaultConfig()
	m.GridSize = s.GridSize
	m.MinZoom = s.MinZoom
	m.MaxZoom = s.MaxZoom
	m.ZoomBase = s.ZoomBase
	m.WallThickness = s.WallThickness
	m.WallHeight = s.WallHeight
	m.PlacementWidth = s.PlacementWidth
	m.PlacementHeight = s.PlacementHeight

	cfg.Machine = m
	cfg.JointEpsilon = s.JointEpsilon
	cfg.UndoLimit = s.UndoLimit
	cfg.CanvasWidth = s.CanvasWidth
	cfg.CanvasHeight = s.CanvasHeight
	cfg.ExportMultiplier = s.ExportMultiplier
	return cfg
}

func importerOptions(s config.SketcherConfig) importer.Options {
	opts := importer.DefaultOptions()
	opts.GridSize = s.GridSize
	opts.WallThickness = s.WallThickness
	opts.WallHeight = s.WallHeight
	opts.PlacementHeight = s.PlacementHeight
	opts.JointEpsilon = s.JointEpsilon
	return opts
}
