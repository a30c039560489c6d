package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"imprint-viewer/internal/asset"
	"imprint-viewer/internal/config"
	"imprint-viewer/internal/env"
	"imprint-viewer/internal/graphics"
	"imprint-viewer/internal/logger"
	"imprint-viewer/internal/notify"
	"imprint-viewer/internal/overlay"
	"imprint-viewer/internal/render"
	"imprint-viewer/internal/viewer"
)

var configPath = flag.String("config", config.DefaultPath, "Config file (.json, .toml or .yaml)")

func main() {
	flag.Parse()

	_ = env.Load(".env")
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config.ApplyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogFile, cfg.Level())
	defer log.Close()

	graphics.Open(cfg.Viewport.Title, cfg.Viewport.Width, cfg.Viewport.Height)
	defer graphics.Close()

	fetcher := asset.NewFetcher(cfg.AssetURL, cfg.FetchTimeout.Duration)
	if cfg.UserAgent != "" {
		fetcher.UserAgent = cfg.UserAgent
	}
	pipeline := asset.NewPipeline(fetcher, asset.STLParser{}, log.Logger)

	board := overlay.NewBoard(0, 0)
	renderer := render.NewRaylib(log.Logger)
	session := viewer.New(viewer.Options{
		Viewport:  cfg.FramingViewport(),
		Near:      cfg.Viewport.Near,
		Far:       cfg.Viewport.Far,
		MinRadius: cfg.Orbit.MinRadius,
		Orbit:     cfg.OrbitParams(),
		Scene:     cfg.SceneOptions(),
	}, renderer, pipeline, board, log.Logger)
	defer session.Dispose()
	session.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.NotifyURL != "" {
		src, err := notify.NewSource(cfg.NotifyURL, nil)
		if err != nil {
			log.Error("notifications disabled", "err", err)
		} else {
			listener := notify.NewListener(src, cfg.ReconnectPolicy(), func(n notify.Notification) {
				board.Info("New Notification: " + n.Message)
				session.Reload()
			}, log.Logger)
			go func() {
				if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Warn("notification listener stopped", "err", err)
				}
			}()
		}
	}

	ov := overlay.New(board, cfg.ShowFPS)
	poller := graphics.NewPoller(cfg.Orbit.ZoomStep)
	graphics.Run(
		func() { poller.Poll(session) },
		func() {
			session.Tick()
			ov.Draw()
		},
	)
}
