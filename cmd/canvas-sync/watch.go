// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianCanvas/pkg/logging"
	canvas_sync "github.com/AleutianAI/AleutianCanvas/services/sync"
	"github.com/AleutianAI/AleutianCanvas/services/sync/config"
	"github.com/AleutianAI/AleutianCanvas/services/sync/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		configPath string
		rootDir    string
		debug      bool
		port       int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a component directory and classify changes",
		Long: `Watch a component directory, classify every filesystem change as a
user edit or a generator write, and expose the status API. User edits are
logged as structured events for the reverse-sync pipeline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if rootDir != "" {
				cfg.Root = rootDir
			}
			if debug {
				cfg.Tracker.Debug = true
				cfg.Log.Level = "debug"
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if cfg.Root == "" {
				return errors.New("no watch root: pass --root or set root in the config file")
			}
			return runWatch(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to canvas-sync.yaml")
	cmd.Flags().StringVarP(&rootDir, "root", "r", "", "Component directory to watch (overrides config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable per-decision debug logging")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Status API port (overrides config)")

	return cmd
}

// loadConfig loads the config file, or defaults when no path is given.
func loadConfig(path string) (*config.File, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(path)
}

func runWatch(parent context.Context, cfg *config.File) error {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Log.Level),
		LogDir:  cfg.Log.Dir,
		Service: "canvas-sync",
		JSON:    cfg.Log.JSON || !isatty.IsTerminal(os.Stderr.Fd()),
	})
	defer logger.Close()

	// Configured ignores extend the defaults; the built-in patterns guard
	// against re-ingesting editor droppings and the writer's temp files.
	var watchOpts *watch.Options
	if len(cfg.Ignore) > 0 {
		opts := watch.DefaultOptions()
		opts.IgnorePatterns = append(opts.IgnorePatterns, cfg.Ignore...)
		watchOpts = &opts
	}

	svc, err := canvas_sync.NewService(canvas_sync.ServiceConfig{
		Root:    cfg.Root,
		Tracker: cfg.TrackerConfig(),
		Watch:   watchOpts,
		Logger:  logger,
		OnUserEdit: func(edits []watch.UserEdit) {
			for _, edit := range edits {
				logger.Info("user edit detected",
					"path", edit.Path,
					"bytes", len(edit.Content),
					"detected_at", edit.Time.Format(time.RFC3339Nano))
			}
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Server.Enabled {
		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(gin.Recovery())

		v1 := router.Group("/v1")
		canvas_sync.RegisterRoutes(v1, canvas_sync.NewHandlers(svc))
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}

		g.Go(func() error {
			logger.Info("status API listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	} else {
		g.Go(func() error {
			<-ctx.Done()
			return nil
		})
	}

	logger.Info("canvas-sync running", "root", cfg.Root)
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("canvas-sync stopped")
	return nil
}
