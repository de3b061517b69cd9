package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/claude/workoutmap/internal/app"
	"github.com/claude/workoutmap/internal/config"
	"github.com/claude/workoutmap/internal/mcp"
	"github.com/claude/workoutmap/internal/server"
	"github.com/claude/workoutmap/internal/storage"
	"github.com/claude/workoutmap/internal/view"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("WorkoutMap starting", "version", Version)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("failed to load .env", "error", err)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open storage (runs migrations)
	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		log.Error("failed to open storage", "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("storage ready", "path", cfg.Storage.Path, "slot", cfg.Storage.Slot)

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Restore the workout log
	hub := view.NewHub(log)
	workouts := app.New(storage.NewSlotPersister(db, cfg.Storage.Slot, log), hub, log, app.Options{
		ZoomLevel:     cfg.Map.ZoomLevel,
		HideFormDelay: cfg.Map.HideFormDelay,
	})
	if err := workouts.Start(ctx); err != nil {
		log.Error("failed to restore workouts", "error", err)
		os.Exit(1)
	}

	// Create server
	srv := server.New(workouts, hub, cfg.Auth.APIKey, log)
	if cfg.MCP.Enabled {
		mcpSrv := mcp.New(mcp.NewLocal(workouts), Version, log)
		srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))
		log.Info("mcp enabled", "path", "/mcp")
	}

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Closing the app ends open command streams before the server drains.
	if err := workouts.Close(shutdownCtx); err != nil {
		log.Error("final snapshot failed", "error", err)
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
