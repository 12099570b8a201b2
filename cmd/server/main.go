package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/devconnector/internal/cache"
	"github.com/qolzam/devconnector/internal/pkg/log"
	platformconfig "github.com/qolzam/devconnector/internal/platform/config"
	"github.com/qolzam/devconnector/posts/repository"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load platform config: %v", err)
		os.Exit(1)
	}
	log.SetDebug(cfg.Server.Debug)
	if cfg.Server.Debug {
		log.Dump("server config", cfg.Server)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	repo, store, err := repository.NewPostRepositoryFromConfig(startCtx, cfg)
	cancel()
	if err != nil {
		log.Error("Failed to initialize post store (%s): %v", cfg.Database.Type, err)
		os.Exit(1)
	}
	log.Info("Post store initialized (%s)", cfg.Database.Type)

	cacheService := cache.NewServiceFromConfig(cfg.Cache)

	app := newApp(cfg, repo, store, cacheService)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Starting DevConnector posts API on %s%s", cfg.Server.Addr(), cfg.Server.BaseRoute)
	if err := serve(app, cfg.Server.Addr(), quit); err != nil {
		log.Error("Server stopped: %v", err)
		_ = cacheService.Close()
		_ = store.Close()
		os.Exit(1)
	}

	log.Info("Shutting down (timeout %s)", cfg.Server.ShutdownTimeout)
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Error("Graceful shutdown failed: %v", err)
	}
	if err := cacheService.Close(); err != nil {
		log.Warn("Cache close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Warn("Store close failed: %v", err)
	}
	log.Info("Server exited")
}

// serve runs app until a signal arrives on quit, returning nil, or until
// Listen fails, returning its error.
func serve(app *fiber.App, addr string, quit <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen on %s: %w", addr, err)
	case sig := <-quit:
		log.Info("Received %s", sig)
		return nil
	}
}
