package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/qolzam/devconnector/internal/cache"
	dbi "github.com/qolzam/devconnector/internal/database/interfaces"
	"github.com/qolzam/devconnector/internal/middleware/requestid"
	"github.com/qolzam/devconnector/internal/pkg/log"
	platformconfig "github.com/qolzam/devconnector/internal/platform/config"
	"github.com/qolzam/devconnector/posts"
	"github.com/qolzam/devconnector/posts/handlers"
	"github.com/qolzam/devconnector/posts/repository"
	postsServices "github.com/qolzam/devconnector/posts/services"
)

const healthTimeout = 3 * time.Second

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Store    string `json:"store"`
	Cache    string `json:"cache"`
}

// newApp builds the HTTP server around an already opened store.
// cacheService may be nil.
func newApp(cfg *platformconfig.Config, repo repository.PostRepository, store dbi.HealthChecker, cacheService *cache.GenericCacheService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.WebDomain,
		AllowCredentials: cfg.Server.WebDomain != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
	}))

	app.Get("/health", healthHandler(cfg.Database.Type, store, cacheService))

	postsService := postsServices.NewPostService(repo, cacheService)
	postsHandlers := &posts.PostsHandlers{
		PostHandler: handlers.NewPostHandler(postsService),
	}
	posts.RegisterRoutes(app.Group(cfg.Server.BaseRoute), postsHandlers, cfg)

	return app
}

// errorHandler answers unhandled errors with JSON unless a handler already
// wrote a response.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	log.ErrorWithContext(c.UserContext(), "Path: %s, Error: %v, Code: %d", c.Path(), err, code)

	if len(c.Response().Body()) > 0 {
		return nil
	}

	return c.Status(code).JSON(fiber.Map{
		"code":    "HTTP_ERROR",
		"message": err.Error(),
	})
}

func healthHandler(dbType string, store dbi.HealthChecker, cacheService *cache.GenericCacheService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		resp := HealthResponse{Status: "ok", Database: dbType, Store: "up", Cache: "disabled"}
		if err := store.Ping(ctx); err != nil {
			log.WarnWithContext(ctx, "Health check: store ping failed: %v", err)
			resp.Status = "degraded"
			resp.Store = "down"
		}
		if cacheService.IsEnabled() {
			resp.Cache = "up"
			if err := cacheService.Ping(ctx); err != nil {
				log.WarnWithContext(ctx, "Health check: cache ping failed: %v", err)
				resp.Cache = "down"
			}
		}

		status := fiber.StatusOK
		if resp.Store == "down" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(resp)
	}
}
