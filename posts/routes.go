package posts

import (
	"github.com/gofiber/fiber/v2"
	authjwt "github.com/qolzam/devconnector/internal/middleware/authjwt"
	constraints "github.com/qolzam/devconnector/internal/middleware/constraints"
	platformconfig "github.com/qolzam/devconnector/internal/platform/config"
	"github.com/qolzam/devconnector/posts/handlers"
)

// PostsHandlers holds all the handlers this router needs.
type PostsHandlers struct {
	PostHandler *handlers.PostHandler
}

// RegisterRoutes is the single entry point for setting up posts routes.
// Reads are public; every mutation requires a verified JWT.
func RegisterRoutes(router fiber.Router, handlers *PostsHandlers, cfg *platformconfig.Config) {
	authMiddleware := authjwt.New(authjwt.Config{
		PublicKey: cfg.JWT.PublicKey,
		ClaimKey:  cfg.JWT.ClaimKey,
	})

	group := router.Group("/posts")

	// --- Public Routes ---
	group.Get("/test", handlers.PostHandler.Test)
	group.Get("/", handlers.PostHandler.ListPosts)

	// --- Sub-resource Routes (JWT) ---
	// Registered before /:postId so the static segments win.
	group.Post("/like/:postId", authMiddleware, constraints.RequireUUID("postId"), handlers.PostHandler.LikePost)
	group.Post("/unlike/:postId", authMiddleware, constraints.RequireUUID("postId"), handlers.PostHandler.UnlikePost)
	group.Post("/comment/:postId", authMiddleware, constraints.RequireUUID("postId"), handlers.PostHandler.AddComment)
	group.Delete("/comment/:postId/:commentId", authMiddleware, constraints.RequireUUID("postId", "commentId"), handlers.PostHandler.RemoveComment)

	// --- Base resource routes ---
	group.Post("/", authMiddleware, handlers.PostHandler.CreatePost)

	// --- Parameterized Routes for Specific Resources (MUST BE LAST) ---
	group.Get("/:postId", constraints.RequireUUID("postId"), handlers.PostHandler.GetPost)
	group.Delete("/:postId", authMiddleware, constraints.RequireUUID("postId"), handlers.PostHandler.DeletePost)
}
