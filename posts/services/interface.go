package services

import (
	"context"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/internal/types"
	"github.com/qolzam/devconnector/posts/models"
)

// PostService defines the post interaction operations
type PostService interface {
	// Create operations
	CreatePost(ctx context.Context, req *models.CreatePostRequest, user *types.UserContext) (*models.Post, error)

	// Read operations
	ListPosts(ctx context.Context, filter models.PostQueryFilter) ([]*models.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, error)

	// Delete operations
	DeletePost(ctx context.Context, postID uuid.UUID, user *types.UserContext) error

	// Like operations
	LikePost(ctx context.Context, postID uuid.UUID, user *types.UserContext) (*models.Post, error)
	UnlikePost(ctx context.Context, postID uuid.UUID, user *types.UserContext) (*models.Post, error)

	// Comment operations
	AddComment(ctx context.Context, postID uuid.UUID, req *models.AddCommentRequest, user *types.UserContext) (*models.Post, error)
	RemoveComment(ctx context.Context, postID, commentID uuid.UUID, user *types.UserContext) (*models.Post, error)
}
