// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"errors"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/posts/models"
)

var (
	// ErrNotFound is returned when no post has the requested id.
	ErrNotFound = errors.New("post not found in store")

	// ErrConditionNotMet is returned when the post exists but a guarded
	// collection update did not apply: the user already liked it, the user
	// has not liked it, or the comment is absent.
	ErrConditionNotMet = errors.New("update condition not met")
)

// PostRepository defines the store operations the post engine relies on.
// Every collection mutation is a single conditional update, so concurrent
// likes and comments on the same post never overwrite each other.
type PostRepository interface {
	// Create inserts a new post
	Create(ctx context.Context, post *models.Post) error

	// FindByID retrieves a post by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)

	// Find retrieves posts ordered by createdAt descending
	Find(ctx context.Context, filter models.PostQueryFilter) ([]*models.Post, error)

	// Delete removes a post permanently
	Delete(ctx context.Context, id uuid.UUID) error

	// AddLike prepends {user: userID} unless the user already liked the post
	AddLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error)

	// RemoveLike removes the user's like if present
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error)

	// AddComment prepends comment to the post's comments
	AddComment(ctx context.Context, postID uuid.UUID, comment models.Comment) (*models.Post, error)

	// RemoveComment removes the comment with commentID if present
	RemoveComment(ctx context.Context, postID, commentID uuid.UUID) (*models.Post, error)
}
