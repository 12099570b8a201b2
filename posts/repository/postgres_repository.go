// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/qolzam/devconnector/internal/database/postgres"
	"github.com/qolzam/devconnector/posts/models"
)

const postColumns = `id, owner_user_id, text, name, avatar, likes, comments, created_at`

// SchemaSQL creates the posts table. Likes and comments are JSONB arrays
// kept newest-first.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
	id UUID PRIMARY KEY,
	owner_user_id UUID NOT NULL,
	text TEXT NOT NULL,
	name VARCHAR(255) NOT NULL DEFAULT '',
	avatar VARCHAR(512) NOT NULL DEFAULT '',
	likes JSONB NOT NULL DEFAULT '[]'::jsonb,
	comments JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_posts_owner ON posts (owner_user_id);
`

// postgresRepository implements PostRepository using raw SQL queries
type postgresRepository struct {
	client *postgres.Client
}

// NewPostgresRepository creates a new PostgreSQL repository for posts
func NewPostgresRepository(client *postgres.Client) PostRepository {
	return &postgresRepository{client: client}
}

// EnsurePostgresSchema applies SchemaSQL.
func EnsurePostgresSchema(ctx context.Context, client *postgres.Client) error {
	if _, err := client.DB().ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("failed to apply posts schema: %w", err)
	}
	return nil
}

// Create inserts a new post
func (r *postgresRepository) Create(ctx context.Context, post *models.Post) error {
	post.Normalize()

	query := `INSERT INTO posts (` + postColumns + `)
		VALUES (:id, :owner_user_id, :text, :name, :avatar, :likes, :comments, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.client.DB(), query, post); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// FindByID retrieves a post by its ID
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	var post models.Post
	if err := sqlx.GetContext(ctx, r.client.DB(), &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	post.Normalize()
	return &post, nil
}

// Find retrieves posts ordered by created_at descending
func (r *postgresRepository) Find(ctx context.Context, filter models.PostQueryFilter) ([]*models.Post, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Owner != nil {
		args = append(args, *filter.Owner)
		where = append(where, fmt.Sprintf("owner_user_id = $%d", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var posts []models.Post
	if err := sqlx.SelectContext(ctx, r.client.DB(), &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}

	result := make([]*models.Post, len(posts))
	for i := range posts {
		posts[i].Normalize()
		result[i] = &posts[i]
	}
	return result, nil
}

// Delete removes a post permanently
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.client.DB().ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike prepends the like unless the user is already in likes
func (r *postgresRepository) AddLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error) {
	query := `UPDATE posts
		SET likes = jsonb_build_array(jsonb_build_object('user', $2::text)) || likes
		WHERE id = $1 AND NOT likes @> jsonb_build_array(jsonb_build_object('user', $2::text))
		RETURNING ` + postColumns
	return r.conditionalUpdate(ctx, postID, query, postID, userID.String())
}

// RemoveLike removes the user's like, keeping the order of the rest
func (r *postgresRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error) {
	query := `UPDATE posts
		SET likes = COALESCE((
			SELECT jsonb_agg(elem ORDER BY ord)
			FROM jsonb_array_elements(likes) WITH ORDINALITY AS t(elem, ord)
			WHERE elem->>'user' <> $2::text
		), '[]'::jsonb)
		WHERE id = $1 AND likes @> jsonb_build_array(jsonb_build_object('user', $2::text))
		RETURNING ` + postColumns
	return r.conditionalUpdate(ctx, postID, query, postID, userID.String())
}

// AddComment prepends the comment
func (r *postgresRepository) AddComment(ctx context.Context, postID uuid.UUID, comment models.Comment) (*models.Post, error) {
	payload, err := json.Marshal(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode comment: %w", err)
	}

	query := `UPDATE posts
		SET comments = jsonb_build_array($2::jsonb) || comments
		WHERE id = $1
		RETURNING ` + postColumns
	return r.conditionalUpdate(ctx, postID, query, postID, string(payload))
}

// RemoveComment removes the comment, keeping the order of the rest
func (r *postgresRepository) RemoveComment(ctx context.Context, postID, commentID uuid.UUID) (*models.Post, error) {
	query := `UPDATE posts
		SET comments = COALESCE((
			SELECT jsonb_agg(elem ORDER BY ord)
			FROM jsonb_array_elements(comments) WITH ORDINALITY AS t(elem, ord)
			WHERE elem->>'objectId' <> $2::text
		), '[]'::jsonb)
		WHERE id = $1 AND comments @> jsonb_build_array(jsonb_build_object('objectId', $2::text))
		RETURNING ` + postColumns
	return r.conditionalUpdate(ctx, postID, query, postID, commentID.String())
}

// conditionalUpdate runs a guarded UPDATE ... RETURNING. When no row is
// returned it tells a missing post apart from a guard that did not hold.
func (r *postgresRepository) conditionalUpdate(ctx context.Context, postID uuid.UUID, query string, args ...interface{}) (*models.Post, error) {
	var post models.Post
	err := sqlx.GetContext(ctx, r.client.DB(), &post, query, args...)
	if err == nil {
		post.Normalize()
		return &post, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	var exists bool
	if err := r.client.DB().GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID); err != nil {
		return nil, fmt.Errorf("failed to check post existence: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrConditionNotMet
}
