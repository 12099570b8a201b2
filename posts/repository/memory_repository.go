// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/posts/models"
)

// memoryRepository keeps posts in process. Stored and returned posts are
// copies, so callers never share slices with the store.
type memoryRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*models.Post
}

// NewMemoryRepository creates an in-process PostRepository
func NewMemoryRepository() PostRepository {
	return &memoryRepository{posts: make(map[uuid.UUID]*models.Post)}
}

func (r *memoryRepository) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ObjectId]; exists {
		return fmt.Errorf("post %s already exists", post.ObjectId)
	}
	stored := post.Clone()
	stored.Normalize()
	r.posts[post.ObjectId] = stored
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return post.Clone(), nil
}

func (r *memoryRepository) Find(ctx context.Context, filter models.PostQueryFilter) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Post, 0, len(r.posts))
	for _, post := range r.posts {
		if filter.Owner != nil && post.OwnerUserId != *filter.Owner {
			continue
		}
		result = append(result, post.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ObjectId.String() > result[j].ObjectId.String()
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *memoryRepository) AddLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error) {
	return r.mutate(postID, func(p *models.Post) bool {
		if p.HasLiked(userID) {
			return false
		}
		p.Likes = append(models.Likes{{User: userID}}, p.Likes...)
		return true
	})
}

func (r *memoryRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error) {
	return r.mutate(postID, func(p *models.Post) bool {
		idx := p.Likes.IndexOf(userID)
		if idx < 0 {
			return false
		}
		p.Likes = append(p.Likes[:idx:idx], p.Likes[idx+1:]...)
		return true
	})
}

func (r *memoryRepository) AddComment(ctx context.Context, postID uuid.UUID, comment models.Comment) (*models.Post, error) {
	return r.mutate(postID, func(p *models.Post) bool {
		p.Comments = append(models.Comments{comment}, p.Comments...)
		return true
	})
}

func (r *memoryRepository) RemoveComment(ctx context.Context, postID, commentID uuid.UUID) (*models.Post, error) {
	return r.mutate(postID, func(p *models.Post) bool {
		idx := p.CommentIndex(commentID)
		if idx < 0 {
			return false
		}
		p.Comments = append(p.Comments[:idx:idx], p.Comments[idx+1:]...)
		return true
	})
}

// mutate applies fn to a copy of the post under the write lock and stores
// the copy only when fn reports that its guard held.
func (r *memoryRepository) mutate(postID uuid.UUID, fn func(*models.Post) bool) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}

	next := current.Clone()
	if !fn(next) {
		return nil, ErrConditionNotMet
	}
	next.Normalize()
	r.posts[postID] = next
	return next.Clone(), nil
}
