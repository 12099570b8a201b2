package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/internal/cache"
	"github.com/qolzam/devconnector/internal/pkg/log"
	"github.com/qolzam/devconnector/internal/types"
	postsErrors "github.com/qolzam/devconnector/posts/errors"
	"github.com/qolzam/devconnector/posts/models"
	"github.com/qolzam/devconnector/posts/repository"
	"github.com/qolzam/devconnector/posts/validation"
)

const (
	cacheKeyList    = "posts:list"
	cacheKeyPrefix  = "posts:id:"
	cachePatternAll = "posts:*"
)

// postService implements the PostService interface
type postService struct {
	repo         repository.PostRepository
	cacheService *cache.GenericCacheService
	now          func() time.Time

	// cacheMu orders read-through fills against invalidations. generation
	// is bumped under it by every mutation, so a fill whose store read
	// started before a mutation is dropped.
	cacheMu    sync.Mutex
	generation uint64
}

// NewPostService creates a new instance of the post service.
// cacheService may be nil, in which case every read goes to the store.
func NewPostService(repo repository.PostRepository, cacheService *cache.GenericCacheService) PostService {
	return &postService{
		repo:         repo,
		cacheService: cacheService,
		now:          time.Now,
	}
}

// timestamp returns the current time at the precision every store keeps.
func (s *postService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// CreatePost creates a new post owned by user
func (s *postService) CreatePost(ctx context.Context, req *models.CreatePostRequest, user *types.UserContext) (*models.Post, error) {
	if user == nil || !user.IsAuthenticated() {
		return nil, postsErrors.ErrMissingUserContext
	}
	if err := validation.ValidateCreatePostRequest(req); err != nil {
		return nil, err
	}

	objectId, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate post ID: %w", err)
	}

	post := &models.Post{
		ObjectId:    objectId,
		OwnerUserId: user.UserID,
		Text:        req.Text,
		Name:        fallback(req.Name, user.DisplayName),
		Avatar:      fallback(req.Avatar, user.Avatar),
		Likes:       models.Likes{},
		Comments:    models.Comments{},
		CreatedAt:   s.timestamp(),
	}

	if err := s.repo.Create(ctx, post); err != nil {
		log.ErrorWithContext(ctx, "Failed to create post for user %s: %v", user.UserID, err)
		return nil, postsErrors.WrapDatabaseError(err)
	}

	log.InfoWithContext(ctx, "Post %s created by user %s", post.ObjectId, user.UserID)
	s.invalidateAllPosts(ctx)
	return post, nil
}

// ListPosts returns posts newest first. The unfiltered listing is served
// from the cache when one is configured.
func (s *postService) ListPosts(ctx context.Context, filter models.PostQueryFilter) ([]*models.Post, error) {
	cacheable := filter.Owner == nil && filter.Limit == 0
	var gen uint64
	if cacheable {
		var cached []*models.Post
		if s.getCached(ctx, cacheKeyList, &cached) {
			return cached, nil
		}
		gen = s.currentGeneration()
	}

	posts, err := s.repo.Find(ctx, filter)
	if err != nil {
		log.ErrorWithContext(ctx, "Failed to list posts: %v", err)
		return nil, postsErrors.WrapDatabaseError(err)
	}

	if cacheable {
		s.setCached(ctx, gen, cacheKeyList, posts)
	}
	return posts, nil
}

// GetPost retrieves a post by ID
func (s *postService) GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	key := cacheKeyPrefix + postID.String()

	var cached models.Post
	if s.getCached(ctx, key, &cached) {
		cached.Normalize()
		return &cached, nil
	}

	gen := s.currentGeneration()
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.setCached(ctx, gen, key, post)
	return post, nil
}

// DeletePost removes the post when user owns it
func (s *postService) DeletePost(ctx context.Context, postID uuid.UUID, user *types.UserContext) error {
	if user == nil || !user.IsAuthenticated() {
		return postsErrors.ErrMissingUserContext
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.OwnerUserId != user.UserID {
		log.WarnWithContext(ctx, "User %s attempted to delete post %s owned by %s", user.UserID, postID, post.OwnerUserId)
		return postsErrors.ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		return s.mapStoreError(ctx, err, postsErrors.ErrPostNotFound)
	}

	log.InfoWithContext(ctx, "Post %s deleted by owner %s", postID, user.UserID)
	s.invalidateAllPosts(ctx)
	return nil
}

// LikePost prepends the user's like
func (s *postService) LikePost(ctx context.Context, postID uuid.UUID, user *types.UserContext) (*models.Post, error) {
	if user == nil || !user.IsAuthenticated() {
		return nil, postsErrors.ErrMissingUserContext
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.HasLiked(user.UserID) {
		return nil, postsErrors.ErrAlreadyLiked
	}

	updated, err := s.repo.AddLike(ctx, postID, user.UserID)
	if err != nil {
		return nil, s.mapStoreError(ctx, err, postsErrors.ErrAlreadyLiked)
	}

	s.invalidateAllPosts(ctx)
	return updated, nil
}

// UnlikePost removes the user's like
func (s *postService) UnlikePost(ctx context.Context, postID uuid.UUID, user *types.UserContext) (*models.Post, error) {
	if user == nil || !user.IsAuthenticated() {
		return nil, postsErrors.ErrMissingUserContext
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.HasLiked(user.UserID) {
		return nil, postsErrors.ErrNotLiked
	}

	updated, err := s.repo.RemoveLike(ctx, postID, user.UserID)
	if err != nil {
		return nil, s.mapStoreError(ctx, err, postsErrors.ErrNotLiked)
	}

	s.invalidateAllPosts(ctx)
	return updated, nil
}

// AddComment prepends a comment with a fresh id
func (s *postService) AddComment(ctx context.Context, postID uuid.UUID, req *models.AddCommentRequest, user *types.UserContext) (*models.Post, error) {
	if user == nil || !user.IsAuthenticated() {
		return nil, postsErrors.ErrMissingUserContext
	}
	if err := validation.ValidateAddCommentRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	commentID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate comment ID: %w", err)
	}

	comment := models.Comment{
		ObjectId:  commentID,
		Text:      req.Text,
		Name:      fallback(req.Name, user.DisplayName),
		Avatar:    fallback(req.Avatar, user.Avatar),
		User:      user.UserID,
		CreatedAt: s.timestamp(),
	}

	updated, err := s.repo.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, s.mapStoreError(ctx, err, postsErrors.ErrPostNotFound)
	}

	log.DebugWithContext(ctx, "Comment %s added to post %s", commentID, postID)
	s.invalidateAllPosts(ctx)
	return updated, nil
}

// RemoveComment removes the comment with commentID. Any authenticated user
// may remove any comment.
func (s *postService) RemoveComment(ctx context.Context, postID, commentID uuid.UUID, user *types.UserContext) (*models.Post, error) {
	if user == nil || !user.IsAuthenticated() {
		return nil, postsErrors.ErrMissingUserContext
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CommentIndex(commentID) < 0 {
		return nil, postsErrors.ErrCommentNotFound
	}

	updated, err := s.repo.RemoveComment(ctx, postID, commentID)
	if err != nil {
		return nil, s.mapStoreError(ctx, err, postsErrors.ErrCommentNotFound)
	}

	log.DebugWithContext(ctx, "Comment %s removed from post %s by user %s", commentID, postID, user.UserID)
	s.invalidateAllPosts(ctx)
	return updated, nil
}

// findPost reads a post straight from the store
func (s *postService) findPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, s.mapStoreError(ctx, err, postsErrors.ErrPostNotFound)
	}
	return post, nil
}

// mapStoreError translates repository errors into engine error kinds.
// guardErr is reported when the post exists but the conditional update
// did not apply.
func (s *postService) mapStoreError(ctx context.Context, err error, guardErr error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return postsErrors.ErrPostNotFound
	case errors.Is(err, repository.ErrConditionNotMet):
		return guardErr
	default:
		log.ErrorWithContext(ctx, "Post store operation failed: %v", err)
		return postsErrors.WrapDatabaseError(err)
	}
}

// getCached reports whether key was found and decoded into target
func (s *postService) getCached(ctx context.Context, key string, target interface{}) bool {
	if !s.cacheService.IsEnabled() {
		return false
	}
	if err := s.cacheService.GetCached(ctx, key, target); err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			log.WarnWithContext(ctx, "Cache read failed for %s: %v", key, err)
		}
		return false
	}
	return true
}

// currentGeneration returns the mutation count to pass to setCached
// before the store read that produces the cached value.
func (s *postService) currentGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// setCached stores value unless a mutation happened since gen was taken.
func (s *postService) setCached(ctx context.Context, gen uint64, key string, value interface{}) {
	if !s.cacheService.IsEnabled() {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != gen {
		log.DebugWithContext(ctx, "Skipping cache fill for %s: posts changed during read", key)
		return
	}
	if err := s.cacheService.CacheData(ctx, key, value); err != nil {
		log.WarnWithContext(ctx, "Cache write failed for %s: %v", key, err)
	}
}

// invalidateAllPosts invalidates all posts-related cache entries
func (s *postService) invalidateAllPosts(ctx context.Context) {
	if !s.cacheService.IsEnabled() {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if err := s.cacheService.InvalidatePattern(ctx, cachePatternAll); err != nil {
		log.WarnWithContext(ctx, "Cache invalidation failed: %v", err)
	}
}

func fallback(value, def string) string {
	if value != "" {
		return value
	}
	return def
}
