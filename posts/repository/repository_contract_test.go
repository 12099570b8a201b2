// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/posts/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPost(t *testing.T, owner uuid.UUID, createdAt time.Time) *models.Post {
	t.Helper()
	return &models.Post{
		ObjectId:    uuid.Must(uuid.NewV4()),
		OwnerUserId: owner,
		Text:        "a post used by the repository tests",
		Name:        "Tester",
		Avatar:      "https://example.com/a.png",
		CreatedAt:   createdAt.UTC().Truncate(time.Millisecond),
	}
}

// runRepositoryContract exercises the behaviour every PostRepository
// implementation must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) PostRepository) {
	ctx := context.Background()

	t.Run("create and find by id", func(t *testing.T) {
		repo := newRepo(t)
		post := newTestPost(t, uuid.Must(uuid.NewV4()), time.Now())
		require.NoError(t, repo.Create(ctx, post))

		got, err := repo.FindByID(ctx, post.ObjectId)
		require.NoError(t, err)
		assert.Equal(t, post.ObjectId, got.ObjectId)
		assert.Equal(t, post.Text, got.Text)
		assert.True(t, post.CreatedAt.Equal(got.CreatedAt))
		assert.NotNil(t, got.Likes)
		assert.NotNil(t, got.Comments)
		assert.Empty(t, got.Likes)
		assert.Empty(t, got.Comments)
	})

	t.Run("find by id missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(ctx, uuid.Must(uuid.NewV4()))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find orders newest first with owner and limit", func(t *testing.T) {
		repo := newRepo(t)
		owner := uuid.Must(uuid.NewV4())
		other := uuid.Must(uuid.NewV4())
		base := time.Now().Add(-time.Hour)

		first := newTestPost(t, owner, base)
		second := newTestPost(t, other, base.Add(time.Minute))
		third := newTestPost(t, owner, base.Add(2*time.Minute))
		for _, p := range []*models.Post{first, second, third} {
			require.NoError(t, repo.Create(ctx, p))
		}

		all, err := repo.Find(ctx, models.PostQueryFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, third.ObjectId, all[0].ObjectId)
		assert.Equal(t, second.ObjectId, all[1].ObjectId)
		assert.Equal(t, first.ObjectId, all[2].ObjectId)

		mine, err := repo.Find(ctx, models.PostQueryFilter{Owner: &owner})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, third.ObjectId, mine[0].ObjectId)

		limited, err := repo.Find(ctx, models.PostQueryFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, third.ObjectId, limited[0].ObjectId)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		post := newTestPost(t, uuid.Must(uuid.NewV4()), time.Now())
		require.NoError(t, repo.Create(ctx, post))

		require.NoError(t, repo.Delete(ctx, post.ObjectId))
		assert.ErrorIs(t, repo.Delete(ctx, post.ObjectId), ErrNotFound)
		_, err := repo.FindByID(ctx, post.ObjectId)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("likes are guarded and newest first", func(t *testing.T) {
		repo := newRepo(t)
		post := newTestPost(t, uuid.Must(uuid.NewV4()), time.Now())
		require.NoError(t, repo.Create(ctx, post))
		alice := uuid.Must(uuid.NewV4())
		bob := uuid.Must(uuid.NewV4())

		updated, err := repo.AddLike(ctx, post.ObjectId, alice)
		require.NoError(t, err)
		require.Len(t, updated.Likes, 1)

		updated, err = repo.AddLike(ctx, post.ObjectId, bob)
		require.NoError(t, err)
		require.Len(t, updated.Likes, 2)
		assert.Equal(t, bob, updated.Likes[0].User)
		assert.Equal(t, alice, updated.Likes[1].User)

		_, err = repo.AddLike(ctx, post.ObjectId, alice)
		assert.ErrorIs(t, err, ErrConditionNotMet)

		updated, err = repo.RemoveLike(ctx, post.ObjectId, bob)
		require.NoError(t, err)
		require.Len(t, updated.Likes, 1)
		assert.Equal(t, alice, updated.Likes[0].User)

		_, err = repo.RemoveLike(ctx, post.ObjectId, bob)
		assert.ErrorIs(t, err, ErrConditionNotMet)

		_, err = repo.AddLike(ctx, uuid.Must(uuid.NewV4()), alice)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("comments are newest first and removable", func(t *testing.T) {
		repo := newRepo(t)
		post := newTestPost(t, uuid.Must(uuid.NewV4()), time.Now())
		require.NoError(t, repo.Create(ctx, post))
		user := uuid.Must(uuid.NewV4())

		older := models.Comment{ObjectId: uuid.Must(uuid.NewV4()), Text: "first comment text", User: user, CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
		newer := models.Comment{ObjectId: uuid.Must(uuid.NewV4()), Text: "second comment text", User: user, CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}

		_, err := repo.AddComment(ctx, post.ObjectId, older)
		require.NoError(t, err)
		updated, err := repo.AddComment(ctx, post.ObjectId, newer)
		require.NoError(t, err)
		require.Len(t, updated.Comments, 2)
		assert.Equal(t, newer.ObjectId, updated.Comments[0].ObjectId)
		assert.Equal(t, older.ObjectId, updated.Comments[1].ObjectId)

		updated, err = repo.RemoveComment(ctx, post.ObjectId, newer.ObjectId)
		require.NoError(t, err)
		require.Len(t, updated.Comments, 1)
		assert.Equal(t, older.ObjectId, updated.Comments[0].ObjectId)

		_, err = repo.RemoveComment(ctx, post.ObjectId, newer.ObjectId)
		assert.ErrorIs(t, err, ErrConditionNotMet)

		_, err = repo.AddComment(ctx, uuid.Must(uuid.NewV4()), older)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.RemoveComment(ctx, uuid.Must(uuid.NewV4()), older.ObjectId)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent likes are not lost", func(t *testing.T) {
		repo := newRepo(t)
		post := newTestPost(t, uuid.Must(uuid.NewV4()), time.Now())
		require.NoError(t, repo.Create(ctx, post))

		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AddLike(ctx, post.ObjectId, uuid.Must(uuid.NewV4()))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.FindByID(ctx, post.ObjectId)
		require.NoError(t, err)
		assert.Len(t, got.Likes, workers)
	})

	t.Run("concurrent duplicate like applies once", func(t *testing.T) {
		repo := newRepo(t)
		post := newTestPost(t, uuid.Must(uuid.NewV4()), time.Now())
		require.NoError(t, repo.Create(ctx, post))
		user := uuid.Must(uuid.NewV4())

		const workers = 10
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.AddLike(ctx, post.ObjectId, user); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		got, err := repo.FindByID(ctx, post.ObjectId)
		require.NoError(t, err)
		assert.Len(t, got.Likes, 1)
	})
}
