// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/posts/models"
	"github.com/qolzam/devconnector/posts/repository"
	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock implementation of PostRepository for testing
type MockPostRepository struct {
	mock.Mock
}

var _ repository.PostRepository = (*MockPostRepository)(nil)

// Create mocks the Create method
func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

// FindByID mocks the FindByID method
func (m *MockPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, id)
	return postResult(args)
}

// Find mocks the Find method
func (m *MockPostRepository) Find(ctx context.Context, filter models.PostQueryFilter) ([]*models.Post, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// AddLike mocks the AddLike method
func (m *MockPostRepository) AddLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, postID, userID)
	return postResult(args)
}

// RemoveLike mocks the RemoveLike method
func (m *MockPostRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, postID, userID)
	return postResult(args)
}

// AddComment mocks the AddComment method
func (m *MockPostRepository) AddComment(ctx context.Context, postID uuid.UUID, comment models.Comment) (*models.Post, error) {
	args := m.Called(ctx, postID, comment)
	return postResult(args)
}

// RemoveComment mocks the RemoveComment method
func (m *MockPostRepository) RemoveComment(ctx context.Context, postID, commentID uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, postID, commentID)
	return postResult(args)
}

func postResult(args mock.Arguments) (*models.Post, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}
