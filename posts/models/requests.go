package models

import uuid "github.com/gofrs/uuid"

// CreatePostRequest is the body of POST /posts.
// Name and Avatar fall back to the caller's identity when empty.
type CreatePostRequest struct {
	Text   string `json:"text" validate:"required,notblank,min=10,max=300"`
	Name   string `json:"name" validate:"omitempty,max=100"`
	Avatar string `json:"avatar" validate:"omitempty,max=512"`
}

// AddCommentRequest is the body of POST /posts/comment/:postId.
type AddCommentRequest struct {
	Text   string `json:"text" validate:"required,notblank,min=10,max=300"`
	Name   string `json:"name" validate:"omitempty,max=100"`
	Avatar string `json:"avatar" validate:"omitempty,max=512"`
}

// ListPostsQuery carries the optional GET /posts filters.
type ListPostsQuery struct {
	Owner string `schema:"owner" validate:"omitempty,uuid"`
	Limit int    `schema:"limit" validate:"gte=0,lte=1000"`
}

// PostQueryFilter is the store-level form of ListPostsQuery.
// A nil Owner and zero Limit select every post.
type PostQueryFilter struct {
	Owner *uuid.UUID
	Limit int
}

// DeletePostResponse confirms a deletion.
type DeletePostResponse struct {
	Success bool `json:"success"`
}

// PingResponse is returned by the route smoke test.
type PingResponse struct {
	Msg string `json:"msg"`
}
