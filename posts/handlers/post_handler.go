package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/gorilla/schema"
	"github.com/qolzam/devconnector/internal/middleware/authjwt"
	"github.com/qolzam/devconnector/internal/pkg/log"
	"github.com/qolzam/devconnector/posts/errors"
	"github.com/qolzam/devconnector/posts/models"
	"github.com/qolzam/devconnector/posts/services"
	"github.com/qolzam/devconnector/posts/validation"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// PostHandler handles all post-related HTTP requests
type PostHandler struct {
	postService services.PostService
}

// NewPostHandler creates a new PostHandler with injected dependencies
func NewPostHandler(postService services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Test answers the router smoke test
func (h *PostHandler) Test(c *fiber.Ctx) error {
	return c.JSON(models.PingResponse{Msg: "posts works"})
}

// ListPosts handles listing posts newest first, optionally filtered by owner
func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	var query models.ListPostsQuery
	if err := queryDecoder.Decode(&query, toValues(c.Queries())); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid query parameters")
	}
	if err := validation.ValidateListPostsQuery(&query); err != nil {
		return errors.HandleServiceError(c, err)
	}

	filter := models.PostQueryFilter{Limit: query.Limit}
	if query.Owner != "" {
		owner := uuid.FromStringOrNil(query.Owner)
		filter.Owner = &owner
	}

	posts, err := h.postService.ListPosts(c.UserContext(), filter)
	if err != nil {
		return errors.HandleListError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles retrieving a single post
// Note: UUID validation is handled by constraints.RequireUUID middleware
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleServiceError(c, errors.ErrPostNotFound)
	}

	post, err := h.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles post creation
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var req models.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	user, ok := authjwt.GetUserContext(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	post, err := h.postService.CreatePost(c.UserContext(), &req, &user)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles deleting a post owned by the caller
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleServiceError(c, errors.ErrPostNotFound)
	}

	user, ok := authjwt.GetUserContext(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	if err := h.postService.DeletePost(c.UserContext(), postID, &user); err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(models.DeletePostResponse{Success: true})
}

// LikePost handles liking a post
func (h *PostHandler) LikePost(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleServiceError(c, errors.ErrPostNotFound)
	}

	user, ok := authjwt.GetUserContext(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	post, err := h.postService.LikePost(c.UserContext(), postID, &user)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// UnlikePost handles removing the caller's like
func (h *PostHandler) UnlikePost(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleServiceError(c, errors.ErrPostNotFound)
	}

	user, ok := authjwt.GetUserContext(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	post, err := h.postService.UnlikePost(c.UserContext(), postID, &user)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// AddComment handles commenting on a post
func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleServiceError(c, errors.ErrPostNotFound)
	}

	var req models.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	user, ok := authjwt.GetUserContext(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	post, err := h.postService.AddComment(c.UserContext(), postID, &req, &user)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// RemoveComment handles removing a comment from a post
func (h *PostHandler) RemoveComment(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleServiceError(c, errors.ErrPostNotFound)
	}
	commentID, err := uuid.FromString(c.Params("commentId"))
	if err != nil {
		return errors.HandleServiceError(c, errors.ErrCommentNotFound)
	}

	user, ok := authjwt.GetUserContext(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	post, err := h.postService.RemoveComment(c.UserContext(), postID, commentID, &user)
	if err != nil {
		log.DebugWithContext(c.UserContext(), "Remove comment %s on post %s failed: %v", commentID, postID, err)
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

func toValues(queries map[string]string) url.Values {
	values := make(url.Values, len(queries))
	for k, v := range queries {
		values.Set(k, v)
	}
	return values
}
