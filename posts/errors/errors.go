package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/devconnector/internal/pkg/log"
)

// Post engine error kinds
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrAlreadyLiked     = errors.New("user already liked this post")
	ErrNotLiked         = errors.New("user has not yet liked this post")
	ErrCommentNotFound  = errors.New("comment does not exist")
	ErrNotAuthorized    = errors.New("user not authorized")
	ErrValidationFailed = errors.New("validation failed")

	ErrMissingUserContext = errors.New("missing user context")

	// Store errors
	ErrDatabaseOperation = errors.New("database operation failed")
)

// PostError represents a post service error with additional context
type PostError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *PostError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PostError) Unwrap() error {
	return e.Cause
}

// NewPostError creates a new PostError
func NewPostError(code, message string, cause error) *PostError {
	return &PostError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error codes
const (
	CodePostNotFound       = "POST_NOT_FOUND"
	CodeAlreadyLiked       = "ALREADY_LIKED"
	CodeNotLiked           = "NOT_LIKED"
	CodeCommentNotFound    = "COMMENT_NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeMissingUserContext = "MISSING_USER_CONTEXT"
	CodeDatabaseOperation  = "DATABASE_OPERATION_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HandleServiceError translates engine error kinds into HTTP responses
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrPostNotFound):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Code:    CodePostNotFound,
			Message: "Post not found",
			Details: err.Error(),
		})
	case errors.Is(err, ErrCommentNotFound):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Code:    CodeCommentNotFound,
			Message: "Comment does not exist",
			Details: err.Error(),
		})
	case errors.Is(err, ErrAlreadyLiked):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeAlreadyLiked,
			Message: "User already liked this post",
			Details: err.Error(),
		})
	case errors.Is(err, ErrNotLiked):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeNotLiked,
			Message: "User has not yet liked this post",
			Details: err.Error(),
		})
	case errors.Is(err, ErrNotAuthorized):
		return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
			Code:    CodeUnauthorized,
			Message: "User not authorized",
			Details: err.Error(),
		})
	case errors.Is(err, ErrValidationFailed):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeValidationFailed,
			Message: "Validation failed",
			Details: validationDetails(err),
		})
	case errors.Is(err, ErrMissingUserContext):
		return HandleUserContextError(c, "Authentication required")
	default:
		log.ErrorWithContext(c.UserContext(), "%s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    CodeInternalError,
			Message: "An unexpected error occurred",
		})
	}
}

// HandleListError maps a failed listing to 404, matching the public listing contract.
// The cause is logged, never returned.
func HandleListError(c *fiber.Ctx, err error) error {
	log.ErrorWithContext(c.UserContext(), "Listing posts failed: %v", err)
	return c.Status(http.StatusNotFound).JSON(ErrorResponse{
		Code:    CodePostNotFound,
		Message: "No posts found",
	})
}

// FieldErrors carries per-field validation messages.
type FieldErrors interface {
	error
	Fields() map[string]string
}

func validationDetails(err error) interface{} {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe.Fields()
	}
	return err.Error()
}

// HandleUserContextError handles a missing verified identity with 401 Unauthorized
func HandleUserContextError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
		Code:    CodeMissingUserContext,
		Message: message,
		Details: message,
	})
}

// HandleInvalidRequestError handles invalid request errors with 400 Bad Request
func HandleInvalidRequestError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Code:    CodeInvalidRequest,
		Message: message,
		Details: message,
	})
}

// WrapDatabaseError wraps store errors
func WrapDatabaseError(err error) *PostError {
	return NewPostError(CodeDatabaseOperation, "Database operation failed", fmt.Errorf("%w: %w", ErrDatabaseOperation, err))
}
