package constraints

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

// RequireUUID ensures the named path parameters are valid UUIDs.
// A malformed value can never identify a stored document, so the request is
// answered with 404 and the handler is not called.
//
// Static routes like /like/:postId must be registered BEFORE parameterized
// routes like /:postId to keep route matching predictable.
func RequireUUID(params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, param := range params {
			value := c.Params(param)
			if value == "" {
				continue
			}
			if _, err := uuid.FromString(value); err != nil {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"code":    "NOT_FOUND",
					"message": "Resource not found",
					"details": param + " is not a valid identifier",
				})
			}
		}
		return c.Next()
	}
}
