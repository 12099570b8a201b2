package requestid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/internal/pkg/log"
	"github.com/qolzam/devconnector/internal/types"
)

const (
	// HeaderRequestID is the HTTP header name for request ID
	HeaderRequestID = types.HeaderRequestID
	// ContextKeyRequestID is the key used to store request ID in Fiber context
	ContextKeyRequestID = types.RequestIDLocal
)

// New creates a middleware that generates or uses an existing X-Request-ID header.
// The id is stored in Fiber locals and in the request's user context so that
// log.*WithContext calls made with c.UserContext() carry it.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			id, err := uuid.NewV4()
			if err != nil {
				id, _ = uuid.NewV4()
			}
			requestID = id.String()
		}

		c.Locals(ContextKeyRequestID, requestID)
		c.SetUserContext(log.WithRequestID(c.UserContext(), requestID))
		c.Set(HeaderRequestID, requestID)

		return c.Next()
	}
}

// GetRequestID retrieves the request ID from Fiber context
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
