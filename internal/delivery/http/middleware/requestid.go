package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDKey - ключ request id в locals
const RequestIDKey = "request_id"

// RequestID - middleware, проставляющий уникальный идентификатор запроса
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Locals(RequestIDKey, requestID)
		c.Set("X-Request-ID", requestID)

		return c.Next()
	}
}
