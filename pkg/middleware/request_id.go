package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "requestID"
	loggerKey    = "logger"
)

// RequestID tags every request with an ID (reusing a well-formed incoming X-Request-ID) and
// stores a child logger carrying it for handlers to pick up with Logger.
func RequestID(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Set(RequestIDHeader, id)
		c.Locals(requestIDKey, id)
		c.Locals(loggerKey, logger.With(zap.String("request_id", id)))

		return c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or "" outside that middleware.
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// Logger returns the request-scoped logger, falling back to base.
func Logger(c *fiber.Ctx, base *zap.Logger) *zap.Logger {
	if l, ok := c.Locals(loggerKey).(*zap.Logger); ok {
		return l
	}
	return base
}
