package middleware

import (
	"autotelex-sync/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the global error handler. Unexpected errors become a 500
// with the standard failure format; the feed provider retries on its own
// schedule, so no detail beyond the reason string is exposed.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	reason := "internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		reason = e.Message
	}
	if code == fiber.StatusInternalServerError {
		log.Error().Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Err(err).Msg("Request failed")
	}

	return response.Failed(c, reason, code)
}
