package response

import (
	"github.com/gofiber/fiber/v2"
)

// FailureBody is the failure JSON shape the feed provider receives.
type FailureBody struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

const statusFailed = "failed"

// ManageSuccess sends the bare success sentinel the Autotelex feed expects:
// a 200 with the literal body "1", not a JSON object. Must stay bit-for-bit.
func ManageSuccess(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("1")
}

// Failed sends a rejection with the standard failure format.
func Failed(c *fiber.Ctx, reason string, statusCode int) error {
	return c.Status(statusCode).JSON(FailureBody{
		Status: statusFailed,
		Reason: reason,
	})
}

// Unauthorized sends 401 with the same shape as other failures.
func Unauthorized(c *fiber.Ctx, reason string) error {
	return Failed(c, reason, fiber.StatusUnauthorized)
}
