package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IssueDevice hands out a fresh opaque device id for clients that have
// none stored yet. The user row itself is created lazily on the first
// request that carries the id.
func (handler *Handler) IssueDevice(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"device_id": uuid.NewString(),
		"issued_at": time.Now().UTC().Format(time.RFC3339),
	})
}
