package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/stillhere/internal/services"
)

// TestAlert is the user-initiated "notify my contacts now" path. It goes
// through the same dispatch and cooldown dedup as the scheduled sweep but
// skips the inactivity check.
func (handler *Handler) TestAlert(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "device id required")
	}

	summary, err := handler.sweepService.NotifyNow(c.Context(), user.ID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNoEmergencyContacts) {
			return respondError(c, fiber.StatusBadRequest, "no emergency contacts configured")
		}
		return respondError(c, fiber.StatusInternalServerError, "alert dispatch failed")
	}

	return c.JSON(summary)
}

// RunSweep is the external-scheduler entry point: one full inactivity
// pass over every user, returning the dispatch summary.
func (handler *Handler) RunSweep(c *fiber.Ctx) error {
	summary, err := handler.sweepService.Run(c.Context(), time.Now())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "sweep failed")
	}
	return c.JSON(summary)
}
