package api

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/stillhere/internal/models"
)

const (
	deviceIDHeader   = "X-Device-ID"
	adminTokenHeader = "X-Admin-Token"

	userLocalKey = "user"

	maxDeviceIDLength = 128
)

// DeviceRequired resolves the calling user from the opaque device id
// header, creating the user on first contact. There is no further
// identity: whoever holds the device id is the user.
func (handler *Handler) DeviceRequired(c *fiber.Ctx) error {
	deviceID := strings.TrimSpace(c.Get(deviceIDHeader))
	if deviceID == "" {
		return respondError(c, fiber.StatusBadRequest, "device id required")
	}
	if len(deviceID) > maxDeviceIDLength {
		return respondError(c, fiber.StatusBadRequest, "device id too long")
	}

	user, err := handler.repositories.Users.FindOrCreateByDeviceID(deviceID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "resolve device failed")
	}

	c.Locals(userLocalKey, user)
	return c.Next()
}

// AdminTokenRequired guards operational endpoints. With no token
// configured the guard is open, which is the expected setup when a
// private scheduler is the only caller.
func (handler *Handler) AdminTokenRequired(c *fiber.Ctx) error {
	if handler.cfg.AdminToken == "" {
		return c.Next()
	}

	provided := c.Get(adminTokenHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(handler.cfg.AdminToken)) != 1 {
		return respondError(c, fiber.StatusUnauthorized, "invalid admin token")
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(userLocalKey).(models.User)
	return user, ok
}
