package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/stillhere/internal/models"
	"github.com/terraincognita07/stillhere/internal/services"
)

type contactInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (handler *Handler) ListContacts(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "device id required")
	}

	contacts, err := handler.contactService.ListContacts(user.ID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "load contacts failed")
	}

	return c.JSON(fiber.Map{
		"contacts": contactViews(contacts),
	})
}

func (handler *Handler) AddContact(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "device id required")
	}

	var input contactInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid contact payload")
	}

	contact, err := handler.contactService.AddContact(user.ID, input.Name, input.Email, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrContactInputInvalid) {
			return respondError(c, fiber.StatusBadRequest, "contact name and a valid email are required")
		}
		return respondError(c, fiber.StatusInternalServerError, "save contact failed")
	}

	return c.Status(fiber.StatusCreated).JSON(contactView(contact))
}

func (handler *Handler) RemoveContact(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "device id required")
	}

	contactID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || contactID == 0 {
		return respondError(c, fiber.StatusBadRequest, "invalid contact id")
	}

	if err := handler.contactService.RemoveContact(user.ID, uint(contactID)); err != nil {
		if errors.Is(err, services.ErrContactNotFound) {
			return respondError(c, fiber.StatusNotFound, "contact not found")
		}
		return respondError(c, fiber.StatusInternalServerError, "remove contact failed")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func contactView(contact models.EmergencyContact) fiber.Map {
	return fiber.Map{
		"id":    contact.ID,
		"name":  contact.Name,
		"email": contact.Email,
	}
}

func contactViews(contacts []models.EmergencyContact) []fiber.Map {
	views := make([]fiber.Map, 0, len(contacts))
	for _, contact := range contacts {
		views = append(views, contactView(contact))
	}
	return views
}
