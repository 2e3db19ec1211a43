package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")
	api.Post("/device", handler.IssueDevice)

	checkin := api.Group("/checkin", handler.DeviceRequired)
	checkin.Post("", handler.Checkin)
	checkin.Get("/status", handler.CheckinStatus)
	checkin.Get("/history", handler.CheckinHistory)

	contacts := api.Group("/contacts", handler.DeviceRequired)
	contacts.Get("", handler.ListContacts)
	contacts.Post("", handler.AddContact)
	contacts.Delete("/:id", handler.RemoveContact)

	alerts := api.Group("/alerts")
	alerts.Post("/test", handler.DeviceRequired, handler.TestAlert)

	api.Post("/sweep", handler.AdminTokenRequired, handler.RunSweep)
}
