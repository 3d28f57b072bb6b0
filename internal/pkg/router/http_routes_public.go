package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hnthao/elearn/app/controllers"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Gateway redirect target after the buyer leaves the pay page. Reads
	// only query parameters, so it stays outside the CSRF group.
	app.Get("/payment/momo/return", loggedInMiddleware, controllers.HandleMoMoReturn)

	// Payment provider webhooks (no CSRF, no session; the gateway calls this)
	app.Post("/webhooks/momo", controllers.HandleMoMoIPN)
}
