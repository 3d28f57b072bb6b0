package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/hnthao/elearn/app/controllers"
	"github.com/hnthao/elearn/internal/pkg/env"
	"github.com/hnthao/elearn/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") ||
				strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, func(c *fiber.Ctx) error {
		return c.Redirect("/courses", fiber.StatusSeeOther)
	})
	group.Get("/courses", loggedInMiddleware, controllers.HandleCourseIndex)
	group.Get("/courses/my", middleware.RequireAuth, controllers.HandleMyCourses)
	group.Get("/courses/:id", loggedInMiddleware, controllers.HandleCourseDetail)
	group.Post("/courses/checkout/:id", middleware.RequireAuth, controllers.HandleCheckout)
}
