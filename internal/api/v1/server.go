package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hnthao/elearn/internal/pkg/middleware"
)

// ServerInterface is the contract the router registers against.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error
	GetOrderStatus(c *fiber.Ctx) error
	GetPremiumEntitlement(c *fiber.Ctx) error
}

// RegisterHandlers attaches the v1 endpoints to the given router group.
// Order and entitlement lookups require a logged-in session.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)
	router.Get("/orders/:momoOrderId/status", middleware.RequireAPISessionAuth, si.GetOrderStatus)
	router.Get("/entitlements/premium", middleware.RequireAPISessionAuth, si.GetPremiumEntitlement)
}
