package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hnthao/elearn/app/models"
	"github.com/hnthao/elearn/app/repository"
	"github.com/hnthao/elearn/internal/pkg/entitlements"
	"github.com/hnthao/elearn/internal/pkg/usercontext"
)

// APIServer implements the JSON API v1 endpoints
type APIServer struct {
	orders repository.OrderRepository
}

// NewAPIServer creates a new API server instance backed by the global
// repository factory.
func NewAPIServer() *APIServer {
	return &APIServer{orders: repository.GetGlobalFactory().GetOrderRepository()}
}

// NewAPIServerWithOrders builds a server over an explicit repository; tests only.
func NewAPIServerWithOrders(orders repository.OrderRepository) *APIServer {
	return &APIServer{orders: orders}
}

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// OrderStatus is the order lookup response body
type OrderStatus struct {
	OrderID     uint   `json:"order_id"`
	MomoOrderID string `json:"momo_order_id"`
	CourseID    uint   `json:"course_id"`
	AmountVND   int64  `json:"amount_vnd"`
	Status      string `json:"status"`
	ResultCode  *int   `json:"result_code,omitempty"`
	Message     string `json:"message,omitempty"`
}

// EntitlementStatus is the premium entitlement response body
type EntitlementStatus struct {
	Active     bool `json:"active"`
	WindowDays int  `json:"window_days"`
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// GetOrderStatus returns the current state of one of the caller's orders,
// addressed by the gateway-facing order id. Session auth is enforced by
// middleware in the router; ownership is enforced here.
func (s *APIServer) GetOrderStatus(c *fiber.Ctx) error {
	momoOrderID := c.Params("momoOrderId")
	if momoOrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "order id missing",
		})
	}

	order, err := s.orders.GetByMomoOrderID(momoOrderID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "order not found",
		})
	}

	userCtx := usercontext.GetUserContext(c)
	if order.UserID != userCtx.UserID {
		// Hide other users' orders entirely
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "order not found",
		})
	}

	return c.JSON(orderStatusFrom(order))
}

// GetPremiumEntitlement reports whether the authenticated user currently
// holds an active premium entitlement.
func (s *APIServer) GetPremiumEntitlement(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.JSON(EntitlementStatus{
		Active:     entitlements.HasActivePremium(s.orders, userCtx.UserID),
		WindowDays: entitlements.DefaultWindowDays,
	})
}

func orderStatusFrom(order *models.Order) OrderStatus {
	return OrderStatus{
		OrderID:     order.ID,
		MomoOrderID: order.MomoOrderID,
		CourseID:    order.CourseID,
		AmountVND:   order.AmountVND,
		Status:      order.Status,
		ResultCode:  order.MomoResultCode,
		Message:     order.MomoMessage,
	}
}
