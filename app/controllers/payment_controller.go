package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/hnthao/elearn/app/models"
	"github.com/hnthao/elearn/app/repository"
	"github.com/hnthao/elearn/internal/pkg/entitlements"
	"github.com/hnthao/elearn/internal/pkg/payment"
)

var (
	paymentOrderRepo repository.OrderRepository
	paymentGateway   *payment.Client
)

// InitializePaymentController wires the payment handlers to the global
// repository factory and builds the gateway client once; the IPN handler
// only reads its keys to record signature validity.
func InitializePaymentController() {
	paymentOrderRepo = repository.GetGlobalFactory().GetOrderRepository()
	paymentGateway = payment.NewClientFromEnv()
}

// SetPaymentOrderRepository swaps the backing repository; used by tests.
func SetPaymentOrderRepository(r repository.OrderRepository) {
	paymentOrderRepo = r
}

// SetPaymentGateway swaps the gateway client; used by tests.
func SetPaymentGateway(gw *payment.Client) {
	paymentGateway = gw
}

// HandleMoMoReturn is the browser redirect channel. It renders a human
// readable outcome page; the reconciliation side effect is identical to
// the IPN channel because both delegate to the same Reconciler.
func HandleMoMoReturn(c *fiber.Ctx) error {
	n, err := payment.ParseReturnQuery(func(key string) string {
		return c.Query(key)
	})
	if err != nil {
		return renderPaymentResult(c, false, "Thiếu tham số thanh toán.", nil)
	}

	outcome, order, err := payment.NewReconciler(paymentOrderRepo).Apply(n)
	if err != nil {
		log.Printf("payment: return reconciliation for %q failed: %v", n.OrderID, err)
		return renderPaymentResult(c, false, "Không xử lý được kết quả thanh toán.", nil)
	}

	switch outcome {
	case payment.OutcomeUnknownOrder:
		return renderPaymentResult(c, false, "Không tìm thấy đơn hàng.", nil)
	case payment.OutcomeDuplicate:
		if order.Status == models.OrderStatusPaid {
			return renderPaymentResult(c, true, "Bạn đã thanh toán khóa học này.", order)
		}
		return renderPaymentResult(c, false, failureMessage(order.MomoMessage), order)
	case payment.OutcomePaid:
		entitlements.Invalidate(order.UserID)
		return renderPaymentResult(c, true, "Thanh toán thành công.", order)
	default:
		return renderPaymentResult(c, false, failureMessage(n.Message), order)
	}
}

// HandleMoMoIPN is the server-to-server channel. It lives outside the
// CSRF group (the gateway has no browser session) and always answers the
// structured JSON acknowledgment the gateway expects. Every delivery is
// appended to the webhook event log before reconciliation runs.
func HandleMoMoIPN(c *fiber.Ctx) error {
	raw := append([]byte(nil), c.BodyRaw()...)
	if len(raw) == 0 {
		return ipnAck(c, 1, "No body")
	}

	n, parseErr := payment.ParseIPN(raw)

	signatureValid := false
	momoOrderID := ""
	eventID := ""
	if n != nil {
		momoOrderID = n.OrderID
		eventID = n.RequestID
		if paymentGateway != nil {
			signatureValid = payment.VerifyNotificationSignature(n, paymentGateway.AccessKey, paymentGateway.SecretKey)
		}
	}
	if eventID == "" {
		sum := sha256.Sum256(raw)
		eventID = hex.EncodeToString(sum[:])
	}

	_, stored, err := paymentOrderRepo.CreateWebhookEventIfNotExists(&models.PaymentWebhookEvent{
		Provider:        models.PaymentProviderMoMo,
		ProviderEventID: eventID,
		MomoOrderID:     momoOrderID,
		PayloadJSON:     string(raw),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		// The event log is evidence, not part of the decision; keep going.
		log.Printf("payment: webhook event persist failed: %v", err)
	}

	if parseErr != nil {
		markWebhookProcessed(stored, "invalid payload: "+parseErr.Error())
		return ipnAck(c, 1, "Invalid JSON")
	}

	outcome, order, err := payment.NewReconciler(paymentOrderRepo).Apply(n)
	if err != nil {
		log.Printf("payment: ipn reconciliation for %q failed: %v", n.OrderID, err)
		markWebhookProcessed(stored, err.Error())
		return ipnAck(c, 1, "Internal error")
	}

	switch outcome {
	case payment.OutcomeUnknownOrder:
		markWebhookProcessed(stored, "order not found")
		return ipnAck(c, 1, "Order not found")
	case payment.OutcomePaid:
		entitlements.Invalidate(order.UserID)
	}

	markWebhookProcessed(stored, "")
	return ipnAck(c, 0, "Success")
}

func renderPaymentResult(c *fiber.Ctx, success bool, message string, order *models.Order) error {
	return c.Render("payment/result", fiber.Map{
		"Success": success,
		"Message": message,
		"Order":   order,
	})
}

func ipnAck(c *fiber.Ctx, resultCode int, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"resultCode": resultCode,
		"message":    message,
	})
}

func markWebhookProcessed(event *models.PaymentWebhookEvent, processingError string) {
	if event == nil {
		return
	}
	if err := paymentOrderRepo.MarkWebhookProcessed(event.ID, processingError); err != nil {
		log.Printf("payment: mark webhook %d processed failed: %v", event.ID, err)
	}
}

func failureMessage(message string) string {
	if message == "" {
		return "Thanh toán thất bại."
	}
	return message
}
