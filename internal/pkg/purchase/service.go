package purchase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hnthao/elearn/app/models"
	"github.com/hnthao/elearn/app/repository"
	"github.com/hnthao/elearn/internal/pkg/env"
	"github.com/hnthao/elearn/internal/pkg/payment"
)

// DefaultExchangeRateUSDToVND is used when EXCHANGE_RATE_USD_VND is unset.
const DefaultExchangeRateUSDToVND = 25000

// Checkout outcomes the controller turns into user-facing messages.
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrAlreadyOwned   = errors.New("course already purchased")
	ErrNotPriced      = errors.New("course has no positive price")
)

// GatewayError carries the buyer-facing message from a failed create
// call. The order stays Pending when this is returned.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// GatewayClient is the slice of the payment client checkout needs;
// failure is a value, never an error.
type GatewayClient interface {
	CreatePayment(ctx context.Context, in payment.CreateInput) (ok bool, payURL string, message string)
}

// Config holds the purchase-time configuration as an explicit value so
// the service is testable without ambient state.
type Config struct {
	ExchangeRateUSDToVND float64
	ReturnURL            string
	NotifyURL            string
}

// ConfigFromEnv reads the exchange rate and callback URLs, deriving the
// callbacks from PUBLIC_DOMAIN when they are not set explicitly.
func ConfigFromEnv() Config {
	rate := float64(DefaultExchangeRateUSDToVND)
	if raw := strings.TrimSpace(env.GetEnv("EXCHANGE_RATE_USD_VND", "")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			rate = v
		}
	}

	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	returnURL := strings.TrimSpace(env.GetEnv("MOMO_RETURN_URL", ""))
	if returnURL == "" && base != "" {
		returnURL = base + "/payment/momo/return"
	}
	notifyURL := strings.TrimSpace(env.GetEnv("MOMO_IPN_URL", ""))
	if notifyURL == "" && base != "" {
		notifyURL = base + "/webhooks/momo"
	}

	return Config{
		ExchangeRateUSDToVND: rate,
		ReturnURL:            returnURL,
		NotifyURL:            notifyURL,
	}
}

// Service orchestrates checkout: guards, amount freezing, order creation
// and the gateway call, in that order.
type Service struct {
	orders  repository.OrderRepository
	courses repository.CourseRepository
	gateway GatewayClient
	cfg     Config
}

func NewService(orders repository.OrderRepository, courses repository.CourseRepository, gateway GatewayClient, cfg Config) *Service {
	return &Service{orders: orders, courses: courses, gateway: gateway, cfg: cfg}
}

// Checkout runs the purchase flow for one user and course and returns the
// external pay URL to redirect the buyer to.
//
// Guard order matters: the already-owned check runs before anything is
// written, and the amount must be positive before an order row exists.
// Gateway identifiers are attached to the order before the create call so
// a lost response still leaves a correlatable Pending row behind.
func (s *Service) Checkout(ctx context.Context, userID, courseID uint, method string) (string, error) {
	paid, err := s.orders.GetPaidByUserAndCourse(userID, courseID)
	if err != nil {
		return "", fmt.Errorf("lookup paid orders: %w", err)
	}
	if len(paid) > 0 {
		return "", ErrAlreadyOwned
	}

	course, err := s.courses.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCourseNotFound
		}
		return "", fmt.Errorf("lookup course: %w", err)
	}

	amountVND := int64(math.Round(course.PriceUSD * s.cfg.ExchangeRateUSDToVND))
	if amountVND <= 0 {
		return "", ErrNotPriced
	}

	method = payment.NormalizeMethod(method)

	order := &models.Order{
		UserID:    userID,
		CourseID:  courseID,
		AmountVND: amountVND,
		Status:    models.OrderStatusPending,
	}
	if err := s.orders.Create(order); err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}

	// Persist the gateway identifiers before the network call so they
	// exist even if the create request never returns.
	order.MomoOrderID = models.MomoOrderIDFor(order.ID)
	order.MomoRequestID = uuid.NewString()
	if err := s.orders.Update(order); err != nil {
		return "", fmt.Errorf("attach gateway identifiers: %w", err)
	}

	ok, payURL, msg := s.gateway.CreatePayment(ctx, payment.CreateInput{
		OrderID:     order.MomoOrderID,
		RequestID:   order.MomoRequestID,
		AmountVND:   amountVND,
		OrderInfo:   "Thanh toan khoa hoc " + course.Title,
		ReturnURL:   s.cfg.ReturnURL,
		NotifyURL:   s.cfg.NotifyURL,
		RequestType: method,
	})
	if !ok {
		// The order intentionally stays Pending: no notification will
		// ever match it and reconciliation tolerates that.
		return "", &GatewayError{Message: msg}
	}

	return payURL, nil
}
