package repository

import (
	"time"

	"github.com/hnthao/elearn/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Course").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByMomoOrderID is the sole lookup used by both reconciliation
// channels; momo_order_id carries a unique index.
func (r *orderRepository) GetByMomoOrderID(momoOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Course").Where("momo_order_id = ?", momoOrderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUserID(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetPaidByUserAndCourse(userID, courseID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.OrderStatusPaid).
		Find(&orders).Error
	return orders, err
}

// HasActiveEntitlement reports whether the user has any Paid order created
// within the trailing window, regardless of which course was bought.
func (r *orderRepository) HasActiveEntitlement(userID uint, windowDays int) (bool, error) {
	since := time.Now().AddDate(0, 0, -windowDays)
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND status = ? AND created_at >= ?", userID, models.OrderStatusPaid, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CompletePayment writes the terminal state in one conditional UPDATE.
// Guarding on status = Pending makes the write race-free: when the
// redirect and the IPN arrive together, the database lets exactly one of
// them through and the other sees RowsAffected == 0.
func (r *orderRepository) CompletePayment(orderID uint, status, transID string, resultCode int, message string) (bool, error) {
	updates := map[string]interface{}{
		"status":           status,
		"momo_result_code": resultCode,
		"momo_message":     message,
		"updated_at":       time.Now(),
	}
	if transID != "" {
		updates["momo_trans_id"] = transID
	}

	tx := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *orderRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *orderRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
