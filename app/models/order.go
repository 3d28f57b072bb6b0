package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Order statuses. Pending is the only non-terminal state; Paid and Failed
// are terminal and are only ever written through the conditional update in
// the order repository. Cancelled exists for a manual administrative path
// and is never written by the payment flow.
const (
	OrderStatusPending   = "Pending"
	OrderStatusPaid      = "Paid"
	OrderStatusFailed    = "Failed"
	OrderStatusCancelled = "Cancelled"
)

// MomoOrderPrefix is prepended to the numeric order id to form the
// gateway-side order identifier. The value is part of the correlation
// contract with MoMo: both the redirect and the IPN echo it back.
const MomoOrderPrefix = "EL"

// Order is one purchase attempt. Orders are an append-only ledger: there
// is no delete path, and AmountVND is frozen at creation time.
type Order struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index:idx_orders_user_course,priority:1" json:"user_id"`
	CourseID       uint       `gorm:"not null;index:idx_orders_user_course,priority:2" json:"course_id"`
	Course         *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	AmountVND      int64      `gorm:"not null" json:"amount_vnd" validate:"gt=0"`
	Status         string     `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	MomoOrderID    string     `gorm:"type:varchar(64);uniqueIndex" json:"momo_order_id"`
	MomoRequestID  string     `gorm:"type:varchar(64)" json:"momo_request_id"`
	MomoTransID    string     `gorm:"type:varchar(64)" json:"momo_trans_id"`
	MomoResultCode *int       `gorm:"default:null" json:"momo_result_code,omitempty"`
	MomoMessage    string     `gorm:"type:varchar(255)" json:"momo_message"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

func (o *Order) Validate() error {
	v := validator.New()

	return v.Struct(o)
}

// IsTerminal reports whether the order has reached a final state.
func (o *Order) IsTerminal() bool {
	return o.Status != OrderStatusPending
}

// MomoOrderIDFor derives the gateway order id from a local order id.
// The mapping is deterministic so the identifier is reconstructable from
// the order row alone.
func MomoOrderIDFor(orderID uint) string {
	return fmt.Sprintf("%s%d", MomoOrderPrefix, orderID)
}
