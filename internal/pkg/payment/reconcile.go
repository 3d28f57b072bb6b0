package payment

import (
	"errors"

	"github.com/hnthao/elearn/app/models"
	"github.com/hnthao/elearn/app/repository"
	"gorm.io/gorm"
)

// Outcome describes what a delivery did to the order it references.
type Outcome int

const (
	// OutcomePaid: this delivery won the terminal write and the order is Paid.
	OutcomePaid Outcome = iota
	// OutcomeFailed: this delivery won the terminal write and the order is Failed.
	OutcomeFailed
	// OutcomeDuplicate: the order was already terminal; nothing was written.
	OutcomeDuplicate
	// OutcomeUnknownOrder: no order matches the correlation id.
	OutcomeUnknownOrder
)

// Reconciler applies an outcome notification to the order ledger. The
// redirect handler and the IPN handler share this one implementation so
// the algorithm cannot drift between channels.
type Reconciler struct {
	orders repository.OrderRepository
}

func NewReconciler(orders repository.OrderRepository) *Reconciler {
	return &Reconciler{orders: orders}
}

// NewReconcilerFromDB builds a reconciler over the shared database handle.
func NewReconcilerFromDB(db *gorm.DB) *Reconciler {
	return NewReconciler(repository.NewOrderRepository(db))
}

// Apply runs the reconciliation state machine for one delivery:
//
//	lookup -> already-Paid short circuit -> classify -> conditional write
//
// The terminal write is a single UPDATE guarded on status = Pending, so
// when two deliveries race, the store lets exactly one through; the loser
// comes back as OutcomeDuplicate with the winner's stored state. A Failed
// order can never be flipped to Paid by a late success delivery for the
// same reason.
func (r *Reconciler) Apply(n *Notification) (Outcome, *models.Order, error) {
	order, err := r.orders.GetByMomoOrderID(n.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutcomeUnknownOrder, nil, nil
		}
		return OutcomeUnknownOrder, nil, err
	}

	if order.Status == models.OrderStatusPaid {
		return OutcomeDuplicate, order, nil
	}

	status := models.OrderStatusFailed
	transID := ""
	if IsSuccessCode(n.ResultCode) {
		status = models.OrderStatusPaid
		transID = n.TransID
	}

	applied, err := r.orders.CompletePayment(order.ID, status, transID, n.ResultCode, n.Message)
	if err != nil {
		return OutcomeDuplicate, order, err
	}

	stored, err := r.orders.GetByMomoOrderID(n.OrderID)
	if err != nil {
		return OutcomeDuplicate, order, err
	}

	if !applied {
		// Lost the race or the order was already Failed; report the
		// state that actually persisted.
		return OutcomeDuplicate, stored, nil
	}
	if status == models.OrderStatusPaid {
		return OutcomePaid, stored, nil
	}
	return OutcomeFailed, stored, nil
}
