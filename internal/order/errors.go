package order

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrNoLongerAvailable = errors.New("listing is no longer available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("someone else just completed this transaction")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotPermitted      = errors.New("actor is not permitted to perform this action")
	ErrPartialFailure    = errors.New("listing updated but order write failed")
)

// PartialFailureError is returned on a store without multi-row transactions when
// the listing stock was written but the order write that follows failed. That is
// the order insert of PlaceOrder (Target is StatusPending) or the status update
// of a completion. The two rows need manual reconciliation.
type PartialFailureError struct {
	OrderID   uuid.UUID
	ProduceID uuid.UUID
	Target    Status
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("order %s: listing %s adjusted but order write for status %s failed: %v", e.OrderID, e.ProduceID, e.Target, e.Err)
}

func (e *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFailure
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
