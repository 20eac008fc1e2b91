package order

import (
	"context"

	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
)

// Store is the remote data store as seen by the workflow. WithinTx runs fn as one
// logical transaction; Atomic reports whether a failing fn leaves no writes behind.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Atomic() bool

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListBySeller and ListByBuyer return orders newest first, joined with listing,
	// buyer and seller.
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error)
}

type Tx interface {
	// GetAvailableListing returns produce.ErrNotFound unless the listing exists with status available.
	GetAvailableListing(ctx context.Context, id uuid.UUID) (*produce.Listing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*produce.Listing, error)
	// UpdateStock writes the new quantity and derived status only if the row still
	// matches the guard. It reports whether a row was written.
	UpdateStock(ctx context.Context, upd StockUpdate) (bool, error)

	InsertOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	// UpdateStatus is conditioned on the current status being from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
}

type StockUpdate struct {
	ProduceID        uuid.UUID
	ExpectedQuantity int
	RequireAvailable bool
	NewQuantity      int
}

func (u StockUpdate) NewStatus() produce.Status {
	return produce.StatusFor(u.NewQuantity)
}

// Observer receives workflow outcomes, typically for metrics.
type Observer interface {
	OrderPlaced(o *Order)
	OrderTransitioned(from, to Status)
	WorkflowFailed(op string, err error)
}

type nopObserver struct{}

func (nopObserver) OrderPlaced(*Order)               {}
func (nopObserver) OrderTransitioned(Status, Status) {}
func (nopObserver) WorkflowFailed(string, error)     {}
