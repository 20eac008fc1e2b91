package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDeclined || s == StatusCancelled
}

// ParseStatus понимает также "rejected" из подсказок ассистента.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCompleted, StatusCancelled:
		return st, nil
	case "rejected":
		return StatusDeclined, nil
	case "canceled":
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
}

type Order struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ProduceID  uuid.UUID       `json:"produce_id" db:"produce_id"`
	BuyerID    uuid.UUID       `json:"buyer_id" db:"buyer_id"`
	SellerID   uuid.UUID       `json:"seller_id" db:"seller_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	Status     Status          `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`

	// Заполняются JOIN'ом только в представлениях.
	Listing *produce.Listing `json:"produce,omitempty" db:"-"`
	Buyer   *profile.Profile `json:"buyer,omitempty" db:"-"`
	Seller  *profile.Profile `json:"seller,omitempty" db:"-"`
}

// Involves reports whether the profile is the buyer or the seller of the order.
func (o *Order) Involves(id uuid.UUID) bool {
	return o.BuyerID == id || o.SellerID == id
}
