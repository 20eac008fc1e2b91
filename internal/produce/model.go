package produce

import (
	"time"

	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

func (s Status) String() string {
	return string(s)
}

// StatusFor возвращает статус, соответствующий остатку: sold только при нулевом количестве.
func StatusFor(quantity int) Status {
	if quantity <= 0 {
		return StatusSold
	}
	return StatusAvailable
}

type Listing struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	FarmerID    uuid.UUID        `json:"farmer_id" db:"farmer_id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description" db:"description"`
	Quantity    int              `json:"quantity" db:"quantity"`
	Unit        string           `json:"unit" db:"unit"`
	Price       decimal.Decimal  `json:"price" db:"price"`
	Status      Status           `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	Farmer      *profile.Profile `json:"farmer,omitempty" db:"-"` // заполняется JOIN'ом
}

func (l Listing) Available() bool {
	return l.Status == StatusAvailable && l.Quantity > 0
}

// NewListing is the farmer-supplied part of a listing.
type NewListing struct {
	Name        string          `json:"name" validate:"required,min=2,max=120"`
	Description string          `json:"description" validate:"max=2000"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Unit        string          `json:"unit" validate:"required,max=20"`
	Price       decimal.Decimal `json:"price"`
}
