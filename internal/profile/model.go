package profile

import (
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleBuyer
}

// Profile представляет учётную запись участника рынка.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (p *Profile) IsFarmer() bool {
	return p != nil && p.Role == RoleFarmer
}

func (p *Profile) IsBuyer() bool {
	return p != nil && p.Role == RoleBuyer
}
