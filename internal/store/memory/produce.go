package memory

import (
	"context"
	"time"

	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type ProduceRepository struct {
	s *Store
}

func listingCreatedAt(l produce.Listing) time.Time { return l.CreatedAt }

func (r *ProduceRepository) ListAvailable(_ context.Context) ([]produce.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := newestFirst(r.s.listingOrder, r.s.listings, listingCreatedAt, func(l produce.Listing) bool {
		return l.Status == produce.StatusAvailable
	})
	for i := range out {
		out[i] = r.s.joinListing(out[i])
	}
	return out, nil
}

func (r *ProduceRepository) ListByFarmer(_ context.Context, farmerID uuid.UUID) ([]produce.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := newestFirst(r.s.listingOrder, r.s.listings, listingCreatedAt, func(l produce.Listing) bool {
		return l.FarmerID == farmerID
	})
	for i := range out {
		out[i] = r.s.joinListing(out[i])
	}
	return out, nil
}

func (r *ProduceRepository) GetByID(_ context.Context, id uuid.UUID) (*produce.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, produce.ErrNotFound
	}
	l = r.s.joinListing(l)
	return &l, nil
}

func (r *ProduceRepository) Create(_ context.Context, l *produce.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row := *l
	row.Farmer = nil
	if _, exists := r.s.listings[row.ID]; !exists {
		r.s.listingOrder = append(r.s.listingOrder, row.ID)
	}
	r.s.listings[row.ID] = row
	return nil
}

// SetPrice edits a listing price in place, as an out-of-band edit would.
func (r *ProduceRepository) SetPrice(id uuid.UUID, price decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return produce.ErrNotFound
	}
	l.Price = price
	r.s.listings[id] = l
	return nil
}
