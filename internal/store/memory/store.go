// Package memory is an in-process implementation of the marketplace repositories.
// It backs the service when STORE_DRIVER=memory and the workflow tests.
package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
)

// Operation names passed to a fault hook.
const (
	OpUpdateStock  = "produce.update_stock"
	OpInsertOrder  = "orders.insert"
	OpUpdateStatus = "orders.update_status"
)

type Option func(*Store)

// NonAtomic makes WithinTx keep the writes of a failed transaction, like a store
// without multi-row transactions.
func NonAtomic() Option {
	return func(s *Store) { s.atomic = false }
}

// WithFault installs a hook consulted before every write; a non-nil error fails the write.
func WithFault(fault func(op string) error) Option {
	return func(s *Store) { s.fault = fault }
}

type Store struct {
	mu sync.Mutex

	profiles map[uuid.UUID]profile.Profile
	emails   map[string]uuid.UUID
	creds    map[uuid.UUID]string
	sessions map[uuid.UUID]auth.SessionRecord

	listings     map[uuid.UUID]produce.Listing
	listingOrder []uuid.UUID
	orders       map[uuid.UUID]order.Order
	orderOrder   []uuid.UUID

	atomic bool
	fault  func(op string) error
}

func New(opts ...Option) *Store {
	s := &Store{
		profiles: make(map[uuid.UUID]profile.Profile),
		emails:   make(map[string]uuid.UUID),
		creds:    make(map[uuid.UUID]string),
		sessions: make(map[uuid.UUID]auth.SessionRecord),
		listings: make(map[uuid.UUID]produce.Listing),
		orders:   make(map[uuid.UUID]order.Order),
		atomic:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Profiles() *ProfileRepository { return &ProfileRepository{s: s} }
func (s *Store) Produce() *ProduceRepository  { return &ProduceRepository{s: s} }
func (s *Store) Orders() *OrderStore          { return &OrderStore{s: s} }
func (s *Store) Accounts() *AuthRepository    { return &AuthRepository{s: s} }

func (s *Store) checkFault(op string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op)
}

// Вызывать под s.mu.
func (s *Store) profileRef(id uuid.UUID) *profile.Profile {
	p, ok := s.profiles[id]
	if !ok {
		return nil
	}
	return &p
}

func (s *Store) joinListing(l produce.Listing) produce.Listing {
	l.Farmer = s.profileRef(l.FarmerID)
	return l
}

func (s *Store) joinOrder(o order.Order) order.Order {
	if l, ok := s.listings[o.ProduceID]; ok {
		l.Farmer = nil
		o.Listing = &l
	}
	o.Buyer = s.profileRef(o.BuyerID)
	o.Seller = s.profileRef(o.SellerID)
	return o
}

// newestFirst collects ids in reverse insertion order, then sorts by creation time
// so equal timestamps keep the latest insert first.
func newestFirst[T any](ids []uuid.UUID, rows map[uuid.UUID]T, createdAt func(T) time.Time, keep func(T) bool) []T {
	out := make([]T, 0)
	for i := len(ids) - 1; i >= 0; i-- {
		row := rows[ids[i]]
		if keep(row) {
			out = append(out, row)
		}
	}
	slices.SortStableFunc(out, func(a, b T) int { return createdAt(b).Compare(createdAt(a)) })
	return out
}
