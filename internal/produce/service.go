package produce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	// ListAvailable returns listings with status available, newest first, with Farmer populated.
	ListAvailable(ctx context.Context) ([]Listing, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	Create(ctx context.Context, listing *Listing) error
}

type Service interface {
	LoadCatalog(ctx context.Context) ([]Listing, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]Listing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	AddListing(ctx context.Context, farmer *profile.Profile, input NewListing) (*Listing, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) LoadCatalog(ctx context.Context) ([]Listing, error) {
	listings, err := s.repo.ListAvailable(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load catalog")
		return nil, fmt.Errorf("service: failed to load catalog: %w", err)
	}
	return listings, nil
}

func (s *service) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]Listing, error) {
	listings, err := s.repo.ListByFarmer(ctx, farmerID)
	if err != nil {
		log.Error().Err(err).Stringer("farmer_id", farmerID).Msg("service: failed to list farmer produce")
		return nil, fmt.Errorf("service: failed to list farmer produce: %w", err)
	}
	return listings, nil
}

func (s *service) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("produce_id", id).Msg("service: failed to fetch listing")
		return nil, fmt.Errorf("service: failed to fetch listing: %w", err)
	}
	return listing, nil
}

func (s *service) AddListing(ctx context.Context, farmer *profile.Profile, input NewListing) (*Listing, error) {
	if !farmer.IsFarmer() {
		return nil, ErrNotFarmer
	}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidListing)
	case input.Quantity < 0:
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidListing)
	case input.Price.IsNegative():
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidListing)
	}

	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = "kg"
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate listing id: %w", err)
	}

	listing := &Listing{
		ID:          id,
		FarmerID:    farmer.ID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Quantity:    input.Quantity,
		Unit:        unit,
		Price:       input.Price,
		Status:      StatusFor(input.Quantity),
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		log.Error().Err(err).Stringer("farmer_id", farmer.ID).Msg("service: failed to create listing")
		return nil, fmt.Errorf("service: failed to create listing: %w", err)
	}
	listing.Farmer = farmer

	log.Info().Stringer("produce_id", listing.ID).Stringer("farmer_id", farmer.ID).Int("quantity", listing.Quantity).Msg("service: listing created")
	return listing, nil
}
