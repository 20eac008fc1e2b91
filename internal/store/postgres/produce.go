package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProduceRepository struct {
	db *pgxpool.Pool
}

func NewProduceRepository(db *pgxpool.Pool) *ProduceRepository {
	return &ProduceRepository{db: db}
}

func (r *ProduceRepository) ListAvailable(ctx context.Context) ([]produce.Listing, error) {
	return r.list(ctx, listingWithFarmer+`WHERE p.status = $1 ORDER BY p.created_at DESC`, string(produce.StatusAvailable))
}

func (r *ProduceRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]produce.Listing, error) {
	return r.list(ctx, listingWithFarmer+`WHERE p.farmer_id = $1 ORDER BY p.created_at DESC`, farmerID)
}

func (r *ProduceRepository) list(ctx context.Context, query string, arg any) ([]produce.Listing, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query produce: %w", err)
	}
	defer rows.Close()

	listings := make([]produce.Listing, 0)
	for rows.Next() {
		l, err := scanListingWithFarmer(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan produce: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating produce: %w", err)
	}
	return listings, nil
}

func (r *ProduceRepository) GetByID(ctx context.Context, id uuid.UUID) (*produce.Listing, error) {
	l, err := scanListingWithFarmer(r.db.QueryRow(ctx, listingWithFarmer+`WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, produce.ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select produce by id %s: %w", id, err)
	}
	return l, nil
}

func (r *ProduceRepository) Create(ctx context.Context, l *produce.Listing) error {
	query := `
		INSERT INTO produce (id, farmer_id, name, description, quantity, unit, price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		l.ID,
		l.FarmerID,
		l.Name,
		l.Description,
		l.Quantity,
		l.Unit,
		l.Price,
		string(l.Status),
		l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert produce: %w", err)
	}
	return nil
}
