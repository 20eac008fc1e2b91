package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// OrderStore runs the order workflow inside a single Postgres transaction.
type OrderStore struct {
	db *pgxpool.Pool
}

func NewOrderStore(db *pgxpool.Pool) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Atomic() bool {
	return true
}

func (s *OrderStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) (err error) {
	tx, beginErr := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Msg("Panic recovered during order transaction, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			log.Error().Err(commitErr).Msg("Failed to commit transaction")
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(ctx, &pgTx{q: tx})
}

func (s *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := scanOrderWithJoins(s.db.QueryRow(ctx, orderWithJoins+`WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}
	return o, nil
}

func (s *OrderStore) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]order.Order, error) {
	return s.list(ctx, orderWithJoins+`WHERE o.seller_id = $1 ORDER BY o.created_at DESC`, sellerID)
}

func (s *OrderStore) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]order.Order, error) {
	return s.list(ctx, orderWithJoins+`WHERE o.buyer_id = $1 ORDER BY o.created_at DESC`, buyerID)
}

func (s *OrderStore) list(ctx context.Context, query string, userID uuid.UUID) ([]order.Order, error) {
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user id %s: %w", userID, err)
	}
	defer rows.Close()

	orders := make([]order.Order, 0)
	for rows.Next() {
		o, err := scanOrderWithJoins(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user id %s: %w", userID, err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating orders for user id %s: %w", userID, err)
	}
	return orders, nil
}

type pgTx struct {
	q querier
}

func (t *pgTx) GetAvailableListing(ctx context.Context, id uuid.UUID) (*produce.Listing, error) {
	return t.getListing(ctx, `SELECT `+listingColumns+` FROM produce p WHERE p.id = $1 AND p.status = 'available'`, id)
}

func (t *pgTx) GetListing(ctx context.Context, id uuid.UUID) (*produce.Listing, error) {
	return t.getListing(ctx, `SELECT `+listingColumns+` FROM produce p WHERE p.id = $1`, id)
}

func (t *pgTx) getListing(ctx context.Context, query string, id uuid.UUID) (*produce.Listing, error) {
	var l produce.Listing
	if err := t.q.QueryRow(ctx, query, id).Scan(listingDest(&l)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, produce.ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select produce %s: %w", id, err)
	}
	return &l, nil
}

func (t *pgTx) UpdateStock(ctx context.Context, upd order.StockUpdate) (bool, error) {
	query := `
		UPDATE produce
		SET quantity = $1, status = $2
		WHERE id = $3 AND quantity = $4 AND (NOT $5::boolean OR status = 'available')
	`
	cmdTag, err := t.q.Exec(ctx, query,
		upd.NewQuantity,
		string(upd.NewStatus()),
		upd.ProduceID,
		upd.ExpectedQuantity,
		upd.RequireAvailable,
	)
	if err != nil {
		return false, fmt.Errorf("repository: failed to update stock of produce %s: %w", upd.ProduceID, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (id, produce_id, buyer_id, seller_id, quantity, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := t.q.Exec(ctx, query,
		o.ID,
		o.ProduceID,
		o.BuyerID,
		o.SellerID,
		o.Quantity,
		o.TotalPrice,
		string(o.Status),
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}
	return nil
}

func (t *pgTx) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `
		SELECT id, produce_id, buyer_id, seller_id, quantity, total_price, status, created_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`
	var o order.Order
	if err := t.q.QueryRow(ctx, query, id).Scan(orderDest(&o)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}
	return &o, nil
}

func (t *pgTx) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) (bool, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`

	cmdTag, err := t.q.Exec(ctx, query, string(to), id, string(from))
	if err != nil {
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", to).Msg("repository: failed to update order status")
		return false, fmt.Errorf("repository: failed to update order status %s: %w", id, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
