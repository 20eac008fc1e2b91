package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Engine interface {
	PlaceOrder(ctx context.Context, buyer *profile.Profile, produceID uuid.UUID, quantity int) (*Order, error)
	Transition(ctx context.Context, actor *profile.Profile, orderID uuid.UUID, target Status) (*Order, error)
	GetOrder(ctx context.Context, actor *profile.Profile, id uuid.UUID) (*Order, error)
	ListIncoming(ctx context.Context, sellerID uuid.UUID) ([]Order, error)
	ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]Order, error)
}

type Option func(*engine)

func WithObserver(o Observer) Option {
	return func(e *engine) {
		if o != nil {
			e.observer = o
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *engine) { e.now = now }
}

type engine struct {
	store    Store
	observer Observer
	now      func() time.Time
}

func NewEngine(store Store, opts ...Option) Engine {
	e := &engine{store: store, observer: nopObserver{}, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *engine) PlaceOrder(ctx context.Context, buyer *profile.Profile, produceID uuid.UUID, quantity int) (*Order, error) {
	if buyer == nil || !buyer.IsBuyer() {
		return nil, ErrNotPermitted
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order id: %w", err)
	}

	var placed *Order
	err = e.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		// 1. Свежая копия позиции со стороны сервера, а не из кэша клиента
		listing, err := tx.GetAvailableListing(ctx, produceID)
		if err != nil {
			if errors.Is(err, produce.ErrNotFound) {
				return ErrNoLongerAvailable
			}
			return fmt.Errorf("service: failed to re-read listing: %w", err)
		}
		if listing.FarmerID == buyer.ID {
			return ErrNotPermitted
		}

		// 2. Проверка остатка
		if listing.Quantity < quantity {
			return ErrInsufficientStock
		}

		// 3. Условное списание: строка должна остаться available с тем же количеством
		ok, err := tx.UpdateStock(ctx, StockUpdate{
			ProduceID:        listing.ID,
			ExpectedQuantity: listing.Quantity,
			RequireAvailable: true,
			NewQuantity:      listing.Quantity - quantity,
		})
		if err != nil {
			return fmt.Errorf("service: failed to decrement stock: %w", err)
		}
		if !ok {
			return ErrConflict
		}

		// 4. Заказ с ценой из перечитанной позиции
		o := &Order{
			ID:         orderID,
			ProduceID:  listing.ID,
			BuyerID:    buyer.ID,
			SellerID:   listing.FarmerID,
			Quantity:   quantity,
			TotalPrice: listing.Price.Mul(decimal.NewFromInt(int64(quantity))),
			Status:     StatusPending,
			CreatedAt:  e.now().UTC(),
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			if !e.store.Atomic() {
				return &PartialFailureError{OrderID: o.ID, ProduceID: listing.ID, Target: StatusPending, Err: err}
			}
			return fmt.Errorf("service: failed to insert order: %w", err)
		}
		placed = o
		return nil
	})
	if err != nil {
		e.observer.WorkflowFailed("place_order", err)
		logWorkflowError(err).Stringer("produce_id", produceID).Stringer("buyer_id", buyer.ID).Int("quantity", quantity).Msg("service: failed to place order")
		return nil, err
	}

	e.observer.OrderPlaced(placed)
	log.Info().Stringer("order_id", placed.ID).Stringer("produce_id", produceID).Stringer("buyer_id", buyer.ID).
		Int("quantity", quantity).Str("total_price", placed.TotalPrice.StringFixed(2)).Msg("service: order placed")
	return placed, nil
}

func (e *engine) Transition(ctx context.Context, actor *profile.Profile, orderID uuid.UUID, target Status) (*Order, error) {
	if actor == nil {
		return nil, ErrNotPermitted
	}

	var (
		updated *Order
		from    Status
	)
	err := e.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("service: failed to re-read order: %w", err)
		}
		from = o.Status

		if !CanTransition(o.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
		}
		if !permitted(actor, o, target) {
			return ErrNotPermitted
		}

		if target == StatusCompleted {
			listing, err := tx.GetListing(ctx, o.ProduceID)
			if err != nil {
				if errors.Is(err, produce.ErrNotFound) {
					return fmt.Errorf("service: listing %s of order %s: %w", o.ProduceID, o.ID, produce.ErrNotFound)
				}
				return fmt.Errorf("service: failed to re-read listing: %w", err)
			}

			remaining := listing.Quantity - o.Quantity
			if remaining < 0 {
				return ErrInsufficientStock
			}

			ok, err := tx.UpdateStock(ctx, StockUpdate{
				ProduceID:        listing.ID,
				ExpectedQuantity: listing.Quantity,
				NewQuantity:      remaining,
			})
			if err != nil {
				return fmt.Errorf("service: failed to adjust listing: %w", err)
			}
			if !ok {
				return ErrConflict
			}
		}

		ok, err := tx.UpdateStatus(ctx, o.ID, o.Status, target)
		if err == nil && !ok {
			err = ErrConflict
		}
		if err != nil {
			// Без транзакций позиция уже списана, а статус заказа не записан.
			if target == StatusCompleted && !e.store.Atomic() {
				return &PartialFailureError{OrderID: o.ID, ProduceID: o.ProduceID, Target: target, Err: err}
			}
			if errors.Is(err, ErrConflict) {
				return err
			}
			return fmt.Errorf("service: failed to update order status: %w", err)
		}

		o.Status = target
		updated = o
		return nil
	})
	if err != nil {
		e.observer.WorkflowFailed("transition", err)
		logWorkflowError(err).Stringer("order_id", orderID).Stringer("target_status", target).Stringer("actor_id", actor.ID).Msg("service: failed to transition order")
		return nil, err
	}

	e.observer.OrderTransitioned(from, target)
	log.Info().Stringer("order_id", orderID).Stringer("old_status", from).Stringer("new_status", target).Msg("service: order status updated")
	return updated, nil
}

func (e *engine) GetOrder(ctx context.Context, actor *profile.Profile, id uuid.UUID) (*Order, error) {
	o, err := e.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	if actor == nil || !o.Involves(actor.ID) {
		return nil, ErrNotPermitted
	}
	return o, nil
}

func (e *engine) ListIncoming(ctx context.Context, sellerID uuid.UUID) ([]Order, error) {
	orders, err := e.store.ListBySeller(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to fetch incoming orders")
		return nil, fmt.Errorf("service: failed to fetch incoming orders: %w", err)
	}
	return orders, nil
}

func (e *engine) ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]Order, error) {
	orders, err := e.store.ListByBuyer(ctx, buyerID)
	if err != nil {
		log.Error().Err(err).Stringer("buyer_id", buyerID).Msg("service: failed to fetch purchases")
		return nil, fmt.Errorf("service: failed to fetch purchases: %w", err)
	}
	return orders, nil
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidQuantity, ErrNoLongerAvailable, ErrInsufficientStock,
		ErrConflict, ErrInvalidTransition, ErrNotPermitted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func logWorkflowError(err error) *zerolog.Event {
	if isBusinessError(err) {
		return log.Warn().Err(err)
	}
	return log.Error().Err(err)
}
