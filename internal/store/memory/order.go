package memory

import (
	"context"
	"slices"
	"time"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type OrderStore struct {
	s *Store
}

func (o *OrderStore) Atomic() bool {
	return o.s.atomic
}

// WithinTx runs fn against the shared maps. Each statement takes the store lock on
// its own, so concurrent transactions interleave and are kept honest only by the
// conditional writes. In atomic mode a failed fn replays its undo log; undo entries
// revert only this transaction's own change and leave later committed writes intact.
func (o *OrderStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) (err error) {
	t := &memTx{s: o.s}
	defer func() {
		if p := recover(); p != nil {
			t.rollback()
			panic(p)
		}
		if err != nil && o.s.atomic {
			log.Debug().Err(err).Int("writes", len(t.undo)).Msg("memory: rolling back transaction")
			t.rollback()
		}
	}()
	return fn(ctx, t)
}

func orderCreatedAt(o order.Order) time.Time { return o.CreatedAt }

func (o *OrderStore) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	row, ok := o.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	row = o.s.joinOrder(row)
	return &row, nil
}

func (o *OrderStore) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]order.Order, error) {
	return o.list(func(row order.Order) bool { return row.SellerID == sellerID }), nil
}

func (o *OrderStore) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]order.Order, error) {
	return o.list(func(row order.Order) bool { return row.BuyerID == buyerID }), nil
}

func (o *OrderStore) list(keep func(order.Order) bool) []order.Order {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	out := newestFirst(o.s.orderOrder, o.s.orders, orderCreatedAt, keep)
	for i := range out {
		out[i] = o.s.joinOrder(out[i])
	}
	return out
}

type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) rollback() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) GetAvailableListing(_ context.Context, id uuid.UUID) (*produce.Listing, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	l, ok := t.s.listings[id]
	if !ok || l.Status != produce.StatusAvailable {
		return nil, produce.ErrNotFound
	}
	return &l, nil
}

func (t *memTx) GetListing(_ context.Context, id uuid.UUID) (*produce.Listing, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	l, ok := t.s.listings[id]
	if !ok {
		return nil, produce.ErrNotFound
	}
	return &l, nil
}

func (t *memTx) UpdateStock(_ context.Context, upd order.StockUpdate) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.checkFault(OpUpdateStock); err != nil {
		return false, err
	}
	l, ok := t.s.listings[upd.ProduceID]
	if !ok || l.Quantity != upd.ExpectedQuantity {
		return false, nil
	}
	if upd.RequireAvailable && l.Status != produce.StatusAvailable {
		return false, nil
	}

	delta := l.Quantity - upd.NewQuantity
	l.Quantity = upd.NewQuantity
	l.Status = upd.NewStatus()
	t.s.listings[l.ID] = l
	// Другие транзакции могли изменить остаток после нас, поэтому возвращаем
	// только свою разницу, а не снимок строки.
	t.undo = append(t.undo, func() {
		cur, ok := t.s.listings[upd.ProduceID]
		if !ok {
			return
		}
		cur.Quantity += delta
		cur.Status = produce.StatusFor(cur.Quantity)
		t.s.listings[cur.ID] = cur
	})
	return true, nil
}

func (t *memTx) InsertOrder(_ context.Context, o *order.Order) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.checkFault(OpInsertOrder); err != nil {
		return err
	}
	row := *o
	row.Listing, row.Buyer, row.Seller = nil, nil, nil
	t.s.orders[row.ID] = row
	t.s.orderOrder = append(t.s.orderOrder, row.ID)
	t.undo = append(t.undo, func() {
		delete(t.s.orders, row.ID)
		t.s.orderOrder = slices.DeleteFunc(t.s.orderOrder, func(id uuid.UUID) bool { return id == row.ID })
	})
	return nil
}

func (t *memTx) GetOrder(_ context.Context, id uuid.UUID) (*order.Order, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	row, ok := t.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &row, nil
}

func (t *memTx) UpdateStatus(_ context.Context, id uuid.UUID, from, to order.Status) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.checkFault(OpUpdateStatus); err != nil {
		return false, err
	}
	row, ok := t.s.orders[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	t.s.orders[id] = row
	t.undo = append(t.undo, func() {
		cur, ok := t.s.orders[id]
		if !ok || cur.Status != to {
			return
		}
		cur.Status = from
		t.s.orders[id] = cur
	})
	return true, nil
}
