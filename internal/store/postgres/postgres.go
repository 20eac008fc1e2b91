// Package postgres implements the marketplace repositories on top of pgx.
package postgres

import (
	"context"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const profileColumns = `id, name, email, phone, role, created_at`

const listingColumns = `p.id, p.farmer_id, p.name, p.description, p.quantity, p.unit, p.price, p.status, p.created_at`

const listingWithFarmer = `
	SELECT ` + listingColumns + `,
		f.id, f.name, f.email, f.phone, f.role, f.created_at
	FROM produce p
	JOIN profiles f ON f.id = p.farmer_id
`

const orderWithJoins = `
	SELECT o.id, o.produce_id, o.buyer_id, o.seller_id, o.quantity, o.total_price, o.status, o.created_at,
		` + listingColumns + `,
		b.id, b.name, b.email, b.phone, b.role, b.created_at,
		s.id, s.name, s.email, s.phone, s.role, s.created_at
	FROM orders o
	JOIN produce p ON p.id = o.produce_id
	JOIN profiles b ON b.id = o.buyer_id
	JOIN profiles s ON s.id = o.seller_id
`

func profileDest(p *profile.Profile) []any {
	return []any{&p.ID, &p.Name, &p.Email, &p.Phone, &p.Role, &p.CreatedAt}
}

func listingDest(l *produce.Listing) []any {
	return []any{&l.ID, &l.FarmerID, &l.Name, &l.Description, &l.Quantity, &l.Unit, &l.Price, &l.Status, &l.CreatedAt}
}

func orderDest(o *order.Order) []any {
	return []any{&o.ID, &o.ProduceID, &o.BuyerID, &o.SellerID, &o.Quantity, &o.TotalPrice, &o.Status, &o.CreatedAt}
}

func scanListingWithFarmer(row pgx.Row) (*produce.Listing, error) {
	var (
		l produce.Listing
		f profile.Profile
	)
	if err := row.Scan(append(listingDest(&l), profileDest(&f)...)...); err != nil {
		return nil, err
	}
	l.Farmer = &f
	return &l, nil
}

func scanOrderWithJoins(row pgx.Row) (*order.Order, error) {
	var (
		o      order.Order
		l      produce.Listing
		buyer  profile.Profile
		seller profile.Profile
	)
	dest := orderDest(&o)
	dest = append(dest, listingDest(&l)...)
	dest = append(dest, profileDest(&buyer)...)
	dest = append(dest, profileDest(&seller)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	o.Listing, o.Buyer, o.Seller = &l, &buyer, &seller
	return &o, nil
}
