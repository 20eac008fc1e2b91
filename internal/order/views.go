package order

import (
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/shopspring/decimal"
)

var displayOrder = []Status{StatusPending, StatusAccepted, StatusCompleted, StatusDeclined, StatusCancelled}

type StatusGroup struct {
	Status Status  `json:"status"`
	Orders []Order `json:"orders"`
}

// GroupByStatus buckets orders for display, pending first. Empty groups are
// omitted; order within a group is preserved.
func GroupByStatus(orders []Order) []StatusGroup {
	buckets := make(map[Status][]Order)
	for _, o := range orders {
		buckets[o.Status] = append(buckets[o.Status], o)
	}
	groups := make([]StatusGroup, 0, len(buckets))
	for _, st := range displayOrder {
		if len(buckets[st]) > 0 {
			groups = append(groups, StatusGroup{Status: st, Orders: buckets[st]})
		}
	}
	return groups
}

type SalesSummary struct {
	ActiveListings  int             `json:"active_listings"`
	PendingOrders   int             `json:"pending_orders"`
	CompletedOrders int             `json:"completed_orders"`
	Revenue         decimal.Decimal `json:"revenue"`
}

// SummarizeSales builds the farmer dashboard figures. Revenue counts completed orders only.
func SummarizeSales(listings []produce.Listing, incoming []Order) SalesSummary {
	s := SalesSummary{Revenue: decimal.Zero}
	for _, l := range listings {
		if l.Status == produce.StatusAvailable {
			s.ActiveListings++
		}
	}
	for _, o := range incoming {
		switch o.Status {
		case StatusPending:
			s.PendingOrders++
		case StatusCompleted:
			s.CompletedOrders++
			s.Revenue = s.Revenue.Add(o.TotalPrice)
		}
	}
	return s
}

type PurchaseSummary struct {
	TotalOrders   int             `json:"total_orders"`
	PendingOrders int             `json:"pending_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
}

// SummarizePurchases builds the buyer dashboard figures. Declined and cancelled
// orders are not counted as spent.
func SummarizePurchases(purchases []Order) PurchaseSummary {
	s := PurchaseSummary{TotalOrders: len(purchases), TotalSpent: decimal.Zero}
	for _, o := range purchases {
		if o.Status == StatusPending {
			s.PendingOrders++
		}
		if o.Status != StatusDeclined && o.Status != StatusCancelled {
			s.TotalSpent = s.TotalSpent.Add(o.TotalPrice)
		}
	}
	return s
}
