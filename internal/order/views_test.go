package order_test

import (
	"testing"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func orderWith(status order.Status, total int64) order.Order {
	return order.Order{ID: uuid.Must(uuid.NewV4()), Status: status, TotalPrice: decimal.NewFromInt(total)}
}

func TestGroupByStatus(t *testing.T) {
	orders := []order.Order{
		orderWith(order.StatusCompleted, 1),
		orderWith(order.StatusPending, 2),
		orderWith(order.StatusCancelled, 3),
		orderWith(order.StatusPending, 4),
	}

	groups := order.GroupByStatus(orders)

	var got []order.Status
	for _, g := range groups {
		got = append(got, g.Status)
	}
	want := []order.Status{order.StatusPending, order.StatusCompleted, order.StatusCancelled}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("group order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, orders[1].ID, groups[0].Orders[0].ID)
	assert.Equal(t, orders[3].ID, groups[0].Orders[1].ID)

	assert.Empty(t, order.GroupByStatus(nil))
}

func TestSummarizeSales(t *testing.T) {
	listings := []produce.Listing{
		{Status: produce.StatusAvailable, Quantity: 3},
		{Status: produce.StatusSold},
		{Status: produce.StatusAvailable, Quantity: 1},
	}
	incoming := []order.Order{
		orderWith(order.StatusPending, 10),
		orderWith(order.StatusCompleted, 15),
		orderWith(order.StatusCompleted, 5),
		orderWith(order.StatusDeclined, 100),
	}

	s := order.SummarizeSales(listings, incoming)
	assert.Equal(t, 2, s.ActiveListings)
	assert.Equal(t, 1, s.PendingOrders)
	assert.Equal(t, 2, s.CompletedOrders)
	assert.Equal(t, "20", s.Revenue.String())

	empty := order.SummarizeSales(nil, nil)
	assert.True(t, empty.Revenue.IsZero())
}

func TestSummarizePurchases(t *testing.T) {
	s := order.SummarizePurchases([]order.Order{
		orderWith(order.StatusPending, 10),
		orderWith(order.StatusAccepted, 7),
		orderWith(order.StatusCancelled, 50),
		orderWith(order.StatusDeclined, 20),
		orderWith(order.StatusCompleted, 3),
	})
	assert.Equal(t, 5, s.TotalOrders)
	assert.Equal(t, 1, s.PendingOrders)
	assert.Equal(t, "20", s.TotalSpent.String())
}

func TestTransitionTable(t *testing.T) {
	assert.Equal(t, []order.Status{order.StatusAccepted, order.StatusDeclined, order.StatusCancelled}, order.NextStatuses(order.StatusPending))
	assert.Equal(t, []order.Status{order.StatusCompleted, order.StatusCancelled}, order.NextStatuses(order.StatusAccepted))
	for _, st := range []order.Status{order.StatusCompleted, order.StatusDeclined, order.StatusCancelled} {
		assert.True(t, st.Terminal())
		assert.Empty(t, order.NextStatuses(st))
	}
	assert.False(t, order.CanTransition("shipped", order.StatusCompleted))
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]order.Status{
		"pending":    order.StatusPending,
		" Accepted ": order.StatusAccepted,
		"rejected":   order.StatusDeclined,
		"canceled":   order.StatusCancelled,
	} {
		got, err := order.ParseStatus(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := order.ParseStatus("delivered")
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
}
