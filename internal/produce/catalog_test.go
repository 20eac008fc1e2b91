package produce_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing(name, description, price string, qty int) produce.Listing {
	return produce.Listing{
		ID:          uuid.Must(uuid.NewV4()),
		Name:        name,
		Description: description,
		Quantity:    qty,
		Unit:        "kg",
		Price:       decimal.RequireFromString(price),
		Status:      produce.StatusFor(qty),
	}
}

func names(listings []produce.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Name)
	}
	return out
}

func sampleCatalog() []produce.Listing {
	return []produce.Listing{
		listing("Tomatoes", "Ripe red tomatoes", "3.50", 10),
		listing("Potatoes", "Great for mash", "1.20", 0),
		listing("Cherry tomatoes", "Sweet", "5", 4),
		listing("Carrots", "Organic, tomato-free", "1.20", 7),
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "empty_term", term: "", want: []string{"Tomatoes", "Potatoes", "Cherry tomatoes", "Carrots"}},
		{name: "case_insensitive_name", term: "TOMATO", want: []string{"Tomatoes", "Cherry tomatoes", "Carrots"}},
		{name: "description", term: "mash", want: []string{"Potatoes"}},
		{name: "spaces_are_part_of_term", term: " sweet", want: []string{}},
		{name: "inner_space", term: "cherry tom", want: []string{"Cherry tomatoes"}},
		{name: "no_match", term: "kale", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(produce.Filter(sampleCatalog(), tt.term))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter(%q) mismatch (-want +got):\n%s", tt.term, diff)
			}
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		mode produce.SortMode
		want []string
	}{
		{name: "none_keeps_order", mode: produce.SortNone, want: []string{"Tomatoes", "Potatoes", "Cherry tomatoes", "Carrots"}},
		{name: "ascending_stable", mode: produce.SortPriceAscending, want: []string{"Potatoes", "Carrots", "Tomatoes", "Cherry tomatoes"}},
		{name: "descending_stable", mode: produce.SortPriceDescending, want: []string{"Cherry tomatoes", "Tomatoes", "Potatoes", "Carrots"}},
		{name: "available_only", mode: produce.SortAvailableOnly, want: []string{"Tomatoes", "Cherry tomatoes", "Carrots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleCatalog()
			before := names(in)
			got := names(produce.Sort(in, tt.mode))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Sort(%s) mismatch (-want +got):\n%s", tt.mode, diff)
			}
			assert.Equal(t, before, names(in), "input must not be reordered")
		})
	}
}

func TestQuery_FiltersThenSorts(t *testing.T) {
	got := names(produce.Query(sampleCatalog(), "tomato", produce.SortPriceDescending))
	assert.Equal(t, []string{"Cherry tomatoes", "Tomatoes", "Carrots"}, got)
}

func TestParseSortMode(t *testing.T) {
	tests := map[string]produce.SortMode{
		"":                produce.SortNone,
		"all":             produce.SortNone,
		"low-to-high":     produce.SortPriceAscending,
		"Price-Ascending": produce.SortPriceAscending,
		"high-to-low":     produce.SortPriceDescending,
		"desc":            produce.SortPriceDescending,
		"available":       produce.SortAvailableOnly,
		"available-only":  produce.SortAvailableOnly,
	}
	for in, want := range tests {
		got, err := produce.ParseSortMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := produce.ParseSortMode("by-farmer")
	assert.Error(t, err)
}

type sourceFunc func(ctx context.Context) ([]produce.Listing, error)

func (f sourceFunc) LoadCatalog(ctx context.Context) ([]produce.Listing, error) { return f(ctx) }

func TestCatalog_KeepsLastGoodSet(t *testing.T) {
	var (
		payload []produce.Listing
		loadErr error
	)
	c := produce.NewCatalog(sourceFunc(func(context.Context) ([]produce.Listing, error) {
		return payload, loadErr
	}))
	ctx := context.Background()

	payload = sampleCatalog()
	require.NoError(t, c.Load(ctx))
	assert.NoError(t, c.Err())
	assert.False(t, c.LoadedAt().IsZero())
	assert.Len(t, c.View("", produce.SortNone), 4)

	loadErr = errors.New("backend timeout")
	err := c.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, c.Err(), loadErr)
	assert.Len(t, c.View("", produce.SortNone), 4, "stale set is kept")

	payload, loadErr = nil, nil
	require.Error(t, c.Load(ctx), "nil payload is a failure")
	assert.Len(t, c.View("", produce.SortNone), 4)

	payload = []produce.Listing{}
	require.NoError(t, c.Load(ctx))
	assert.NoError(t, c.Err())
	assert.Empty(t, c.View("", produce.SortNone))
}
