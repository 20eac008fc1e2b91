package produce

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

type SortMode string

const (
	SortNone            SortMode = "none"
	SortPriceAscending  SortMode = "price-ascending"
	SortPriceDescending SortMode = "price-descending"
	SortAvailableOnly   SortMode = "available-only"
)

// ParseSortMode accepts both the canonical mode names and the dashboard aliases
// (all, low-to-high, high-to-low, available). Empty input means SortNone.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "all":
		return SortNone, nil
	case "price-ascending", "low-to-high", "asc":
		return SortPriceAscending, nil
	case "price-descending", "high-to-low", "desc":
		return SortPriceDescending, nil
	case "available-only", "available":
		return SortAvailableOnly, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Filter keeps listings whose name or description contains term, ignoring case.
// The term is matched as given, surrounding spaces included. An empty term keeps
// everything. The input slice is not modified.
func Filter(listings []Listing, term string) []Listing {
	term = strings.ToLower(term)
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if term == "" ||
			strings.Contains(strings.ToLower(l.Name), term) ||
			strings.Contains(strings.ToLower(l.Description), term) {
			out = append(out, l)
		}
	}
	return out
}

// Sort returns a sorted copy. Price modes are stable so equal prices keep catalog order.
func Sort(listings []Listing, mode SortMode) []Listing {
	out := slices.Clone(listings)
	switch mode {
	case SortPriceAscending:
		slices.SortStableFunc(out, func(a, b Listing) int { return a.Price.Cmp(b.Price) })
	case SortPriceDescending:
		slices.SortStableFunc(out, func(a, b Listing) int { return b.Price.Cmp(a.Price) })
	case SortAvailableOnly:
		out = slices.DeleteFunc(out, func(l Listing) bool { return l.Quantity <= 0 })
	}
	return out
}

// Query filters first, then sorts.
func Query(listings []Listing, term string, mode SortMode) []Listing {
	return Sort(Filter(listings, term), mode)
}

type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]Listing, error)
}

// Catalog is a client-side mirror of the available listings. A failed Load keeps
// the last good set and records the error so callers can surface it.
type Catalog struct {
	source CatalogSource

	mu       sync.RWMutex
	listings []Listing
	loadedAt time.Time
	err      error
}

func NewCatalog(source CatalogSource) *Catalog {
	return &Catalog{source: source}
}

func (c *Catalog) Load(ctx context.Context) error {
	listings, err := c.source.LoadCatalog(ctx)
	if err == nil && listings == nil {
		err = fmt.Errorf("catalog: empty payload")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = fmt.Errorf("catalog: failed to load listings: %w", err)
		return c.err
	}
	c.listings = listings
	c.loadedAt = time.Now()
	c.err = nil
	return nil
}

func (c *Catalog) View(term string, mode SortMode) []Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Query(c.listings, term, mode)
}

// Err reports the error of the most recent Load, nil after a successful one.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
