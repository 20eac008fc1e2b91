package produce

import "errors"

var (
	ErrNotFound       = errors.New("produce listing not found")
	ErrNotFarmer      = errors.New("only farmers can manage listings")
	ErrInvalidListing = errors.New("invalid listing")
)
