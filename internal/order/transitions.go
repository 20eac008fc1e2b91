package order

import (
	"github.com/Aditya2073/agrisample/internal/profile"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusAccepted:  true,
		StatusDeclined:  true,
		StatusCancelled: true,
	},
	StatusAccepted: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusDeclined:  {},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	return ok && next[to]
}

// NextStatuses lists the statuses reachable from s in a fixed order.
func NextStatuses(s Status) []Status {
	var out []Status
	for _, st := range []Status{StatusAccepted, StatusDeclined, StatusCompleted, StatusCancelled} {
		if CanTransition(s, st) {
			out = append(out, st)
		}
	}
	return out
}

// permitted applies the advisory actor rules: the seller drives the order, the
// buyer can only withdraw a pending one.
func permitted(actor *profile.Profile, o *Order, target Status) bool {
	if actor == nil {
		return false
	}
	switch actor.ID {
	case o.SellerID:
		// a pending order is declined by the seller, not cancelled
		return target != StatusCancelled || o.Status == StatusAccepted
	case o.BuyerID:
		return target == StatusCancelled && o.Status == StatusPending
	}
	return false
}
