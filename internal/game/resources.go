package game

import (
	"errors"

	"github.com/farzamh/warlords/internal/model"
)

// ErrInsufficientFunds is returned when a delta would drive any resource
// field negative. The input is left untouched.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ApplyDelta applies a signed delta to each named resource field and
// returns the new balances. If any resulting field would go negative the
// whole delta is rejected and the original balances are returned
// unchanged. Every mutation of a country's resources goes through here:
// loan disbursement, purchases, loot transfer, and build costs.
func ApplyDelta(res model.Resources, delta map[string]int64) (model.Resources, error) {
	out := res.Clone()
	for field, d := range delta {
		next := out[field] + d
		if next < 0 {
			return res, ErrInsufficientFunds
		}
		out[field] = next
	}
	return out, nil
}

// CanAfford reports whether the balances cover the given cost.
func CanAfford(res model.Resources, cost model.Resources) bool {
	for field, c := range cost {
		if res[field] < c {
			return false
		}
	}
	return true
}

// CostDelta converts a cost table into a negative delta for ApplyDelta.
func CostDelta(cost model.Resources) map[string]int64 {
	delta := make(map[string]int64, len(cost))
	for field, c := range cost {
		delta[field] = -c
	}
	return delta
}
