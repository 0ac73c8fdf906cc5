package game

import (
	"errors"

	"github.com/farzamh/warlords/internal/model"
)

var (
	// ErrInvalidUnit is returned for an unknown category or unit name.
	// This indicates a config or programming error, not player input.
	ErrInvalidUnit = errors.New("invalid unit")
	// ErrInsufficientUnits is returned when a negative adjustment would
	// take a count below zero.
	ErrInsufficientUnits = errors.New("insufficient units")
)

// unitCatalog maps every known unit name to its canonical category.
var unitCatalog = buildCatalog()

func buildCatalog() map[string]string {
	catalog := make(map[string]string)
	for cat, units := range DefaultUnits() {
		for name := range units {
			catalog[name] = cat
		}
	}
	return catalog
}

// KnownUnit reports whether the name belongs to the canonical catalog
// under the given category.
func KnownUnit(category, name string) bool {
	return unitCatalog[name] == category
}

// AdjustUnits applies a signed delta to a unit count and returns the new
// count. The category/name pair must exist in the canonical catalog, and
// a negative delta may not take the count below zero. On failure the
// inventory is unchanged.
func AdjustUnits(inv model.UnitInventory, category, name string, delta int64) (int64, error) {
	if !KnownUnit(category, name) {
		return 0, ErrInvalidUnit
	}
	units := inv[category]
	if units == nil {
		units = make(map[string]int64)
		inv[category] = units
	}
	next := units[name] + delta
	if next < 0 {
		return units[name], ErrInsufficientUnits
	}
	units[name] = next
	return next, nil
}

// TotalPower sums count x weight over one category of an inventory.
// Unit names missing from the weight table contribute their raw count.
func TotalPower(inv model.UnitInventory, category string, weights map[string]float64) float64 {
	var power float64
	for name, count := range inv[category] {
		w, ok := weights[name]
		if !ok {
			w = 1
		}
		power += float64(count) * w
	}
	return power
}
