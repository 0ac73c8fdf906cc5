// Package game implements the simulation core: the resource ledger,
// unit inventories, combat resolution, and AI action selection.
// Everything here is pure computation; persistence and locking live
// in the service layer.
package game

import (
	"time"

	"github.com/farzamh/warlords/internal/model"
)

// Loan constants.
const (
	DefaultLoanAmount = 5000
	LoanInterestRate  = 0.10
	LoanCooldown      = 24 * time.Hour
)

// DefaultPlayerResources returns the starting stock for a player country.
func DefaultPlayerResources() model.Resources {
	return model.Resources{
		model.ResourceMoney:       10000,
		model.ResourceOil:         500,
		model.ResourceElectricity: 1000,
		model.ResourcePopulation:  1000000,
	}
}

// DefaultAIResources returns the starting stock for an AI country.
// AI countries begin slightly richer so they stay viable without a
// player managing them.
func DefaultAIResources() model.Resources {
	return model.Resources{
		model.ResourceMoney:       15000,
		model.ResourceOil:         800,
		model.ResourceElectricity: 1200,
		model.ResourcePopulation:  1500000,
	}
}

// DefaultUnits returns the canonical starting inventory for a new country.
func DefaultUnits() model.UnitInventory {
	return model.UnitInventory{
		model.CategoryGround: {
			"recruit":           10,
			"rpg_trooper":       60,
			"sniper":            65,
			"veteran_soldier":   1185,
			"veteran_artillery": 53,
			"soldier":           100,
			"artillery":         2,
		},
		model.CategoryAir: {
			"short_range_missile":  10,
			"medium_range_missile": 5,
			"long_range_missile":   3,
			"ballistic_missile":    1,
			"nuclear_missile":      0,
			"light_fighter":        5,
			"heavy_fighter":        3,
			"bomber":               2,
			"attack_helicopter":    4,
			"gen4_jet":             2,
			"gen5_jet":             1,
			"stealth_jet":          0,
		},
		model.CategoryDefense: {
			"basic_sam":   5,
			"veteran_sam": 312,
			"heavy_sam":   100,
		},
		model.CategoryNavy: {
			"carrier":   20,
			"submarine": 31,
			"warship":   105,
			"gunboat":   10,
		},
		model.CategoryCyber: {
			"elite_hacker": 10,
			"hacker_cell":  2,
		},
		model.CategorySpecial: {
			"nuclear_bomb": 295,
			"small_bomb":   1340,
		},
		model.CategoryFactories: {
			"basic_factory":        3,
			"standard_factory":     15,
			"advanced_factory":     102,
			"pacifier_factory":     226,
			"veteran_factory":      110,
			"mine":                 3,
			"veteran_mine":         221,
			"advanced_mine":        10,
			"nuclear_power_plant":  3,
			"advanced_power_plant": 110,
			"veteran_power_plant":  10,
			"oil_tanker":           10,
			"veteran_oil_tanker":   330,
		},
	}
}

// UnitWeights is the combat weight table. Unit names absent from the
// table contribute weight 1. Tiered names carry explicit weights so
// combat strength never depends on display-name matching.
var UnitWeights = map[string]float64{
	"recruit":           0.5,
	"sniper":            1.3,
	"veteran_soldier":   1.5,
	"veteran_artillery": 1.8,
	"artillery":         1.2,
	"rpg_trooper":       1.1,

	"ballistic_missile": 3.0,
	"nuclear_missile":   10.0,
	"heavy_fighter":     1.5,
	"bomber":            2.0,
	"gen5_jet":          2.5,
	"stealth_jet":       3.5,

	"basic_sam":   0.8,
	"veteran_sam": 1.5,
	"heavy_sam":   2.2,

	"carrier":   2.5,
	"submarine": 1.8,

	"elite_hacker": 2.0,

	"nuclear_bomb": 5.0,
}

// Weight returns the combat weight for a unit name, defaulting to 1.
func Weight(name string) float64 {
	if w, ok := UnitWeights[name]; ok {
		return w
	}
	return 1
}

// Build choices available to the AI build action.
const (
	BuildMilitary = "military"
	BuildEconomy  = "economy"
	BuildDefense  = "defense"
	BuildTech     = "tech"
)

// BuildChoices lists the AI build options in selection order.
var BuildChoices = []string{BuildMilitary, BuildEconomy, BuildDefense, BuildTech}

// BuildCost is the fixed price of one build action.
type BuildCost struct {
	Cost model.Resources
	// On success, Category/Unit gains Count units; BuildTech instead
	// raises the tech level by one.
	Category string
	Unit     string
	Count    int64
}

// BuildCosts is the canonical build table. One entry per build choice.
var BuildCosts = map[string]BuildCost{
	BuildMilitary: {
		Cost:     model.Resources{model.ResourceMoney: 1000, model.ResourceOil: 50},
		Category: model.CategoryGround,
		Unit:     "soldier",
		Count:    10,
	},
	BuildEconomy: {
		Cost:     model.Resources{model.ResourceMoney: 2000},
		Category: model.CategoryFactories,
		Unit:     "basic_factory",
		Count:    1,
	},
	BuildDefense: {
		Cost:     model.Resources{model.ResourceMoney: 1500, model.ResourceElectricity: 100},
		Category: model.CategoryDefense,
		Unit:     "basic_sam",
		Count:    5,
	},
	BuildTech: {
		Cost: model.Resources{model.ResourceMoney: 3000, model.ResourceElectricity: 200},
	},
}

// UnitPrice returns the shop price of one unit, in money. Prices scale
// with the unit's combat weight off a common base.
func UnitPrice(name string) int64 {
	const base = 200
	return int64(Weight(name) * base)
}
