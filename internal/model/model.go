package model

import (
	"encoding/json"
	"time"
)

// Resource field names. These are the persisted keys in the resources
// JSON column and the contract the store honors.
const (
	ResourceMoney       = "money"
	ResourceOil         = "oil"
	ResourceElectricity = "electricity"
	ResourcePopulation  = "population"
)

// Resources maps a resource name to a non-negative stock quantity.
type Resources map[string]int64

// Clone returns a deep copy.
func (r Resources) Clone() Resources {
	out := make(Resources, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Unit categories. Every unit in an inventory lives under exactly one of these.
const (
	CategoryGround    = "ground"
	CategoryAir       = "air"
	CategoryDefense   = "defense"
	CategoryNavy      = "navy"
	CategoryCyber     = "cyber"
	CategorySpecial   = "special"
	CategoryFactories = "factories"
)

// UnitCategories lists all valid categories in display order.
var UnitCategories = []string{
	CategoryGround, CategoryAir, CategoryDefense, CategoryNavy,
	CategoryCyber, CategorySpecial, CategoryFactories,
}

// UnitInventory maps category -> unit name -> non-negative count.
type UnitInventory map[string]map[string]int64

// Clone returns a deep copy.
func (u UnitInventory) Clone() UnitInventory {
	out := make(UnitInventory, len(u))
	for cat, units := range u {
		m := make(map[string]int64, len(units))
		for name, n := range units {
			m[name] = n
		}
		out[cat] = m
	}
	return out
}

// Count returns the total count of a unit name across all categories.
func (u UnitInventory) Count(name string) int64 {
	var total int64
	for _, units := range u {
		total += units[name]
	}
	return total
}

// ControllerType distinguishes player-run countries from AI-run ones.
type ControllerType string

const (
	ControlledByPlayer ControllerType = "player"
	ControlledByAI     ControllerType = "ai"
)

// AI personality tags. Unknown tags fall back to neutral behavior.
const (
	PersonalityAggressive    = "aggressive"
	PersonalityDefensive     = "defensive"
	PersonalityUnpredictable = "unpredictable"
	PersonalityNeutral       = "neutral"
	PersonalityStrategic     = "strategic"
)

// Country is a faction in one world, controlled by a player or by the AI.
// Player country IDs are the external user IDs of the gateway; AI countries
// are assigned negative IDs by the store so the two ranges never collide.
type Country struct {
	WorldID    int64          `json:"world_id"`
	ID         int64          `json:"country_id"`
	Name       string         `json:"name"`
	Controller ControllerType `json:"controller"`
	Resources  Resources      `json:"resources"`
	Units      UnitInventory  `json:"units"`
	TechLevel  int            `json:"tech_level"`
	Morale     int            `json:"morale"`

	// AI-only fields. StrategyState is stored and returned verbatim;
	// the engine never interprets it.
	Personality   string          `json:"personality,omitempty"`
	StrategyState json.RawMessage `json:"strategy_state,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsAI reports whether the country is AI-controlled.
func (c *Country) IsAI() bool { return c.Controller == ControlledByAI }

// Battle results.
const (
	ResultAttackerWins = "attacker_wins"
	ResultDefenderWins = "defender_wins"
)

// BattleRecord is the immutable outcome of one combat resolution.
// Records are append-only audit entries and are never mutated or deleted.
type BattleRecord struct {
	ID            int64            `json:"battle_id"`
	WorldID       int64            `json:"world_id"`
	AttackerID    int64            `json:"attacker_id"`
	AttackerType  ControllerType   `json:"attacker_type"`
	DefenderID    int64            `json:"defender_id"`
	DefenderType  ControllerType   `json:"defender_type"`
	UnitsUsed     map[string]int64 `json:"units_used"`
	AttackerPower float64          `json:"attacker_power"`
	DefenderPower float64          `json:"defender_power"`
	LuckFactor    float64          `json:"luck_factor"`
	Result        string           `json:"result"`
	LootFraction  float64          `json:"loot_fraction"`
	LootMoney     int64            `json:"loot_money"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Loan is one issued loan. The record is permanent; only Remaining changes
// as repayments are applied.
type Loan struct {
	ID           int64     `json:"loan_id"`
	WorldID      int64     `json:"world_id"`
	CountryID    int64     `json:"country_id"`
	Principal    int64     `json:"principal"`
	Remaining    int64     `json:"remaining"`
	InterestRate float64   `json:"interest_rate"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Alliance groups countries within one world. Membership is append-only.
type Alliance struct {
	ID        int64     `json:"alliance_id"`
	WorldID   int64     `json:"world_id"`
	Name      string    `json:"name"`
	Members   []int64   `json:"members,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// World statuses.
const (
	WorldActive   = "active"
	WorldDisabled = "disabled"
)

// World is one isolated game instance with its own countries, battles,
// loans, and alliances.
type World struct {
	ID        int64     `json:"world_id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
