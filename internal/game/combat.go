package game

import (
	"math/rand"
	"sort"

	"github.com/farzamh/warlords/internal/model"
)

// Commitment is the set of units an attacker declares for one strike,
// unit name -> count.
type Commitment map[string]int64

// CombatInput carries everything Resolve needs. Both inventories are
// read-only; Resolve never mutates them.
type CombatInput struct {
	Committed      Commitment
	AttackerUnits  model.UnitInventory
	AttackerTech   int
	DefenderUnits  model.UnitInventory
	DefenderTech   int
	DefenderMorale int
	// Weights is the combat weight table; nil means UnitWeights.
	Weights map[string]float64
}

// CombatOutcome is the computed result of one resolution.
type CombatOutcome struct {
	AttackPower  float64
	DefensePower float64
	LuckFactor   float64
	Result       string
	LootFraction float64
}

// AttackerWins reports whether the attacker took the battle.
func (o CombatOutcome) AttackerWins() bool { return o.Result == model.ResultAttackerWins }

// Resolve runs one stochastic combat resolution. Given the same input and
// the same RNG stream the outcome is fully deterministic: unit lines are
// processed in sorted name order and each line draws exactly one
// multiplier.
//
// Committed units the attacker does not actually hold are ignored; a
// commitment that matches nothing is legal and simply produces zero
// attack power.
func Resolve(in CombatInput, rng *rand.Rand) CombatOutcome {
	weights := in.Weights
	if weights == nil {
		weights = UnitWeights
	}

	// Attack power: one uniform(0.8, 1.2) draw per committed unit line.
	var attack float64
	for _, name := range sortedKeys(in.Committed) {
		count := in.Committed[name]
		if count <= 0 || in.AttackerUnits.Count(name) <= 0 {
			continue
		}
		attack += float64(count) * weight(weights, name) * uniform(rng, 0.8, 1.2)
	}

	// Defense power: the defender's defense category, uniform(0.7, 1.1).
	var defense float64
	defUnits := in.DefenderUnits[model.CategoryDefense]
	for _, name := range sortedUnitNames(defUnits) {
		count := defUnits[name]
		if count <= 0 {
			continue
		}
		defense += float64(count) * weight(weights, name) * uniform(rng, 0.7, 1.1)
	}

	techMult := 1 + 0.1*float64(in.AttackerTech-in.DefenderTech)
	moraleMult := 1 + 0.01*float64(in.DefenderMorale-50)
	luck := uniform(rng, 0.8, 1.2)

	finalAttack := attack * techMult * luck
	if finalAttack < 0 {
		finalAttack = 0
	}
	finalDefense := defense * moraleMult

	out := CombatOutcome{
		AttackPower:  finalAttack,
		DefensePower: finalDefense,
		LuckFactor:   luck,
		Result:       model.ResultDefenderWins,
	}
	// Strict inequality: a tie goes to the defender.
	if finalAttack > finalDefense {
		out.Result = model.ResultAttackerWins
		out.LootFraction = (finalAttack - finalDefense) / finalAttack * 0.5
		if out.LootFraction > 0.3 {
			out.LootFraction = 0.3
		}
	}
	return out
}

// commitFloor is the minimum count of each unit line a country keeps
// home when the AI commits its forces.
const commitFloor = 10

// DefaultCommitment builds the standard AI strike force: every ground
// and defense unit above the per-line floor.
func DefaultCommitment(units model.UnitInventory) Commitment {
	committed := make(Commitment)
	for _, cat := range []string{model.CategoryGround, model.CategoryDefense} {
		for name, count := range units[cat] {
			if count > commitFloor {
				committed[name] += count - commitFloor
			}
		}
	}
	return committed
}

func weight(weights map[string]float64, name string) float64 {
	if w, ok := weights[name]; ok {
		return w
	}
	return 1
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func sortedKeys(c Commitment) []string {
	keys := make([]string, 0, len(c))
	for name := range c {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

func sortedUnitNames(units map[string]int64) []string {
	keys := make([]string, 0, len(units))
	for name := range units {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}
