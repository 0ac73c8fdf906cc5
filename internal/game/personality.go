package game

import (
	"math/rand"

	"github.com/farzamh/warlords/internal/model"
)

// Action is one AI decision per tick.
type Action string

const (
	ActionAttack   Action = "attack"
	ActionBuild    Action = "build"
	ActionAlly     Action = "ally"
	ActionResearch Action = "research"
	ActionIdle     Action = "idle"
)

// ActionWeights is a discrete distribution over the five actions.
// Weights need not sum to 1; Pick normalizes.
type ActionWeights struct {
	Attack   float64
	Build    float64
	Ally     float64
	Research float64
	Idle     float64
}

// personalityWeights is configuration, not behavior: tuning a
// personality means editing this table only.
var personalityWeights = map[string]ActionWeights{
	model.PersonalityAggressive: {
		Attack: 0.50, Build: 0.20, Ally: 0.05, Research: 0.10, Idle: 0.15,
	},
	model.PersonalityDefensive: {
		Attack: 0.05, Build: 0.45, Ally: 0.25, Research: 0.15, Idle: 0.10,
	},
	model.PersonalityUnpredictable: {
		Attack: 0.20, Build: 0.20, Ally: 0.20, Research: 0.20, Idle: 0.20,
	},
	model.PersonalityNeutral: {
		Attack: 0.15, Build: 0.30, Ally: 0.15, Research: 0.15, Idle: 0.25,
	},
	model.PersonalityStrategic: {
		Attack: 0.25, Build: 0.30, Ally: 0.15, Research: 0.20, Idle: 0.10,
	},
}

// WeightsFor returns the action weights for a personality tag.
// Unrecognized tags get the neutral profile; this never fails.
func WeightsFor(personality string) ActionWeights {
	if w, ok := personalityWeights[personality]; ok {
		return w
	}
	return personalityWeights[model.PersonalityNeutral]
}

// Pick samples one action from the distribution.
func (w ActionWeights) Pick(rng *rand.Rand) Action {
	total := w.Attack + w.Build + w.Ally + w.Research + w.Idle
	if total <= 0 {
		return ActionIdle
	}
	r := rng.Float64() * total
	for _, entry := range []struct {
		weight float64
		action Action
	}{
		{w.Attack, ActionAttack},
		{w.Build, ActionBuild},
		{w.Ally, ActionAlly},
		{w.Research, ActionResearch},
	} {
		if r < entry.weight {
			return entry.action
		}
		r -= entry.weight
	}
	return ActionIdle
}
