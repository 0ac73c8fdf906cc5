package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farzamh/warlords/internal/game"
	"github.com/farzamh/warlords/internal/model"
	"github.com/farzamh/warlords/internal/repository"
)

// EventAIAction is broadcast after each AI country completes its tick.
const EventAIAction = "ai_action"

// AIService runs the per-tick decision policy for AI countries. Every
// action is best-effort: a tick that cannot complete its chosen action
// degrades to idle, and no failure in one country's processing ever
// reaches the countries after it.
type AIService struct {
	countries   repository.CountryRepository
	alliances   repository.AllianceRepository
	battles     *BattleService
	cache       repository.ProfileCache
	registry    *WorldRegistry
	broadcaster Broadcaster

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAIService creates an AIService.
func NewAIService(countries repository.CountryRepository, alliances repository.AllianceRepository,
	battles *BattleService, cache repository.ProfileCache, registry *WorldRegistry,
	broadcaster Broadcaster) *AIService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &AIService{
		countries:   countries,
		alliances:   alliances,
		battles:     battles,
		cache:       cache,
		registry:    registry,
		broadcaster: broadcaster,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedRand sets a deterministic random source for reproducible tests.
func (s *AIService) SeedRand(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

// TickWorld runs one decision for every AI country in the world. It
// returns an error only when the AI roster itself cannot be listed;
// individual countries' failures are logged and swallowed.
func (s *AIService) TickWorld(ctx context.Context, worldID int64) error {
	ais, err := s.countries.ListAIByWorld(ctx, worldID)
	if err != nil {
		return err
	}
	for i := range ais {
		c := ais[i]
		action := s.tickCountry(ctx, &c)
		s.broadcaster.BroadcastWorldEvent(worldID, EventAIAction, map[string]any{
			"country_id": c.ID,
			"name":       c.Name,
			"action":     action,
		})
	}
	return nil
}

// tickCountry picks and executes exactly one action. Panics and errors
// are contained here so one bad country never halts the world loop.
func (s *AIService) tickCountry(ctx context.Context, c *model.Country) (performed game.Action) {
	performed = game.ActionIdle
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).
				Int64("worldId", c.WorldID).Int64("countryId", c.ID).
				Msg("AI tick panicked, treating as idle")
			performed = game.ActionIdle
		}
	}()

	s.mu.Lock()
	chosen := game.WeightsFor(c.Personality).Pick(s.rng)
	s.mu.Unlock()

	var err error
	switch chosen {
	case game.ActionAttack:
		err = s.attack(ctx, c)
	case game.ActionBuild:
		err = s.build(ctx, c)
	case game.ActionAlly:
		err = s.ally(ctx, c)
	case game.ActionResearch:
		err = s.research(ctx, c)
	case game.ActionIdle:
		// Nothing to do.
	}
	if err != nil {
		log.Debug().Err(err).Int64("worldId", c.WorldID).Int64("countryId", c.ID).
			Str("action", string(chosen)).Msg("AI action degraded to idle")
		return game.ActionIdle
	}
	return chosen
}

var errNoTarget = errors.New("no valid attack target")

// attack picks a target uniformly among the other countries in the
// world and launches the default strike force at it.
func (s *AIService) attack(ctx context.Context, c *model.Country) error {
	all, err := s.countries.ListByWorld(ctx, c.WorldID)
	if err != nil {
		return err
	}
	targets := make([]model.Country, 0, len(all))
	for _, t := range all {
		if t.ID != c.ID {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return errNoTarget
	}

	s.mu.Lock()
	target := targets[s.rng.Intn(len(targets))]
	s.mu.Unlock()

	_, err = s.battles.RequestAttack(ctx, c.WorldID, c.ID, target.ID, game.DefaultCommitment(c.Units))
	return err
}

// build picks one build choice at random and applies it if affordable.
// An unaffordable build is a quiet no-op, never a failure.
func (s *AIService) build(ctx context.Context, c *model.Country) error {
	s.mu.Lock()
	choice := game.BuildChoices[s.rng.Intn(len(game.BuildChoices))]
	s.mu.Unlock()
	plan := game.BuildCosts[choice]

	unlock := s.registry.LockCountry(c.WorldID, c.ID)
	defer unlock()

	fresh, err := s.countries.Find(ctx, c.WorldID, c.ID)
	if err != nil {
		return err
	}
	if fresh == nil {
		return ErrCountryNotFound
	}
	if !game.CanAfford(fresh.Resources, plan.Cost) {
		log.Debug().Int64("countryId", c.ID).Str("choice", choice).Msg("AI build unaffordable, skipping")
		return nil
	}

	fresh.Resources, err = game.ApplyDelta(fresh.Resources, game.CostDelta(plan.Cost))
	if err != nil {
		return err
	}
	if choice == game.BuildTech {
		fresh.TechLevel++
	} else {
		if _, err := game.AdjustUnits(fresh.Units, plan.Category, plan.Unit, plan.Count); err != nil {
			return err
		}
	}
	if err := s.countries.Save(ctx, fresh); err != nil {
		return err
	}
	s.invalidate(ctx, c.WorldID, c.ID)
	return nil
}

// ally joins the first alliance in the world the country is not yet
// part of, or founds a new one containing only itself.
func (s *AIService) ally(ctx context.Context, c *model.Country) error {
	member, err := s.alliances.IsMember(ctx, c.WorldID, c.ID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}

	existing, err := s.alliances.ListByWorld(ctx, c.WorldID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return s.alliances.AddMember(ctx, existing[0].ID, c.ID)
	}
	_, err = s.alliances.Create(ctx, c.WorldID, c.Name+" Pact", c.ID)
	return err
}

// research raises the tech level by one. Research costs nothing;
// tech advantage is balanced by the slow tick cadence instead.
func (s *AIService) research(ctx context.Context, c *model.Country) error {
	unlock := s.registry.LockCountry(c.WorldID, c.ID)
	defer unlock()

	fresh, err := s.countries.Find(ctx, c.WorldID, c.ID)
	if err != nil {
		return err
	}
	if fresh == nil {
		return ErrCountryNotFound
	}
	fresh.TechLevel++
	if err := s.countries.Save(ctx, fresh); err != nil {
		return err
	}
	s.invalidate(ctx, c.WorldID, c.ID)
	return nil
}

func (s *AIService) invalidate(ctx context.Context, worldID, countryID int64) {
	if err := s.cache.InvalidateProfile(ctx, worldID, countryID); err != nil {
		log.Debug().Err(err).Msg("Profile cache invalidation failed")
	}
}
