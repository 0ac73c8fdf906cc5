package service

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farzamh/warlords/internal/game"
	"github.com/farzamh/warlords/internal/model"
	"github.com/farzamh/warlords/internal/repository"
)

// EventBattleResolved is broadcast to world subscribers after every
// combat resolution.
const EventBattleResolved = "battle_resolved"

// BattleService resolves attacks between two countries in a world.
// Each resolution is atomic: either the full outcome (loot transfer and
// battle record) commits, or neither side's state changes.
type BattleService struct {
	countries   repository.CountryRepository
	battles     repository.BattleRepository
	cache       repository.ProfileCache
	registry    *WorldRegistry
	broadcaster Broadcaster

	// rand.Rand is not safe for concurrent use; attacks from multiple
	// worlds share this source under the mutex.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBattleService creates a BattleService.
func NewBattleService(countries repository.CountryRepository, battles repository.BattleRepository,
	cache repository.ProfileCache, registry *WorldRegistry, broadcaster Broadcaster) *BattleService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &BattleService{
		countries:   countries,
		battles:     battles,
		cache:       cache,
		registry:    registry,
		broadcaster: broadcaster,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedRand sets a deterministic random source for reproducible tests.
func (s *BattleService) SeedRand(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

// RequestAttack resolves one declared attack. Both countries are locked
// in ascending ID order for the duration. If either side cannot be
// loaded, no record is written and ErrCountryNotFound is returned for
// the caller to report.
func (s *BattleService) RequestAttack(ctx context.Context, worldID, attackerID, defenderID int64, committed game.Commitment) (*model.BattleRecord, error) {
	if attackerID == defenderID {
		return nil, ErrSelfAttack
	}

	unlock := s.registry.LockPair(worldID, attackerID, defenderID)
	defer unlock()

	attacker, err := s.countries.Find(ctx, worldID, attackerID)
	if err != nil {
		return nil, err
	}
	defender, err := s.countries.Find(ctx, worldID, defenderID)
	if err != nil {
		return nil, err
	}
	if attacker == nil || defender == nil {
		return nil, ErrCountryNotFound
	}
	if len(committed) == 0 {
		committed = game.DefaultCommitment(attacker.Units)
	}

	s.mu.Lock()
	outcome := game.Resolve(game.CombatInput{
		Committed:      committed,
		AttackerUnits:  attacker.Units,
		AttackerTech:   attacker.TechLevel,
		DefenderUnits:  defender.Units,
		DefenderTech:   defender.TechLevel,
		DefenderMorale: defender.Morale,
	}, s.rng)
	s.mu.Unlock()

	var loot int64
	if outcome.AttackerWins() {
		loot = int64(math.Floor(outcome.LootFraction * float64(defender.Resources[model.ResourceMoney])))
	}
	if loot > 0 {
		defender.Resources, err = game.ApplyDelta(defender.Resources,
			map[string]int64{model.ResourceMoney: -loot})
		if err != nil {
			return nil, err
		}
		attacker.Resources, err = game.ApplyDelta(attacker.Resources,
			map[string]int64{model.ResourceMoney: loot})
		if err != nil {
			return nil, err
		}
	}

	rec := &model.BattleRecord{
		WorldID:       worldID,
		AttackerID:    attackerID,
		AttackerType:  attacker.Controller,
		DefenderID:    defenderID,
		DefenderType:  defender.Controller,
		UnitsUsed:     committed,
		AttackerPower: outcome.AttackPower,
		DefenderPower: outcome.DefensePower,
		LuckFactor:    outcome.LuckFactor,
		Result:        outcome.Result,
		LootFraction:  outcome.LootFraction,
		LootMoney:     loot,
	}
	if err := s.battles.AppendResolved(ctx, rec, attacker, defender); err != nil {
		return nil, err
	}

	s.invalidate(ctx, worldID, attackerID)
	s.invalidate(ctx, worldID, defenderID)

	log.Info().Int64("worldId", worldID).
		Int64("attackerId", attackerID).Int64("defenderId", defenderID).
		Str("result", rec.Result).Int64("loot", loot).Msg("Battle resolved")
	s.broadcaster.BroadcastWorldEvent(worldID, EventBattleResolved, rec)
	return rec, nil
}

// History returns a world's recent battles, newest first.
func (s *BattleService) History(ctx context.Context, worldID int64, limit int) ([]model.BattleRecord, error) {
	return s.battles.ListByWorld(ctx, worldID, limit)
}

func (s *BattleService) invalidate(ctx context.Context, worldID, countryID int64) {
	if err := s.cache.InvalidateProfile(ctx, worldID, countryID); err != nil {
		log.Debug().Err(err).Msg("Profile cache invalidation failed")
	}
}
