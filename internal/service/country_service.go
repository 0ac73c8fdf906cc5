package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/farzamh/warlords/internal/game"
	"github.com/farzamh/warlords/internal/model"
	"github.com/farzamh/warlords/internal/repository"
)

// CountryService handles country lifecycle: first-contact registration,
// profile reads, resets, AI spawning, and shop purchases.
type CountryService struct {
	countries repository.CountryRepository
	worlds    repository.WorldRepository
	cache     repository.ProfileCache
	registry  *WorldRegistry
}

// NewCountryService creates a CountryService.
func NewCountryService(countries repository.CountryRepository, worlds repository.WorldRepository,
	cache repository.ProfileCache, registry *WorldRegistry) *CountryService {
	return &CountryService{countries: countries, worlds: worlds, cache: cache, registry: registry}
}

// Register creates a player country on first contact, assigning default
// resources and units. Registering an existing country returns it
// unchanged, so the gateway can call this on every /start.
func (s *CountryService) Register(ctx context.Context, worldID, countryID int64, name string) (*model.Country, error) {
	if err := s.requireActiveWorld(ctx, worldID); err != nil {
		return nil, err
	}

	unlock := s.registry.LockCountry(worldID, countryID)
	defer unlock()

	existing, err := s.countries.Find(ctx, worldID, countryID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	c := &model.Country{
		WorldID:    worldID,
		ID:         countryID,
		Name:       name,
		Controller: model.ControlledByPlayer,
		Resources:  game.DefaultPlayerResources(),
		Units:      game.DefaultUnits(),
		TechLevel:  1,
		Morale:     100,
	}
	if err := s.countries.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Int64("worldId", worldID).Int64("countryId", countryID).
		Str("name", name).Msg("Country registered")
	return c, nil
}

// SpawnAI creates an AI-controlled country with the given personality.
// The store assigns it the next free negative ID.
func (s *CountryService) SpawnAI(ctx context.Context, worldID int64, name, personality string) (*model.Country, error) {
	if err := s.requireActiveWorld(ctx, worldID); err != nil {
		return nil, err
	}

	id, err := s.countries.NextAIID(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if personality == "" {
		personality = model.PersonalityNeutral
	}

	c := &model.Country{
		WorldID:     worldID,
		ID:          id,
		Name:        name,
		Controller:  model.ControlledByAI,
		Resources:   game.DefaultAIResources(),
		Units:       game.DefaultUnits(),
		TechLevel:   1,
		Morale:      100,
		Personality: personality,
	}
	if err := s.countries.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Int64("worldId", worldID).Int64("countryId", id).
		Str("personality", personality).Msg("AI country spawned")
	return c, nil
}

// GetProfile returns a country snapshot, cache first.
func (s *CountryService) GetProfile(ctx context.Context, worldID, countryID int64) (*model.Country, error) {
	if cached, err := s.cache.GetProfile(ctx, worldID, countryID); err != nil {
		log.Debug().Err(err).Msg("Profile cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	c, err := s.countries.Find(ctx, worldID, countryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCountryNotFound
	}
	if err := s.cache.SetProfile(ctx, c); err != nil {
		log.Debug().Err(err).Msg("Profile cache write failed")
	}
	return c, nil
}

// Reset deletes a country and recreates it with default state, keeping
// its identity. This is the "new game" operation; battle and loan audit
// rows survive.
func (s *CountryService) Reset(ctx context.Context, worldID, countryID int64) (*model.Country, error) {
	unlock := s.registry.LockCountry(worldID, countryID)
	defer unlock()

	old, err := s.countries.Find(ctx, worldID, countryID)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, ErrCountryNotFound
	}
	if err := s.countries.Delete(ctx, worldID, countryID); err != nil {
		return nil, err
	}

	fresh := &model.Country{
		WorldID:     worldID,
		ID:          countryID,
		Name:        old.Name,
		Controller:  old.Controller,
		Resources:   game.DefaultPlayerResources(),
		Units:       game.DefaultUnits(),
		TechLevel:   1,
		Morale:      100,
		Personality: old.Personality,
	}
	if old.IsAI() {
		fresh.Resources = game.DefaultAIResources()
	}
	if err := s.countries.Create(ctx, fresh); err != nil {
		return nil, err
	}
	s.invalidate(ctx, worldID, countryID)
	log.Info().Int64("worldId", worldID).Int64("countryId", countryID).Msg("Country reset")
	return fresh, nil
}

// maxPurchaseCount bounds a single shop order. It also keeps the cost
// multiplication far below int64 overflow for any priced unit.
const maxPurchaseCount = 1_000_000

// PurchaseUnits buys count units of one type from the shop, debiting
// money through the ledger.
func (s *CountryService) PurchaseUnits(ctx context.Context, worldID, countryID int64, category, name string, count int64) (*model.Country, error) {
	if count <= 0 || count > maxPurchaseCount {
		return nil, game.ErrInvalidUnit
	}

	unlock := s.registry.LockCountry(worldID, countryID)
	defer unlock()

	c, err := s.countries.Find(ctx, worldID, countryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCountryNotFound
	}

	cost := game.UnitPrice(name) * count
	balances, err := game.ApplyDelta(c.Resources, map[string]int64{model.ResourceMoney: -cost})
	if err != nil {
		return nil, err
	}
	units := c.Units.Clone()
	if _, err := game.AdjustUnits(units, category, name, count); err != nil {
		return nil, err
	}

	c.Resources = balances
	c.Units = units
	if err := s.countries.Save(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, worldID, countryID)
	return c, nil
}

// ListCountries returns every country in a world.
func (s *CountryService) ListCountries(ctx context.Context, worldID int64) ([]model.Country, error) {
	return s.countries.ListByWorld(ctx, worldID)
}

func (s *CountryService) requireActiveWorld(ctx context.Context, worldID int64) error {
	w, err := s.worlds.FindByID(ctx, worldID)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrWorldNotFound
	}
	if w.Status != model.WorldActive {
		return ErrWorldDisabled
	}
	return nil
}

func (s *CountryService) invalidate(ctx context.Context, worldID, countryID int64) {
	if err := s.cache.InvalidateProfile(ctx, worldID, countryID); err != nil {
		log.Debug().Err(err).Msg("Profile cache invalidation failed")
	}
}
