package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/farzamh/warlords/internal/model"
	"github.com/farzamh/warlords/internal/repository"
)

// WorldService manages world lifecycle: creation, listing, disabling.
type WorldService struct {
	worlds    repository.WorldRepository
	countries repository.CountryRepository
	cache     repository.ProfileCache
	registry  *WorldRegistry
	scheduler *Scheduler
}

func NewWorldService(worlds repository.WorldRepository, countries repository.CountryRepository, cache repository.ProfileCache, registry *WorldRegistry, scheduler *Scheduler) *WorldService {
	return &WorldService{
		worlds:    worlds,
		countries: countries,
		cache:     cache,
		registry:  registry,
		scheduler: scheduler,
	}
}

// Create opens a new world owned by ownerID and starts its tick loop.
func (s *WorldService) Create(ctx context.Context, name string, ownerID int64) (*model.World, error) {
	world, err := s.worlds.Create(ctx, name, ownerID)
	if err != nil {
		return nil, err
	}
	if s.scheduler != nil {
		s.scheduler.StartWorld(world.ID)
	}
	log.Info().Int64("worldId", world.ID).Str("name", name).Int64("ownerId", ownerID).Msg("World created")
	return world, nil
}

// Get returns one world.
func (s *WorldService) Get(ctx context.Context, worldID int64) (*model.World, error) {
	world, err := s.worlds.FindByID(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if world == nil {
		return nil, ErrWorldNotFound
	}
	return world, nil
}

// ListActive returns all worlds currently accepting play.
func (s *WorldService) ListActive(ctx context.Context) ([]model.World, error) {
	return s.worlds.ListActive(ctx)
}

// ListByOwner returns all worlds created by ownerID.
func (s *WorldService) ListByOwner(ctx context.Context, ownerID int64) ([]model.World, error) {
	return s.worlds.ListByOwner(ctx, ownerID)
}

// Disable stops a world: its tick loop halts, cached profiles are
// dropped, and further operations against it fail with
// ErrWorldDisabled. Country rows stay in the store.
func (s *WorldService) Disable(ctx context.Context, worldID int64) error {
	world, err := s.worlds.FindByID(ctx, worldID)
	if err != nil {
		return err
	}
	if world == nil {
		return ErrWorldNotFound
	}
	if err := s.worlds.SetStatus(ctx, worldID, model.WorldDisabled); err != nil {
		return err
	}
	if s.scheduler != nil {
		s.scheduler.StopWorld(worldID)
	}
	if s.registry != nil {
		s.registry.Forget(worldID)
	}
	if s.cache != nil {
		if err := s.cache.DeleteWorldData(ctx, worldID); err != nil {
			log.Debug().Err(err).Int64("worldId", worldID).Msg("Failed to drop world cache entries")
		}
	}
	log.Info().Int64("worldId", worldID).Msg("World disabled")
	return nil
}
