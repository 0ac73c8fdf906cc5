package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farzamh/warlords/internal/repository"
)

// Default AI tick interval bounds.
const (
	DefaultMinTickInterval = 10 * time.Minute
	DefaultMaxTickInterval = 30 * time.Minute
)

// Scheduler drives the AI decision loop: one long-lived goroutine per
// world, each sleeping a uniformly random interval between ticks. There
// is no catch-up after a restart; the first sleep starts when the world
// starts. Shutdown is cooperative: loops stop taking new ticks and any
// in-flight tick finishes.
type Scheduler struct {
	worlds repository.WorldRepository
	ai     *AIService

	minInterval time.Duration
	maxInterval time.Duration

	// baseCtx outlives any single request. World loops derive from it,
	// never from a caller's context, so a finished HTTP request cannot
	// tear a loop down.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu    sync.Mutex
	rng   *rand.Rand
	loops map[int64]*worldLoop
	wg    sync.WaitGroup
}

type worldLoop struct {
	cancel context.CancelFunc
}

// NewScheduler creates a Scheduler. Zero interval bounds take the
// defaults; tests pass short ones.
func NewScheduler(worlds repository.WorldRepository, ai *AIService, minInterval, maxInterval time.Duration) *Scheduler {
	if minInterval <= 0 {
		minInterval = DefaultMinTickInterval
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &Scheduler{
		worlds:      worlds,
		ai:          ai,
		minInterval: minInterval,
		maxInterval: maxInterval,
		baseCtx:     baseCtx,
		baseCancel:  baseCancel,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		loops:       make(map[int64]*worldLoop),
	}
}

// Start launches a tick loop for every active world. Typically called
// once at process start; newly created worlds are added with StartWorld.
// ctx scopes only the world listing, not the loops themselves.
func (s *Scheduler) Start(ctx context.Context) error {
	worlds, err := s.worlds.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, w := range worlds {
		s.StartWorld(w.ID)
	}
	log.Info().Int("worlds", len(worlds)).Msg("Scheduler started")
	return nil
}

// StartWorld begins the tick loop for one world. The loop runs until
// StopWorld or Stop; starting an already running world is a no-op.
func (s *Scheduler) StartWorld(worldID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.loops[worldID]; running {
		return
	}
	loopCtx, cancel := context.WithCancel(s.baseCtx)
	lp := &worldLoop{cancel: cancel}
	s.loops[worldID] = lp
	s.wg.Add(1)
	go s.run(loopCtx, worldID, lp)
}

// StopWorld stops one world's loop.
func (s *Scheduler) StopWorld(worldID int64) {
	s.mu.Lock()
	lp, ok := s.loops[worldID]
	delete(s.loops, worldID)
	s.mu.Unlock()
	if ok {
		lp.cancel()
	}
}

// Stop cancels every loop and waits for in-flight ticks to finish.
func (s *Scheduler) Stop() {
	s.baseCancel()
	s.wg.Wait()
	log.Info().Msg("Scheduler stopped")
}

// Running reports whether a world's loop is active.
func (s *Scheduler) Running(worldID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[worldID]
	return ok
}

func (s *Scheduler) run(ctx context.Context, worldID int64, lp *worldLoop) {
	// The loop owns its registry entry; StopWorld may already have
	// removed it, or replaced it if the world was restarted.
	defer func() {
		s.mu.Lock()
		if s.loops[worldID] == lp {
			delete(s.loops, worldID)
		}
		s.mu.Unlock()
		s.wg.Done()
	}()
	log.Info().Int64("worldId", worldID).Msg("World tick loop started")
	for {
		timer := time.NewTimer(s.nextInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Int64("worldId", worldID).Msg("World tick loop stopped")
			return
		case <-timer.C:
			if err := s.ai.TickWorld(ctx, worldID); err != nil {
				// Listing failures are transient (store hiccups);
				// the loop keeps going and retries next interval.
				log.Error().Err(err).Int64("worldId", worldID).Msg("World tick failed")
			}
		}
	}
}

func (s *Scheduler) nextInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	spread := s.maxInterval - s.minInterval
	if spread <= 0 {
		return s.minInterval
	}
	return s.minInterval + time.Duration(s.rng.Int63n(int64(spread)))
}
