package service

import (
	"context"
	"testing"
	"time"

	"github.com/farzamh/warlords/internal/model"
)

func newTestScheduler(minInterval, maxInterval time.Duration) (*Scheduler, *mockWorldRepo, *recordingBroadcaster, *mockCountryRepo) {
	countries := newMockCountryRepo()
	worlds := newMockWorldRepo()
	cache := newMockProfileCache()
	registry := NewWorldRegistry()
	bcast := &recordingBroadcaster{}
	battles := NewBattleService(countries, newMockBattleRepo(countries), cache, registry, nil)
	ai := NewAIService(countries, newMockAllianceRepo(), battles, cache, registry, bcast)
	ai.SeedRand(1)
	return NewScheduler(worlds, ai, minInterval, maxInterval), worlds, bcast, countries
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSchedulerTicksActiveWorlds(t *testing.T) {
	sched, worlds, bcast, countries := newTestScheduler(time.Millisecond, 2*time.Millisecond)
	worlds.addActive(1)
	seedAI(t, countries, 1, -1, model.PersonalityNeutral)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sched.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return bcast.count(EventAIAction) >= 3
	})
}

func TestSchedulerStartWorldIdempotent(t *testing.T) {
	sched, worlds, _, _ := newTestScheduler(time.Hour, time.Hour)
	worlds.addActive(1)

	sched.StartWorld(1)
	sched.StartWorld(1)
	if !sched.Running(1) {
		t.Fatal("world not running after StartWorld")
	}
	sched.Stop()
	if sched.Running(1) {
		t.Fatal("world still running after Stop")
	}
}

// A loop's lifetime belongs to the scheduler. Cancelling the context
// that listed the worlds at startup must not stop the loops.
func TestSchedulerLoopsOutliveStartContext(t *testing.T) {
	sched, worlds, bcast, countries := newTestScheduler(time.Millisecond, 2*time.Millisecond)
	worlds.addActive(1)
	seedAI(t, countries, 1, -1, model.PersonalityNeutral)

	ctx, cancel := context.WithCancel(context.Background())
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sched.Stop()
	cancel()

	before := bcast.count(EventAIAction)
	waitFor(t, 2*time.Second, func() bool {
		return bcast.count(EventAIAction) >= before+3
	})
	if !sched.Running(1) {
		t.Fatal("world not running after start context cancelled")
	}
}

func TestSchedulerStopWorld(t *testing.T) {
	sched, worlds, bcast, countries := newTestScheduler(time.Millisecond, 2*time.Millisecond)
	worlds.addActive(1)
	seedAI(t, countries, 1, -1, model.PersonalityNeutral)

	sched.StartWorld(1)
	waitFor(t, 2*time.Second, func() bool {
		return bcast.count(EventAIAction) >= 1
	})

	sched.StopWorld(1)
	if sched.Running(1) {
		t.Fatal("world still running after StopWorld")
	}

	// After the loop drains, tick counts stay put.
	time.Sleep(20 * time.Millisecond)
	before := bcast.count(EventAIAction)
	time.Sleep(50 * time.Millisecond)
	if after := bcast.count(EventAIAction); after != before {
		t.Errorf("ticks continued after StopWorld: %d -> %d", before, after)
	}
}

func TestSchedulerIntervalBounds(t *testing.T) {
	sched, _, _, _ := newTestScheduler(10*time.Millisecond, 30*time.Millisecond)
	for i := 0; i < 1000; i++ {
		d := sched.nextInterval()
		if d < 10*time.Millisecond || d >= 30*time.Millisecond {
			t.Fatalf("interval %v outside [10ms, 30ms)", d)
		}
	}
}
