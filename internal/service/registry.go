package service

import "sync"

// WorldRegistry owns the lock state for every world this process runs.
// All mutating operations on a country's record serialize through its
// mutex; operations touching two countries (combat) take both locks in
// ascending country-ID order so concurrent attacks can never deadlock.
//
// The registry is injected wherever locking is needed rather than kept
// as package-global state, so tests can run isolated instances.
type WorldRegistry struct {
	mu     sync.Mutex
	worlds map[int64]*worldLocks
}

type worldLocks struct {
	mu        sync.Mutex
	countries map[int64]*sync.Mutex
}

// NewWorldRegistry creates an empty registry.
func NewWorldRegistry() *WorldRegistry {
	return &WorldRegistry{worlds: make(map[int64]*worldLocks)}
}

func (r *WorldRegistry) world(worldID int64) *worldLocks {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.worlds[worldID]
	if !ok {
		w = &worldLocks{countries: make(map[int64]*sync.Mutex)}
		r.worlds[worldID] = w
	}
	return w
}

func (w *worldLocks) country(countryID int64) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.countries[countryID]
	if !ok {
		m = &sync.Mutex{}
		w.countries[countryID] = m
	}
	return m
}

// LockCountry serializes access to one country. The returned function
// releases the lock.
func (r *WorldRegistry) LockCountry(worldID, countryID int64) (unlock func()) {
	m := r.world(worldID).country(countryID)
	m.Lock()
	return m.Unlock
}

// LockPair locks two countries in ascending ID order and returns a
// function releasing both. Locking a country against itself takes the
// lock once.
func (r *WorldRegistry) LockPair(worldID, a, b int64) (unlock func()) {
	if a == b {
		return r.LockCountry(worldID, a)
	}
	if a > b {
		a, b = b, a
	}
	w := r.world(worldID)
	first, second := w.country(a), w.country(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

// Forget drops all lock state for a world. Call only after the world's
// scheduler loop has stopped and no requests for it remain in flight.
func (r *WorldRegistry) Forget(worldID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.worlds, worldID)
}
