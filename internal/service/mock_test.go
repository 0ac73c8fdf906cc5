package service

import (
	"context"
	"sync"
	"time"

	"github.com/farzamh/warlords/internal/model"
)

type countryKey struct {
	worldID   int64
	countryID int64
}

// mockCountryRepo is an in-memory CountryRepository.
type mockCountryRepo struct {
	mu        sync.Mutex
	countries map[countryKey]*model.Country
	saveErr   error
	listErr   error
}

func newMockCountryRepo() *mockCountryRepo {
	return &mockCountryRepo{countries: make(map[countryKey]*model.Country)}
}

func (m *mockCountryRepo) clone(c *model.Country) *model.Country {
	cp := *c
	cp.Resources = c.Resources.Clone()
	cp.Units = c.Units.Clone()
	return &cp
}

func (m *mockCountryRepo) Find(_ context.Context, worldID, countryID int64) (*model.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.countries[countryKey{worldID, countryID}]
	if !ok {
		return nil, nil
	}
	return m.clone(c), nil
}

func (m *mockCountryRepo) Create(_ context.Context, c *model.Country) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.countries[countryKey{c.WorldID, c.ID}] = m.clone(c)
	return nil
}

func (m *mockCountryRepo) Save(_ context.Context, c *model.Country) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.countries[countryKey{c.WorldID, c.ID}] = m.clone(c)
	return nil
}

func (m *mockCountryRepo) Delete(_ context.Context, worldID, countryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.countries, countryKey{worldID, countryID})
	return nil
}

func (m *mockCountryRepo) ListByWorld(_ context.Context, worldID int64) ([]model.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Country
	for k, c := range m.countries {
		if k.worldID == worldID {
			out = append(out, *m.clone(c))
		}
	}
	return out, nil
}

func (m *mockCountryRepo) ListAIByWorld(_ context.Context, worldID int64) ([]model.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Country
	for k, c := range m.countries {
		if k.worldID == worldID && c.IsAI() {
			out = append(out, *m.clone(c))
		}
	}
	return out, nil
}

func (m *mockCountryRepo) NextAIID(_ context.Context, worldID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := int64(-1)
	for k := range m.countries {
		if k.worldID == worldID && k.countryID <= next {
			next = k.countryID - 1
		}
	}
	return next, nil
}

// mockBattleRepo is an in-memory BattleRepository backed by the same
// country map, so AppendResolved persists both sides like the SQL
// transaction does.
type mockBattleRepo struct {
	mu        sync.Mutex
	countries *mockCountryRepo
	records   []model.BattleRecord
	appendErr error
}

func newMockBattleRepo(countries *mockCountryRepo) *mockBattleRepo {
	return &mockBattleRepo{countries: countries}
}

func (m *mockBattleRepo) AppendResolved(ctx context.Context, rec *model.BattleRecord, attacker, defender *model.Country) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	if err := m.countries.Save(ctx, attacker); err != nil {
		return err
	}
	if err := m.countries.Save(ctx, defender); err != nil {
		return err
	}
	rec.ID = int64(len(m.records) + 1)
	rec.CreatedAt = time.Now()
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockBattleRepo) ListByWorld(_ context.Context, worldID int64, limit int) ([]model.BattleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BattleRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].WorldID == worldID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

// mockLoanRepo is an in-memory LoanRepository. Like the real store it
// commits the loan row and the borrower's state together, backed by
// the shared country repo.
type mockLoanRepo struct {
	mu        sync.Mutex
	loans     []*model.Loan
	countries *mockCountryRepo
	appendErr error
}

func newMockLoanRepo(countries *mockCountryRepo) *mockLoanRepo {
	return &mockLoanRepo{countries: countries}
}

func (m *mockLoanRepo) AppendIssued(ctx context.Context, loan *model.Loan, borrower *model.Country) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	if err := m.countries.Save(ctx, borrower); err != nil {
		return err
	}
	loan.ID = int64(len(m.loans) + 1)
	if loan.IssuedAt.IsZero() {
		loan.IssuedAt = time.Now()
	}
	cp := *loan
	m.loans = append(m.loans, &cp)
	return nil
}

func (m *mockLoanRepo) FindByID(_ context.Context, loanID int64) (*model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.loans {
		if l.ID == loanID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockLoanRepo) LatestByCountry(_ context.Context, worldID, countryID int64) (*model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Loan
	for _, l := range m.loans {
		if l.WorldID == worldID && l.CountryID == countryID {
			if latest == nil || l.IssuedAt.After(latest.IssuedAt) {
				latest = l
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *mockLoanRepo) UpdateRemaining(_ context.Context, loanID, remaining int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.loans {
		if l.ID == loanID {
			l.Remaining = remaining
			return nil
		}
	}
	return nil
}

func (m *mockLoanRepo) ListByCountry(_ context.Context, worldID, countryID int64) ([]model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Loan
	for _, l := range m.loans {
		if l.WorldID == worldID && l.CountryID == countryID {
			out = append(out, *l)
		}
	}
	return out, nil
}

// mockAllianceRepo is an in-memory AllianceRepository.
type mockAllianceRepo struct {
	mu        sync.Mutex
	alliances []*model.Alliance
	nextID    int64
}

func newMockAllianceRepo() *mockAllianceRepo {
	return &mockAllianceRepo{}
}

func (m *mockAllianceRepo) Create(_ context.Context, worldID int64, name string, founderID int64) (*model.Alliance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a := &model.Alliance{
		ID:        m.nextID,
		WorldID:   worldID,
		Name:      name,
		Members:   []int64{founderID},
		CreatedAt: time.Now(),
	}
	m.alliances = append(m.alliances, a)
	cp := *a
	return &cp, nil
}

func (m *mockAllianceRepo) ListByWorld(_ context.Context, worldID int64) ([]model.Alliance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Alliance
	for _, a := range m.alliances {
		if a.WorldID == worldID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAllianceRepo) AddMember(_ context.Context, allianceID, countryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alliances {
		if a.ID == allianceID {
			for _, id := range a.Members {
				if id == countryID {
					return nil
				}
			}
			a.Members = append(a.Members, countryID)
			return nil
		}
	}
	return nil
}

func (m *mockAllianceRepo) IsMember(_ context.Context, worldID, countryID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alliances {
		if a.WorldID != worldID {
			continue
		}
		for _, id := range a.Members {
			if id == countryID {
				return true, nil
			}
		}
	}
	return false, nil
}

// mockWorldRepo is an in-memory WorldRepository.
type mockWorldRepo struct {
	mu     sync.Mutex
	worlds map[int64]*model.World
	nextID int64
}

func newMockWorldRepo() *mockWorldRepo {
	return &mockWorldRepo{worlds: make(map[int64]*model.World)}
}

func (m *mockWorldRepo) addActive(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worlds[id] = &model.World{ID: id, Name: "test", Status: model.WorldActive, CreatedAt: time.Now()}
	if id >= m.nextID {
		m.nextID = id
	}
}

func (m *mockWorldRepo) Create(_ context.Context, name string, ownerID int64) (*model.World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	w := &model.World{ID: m.nextID, Name: name, OwnerID: ownerID, Status: model.WorldActive, CreatedAt: time.Now()}
	m.worlds[w.ID] = w
	cp := *w
	return &cp, nil
}

func (m *mockWorldRepo) FindByID(_ context.Context, worldID int64) (*model.World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.worlds[worldID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (m *mockWorldRepo) ListActive(_ context.Context) ([]model.World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.World
	for _, w := range m.worlds {
		if w.Status == model.WorldActive {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *mockWorldRepo) ListByOwner(_ context.Context, ownerID int64) ([]model.World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.World
	for _, w := range m.worlds {
		if w.OwnerID == ownerID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *mockWorldRepo) SetStatus(_ context.Context, worldID int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.worlds[worldID]; ok {
		w.Status = status
	}
	return nil
}

// mockProfileCache is an in-memory ProfileCache. Cooldown TTLs are
// checked against the injected clock so loan tests can move time.
type mockProfileCache struct {
	mu        sync.Mutex
	profiles  map[countryKey]*model.Country
	cooldowns map[countryKey]time.Time
	now       func() time.Time
}

func newMockProfileCache() *mockProfileCache {
	return &mockProfileCache{
		profiles:  make(map[countryKey]*model.Country),
		cooldowns: make(map[countryKey]time.Time),
		now:       time.Now,
	}
}

func (m *mockProfileCache) SetProfile(_ context.Context, c *model.Country) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.profiles[countryKey{c.WorldID, c.ID}] = &cp
	return nil
}

func (m *mockProfileCache) GetProfile(_ context.Context, worldID, countryID int64) (*model.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.profiles[countryKey{worldID, countryID}]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockProfileCache) InvalidateProfile(_ context.Context, worldID, countryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, countryKey{worldID, countryID})
	return nil
}

func (m *mockProfileCache) SetLoanCooldown(_ context.Context, worldID, countryID int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cooldowns[countryKey{worldID, countryID}] = m.now().Add(ttl)
	return nil
}

func (m *mockProfileCache) LoanCooldownActive(_ context.Context, worldID, countryID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.cooldowns[countryKey{worldID, countryID}]
	return ok && m.now().Before(expiry), nil
}

func (m *mockProfileCache) DeleteWorldData(_ context.Context, worldID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.profiles {
		if k.worldID == worldID {
			delete(m.profiles, k)
		}
	}
	for k := range m.cooldowns {
		if k.worldID == worldID {
			delete(m.cooldowns, k)
		}
	}
	return nil
}

// recordingBroadcaster captures broadcast events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

type broadcastEvent struct {
	worldID   int64
	eventType string
	data      any
}

func (b *recordingBroadcaster) BroadcastWorldEvent(worldID int64, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{worldID, eventType, data})
}

func (b *recordingBroadcaster) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}
