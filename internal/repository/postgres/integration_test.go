//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/farzamh/warlords/internal/model"
	"github.com/farzamh/warlords/internal/testutil"
)

var testDB *sql.DB

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

func createTestWorld(t *testing.T) *model.World {
	t.Helper()
	w, err := NewWorldRepo(testDB).Create(context.Background(), "Test World", 100)
	if err != nil {
		t.Fatalf("create test world: %v", err)
	}
	return w
}

func createTestCountry(t *testing.T, worldID, countryID int64) *model.Country {
	t.Helper()
	c := &model.Country{
		WorldID:    worldID,
		ID:         countryID,
		Name:       "Testland",
		Controller: model.ControlledByPlayer,
		Resources:  model.Resources{model.ResourceMoney: 10000, model.ResourceOil: 500},
		Units:      model.UnitInventory{model.CategoryGround: {"soldier": 100}},
		TechLevel:  1,
		Morale:     100,
	}
	if countryID < 0 {
		c.Controller = model.ControlledByAI
		c.Personality = model.PersonalityNeutral
	}
	if err := NewCountryRepo(testDB).Create(context.Background(), c); err != nil {
		t.Fatalf("create test country: %v", err)
	}
	return c
}

// --- WorldRepo ---

func TestWorldCreateAndFind(t *testing.T) {
	setup(t)
	w := createTestWorld(t)

	if w.ID == 0 {
		t.Fatal("expected assigned world ID")
	}
	if w.Status != model.WorldActive {
		t.Fatalf("expected active status, got %s", w.Status)
	}

	found, err := NewWorldRepo(testDB).FindByID(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("find world: %v", err)
	}
	if found == nil || found.Name != "Test World" {
		t.Fatalf("world round-trip failed: %+v", found)
	}
}

func TestWorldFindMissing(t *testing.T) {
	setup(t)
	found, err := NewWorldRepo(testDB).FindByID(context.Background(), 99999)
	if err != nil {
		t.Fatalf("find missing world: %v", err)
	}
	if found != nil {
		t.Fatal("expected nil for missing world")
	}
}

func TestWorldSetStatus(t *testing.T) {
	setup(t)
	repo := NewWorldRepo(testDB)
	w := createTestWorld(t)

	if err := repo.SetStatus(context.Background(), w.ID, model.WorldDisabled); err != nil {
		t.Fatalf("set status: %v", err)
	}
	active, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	for _, found := range active {
		if found.ID == w.ID {
			t.Fatal("disabled world still listed as active")
		}
	}
}

// --- CountryRepo ---

func TestCountryRoundTrip(t *testing.T) {
	setup(t)
	w := createTestWorld(t)
	createTestCountry(t, w.ID, 100)

	found, err := NewCountryRepo(testDB).Find(context.Background(), w.ID, 100)
	if err != nil {
		t.Fatalf("find country: %v", err)
	}
	if found == nil {
		t.Fatal("expected country")
	}
	if found.Resources[model.ResourceMoney] != 10000 {
		t.Fatalf("resources lost in round trip: %+v", found.Resources)
	}
	if found.Units.Count("soldier") != 100 {
		t.Fatalf("units lost in round trip: %+v", found.Units)
	}
}

func TestCountryFindMissing(t *testing.T) {
	setup(t)
	w := createTestWorld(t)
	found, err := NewCountryRepo(testDB).Find(context.Background(), w.ID, 999)
	if err != nil {
		t.Fatalf("find missing country: %v", err)
	}
	if found != nil {
		t.Fatal("expected nil for missing country")
	}
}

func TestCountrySave(t *testing.T) {
	setup(t)
	repo := NewCountryRepo(testDB)
	w := createTestWorld(t)
	c := createTestCountry(t, w.ID, 100)

	c.Resources[model.ResourceMoney] = 4242
	c.TechLevel = 3
	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("save country: %v", err)
	}

	found, _ := repo.Find(context.Background(), w.ID, 100)
	if found.Resources[model.ResourceMoney] != 4242 || found.TechLevel != 3 {
		t.Fatalf("save not persisted: %+v", found)
	}
}

func TestNextAIID(t *testing.T) {
	setup(t)
	repo := NewCountryRepo(testDB)
	w := createTestWorld(t)
	ctx := context.Background()

	id, err := repo.NextAIID(ctx, w.ID)
	if err != nil {
		t.Fatalf("next AI ID: %v", err)
	}
	if id != -1 {
		t.Fatalf("first AI ID = %d, want -1", id)
	}

	createTestCountry(t, w.ID, -1)
	id, err = repo.NextAIID(ctx, w.ID)
	if err != nil {
		t.Fatalf("next AI ID: %v", err)
	}
	if id != -2 {
		t.Fatalf("second AI ID = %d, want -2", id)
	}
}

func TestListAIByWorld(t *testing.T) {
	setup(t)
	repo := NewCountryRepo(testDB)
	w := createTestWorld(t)
	createTestCountry(t, w.ID, 100)
	createTestCountry(t, w.ID, -1)
	createTestCountry(t, w.ID, -2)

	ais, err := repo.ListAIByWorld(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("list AI: %v", err)
	}
	if len(ais) != 2 {
		t.Fatalf("AI count = %d, want 2", len(ais))
	}
	for _, c := range ais {
		if !c.IsAI() {
			t.Fatalf("non-AI country in AI listing: %+v", c)
		}
	}
}

// --- BattleRepo ---

func TestAppendResolvedAtomic(t *testing.T) {
	setup(t)
	w := createTestWorld(t)
	attacker := createTestCountry(t, w.ID, 100)
	defender := createTestCountry(t, w.ID, 200)

	attacker.Resources[model.ResourceMoney] = 11500
	defender.Resources[model.ResourceMoney] = 8500

	rec := &model.BattleRecord{
		WorldID:       w.ID,
		AttackerID:    attacker.ID,
		AttackerType:  attacker.Controller,
		DefenderID:    defender.ID,
		DefenderType:  defender.Controller,
		UnitsUsed:     map[string]int64{"soldier": 100},
		AttackerPower: 120.5,
		DefenderPower: 80.2,
		LuckFactor:    1.1,
		Result:        model.ResultAttackerWins,
		LootFraction:  0.15,
		LootMoney:     1500,
	}

	if err := NewBattleRepo(testDB).AppendResolved(context.Background(), rec, attacker, defender); err != nil {
		t.Fatalf("append resolved: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("expected assigned battle ID")
	}

	countryRepo := NewCountryRepo(testDB)
	a, _ := countryRepo.Find(context.Background(), w.ID, 100)
	d, _ := countryRepo.Find(context.Background(), w.ID, 200)
	if a.Resources[model.ResourceMoney] != 11500 || d.Resources[model.ResourceMoney] != 8500 {
		t.Fatalf("combatant state not committed with battle: %d / %d",
			a.Resources[model.ResourceMoney], d.Resources[model.ResourceMoney])
	}

	records, err := NewBattleRepo(testDB).ListByWorld(context.Background(), w.ID, 10)
	if err != nil {
		t.Fatalf("list battles: %v", err)
	}
	if len(records) != 1 || records[0].UnitsUsed["soldier"] != 100 {
		t.Fatalf("battle record round-trip failed: %+v", records)
	}
}

// --- LoanRepo ---

func TestLoanLedger(t *testing.T) {
	setup(t)
	repo := NewLoanRepo(testDB)
	w := createTestWorld(t)
	createTestCountry(t, w.ID, 100)
	ctx := context.Background()

	borrower, _ := NewCountryRepo(testDB).Find(ctx, w.ID, 100)
	borrower.Resources[model.ResourceMoney] += 5000

	loan := &model.Loan{WorldID: w.ID, CountryID: 100, Principal: 5000, Remaining: 5000, InterestRate: 0.10}
	if err := repo.AppendIssued(ctx, loan, borrower); err != nil {
		t.Fatalf("append loan: %v", err)
	}
	if loan.ID == 0 || loan.IssuedAt.IsZero() {
		t.Fatal("expected assigned loan ID and timestamp")
	}
	saved, _ := NewCountryRepo(testDB).Find(ctx, w.ID, 100)
	if saved.Resources[model.ResourceMoney] != 15000 {
		t.Fatalf("borrower balance not committed with loan: %d", saved.Resources[model.ResourceMoney])
	}

	latest, err := repo.LatestByCountry(ctx, w.ID, 100)
	if err != nil {
		t.Fatalf("latest loan: %v", err)
	}
	if latest == nil || latest.ID != loan.ID {
		t.Fatalf("latest loan mismatch: %+v", latest)
	}

	if err := repo.UpdateRemaining(ctx, loan.ID, 3000); err != nil {
		t.Fatalf("update remaining: %v", err)
	}
	found, _ := repo.FindByID(ctx, loan.ID)
	if found.Remaining != 3000 || found.Principal != 5000 {
		t.Fatalf("remaining update wrong: %+v", found)
	}

	second := &model.Loan{WorldID: w.ID, CountryID: 100, Principal: 2000, Remaining: 2000, InterestRate: 0.10}
	if err := repo.AppendIssued(ctx, second, borrower); err != nil {
		t.Fatalf("append second loan: %v", err)
	}
	history, err := repo.ListByCountry(ctx, w.ID, 100)
	if err != nil {
		t.Fatalf("list loans: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("loan history length = %d, want 2", len(history))
	}
}

func TestLoanLatestMissing(t *testing.T) {
	setup(t)
	w := createTestWorld(t)
	latest, err := NewLoanRepo(testDB).LatestByCountry(context.Background(), w.ID, 999)
	if err != nil {
		t.Fatalf("latest missing loan: %v", err)
	}
	if latest != nil {
		t.Fatal("expected nil for country with no loans")
	}
}

// --- AllianceRepo ---

func TestAllianceMembership(t *testing.T) {
	setup(t)
	repo := NewAllianceRepo(testDB)
	w := createTestWorld(t)
	createTestCountry(t, w.ID, 100)
	createTestCountry(t, w.ID, 200)
	ctx := context.Background()

	a, err := repo.Create(ctx, w.ID, "Northern Pact", 100)
	if err != nil {
		t.Fatalf("create alliance: %v", err)
	}

	member, err := repo.IsMember(ctx, w.ID, 100)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if !member {
		t.Fatal("founder not a member")
	}
	if member, _ := repo.IsMember(ctx, w.ID, 200); member {
		t.Fatal("non-member reported as member")
	}

	if err := repo.AddMember(ctx, a.ID, 200); err != nil {
		t.Fatalf("add member: %v", err)
	}
	// Duplicate joins are a no-op.
	if err := repo.AddMember(ctx, a.ID, 200); err != nil {
		t.Fatalf("repeat add member: %v", err)
	}

	alliances, err := repo.ListByWorld(ctx, w.ID)
	if err != nil {
		t.Fatalf("list alliances: %v", err)
	}
	if len(alliances) != 1 || len(alliances[0].Members) != 2 {
		t.Fatalf("alliance listing wrong: %+v", alliances)
	}
}
