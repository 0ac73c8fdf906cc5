package repository

import (
	"context"
	"time"

	"github.com/farzamh/warlords/internal/model"
)

// CountryRepository defines country data operations. Find returns
// (nil, nil) when the country does not exist.
type CountryRepository interface {
	Find(ctx context.Context, worldID, countryID int64) (*model.Country, error)
	Create(ctx context.Context, c *model.Country) error
	Save(ctx context.Context, c *model.Country) error
	Delete(ctx context.Context, worldID, countryID int64) error
	ListByWorld(ctx context.Context, worldID int64) ([]model.Country, error)
	ListAIByWorld(ctx context.Context, worldID int64) ([]model.Country, error)
	// NextAIID reserves the next AI country ID for a world. AI IDs are
	// negative and descend from -1.
	NextAIID(ctx context.Context, worldID int64) (int64, error)
}

// BattleRepository defines battle audit operations. Battles are append-only.
type BattleRepository interface {
	// AppendResolved commits a full battle outcome atomically: both
	// countries' post-battle records and the battle entry land together
	// or not at all.
	AppendResolved(ctx context.Context, rec *model.BattleRecord, attacker, defender *model.Country) error
	ListByWorld(ctx context.Context, worldID int64, limit int) ([]model.BattleRecord, error)
}

// LoanRepository defines loan ledger operations. Loan records are
// permanent; only the remaining balance changes.
type LoanRepository interface {
	// AppendIssued persists a new loan together with the borrower's
	// credited balance atomically; neither lands without the other.
	AppendIssued(ctx context.Context, loan *model.Loan, borrower *model.Country) error
	FindByID(ctx context.Context, loanID int64) (*model.Loan, error)
	// LatestByCountry returns the most recently issued loan for a
	// country, or (nil, nil) when none exists.
	LatestByCountry(ctx context.Context, worldID, countryID int64) (*model.Loan, error)
	UpdateRemaining(ctx context.Context, loanID, remaining int64) error
	ListByCountry(ctx context.Context, worldID, countryID int64) ([]model.Loan, error)
}

// AllianceRepository defines alliance operations. Membership is
// append-only; there is no leave operation.
type AllianceRepository interface {
	Create(ctx context.Context, worldID int64, name string, founderID int64) (*model.Alliance, error)
	ListByWorld(ctx context.Context, worldID int64) ([]model.Alliance, error)
	AddMember(ctx context.Context, allianceID, countryID int64) error
	IsMember(ctx context.Context, worldID, countryID int64) (bool, error)
}

// WorldRepository defines world (game instance) operations.
type WorldRepository interface {
	Create(ctx context.Context, name string, ownerID int64) (*model.World, error)
	FindByID(ctx context.Context, worldID int64) (*model.World, error)
	ListActive(ctx context.Context) ([]model.World, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.World, error)
	SetStatus(ctx context.Context, worldID int64, status string) error
}

// ProfileCache defines hot-path country state operations (Redis).
// All methods are best-effort accelerators; Postgres stays the source
// of truth.
type ProfileCache interface {
	SetProfile(ctx context.Context, c *model.Country) error
	GetProfile(ctx context.Context, worldID, countryID int64) (*model.Country, error)
	InvalidateProfile(ctx context.Context, worldID, countryID int64) error
	// SetLoanCooldown marks a country ineligible for a new loan for ttl.
	SetLoanCooldown(ctx context.Context, worldID, countryID int64, ttl time.Duration) error
	LoanCooldownActive(ctx context.Context, worldID, countryID int64) (bool, error)
	DeleteWorldData(ctx context.Context, worldID int64) error
}
