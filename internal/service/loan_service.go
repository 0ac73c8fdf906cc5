package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farzamh/warlords/internal/game"
	"github.com/farzamh/warlords/internal/model"
	"github.com/farzamh/warlords/internal/repository"
)

// LoanService enforces the one-loan-per-cooldown rule and moves loan
// money through the resource ledger. Loan rows are permanent audit
// entries; only eligibility cycles.
type LoanService struct {
	loans     repository.LoanRepository
	countries repository.CountryRepository
	cache     repository.ProfileCache
	registry  *WorldRegistry

	// now is swappable so the 24-hour boundary is testable.
	now func() time.Time
}

// NewLoanService creates a LoanService.
func NewLoanService(loans repository.LoanRepository, countries repository.CountryRepository,
	cache repository.ProfileCache, registry *WorldRegistry) *LoanService {
	return &LoanService{
		loans:     loans,
		countries: countries,
		cache:     cache,
		registry:  registry,
		now:       time.Now,
	}
}

// CanBorrow reports loan eligibility: no prior loan, or the most recent
// one issued at least the full cooldown ago. The boundary is inclusive:
// at exactly 24 hours the country is eligible again. Repayment state
// does not matter.
func (s *LoanService) CanBorrow(ctx context.Context, worldID, countryID int64) (bool, error) {
	// Fast path: the Redis marker expires exactly when the window lapses.
	if active, err := s.cache.LoanCooldownActive(ctx, worldID, countryID); err != nil {
		log.Debug().Err(err).Msg("Loan cooldown cache check failed")
	} else if active {
		return false, nil
	}

	latest, err := s.loans.LatestByCountry(ctx, worldID, countryID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	return s.now().Sub(latest.IssuedAt) >= game.LoanCooldown, nil
}

// IssueLoan credits amount to the country's money and appends the loan
// record at the fixed interest rate. A zero or negative amount requests
// the default loan. Fails with ErrCooldownActive inside the window.
func (s *LoanService) IssueLoan(ctx context.Context, worldID, countryID, amount int64) (*model.Loan, error) {
	if amount <= 0 {
		amount = game.DefaultLoanAmount
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

	ok, err := s.CanBorrow(ctx, worldID, countryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCooldownActive
	}

	balances, err := game.ApplyDelta(c.Resources, map[string]int64{model.ResourceMoney: amount})
	if err != nil {
		return nil, err
	}
	c.Resources = balances

	loan := &model.Loan{
		WorldID:      worldID,
		CountryID:    countryID,
		Principal:    amount,
		Remaining:    amount,
		InterestRate: game.LoanInterestRate,
		IssuedAt:     s.now(),
	}
	if err := s.loans.AppendIssued(ctx, loan, c); err != nil {
		return nil, err
	}

	if err := s.cache.SetLoanCooldown(ctx, worldID, countryID, game.LoanCooldown); err != nil {
		log.Debug().Err(err).Msg("Loan cooldown cache write failed")
	}
	s.invalidate(ctx, worldID, countryID)

	log.Info().Int64("worldId", worldID).Int64("countryId", countryID).
		Int64("amount", amount).Msg("Loan issued")
	return loan, nil
}

// Repay applies a repayment: debits the country's money and decrements
// the remaining balance. Over-repayment is rejected before any money
// moves. Unpaid balances carry no penalty; they are advisory debt.
func (s *LoanService) Repay(ctx context.Context, worldID, loanID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrOverRepayment
	}

	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return 0, err
	}
	if loan == nil || loan.WorldID != worldID {
		return 0, ErrLoanNotFound
	}

	unlock := s.registry.LockCountry(worldID, loan.CountryID)
	defer unlock()

	// Re-read under the lock; a concurrent repayment may have landed
	// between the first read and acquiring the lock.
	loan, err = s.loans.FindByID(ctx, loanID)
	if err != nil {
		return 0, err
	}
	if loan == nil {
		return 0, ErrLoanNotFound
	}
	if amount > loan.Remaining {
		return loan.Remaining, ErrOverRepayment
	}

	c, err := s.countries.Find(ctx, worldID, loan.CountryID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, ErrCountryNotFound
	}

	balances, err := game.ApplyDelta(c.Resources, map[string]int64{model.ResourceMoney: -amount})
	if err != nil {
		return loan.Remaining, err
	}
	c.Resources = balances
	if err := s.countries.Save(ctx, c); err != nil {
		return 0, err
	}

	remaining := loan.Remaining - amount
	if err := s.loans.UpdateRemaining(ctx, loanID, remaining); err != nil {
		return 0, err
	}
	s.invalidate(ctx, worldID, loan.CountryID)

	log.Info().Int64("worldId", worldID).Int64("loanId", loanID).
		Int64("amount", amount).Int64("remaining", remaining).Msg("Loan repayment")
	return remaining, nil
}

// History returns a country's loan ledger, newest first.
func (s *LoanService) History(ctx context.Context, worldID, countryID int64) ([]model.Loan, error) {
	return s.loans.ListByCountry(ctx, worldID, countryID)
}

func (s *LoanService) invalidate(ctx context.Context, worldID, countryID int64) {
	if err := s.cache.InvalidateProfile(ctx, worldID, countryID); err != nil {
		log.Debug().Err(err).Msg("Profile cache invalidation failed")
	}
}
