package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farzamh/warlords/internal/model"
)

// LoanRepo handles the loan ledger. Rows are permanent audit entries;
// only remaining balances change.
type LoanRepo struct {
	db *sql.DB
}

// NewLoanRepo creates a LoanRepo.
func NewLoanRepo(db *sql.DB) *LoanRepo {
	return &LoanRepo{db: db}
}

const loanColumns = `loan_id, world_id, country_id, principal, remaining, interest_rate, issued_at`

// AppendIssued commits a new loan and the borrower's credited state in
// one transaction, filling in the loan's ID and issue timestamp. A
// failure rolls back both, so money is never credited without its
// loan row.
func (r *LoanRepo) AppendIssued(ctx context.Context, loan *model.Loan, borrower *model.Country) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	resources, units, strategy, err := encodeCountry(borrower)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE countries SET resources = $3, units = $4, tech_level = $5,
		        morale = $6, strategy_state = $7
		 WHERE world_id = $1 AND country_id = $2`,
		borrower.WorldID, borrower.ID, resources, units, borrower.TechLevel, borrower.Morale, strategy)
	if err != nil {
		return fmt.Errorf("save borrower %d: %w", borrower.ID, err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO loans (world_id, country_id, principal, remaining, interest_rate)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING loan_id, issued_at`,
		loan.WorldID, loan.CountryID, loan.Principal, loan.Remaining, loan.InterestRate,
	).Scan(&loan.ID, &loan.IssuedAt)
	if err != nil {
		return fmt.Errorf("append loan: %w", err)
	}

	return tx.Commit()
}

// FindByID returns a loan by ID, or (nil, nil) when absent.
func (r *LoanRepo) FindByID(ctx context.Context, loanID int64) (*model.Loan, error) {
	var l model.Loan
	err := r.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE loan_id = $1`, loanID,
	).Scan(&l.ID, &l.WorldID, &l.CountryID, &l.Principal, &l.Remaining, &l.InterestRate, &l.IssuedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return &l, nil
}

// LatestByCountry returns the most recently issued loan for a country,
// or (nil, nil) when the country has never borrowed.
func (r *LoanRepo) LatestByCountry(ctx context.Context, worldID, countryID int64) (*model.Loan, error) {
	var l model.Loan
	err := r.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans
		 WHERE world_id = $1 AND country_id = $2
		 ORDER BY issued_at DESC LIMIT 1`,
		worldID, countryID,
	).Scan(&l.ID, &l.WorldID, &l.CountryID, &l.Principal, &l.Remaining, &l.InterestRate, &l.IssuedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest loan: %w", err)
	}
	return &l, nil
}

// UpdateRemaining sets the remaining balance after a repayment.
func (r *LoanRepo) UpdateRemaining(ctx context.Context, loanID, remaining int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE loans SET remaining = $1 WHERE loan_id = $2`, remaining, loanID)
	if err != nil {
		return fmt.Errorf("update remaining: %w", err)
	}
	return nil
}

// ListByCountry returns a country's full loan history, newest first.
func (r *LoanRepo) ListByCountry(ctx context.Context, worldID, countryID int64) ([]model.Loan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans
		 WHERE world_id = $1 AND country_id = $2 ORDER BY issued_at DESC`,
		worldID, countryID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.WorldID, &l.CountryID, &l.Principal, &l.Remaining,
			&l.InterestRate, &l.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
