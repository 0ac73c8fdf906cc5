package service

import "errors"

// Service-level failures surfaced to the presentation layer. Ledger
// validation failures (insufficient funds/units, invalid unit) come from
// the game package and pass through unwrapped.
var (
	ErrWorldNotFound   = errors.New("world not found")
	ErrWorldDisabled   = errors.New("world is disabled")
	ErrCountryNotFound = errors.New("country not found")
	ErrLoanNotFound    = errors.New("loan not found")
	ErrCooldownActive  = errors.New("loan cooldown active")
	ErrOverRepayment   = errors.New("repayment exceeds remaining balance")
	ErrSelfAttack      = errors.New("cannot attack your own country")
)
