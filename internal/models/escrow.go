package models

import (
	"github.com/google/uuid"
)

// Escrow statuses
const (
	EscrowStatusPending  = "pending"
	EscrowStatusLocked   = "locked"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
)

// Valid state transitions: from -> []to. Released and refunded are terminal.
var ValidEscrowTransitions = map[string][]string{
	EscrowStatusPending:  {EscrowStatusLocked},
	EscrowStatusLocked:   {EscrowStatusReleased, EscrowStatusRefunded},
	EscrowStatusReleased: {},
	EscrowStatusRefunded: {},
}

func IsValidEscrowTransition(from, to string) bool {
	allowed, ok := ValidEscrowTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Escrow pairs a borrower and a lender around a Bitcoin collateral reference
// and a loan amount. Everything except status and release_time is immutable
// after creation; records are never deleted.
type Escrow struct {
	ID                   uint64    `json:"id"`
	Borrower             uuid.UUID `json:"borrower"`
	Lender               uuid.UUID `json:"lender"`
	BTCCollateralAddress string    `json:"btc_collateral_address"`
	CollateralAmount     float64   `json:"collateral_amount"`
	LoanAmount           float64   `json:"loan_amount"`
	Status               string    `json:"status"`
	CreatedAt            uint64    `json:"created_at"` // unix nanoseconds
	ReleaseTime          *uint64   `json:"release_time,omitempty"`
}
