package models

import (
	"github.com/google/uuid"
)

// Loan is a standalone loan record owned by a single user, separate from any
// escrow agreement.
type Loan struct {
	ID               uint64    `json:"id"`
	Owner            uuid.UUID `json:"owner"`
	CollateralAmount float64   `json:"collateral_amount"`
	LoanAmount       float64   `json:"loan_amount"`
	CreatedAt        uint64    `json:"created_at"` // unix nanoseconds
}
