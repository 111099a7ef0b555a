package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/bitcoin-loan/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoanService manages standalone loan records.
type LoanService struct {
	loanRepo  repositories.LoanRepository
	auditRepo repositories.AuditRepository
	log       *zap.Logger
}

func NewLoanService(loanRepo repositories.LoanRepository, auditRepo repositories.AuditRepository, log *zap.Logger) *LoanService {
	return &LoanService{loanRepo: loanRepo, auditRepo: auditRepo, log: log}
}

func (s *LoanService) Create(ctx context.Context, owner uuid.UUID, collateralAmount, loanAmount float64) (*models.Loan, error) {
	if collateralAmount <= 0 {
		return nil, fmt.Errorf("collateral %w", models.ErrInvalidAmount)
	}
	if loanAmount <= 0 {
		return nil, fmt.Errorf("loan %w", models.ErrInvalidAmount)
	}

	loan := &models.Loan{
		Owner:            owner,
		CollateralAmount: collateralAmount,
		LoanAmount:       loanAmount,
		CreatedAt:        uint64(time.Now().UnixNano()),
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &owner,
		ActorType:   "user",
		Action:      "loan_created",
		EntityType:  "loan",
		EntityID:    entityID(loan.ID),
		Meta: map[string]any{
			"collateral_amount": collateralAmount,
			"loan_amount":       loanAmount,
		},
	})

	return loan, nil
}

// List returns the caller's loans, ascending by id.
func (s *LoanService) List(ctx context.Context, owner uuid.UUID) ([]models.Loan, error) {
	return s.loanRepo.ListByOwner(ctx, owner)
}
