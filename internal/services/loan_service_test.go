package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/bitcoin-loan/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newLoanService() *LoanService {
	return NewLoanService(repositories.NewMemoryLoanRepo(), repositories.NewMemoryAuditRepo(), zap.NewNop())
}

func TestCreateAndListLoans(t *testing.T) {
	svc := newLoanService()
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	first, err := svc.Create(ctx, owner, 0.5, 0.2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, owner, 1.0, 0.4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, other, 2.0, 1.0); err != nil {
		t.Fatalf("create other: %v", err)
	}

	loans, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(loans) != 2 {
		t.Fatalf("loans = %d, want 2", len(loans))
	}
	if loans[0].ID != first.ID || loans[1].ID != second.ID {
		t.Errorf("not in creation order")
	}
}

func TestCreateLoanInvalidAmounts(t *testing.T) {
	svc := newLoanService()
	ctx := context.Background()
	owner := uuid.New()

	if _, err := svc.Create(ctx, owner, -0.5, 0.2); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("negative collateral: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.Create(ctx, owner, 0.5, 0); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("zero loan: err = %v, want ErrInvalidAmount", err)
	}
}
