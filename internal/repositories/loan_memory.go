package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/google/uuid"
)

type memoryLoanRepo struct {
	mu     sync.RWMutex
	loans  map[uint64]models.Loan
	nextID uint64
}

func NewMemoryLoanRepo() LoanRepository {
	return &memoryLoanRepo{loans: make(map[uint64]models.Loan)}
}

func (r *memoryLoanRepo) Create(_ context.Context, l *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	r.loans[l.ID] = *l
	return nil
}

func (r *memoryLoanRepo) ListByOwner(_ context.Context, owner uuid.UUID) ([]models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var loans []models.Loan
	for _, l := range r.loans {
		if l.Owner == owner {
			loans = append(loans, l)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}
