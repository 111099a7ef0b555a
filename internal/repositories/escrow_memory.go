package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/google/uuid"
)

// memoryEscrowRepo is a concurrency-safe in-memory escrow store: a map keyed
// by id plus a monotonic counter behind one mutex, so precondition checks and
// mutations are observed atomically. Used by unit tests.
type memoryEscrowRepo struct {
	mu      sync.RWMutex
	escrows map[uint64]models.Escrow
	nextID  uint64
}

func NewMemoryEscrowRepo() EscrowRepository {
	return &memoryEscrowRepo{escrows: make(map[uint64]models.Escrow)}
}

func (r *memoryEscrowRepo) Create(_ context.Context, e *models.Escrow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.escrows[e.ID] = *e
	return nil
}

func (r *memoryEscrowRepo) GetByID(_ context.Context, id uint64) (*models.Escrow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.escrows[id]
	if !ok {
		return nil, models.ErrEscrowNotFound
	}
	return &e, nil
}

func (r *memoryEscrowRepo) ListByBorrower(_ context.Context, borrower uuid.UUID) ([]models.Escrow, error) {
	return r.list(func(e models.Escrow) bool { return e.Borrower == borrower }), nil
}

func (r *memoryEscrowRepo) ListByLender(_ context.Context, lender uuid.UUID) ([]models.Escrow, error) {
	return r.list(func(e models.Escrow) bool { return e.Lender == lender }), nil
}

func (r *memoryEscrowRepo) list(match func(models.Escrow) bool) []models.Escrow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var escrows []models.Escrow
	for _, e := range r.escrows {
		if match(e) {
			escrows = append(escrows, e)
		}
	}
	sort.Slice(escrows, func(i, j int) bool { return escrows[i].ID < escrows[j].ID })
	return escrows
}

func (r *memoryEscrowRepo) UpdateStatus(_ context.Context, id uint64, from, to string, releaseTime *uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.escrows[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	if releaseTime != nil {
		e.ReleaseTime = releaseTime
	}
	r.escrows[id] = e
	return true, nil
}
