package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/google/uuid"
)

type memoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

// NewMemoryUserRepo builds an in-memory user store for testing.
func NewMemoryUserRepo() UserRepository {
	return &memoryUserRepo{users: make(map[uuid.UUID]models.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return models.ErrUsernameTaken
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *memoryUserRepo) UpdateBTCAddress(_ context.Context, id uuid.UUID, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.BTCAddress = &address
	r.users[id] = u
	return nil
}
