package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/bitcoin-loan/backend/internal/models"
	"github.com/google/uuid"
)

type memoryAuditRepo struct {
	mu      sync.RWMutex
	entries []models.AuditLog
}

func NewMemoryAuditRepo() AuditRepository {
	return &memoryAuditRepo{}
}

func (r *memoryAuditRepo) Log(_ context.Context, entry models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryAuditRepo) GetByEntity(_ context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var logs []models.AuditLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.EntityType != entityType || e.EntityID == nil || *e.EntityID != entityID {
			continue
		}
		logs = append(logs, e)
	}
	if offset >= len(logs) {
		return nil, nil
	}
	logs = logs[offset:]
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
