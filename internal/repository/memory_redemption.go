package repository

import (
	"context"
	"sync"

	"coupon-studio/internal/model"
)

// memoryRedemptionRepository implements RedemptionRepository with an
// in-process slice, guarded by a mutex.
type memoryRedemptionRepository struct {
	mu          sync.RWMutex
	redemptions []*model.Redemption
}

// NewMemoryRedemptionRepository creates an in-memory redemption repository
func NewMemoryRedemptionRepository() RedemptionRepository {
	return &memoryRedemptionRepository{}
}

func (r *memoryRedemptionRepository) Insert(ctx context.Context, redemption *model.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *redemption
	r.redemptions = append(r.redemptions, &stored)
	return nil
}

func (r *memoryRedemptionRepository) ListByCode(ctx context.Context, code string) ([]*model.Redemption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*model.Redemption
	for _, redemption := range r.redemptions {
		if redemption.Code == code {
			snapshot := *redemption
			matches = append(matches, &snapshot)
		}
	}
	return matches, nil
}
