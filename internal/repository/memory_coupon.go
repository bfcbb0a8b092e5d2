package repository

import (
	"context"
	"sync"

	"coupon-studio/internal/model"
	apperrors "coupon-studio/pkg/errors"
)

// memoryCouponRepository implements CouponRepository with an in-process
// map. Used for local development and tests; the mutex gives the same
// read-modify-write atomicity the MongoDB driver gets from its
// conditional update.
type memoryCouponRepository struct {
	mu      sync.RWMutex
	coupons map[string]*model.Coupon
	order   []string
}

// NewMemoryCouponRepository creates an in-memory coupon repository
func NewMemoryCouponRepository() CouponRepository {
	return &memoryCouponRepository{
		coupons: make(map[string]*model.Coupon),
	}
}

func (r *memoryCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.coupons[coupon.Code]; exists {
		return apperrors.ErrDuplicateCode
	}

	stored := *coupon
	r.coupons[coupon.Code] = &stored
	r.order = append(r.order, coupon.Code)
	return nil
}

func (r *memoryCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coupon, ok := r.coupons[code]
	if !ok {
		return nil, apperrors.ErrCouponNotFound
	}

	snapshot := *coupon
	return &snapshot, nil
}

func (r *memoryCouponRepository) ListAll(ctx context.Context) ([]*model.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coupons := make([]*model.Coupon, 0, len(r.order))
	for _, code := range r.order {
		snapshot := *r.coupons[code]
		coupons = append(coupons, &snapshot)
	}
	return coupons, nil
}

func (r *memoryCouponRepository) ConsumeUse(ctx context.Context, code string, maxUses *int64) (*model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[code]
	if !ok {
		return nil, apperrors.ErrCouponNotFound
	}
	if maxUses != nil && coupon.Uses >= *maxUses {
		return nil, apperrors.ErrCouponExhausted
	}

	coupon.Uses++
	snapshot := *coupon
	return &snapshot, nil
}

func (r *memoryCouponRepository) Deactivate(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[code]
	if !ok {
		return apperrors.ErrCouponNotFound
	}

	coupon.IsActive = false
	return nil
}
