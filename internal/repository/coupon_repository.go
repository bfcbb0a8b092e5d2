package repository

import (
	"context"
	"coupon-studio/internal/model"
)

// CouponRepository defines the interface for coupon data operations
type CouponRepository interface {
	// Insert creates a new coupon; fails with errors.ErrDuplicateCode
	// if the normalized code is already taken
	Insert(ctx context.Context, coupon *model.Coupon) error

	// GetByCode retrieves a coupon by its normalized code
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// ListAll returns all coupons in insertion order
	ListAll(ctx context.Context) ([]*model.Coupon, error)

	// ConsumeUse atomically increments the usage counter, but only while
	// it is below maxUses (nil means unlimited). Returns the coupon as
	// observed after the increment, errors.ErrCouponExhausted when no
	// usage slot remains, or errors.ErrCouponNotFound.
	ConsumeUse(ctx context.Context, code string, maxUses *int64) (*model.Coupon, error)

	// Deactivate clears the coupon's active flag
	Deactivate(ctx context.Context, code string) error
}
