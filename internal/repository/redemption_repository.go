package repository

import (
	"context"
	"coupon-studio/internal/model"
)

// RedemptionRepository defines the interface for redemption audit records
type RedemptionRepository interface {
	// Insert records a successful coupon application
	Insert(ctx context.Context, redemption *model.Redemption) error

	// ListByCode retrieves all redemptions for a specific coupon code
	ListByCode(ctx context.Context, code string) ([]*model.Redemption, error)
}
