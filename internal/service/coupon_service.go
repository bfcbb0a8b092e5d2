package service

import (
	"context"
	"time"

	"coupon-studio/internal/model"
	"coupon-studio/internal/repository"
	apperrors "coupon-studio/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CouponService handles business logic for coupons
type CouponService struct {
	couponRepo     repository.CouponRepository
	redemptionRepo repository.RedemptionRepository
	logger         *zap.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(couponRepo repository.CouponRepository, redemptionRepo repository.RedemptionRepository, logger *zap.Logger) *CouponService {
	return &CouponService{
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
		logger:         logger,
	}
}

// CreateCoupon validates creation input, normalizes the code and
// persists a new coupon with a zeroed usage counter.
func (s *CouponService) CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	code := model.NormalizeCode(req.Code)
	if code == "" {
		return nil, &apperrors.InvalidFieldError{Field: "code", Detail: "must not be empty"}
	}

	discountType := model.DiscountType(req.DiscountType)
	switch discountType {
	case model.DiscountPercent:
		if req.Value < 0 || req.Value > 100 {
			return nil, &apperrors.InvalidFieldError{Field: "value", Detail: "percent value must be between 0 and 100"}
		}
	case model.DiscountFixed:
		if req.Value < 0 {
			return nil, &apperrors.InvalidFieldError{Field: "value", Detail: "fixed value must not be negative"}
		}
	default:
		return nil, &apperrors.InvalidFieldError{Field: "discount_type", Detail: "must be percent or fixed"}
	}

	if req.MaxUses != nil && *req.MaxUses < 0 {
		return nil, &apperrors.InvalidFieldError{Field: "max_uses", Detail: "must not be negative"}
	}
	if req.MinOrderAmount < 0 {
		return nil, &apperrors.InvalidFieldError{Field: "min_order_amount", Detail: "must not be negative"}
	}

	coupon := &model.Coupon{
		ID:             primitive.NewObjectID(),
		Code:           code,
		DiscountType:   discountType,
		Value:          req.Value,
		MaxUses:        req.MaxUses,
		Uses:           0,
		ExpiresAt:      req.ExpiresAt,
		MinOrderAmount: req.MinOrderAmount,
		IsActive:       req.IsActive,
		Notes:          req.Notes,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.couponRepo.Insert(ctx, coupon); err != nil {
		return nil, err
	}

	s.logger.Info("coupon created",
		zap.String("code", coupon.Code),
		zap.String("type", string(coupon.DiscountType)),
		zap.Float64("value", coupon.Value),
	)
	return coupon, nil
}

// validate runs the eligibility rule chain against a coupon snapshot.
// Order is fixed so callers always see a deterministic reason:
// inactive, then expired, then exhausted, then minimum order.
func validate(coupon *model.Coupon, orderAmount float64, now time.Time) error {
	if !coupon.IsActive {
		return apperrors.ErrCouponInactive
	}
	if coupon.ExpiresAt != nil && !now.Before(*coupon.ExpiresAt) {
		return apperrors.ErrCouponExpired
	}
	if coupon.MaxUses != nil && coupon.Uses >= *coupon.MaxUses {
		return apperrors.ErrCouponExhausted
	}
	if orderAmount < coupon.MinOrderAmount {
		return apperrors.ErrBelowMinOrder
	}
	return nil
}

// ApplyCoupon validates a coupon against an order and, on success,
// consumes one usage slot. The counter mutation goes through the
// store's guarded increment, so across concurrent callers a coupon
// with N usage slots yields at most N successes; the losers of the
// race observe the exhausted outcome, never a partial state.
func (s *CouponService) ApplyCoupon(ctx context.Context, req *model.ApplyCouponRequest) (*model.ApplyResult, error) {
	code := model.NormalizeCode(req.Code)

	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := validate(coupon, req.OrderAmount, time.Now().UTC()); err != nil {
		return nil, err
	}

	discountAmount, finalAmount := coupon.Discount(req.OrderAmount)

	updated, err := s.couponRepo.ConsumeUse(ctx, code, coupon.MaxUses)
	if err != nil {
		return nil, err
	}

	redemption := &model.Redemption{
		ID:             primitive.NewObjectID(),
		CouponID:       updated.ID,
		Code:           code,
		UserID:         req.UserID,
		OrderAmount:    req.OrderAmount,
		DiscountAmount: discountAmount,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.redemptionRepo.Insert(ctx, redemption); err != nil {
		// The usage slot is already consumed; the audit record is
		// secondary and must not fail the application.
		s.logger.Warn("failed to record redemption",
			zap.String("code", code),
			zap.Error(err),
		)
	}

	s.logger.Info("coupon applied",
		zap.String("code", code),
		zap.Float64("order_amount", req.OrderAmount),
		zap.Float64("discount_amount", discountAmount),
		zap.Int64("uses", updated.Uses),
	)

	return &model.ApplyResult{
		Valid:          true,
		Code:           code,
		UserID:         req.UserID,
		DiscountAmount: discountAmount,
		FinalAmount:    finalAmount,
	}, nil
}

// ListCoupons returns the projection of every coupon with its status
// derived at read time.
func (s *CouponService) ListCoupons(ctx context.Context) ([]model.CouponResponse, error) {
	coupons, err := s.couponRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	projections := make([]model.CouponResponse, 0, len(coupons))
	for _, coupon := range coupons {
		projections = append(projections, coupon.Projection(now))
	}
	return projections, nil
}

// GetCouponDetails retrieves a coupon projection together with its
// redemption history.
func (s *CouponService) GetCouponDetails(ctx context.Context, code string) (*model.CouponDetailsResponse, error) {
	code = model.NormalizeCode(code)

	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	redemptions, err := s.redemptionRepo.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	redeemedBy := make([]string, 0, len(redemptions))
	for _, redemption := range redemptions {
		redeemedBy = append(redeemedBy, redemption.UserID)
	}

	return &model.CouponDetailsResponse{
		CouponResponse: coupon.Projection(time.Now().UTC()),
		RedeemedBy:     redeemedBy,
	}, nil
}

// DeactivateCoupon flips the coupon's active flag off. Usage history
// is untouched.
func (s *CouponService) DeactivateCoupon(ctx context.Context, code string) error {
	code = model.NormalizeCode(code)

	if err := s.couponRepo.Deactivate(ctx, code); err != nil {
		return err
	}

	s.logger.Info("coupon deactivated", zap.String("code", code))
	return nil
}
