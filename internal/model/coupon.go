package model

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscountType is the kind of discount a coupon grants.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// CouponStatus is the derived, read-time classification of a coupon.
// It is never persisted; recompute on every read.
type CouponStatus string

const (
	StatusActive    CouponStatus = "active"
	StatusInactive  CouponStatus = "inactive"
	StatusExpired   CouponStatus = "expired"
	StatusExhausted CouponStatus = "exhausted"
)

// Coupon represents a coupon in the system. Codes are stored normalized
// (trimmed, upper-cased) and are immutable after creation. Uses is only
// ever incremented, and only through the store's conditional update.
type Coupon struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code           string             `bson:"code" json:"code"`
	DiscountType   DiscountType       `bson:"discount_type" json:"type"`
	Value          float64            `bson:"value" json:"value"`
	MaxUses        *int64             `bson:"max_uses,omitempty" json:"max_uses"` // nil means unlimited
	Uses           int64              `bson:"uses" json:"uses"`
	ExpiresAt      *time.Time         `bson:"expires_at,omitempty" json:"expires_at"` // nil means never expires
	MinOrderAmount float64            `bson:"min_order_amount" json:"min_order_amount"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	Notes          string             `bson:"notes" json:"notes"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// NormalizeCode canonicalizes a coupon code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Status derives the coupon's classification at the given instant.
// Precedence: inactive, then expired, then exhausted. The expiry
// boundary is exclusive: a coupon is expired at exactly ExpiresAt.
func (c *Coupon) Status(now time.Time) CouponStatus {
	switch {
	case !c.IsActive:
		return StatusInactive
	case c.ExpiresAt != nil && !now.Before(*c.ExpiresAt):
		return StatusExpired
	case c.MaxUses != nil && c.Uses >= *c.MaxUses:
		return StatusExhausted
	default:
		return StatusActive
	}
}

// Discount computes the discount and final amounts for an order.
// A fixed discount is clamped to the order amount, and the final
// amount is floored at zero.
func (c *Coupon) Discount(orderAmount float64) (discountAmount, finalAmount float64) {
	switch c.DiscountType {
	case DiscountPercent:
		discountAmount = orderAmount * c.Value / 100
	case DiscountFixed:
		discountAmount = math.Min(c.Value, orderAmount)
	}
	finalAmount = orderAmount - discountAmount
	if finalAmount < 0 {
		finalAmount = 0
	}
	return discountAmount, finalAmount
}

// Projection builds the read model returned by the list and detail
// endpoints, with the status computed at the given instant.
func (c *Coupon) Projection(now time.Time) CouponResponse {
	return CouponResponse{
		ID:             c.ID.Hex(),
		Code:           c.Code,
		Type:           c.DiscountType,
		Value:          c.Value,
		MaxUses:        c.MaxUses,
		Uses:           c.Uses,
		ExpiresAt:      c.ExpiresAt,
		MinOrderAmount: c.MinOrderAmount,
		IsActive:       c.IsActive,
		Notes:          c.Notes,
		Status:         c.Status(now),
		CreatedAt:      c.CreatedAt,
	}
}

// Redemption records a single successful coupon application.
type Redemption struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CouponID       primitive.ObjectID `bson:"coupon_id" json:"coupon_id"`
	Code           string             `bson:"code" json:"code"` // denormalized for querying
	UserID         string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	OrderAmount    float64            `bson:"order_amount" json:"order_amount"`
	DiscountAmount float64            `bson:"discount_amount" json:"discount_amount"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// CreateCouponRequest is the payload for creating a coupon.
type CreateCouponRequest struct {
	Code           string     `json:"code" binding:"required"`
	DiscountType   string     `json:"discount_type"`
	Value          float64    `json:"value"`
	MaxUses        *int64     `json:"max_uses"`
	ExpiresAt      *time.Time `json:"expires_at"`
	MinOrderAmount float64    `json:"min_order_amount"`
	IsActive       bool       `json:"is_active"`
	Notes          string     `json:"notes"`
}

// ApplyCouponRequest is the payload for applying a coupon to an order.
type ApplyCouponRequest struct {
	Code        string  `json:"code" binding:"required"`
	OrderAmount float64 `json:"order_amount"`
	UserID      string  `json:"user_id"`
}

// ApplyResult is the successful outcome of a coupon application.
type ApplyResult struct {
	Valid          bool    `json:"valid"`
	Code           string  `json:"code"`
	UserID         string  `json:"user_id,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

// CouponResponse is the projection served to clients.
type CouponResponse struct {
	ID             string       `json:"id"`
	Code           string       `json:"code"`
	Type           DiscountType `json:"type"`
	Value          float64      `json:"value"`
	MaxUses        *int64       `json:"max_uses"`
	Uses           int64        `json:"uses"`
	ExpiresAt      *time.Time   `json:"expires_at"`
	MinOrderAmount float64      `json:"min_order_amount"`
	IsActive       bool         `json:"is_active"`
	Notes          string       `json:"notes"`
	Status         CouponStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

// CouponDetailsResponse is the detail projection including the
// redemption audit trail.
type CouponDetailsResponse struct {
	CouponResponse
	RedeemedBy []string `json:"redeemed_by"`
}
