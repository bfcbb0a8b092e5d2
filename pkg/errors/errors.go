package errors

import "errors"

// Domain errors for the coupon system
var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrDuplicateCode   = errors.New("coupon code already exists")
	ErrCouponInactive  = errors.New("coupon is inactive")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	ErrBelowMinOrder   = errors.New("order amount below coupon minimum")
)

// InvalidFieldError reports a malformed field in a create request.
type InvalidFieldError struct {
	Field  string
	Detail string
}

func (e *InvalidFieldError) Error() string {
	return "invalid field " + e.Field + ": " + e.Detail
}

// Reason maps a domain error to the machine-readable reason string
// surfaced on the API.
func Reason(err error) string {
	var fieldErr *InvalidFieldError
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return "NotFound"
	case errors.Is(err, ErrCouponInactive):
		return "Inactive"
	case errors.Is(err, ErrCouponExpired):
		return "Expired"
	case errors.Is(err, ErrCouponExhausted):
		return "Exhausted"
	case errors.Is(err, ErrBelowMinOrder):
		return "BelowMinimumOrder"
	case errors.Is(err, ErrDuplicateCode):
		return "DuplicateCode"
	case errors.As(err, &fieldErr):
		return "InvalidField"
	default:
		return "Internal"
	}
}
