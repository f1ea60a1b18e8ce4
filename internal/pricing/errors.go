package pricing

import "errors"

// ErrNoDeliveryPolicy is returned by ComputeCartTotals when no delivery
// policy is supplied. There is no library-level default: the caller must pick
// one of the named strategies explicitly.
var ErrNoDeliveryPolicy = errors.New("no delivery policy configured")

// ValidationError reports malformed engine input: a non-positive quantity,
// a product record missing required pricing fields, or an out-of-range buyer
// context. It is always propagated, never silently defaulted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
