package pricing

// DeliveryPolicy computes the delivery fee from the pre-discount cart
// subtotal. The engine consults the policy only for non-empty carts.
type DeliveryPolicy interface {
	FeeFor(subtotal int64) int64
}

// FlatFee charges a fixed fee whenever the cart is non-empty.
type FlatFee struct {
	Fee int64
}

func (p FlatFee) FeeFor(subtotal int64) int64 {
	return p.Fee
}

// FreeOverThreshold charges a flat fee unless the subtotal reaches the
// free-delivery threshold.
type FreeOverThreshold struct {
	Fee       int64
	Threshold int64
}

func (p FreeOverThreshold) FeeFor(subtotal int64) int64 {
	if subtotal >= p.Threshold {
		return 0
	}
	return p.Fee
}
