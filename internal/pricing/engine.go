// Package pricing implements the storefront's cart pricing: tiered wholesale
// unit prices, loyalty discounts and delivery fees. All operations are pure;
// cart contents and buyer identity are passed in fresh on every call, so the
// package is safe for concurrent use without locking.
//
// Money is represented in integer minor units (kobo). The single fractional
// operation, the loyalty discount, is rounded half-up to the nearest minor
// unit; all other arithmetic is exact.
package pricing

import "math"

// ResolveUnitPrice determines the unit price for a product at the given
// quantity. Approved wholesale buyers get the best matching wholesale tier
// (the tier with the highest minimum quantity the ordered quantity reaches);
// everyone else, and any quantity below every tier minimum, pays retail.
//
// Tiers are not assumed to be sorted. Duplicate tier minimums collapse
// last-write-wins, so malformed tier data still prices deterministically.
func ResolveUnitPrice(product Product, quantity int, buyer BuyerContext) (int64, error) {
	if quantity <= 0 {
		return 0, &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if err := product.Validate(); err != nil {
		return 0, err
	}
	if err := buyer.Validate(); err != nil {
		return 0, err
	}

	if !buyer.WholesaleUnlocked() || len(product.WholesaleTiers) == 0 {
		return product.RetailPrice, nil
	}

	byMin := make(map[int]int64, len(product.WholesaleTiers))
	for _, t := range product.WholesaleTiers {
		byMin[t.MinQuantity] = t.UnitPrice
	}

	bestMin := 0
	price := product.RetailPrice
	for min, unit := range byMin {
		if min <= quantity && min > bestMin {
			bestMin = min
			price = unit
		}
	}
	return price, nil
}

// ComputeCartTotals prices a full cart for a buyer under the given delivery
// policy. The subtotal is the exact sum of per-line unit price times
// quantity; the loyalty discount is buyer.LoyaltyPercent of that subtotal;
// the delivery fee is computed from the pre-discount subtotal. The grand
// total is never negative while the loyalty percentage stays within 0-100.
//
// An empty cart yields an all-zero breakdown: the delivery policy is only
// consulted when there is something to deliver.
func ComputeCartTotals(lines []CartLine, buyer BuyerContext, policy DeliveryPolicy) (Breakdown, error) {
	if policy == nil {
		return Breakdown{}, ErrNoDeliveryPolicy
	}
	if err := buyer.Validate(); err != nil {
		return Breakdown{}, err
	}

	out := Breakdown{Lines: make([]LinePrice, 0, len(lines))}
	for _, line := range lines {
		unit, err := ResolveUnitPrice(line.Product, line.Quantity, buyer)
		if err != nil {
			return Breakdown{}, err
		}
		sub := unit * int64(line.Quantity)
		out.Lines = append(out.Lines, LinePrice{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			Subtotal:  sub,
		})
		out.Subtotal += sub
	}

	if len(lines) == 0 {
		return out, nil
	}

	out.LoyaltyDiscount = roundHalfUp(float64(out.Subtotal) * buyer.LoyaltyPercent / 100.0)
	out.DeliveryFee = policy.FeeFor(out.Subtotal)
	out.GrandTotal = out.Subtotal - out.LoyaltyDiscount + out.DeliveryFee
	return out, nil
}

// ValidateOrder returns one violation per cart line that blocks submission.
// Approved wholesale buyers must meet each product's minimum order quantity;
// any other buyer only needs a positive quantity. An empty result means every
// line passed (it says nothing about the cart being non-empty; see
// IsOrderValid).
func ValidateOrder(lines []CartLine, buyer BuyerContext) []LineViolation {
	var violations []LineViolation
	for i, line := range lines {
		min := 1
		if buyer.WholesaleUnlocked() {
			min = line.Product.MinOrderQuantity
			if min <= 0 {
				min = 1
			}
		}
		if line.Quantity < min {
			violations = append(violations, LineViolation{
				Index:       i,
				ProductID:   line.Product.ID,
				Quantity:    line.Quantity,
				MinRequired: min,
				Reason:      "quantity below minimum order quantity",
			})
		}
	}
	return violations
}

// IsOrderValid reports whether a cart may be submitted: non-empty, with every
// line meeting the buyer's applicable minimum quantity.
func IsOrderValid(lines []CartLine, buyer BuyerContext) bool {
	if len(lines) == 0 {
		return false
	}
	return len(ValidateOrder(lines, buyer)) == 0
}

// roundHalfUp rounds to the nearest minor unit; inputs are non-negative so
// math.Round's half-away-from-zero is half-up here.
func roundHalfUp(v float64) int64 {
	return int64(math.Round(v))
}
