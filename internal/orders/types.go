package orders

import (
	"time"

	"github.com/pharmakart/go-pharma-checkout/internal/pricing"
)

// Order statuses
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Line is a single order line with the unit price resolved at checkout.
// Prices are snapshotted, not referenced: catalog prices and tiers may change
// after the order is placed.
type Line struct {
	ProductID int   `dynamodbav:"product_id" json:"product_id"`
	Quantity  int   `dynamodbav:"quantity" json:"quantity"`
	UnitPrice int64 `dynamodbav:"unit_price" json:"unit_price"`
	Subtotal  int64 `dynamodbav:"subtotal" json:"subtotal"`
}

// Order is the item stored in the orders DynamoDB table: the cart as priced
// at submission, plus the fulfillment status machine.
type Order struct {
	OrderID         string    `dynamodbav:"order_id" json:"order_id"` // PK
	BuyerID         string    `dynamodbav:"buyer_id,omitempty" json:"buyer_id,omitempty"`
	BuyerRole       string    `dynamodbav:"buyer_role" json:"buyer_role"`
	Status          string    `dynamodbav:"status" json:"status"` // PENDING | PROCESSING | COMPLETED | FAILED
	Lines           []Line    `dynamodbav:"lines" json:"lines"`
	Subtotal        int64     `dynamodbav:"subtotal" json:"subtotal"`
	LoyaltyDiscount int64     `dynamodbav:"loyalty_discount" json:"loyalty_discount"`
	DeliveryFee     int64     `dynamodbav:"delivery_fee" json:"delivery_fee"`
	GrandTotal      int64     `dynamodbav:"grand_total" json:"grand_total"`
	CreatedAt       time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt       time.Time `dynamodbav:"updated_at" json:"updated_at"`
	Attempts        int       `dynamodbav:"attempts,omitempty" json:"attempts,omitempty"`
}

// Snapshot copies a computed breakdown into the persistable order shape.
func Snapshot(b pricing.Breakdown) ([]Line, int64, int64, int64, int64) {
	lines := make([]Line, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, Line{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return lines, b.Subtotal, b.LoyaltyDiscount, b.DeliveryFee, b.GrandTotal
}
