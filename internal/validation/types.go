package validation

// Delivery policy names accepted on quote/checkout requests.
const (
	PolicyFlatFee           = "flat_fee"
	PolicyFreeOverThreshold = "free_over_threshold"
)

// LineInput is a single cart line as submitted by the storefront.
type LineInput struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,min=1"`
}

// QuoteRequest is the payload for POST /quote. BuyerID is optional: an
// anonymous cart is priced as a guest.
type QuoteRequest struct {
	BuyerID        string      `json:"buyer_id,omitempty"`
	Lines          []LineInput `json:"lines" validate:"required,min=1,dive"`
	DeliveryPolicy string      `json:"delivery_policy" validate:"required,oneof=flat_fee free_over_threshold"`
}

// CheckoutRequest is the payload for POST /checkout. The order total is
// always computed server-side; clients never submit prices.
type CheckoutRequest struct {
	BuyerID        string                 `json:"buyer_id,omitempty"`
	Lines          []LineInput            `json:"lines" validate:"required,min=1,dive"`
	DeliveryPolicy string                 `json:"delivery_policy" validate:"required,oneof=flat_fee free_over_threshold"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"` // optional free-form metadata
}
