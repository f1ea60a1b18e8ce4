package pricing

// Buyer roles as stored on the profile record.
const (
	RoleGeneralPublic  = "general_public"
	RoleWholesaleBuyer = "wholesale_buyer"
	RoleLogistics      = "logistics"
	RoleAdmin          = "admin"
	RoleSuperAdmin     = "super_admin"
)

// Wholesale account approval states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Catalog stock states.
const (
	StockInStock    = "in_stock"
	StockLowStock   = "low_stock"
	StockOutOfStock = "out_of_stock"
)

// WholesaleTier is a bulk price break: the unit price that applies once the
// ordered quantity reaches MinQuantity.
type WholesaleTier struct {
	MinQuantity int   `json:"min_quantity"`
	UnitPrice   int64 `json:"unit_price"`
}

// Product is a fully-resolved catalog record as handed to the engine.
// All money is in minor units (kobo).
type Product struct {
	ID               int             `json:"id"`
	RetailPrice      int64           `json:"retail_price"`
	WholesaleTiers   []WholesaleTier `json:"wholesale_tiers,omitempty"`
	MinOrderQuantity int             `json:"min_order_quantity"`
	StockStatus      string          `json:"stock_status"`
}

// NewProduct builds a validated Product. minOrderQuantity <= 0 defaults to 1.
func NewProduct(id int, retailPrice int64, tiers []WholesaleTier, minOrderQuantity int, stockStatus string) (Product, error) {
	if minOrderQuantity <= 0 {
		minOrderQuantity = 1
	}
	p := Product{
		ID:               id,
		RetailPrice:      retailPrice,
		WholesaleTiers:   tiers,
		MinOrderQuantity: minOrderQuantity,
		StockStatus:      stockStatus,
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Validate checks the invariants the engine relies on. A product with no
// retail price is rejected outright rather than priced at zero.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return &ValidationError{Field: "product.id", Reason: "must be positive"}
	}
	if p.RetailPrice <= 0 {
		return &ValidationError{Field: "product.retail_price", Reason: "missing or non-positive retail price"}
	}
	if p.MinOrderQuantity <= 0 {
		return &ValidationError{Field: "product.min_order_quantity", Reason: "must be at least 1"}
	}
	for _, t := range p.WholesaleTiers {
		if t.MinQuantity <= 0 {
			return &ValidationError{Field: "product.wholesale_tiers", Reason: "tier minimum quantity must be positive"}
		}
		if t.UnitPrice <= 0 {
			return &ValidationError{Field: "product.wholesale_tiers", Reason: "tier unit price must be positive"}
		}
	}
	return nil
}

// BuyerContext is the pricing-relevant slice of a buyer profile.
// LoyaltyPercent is a flat percentage (0-100) off the cart subtotal.
type BuyerContext struct {
	Role           string  `json:"role"`
	ApprovalStatus string  `json:"approval_status"`
	LoyaltyPercent float64 `json:"loyalty_percent"`
}

// Guest is the context applied when no buyer profile exists: retail pricing,
// no loyalty discount.
func Guest() BuyerContext {
	return BuyerContext{Role: RoleGeneralPublic, ApprovalStatus: ApprovalApproved, LoyaltyPercent: 0}
}

// WholesaleUnlocked reports whether tiered pricing applies. Only an approved
// wholesale buyer qualifies; every other role/approval combination pays retail.
func (b BuyerContext) WholesaleUnlocked() bool {
	return b.Role == RoleWholesaleBuyer && b.ApprovalStatus == ApprovalApproved
}

// Validate checks role, approval and loyalty bounds. Out-of-range loyalty is
// an error, not a clamp.
func (b BuyerContext) Validate() error {
	switch b.Role {
	case RoleGeneralPublic, RoleWholesaleBuyer, RoleLogistics, RoleAdmin, RoleSuperAdmin:
	default:
		return &ValidationError{Field: "buyer.role", Reason: "unknown role: " + b.Role}
	}
	switch b.ApprovalStatus {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
	default:
		return &ValidationError{Field: "buyer.approval_status", Reason: "unknown approval status: " + b.ApprovalStatus}
	}
	if b.LoyaltyPercent < 0 || b.LoyaltyPercent > 100 {
		return &ValidationError{Field: "buyer.loyalty_percent", Reason: "must be between 0 and 100"}
	}
	return nil
}

// CartLine pairs a product with an ordered quantity.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LinePrice is the per-line output of a cart computation.
type LinePrice struct {
	ProductID int   `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	Subtotal  int64 `json:"subtotal"`
}

// Breakdown is the full result of pricing a cart. It is computed on demand
// and never persisted by the engine; callers needing a stable total snapshot
// it at order placement.
type Breakdown struct {
	Lines           []LinePrice `json:"lines"`
	Subtotal        int64       `json:"subtotal"`
	LoyaltyDiscount int64       `json:"loyalty_discount"`
	DeliveryFee     int64       `json:"delivery_fee"`
	GrandTotal      int64       `json:"grand_total"`
}

// LineViolation identifies a cart line that blocks order submission.
type LineViolation struct {
	Index       int    `json:"index"`
	ProductID   int    `json:"product_id"`
	Quantity    int    `json:"quantity"`
	MinRequired int    `json:"min_required"`
	Reason      string `json:"reason"`
}
