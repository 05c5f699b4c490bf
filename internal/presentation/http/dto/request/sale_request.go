package request

import (
	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/pkg/money"
)

// AddCartItemRequest adds one unit of a product to the cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// SetQuantityRequest sets a line's quantity. Values below 1 become 1.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// AdjustQuantityRequest moves a line's quantity by delta
type AdjustQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// SetChargesRequest sets the cart's discount, labour and freight. Blank,
// malformed or negative amounts are taken as zero.
type SetChargesRequest struct {
	Discount money.Amount `json:"discount"`
	Labour   money.Amount `json:"labour"`
	Freight  money.Amount `json:"freight"`
}

// CheckoutRequest finalizes the cart into an invoice
type CheckoutRequest struct {
	CustomerName string `json:"customer_name" binding:"max=255"`
}

// DateRangeRequest is a from/to query in the store's date layout. Both ends
// are inclusive calendar days.
type DateRangeRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// SaleFilterRequest represents sale list parameters
type SaleFilterRequest struct {
	DateRangeRequest
	Search    string `form:"search"`
	CashierID string `form:"cashier_id"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
