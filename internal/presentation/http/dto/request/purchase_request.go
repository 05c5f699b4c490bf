package request

import (
	"time"

	"github.com/mahavirtraders/flowtrack/pkg/money"
)

// RecordPurchaseRequest records stock bought from a supplier. A product name
// not yet in the catalog creates the product.
type RecordPurchaseRequest struct {
	ProductName   string       `json:"product_name" binding:"required,min=1,max=255"`
	Category      string       `json:"category" binding:"omitempty,max=100"`
	Supplier      string       `json:"supplier" binding:"omitempty,max=255"`
	Quantity      int          `json:"quantity" binding:"required,min=1"`
	PurchasePrice money.Amount `json:"purchase_price"`
	RetailPrice   money.Amount `json:"retail_price"`
	PurchasedAt   *time.Time   `json:"purchased_at"`
}

// PurchaseFilterRequest represents purchase list parameters
type PurchaseFilterRequest struct {
	DateRangeRequest
	Search   string `form:"search"`
	Supplier string `form:"supplier"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}
