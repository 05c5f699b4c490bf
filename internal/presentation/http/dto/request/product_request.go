package request

import "github.com/mahavirtraders/flowtrack/pkg/money"

// CreateProductRequest represents a product creation request. Prices are
// decimal amounts, e.g. 350 or "350.50".
type CreateProductRequest struct {
	Name          string       `json:"name" binding:"required,min=1,max=255"`
	Category      string       `json:"category" binding:"omitempty,max=100"`
	PurchasePrice money.Amount `json:"purchase_price"`
	RetailPrice   money.Amount `json:"retail_price"`
	Quantity      int          `json:"quantity" binding:"min=0"`
	MinStock      int          `json:"min_stock" binding:"min=0"`
	MaxStock      int          `json:"max_stock" binding:"min=0"`
	Notes         *string      `json:"notes"`
}

// UpdateProductRequest represents a product update request. Stock levels
// change through purchases, sales and adjustments only.
type UpdateProductRequest struct {
	Name          *string       `json:"name" binding:"omitempty,min=1,max=255"`
	Category      *string       `json:"category" binding:"omitempty,max=100"`
	PurchasePrice *money.Amount `json:"purchase_price"`
	RetailPrice   *money.Amount `json:"retail_price"`
	MinStock      *int          `json:"min_stock" binding:"omitempty,min=0"`
	MaxStock      *int          `json:"max_stock" binding:"omitempty,min=0"`
	Notes         *string       `json:"notes"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	LowStock  bool   `form:"low_stock"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// AdjustStockRequest corrects a product's quantity by a signed delta
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required,max=255"`
}
