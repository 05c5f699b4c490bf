package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/pkg/money"
	"gorm.io/gorm"
)

// Product is a catalog entry. Quantity is the on-hand stock and only changes
// through stock reconciliation (sales, purchases, adjustments).
type Product struct {
	ID            uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	Name          string     `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Category      string     `gorm:"size:100;index" json:"category"`
	PurchasePrice int64      `gorm:"default:0" json:"-"` // Stored in cents
	RetailPrice   int64      `gorm:"default:0" json:"-"` // Stored in cents
	Quantity      int        `gorm:"default:0" json:"quantity"`
	MinStock      int        `gorm:"default:0" json:"min_stock"`
	MaxStock      int        `gorm:"default:0" json:"max_stock"`
	Notes         *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy     *uuid.UUID `gorm:"size:36" json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether on-hand stock is at or below the minimum.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStock
}

// IsOverStock reports whether on-hand stock exceeds a configured maximum.
func (p *Product) IsOverStock() bool {
	return p.MaxStock > 0 && p.Quantity > p.MaxStock
}

// MarshalJSON converts cents to decimal prices for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		PurchasePrice float64 `json:"purchase_price"`
		RetailPrice   float64 `json:"retail_price"`
		LowStock      bool    `json:"low_stock"`
	}{
		Alias:         Alias(p),
		PurchasePrice: money.ToFloat(p.PurchasePrice),
		RetailPrice:   money.ToFloat(p.RetailPrice),
		LowStock:      p.IsLowStock(),
	})
}

// StockAdjustment records a manual correction to on-hand stock.
type StockAdjustment struct {
	ID          uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	ProductID   uuid.UUID  `gorm:"size:36;not null;index" json:"product_id"`
	ProductName string     `gorm:"size:255;not null" json:"product_name"`
	Delta       int        `gorm:"not null" json:"delta"`
	Reason      string     `gorm:"size:255" json:"reason"`
	AdjustedBy  *uuid.UUID `gorm:"size:36" json:"adjusted_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new adjustment
func (a *StockAdjustment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockAdjustment model
func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}
