package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/pkg/money"
	"gorm.io/gorm"
)

// Purchase records one inward stock movement. ProductID is the catalog entry
// it was reconciled against, which CreatedProduct marks as new.
type Purchase struct {
	ID             uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	ProductID      uuid.UUID  `gorm:"size:36;not null;index" json:"product_id"`
	ProductName    string     `gorm:"size:255;not null;index" json:"product_name"`
	Category       string     `gorm:"size:100" json:"category"`
	Supplier       string     `gorm:"size:255;index" json:"supplier"`
	Quantity       int        `gorm:"not null" json:"quantity"`
	PurchasePrice  int64      `gorm:"not null" json:"-"` // Stored in cents
	RetailPrice    int64      `gorm:"not null" json:"-"` // Stored in cents
	CreatedProduct bool       `gorm:"default:false" json:"created_product"`
	PurchasedAt    time.Time  `gorm:"not null;index" json:"purchased_at"`
	RecordedBy     *uuid.UUID `gorm:"size:36" json:"recorded_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new purchase
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Purchase model
func (Purchase) TableName() string {
	return "purchases"
}

// TotalCost returns quantity x purchase price in cents.
func (p *Purchase) TotalCost() int64 {
	return int64(p.Quantity) * p.PurchasePrice
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Purchase) MarshalJSON() ([]byte, error) {
	type Alias Purchase
	return json.Marshal(&struct {
		Alias
		PurchasePrice float64 `json:"purchase_price"`
		RetailPrice   float64 `json:"retail_price"`
		TotalCost     float64 `json:"total_cost"`
	}{
		Alias:         Alias(p),
		PurchasePrice: money.ToFloat(p.PurchasePrice),
		RetailPrice:   money.ToFloat(p.RetailPrice),
		TotalCost:     money.ToFloat(p.TotalCost()),
	})
}
