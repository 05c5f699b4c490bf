package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/pkg/money"
	"gorm.io/gorm"
)

// WalkInCustomer is used when a sale is finalized without a customer name.
const WalkInCustomer = "Walk-in Customer"

// Sale is a finalized invoice. Amounts are computed once at finalize time and
// the row and its items are never updated afterwards.
type Sale struct {
	ID           uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	InvoiceNo    string     `gorm:"size:50;uniqueIndex;not null" json:"invoice_no"`
	CustomerName string     `gorm:"size:255;not null" json:"customer_name"`
	CashierID    *uuid.UUID `gorm:"size:36;index" json:"cashier_id,omitempty"`
	SubTotal     int64      `gorm:"not null" json:"-"` // Stored in cents
	Discount     int64      `gorm:"default:0" json:"-"`
	Labour       int64      `gorm:"default:0" json:"-"`
	Freight      int64      `gorm:"default:0" json:"-"`
	GrandTotal   int64      `gorm:"not null" json:"-"`
	SoldAt       time.Time  `gorm:"not null;index" json:"sold_at"`
	DisplayDate  string     `gorm:"size:20" json:"display_date"`
	DisplayTime  string     `gorm:"size:20" json:"display_time"`
	CreatedAt    time.Time  `json:"created_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// Charges returns the charge set stored on the sale.
func (s *Sale) Charges() Charges {
	return Charges{Discount: s.Discount, Labour: s.Labour, Freight: s.Freight}
}

// RecomputedTotal derives the grand total from the stored subtotal and
// charges. It always equals GrandTotal for a sale built by the invoice builder.
func (s *Sale) RecomputedTotal() int64 {
	return s.Charges().GrandTotal(s.SubTotal)
}

// TotalQuantity returns the number of units sold.
func (s *Sale) TotalQuantity() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		SubTotal   float64 `json:"sub_total"`
		Discount   float64 `json:"discount"`
		Labour     float64 `json:"labour"`
		Freight    float64 `json:"freight"`
		GrandTotal float64 `json:"grand_total"`
	}{
		Alias:      Alias(s),
		SubTotal:   money.ToFloat(s.SubTotal),
		Discount:   money.ToFloat(s.Discount),
		Labour:     money.ToFloat(s.Labour),
		Freight:    money.ToFloat(s.Freight),
		GrandTotal: money.ToFloat(s.GrandTotal),
	})
}

// SaleItem is a snapshotted cart line on a sale.
type SaleItem struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	SaleID    uuid.UUID `gorm:"size:36;not null;index" json:"sale_id"`
	ProductID uuid.UUID `gorm:"size:36;not null;index" json:"product_id"`
	Position  int       `gorm:"not null" json:"position"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"-"` // retail price at sale time, cents
	UnitCost  int64     `gorm:"default:0" json:"-"` // purchase price at sale time, cents
	LineTotal int64     `gorm:"not null" json:"-"`
}

// BeforeCreate generates a UUID before creating a new sale item
func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{
		Alias:     Alias(i),
		UnitPrice: money.ToFloat(i.UnitPrice),
		LineTotal: money.ToFloat(i.LineTotal),
	})
}

// InvoiceSequence is a named counter used to number invoices.
type InvoiceSequence struct {
	Name      string    `gorm:"size:50;primaryKey"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the table name for the InvoiceSequence model
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}
