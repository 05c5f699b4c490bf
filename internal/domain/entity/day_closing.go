package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/pkg/money"
	"gorm.io/gorm"
)

// DayClosing is the end-of-day cash summary for one business date.
type DayClosing struct {
	ID           uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	BusinessDate string     `gorm:"size:10;not null;uniqueIndex" json:"business_date"` // YYYY-MM-DD in store time
	SalesCount   int        `gorm:"default:0" json:"sales_count"`
	SalesTotal   int64      `gorm:"default:0" json:"-"` // Stored in cents
	ExpenseTotal int64      `gorm:"default:0" json:"-"`
	OpeningCash  int64      `gorm:"default:0" json:"-"`
	ExpectedCash int64      `gorm:"default:0" json:"-"`
	CountedCash  int64      `gorm:"default:0" json:"-"`
	Variance     int64      `gorm:"default:0" json:"-"`
	Note         string     `gorm:"size:500" json:"note,omitempty"`
	ClosedBy     *uuid.UUID `gorm:"size:36" json:"closed_by,omitempty"`
	ClosedAt     time.Time  `gorm:"not null" json:"closed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new day closing
func (d *DayClosing) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DayClosing model
func (DayClosing) TableName() string {
	return "day_closings"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (d DayClosing) MarshalJSON() ([]byte, error) {
	type Alias DayClosing
	return json.Marshal(&struct {
		Alias
		SalesTotal   float64 `json:"sales_total"`
		ExpenseTotal float64 `json:"expense_total"`
		OpeningCash  float64 `json:"opening_cash"`
		ExpectedCash float64 `json:"expected_cash"`
		CountedCash  float64 `json:"counted_cash"`
		Variance     float64 `json:"variance"`
	}{
		Alias:        Alias(d),
		SalesTotal:   money.ToFloat(d.SalesTotal),
		ExpenseTotal: money.ToFloat(d.ExpenseTotal),
		OpeningCash:  money.ToFloat(d.OpeningCash),
		ExpectedCash: money.ToFloat(d.ExpectedCash),
		CountedCash:  money.ToFloat(d.CountedCash),
		Variance:     money.ToFloat(d.Variance),
	})
}
