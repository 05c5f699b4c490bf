package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/pkg/money"
	"gorm.io/gorm"
)

// Expense is a cash outflow from the shop.
type Expense struct {
	ID          uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	Amount      int64      `gorm:"not null" json:"-"` // Stored in cents
	Category    string     `gorm:"size:100;index" json:"category"`
	Description string     `gorm:"size:500" json:"description"`
	SpentAt     time.Time  `gorm:"not null;index" json:"spent_at"`
	RecordedBy  *uuid.UUID `gorm:"size:36" json:"recorded_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new expense
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (e Expense) MarshalJSON() ([]byte, error) {
	type Alias Expense
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(e),
		Amount: money.ToFloat(e.Amount),
	})
}
