package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/pkg/money"
)

// MarkAttendanceRequest records a staff member's attendance for a day.
// Date is YYYY-MM-DD and defaults to today.
type MarkAttendanceRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Date   string    `json:"date"`
	Status string    `json:"status" binding:"required"`
	Note   string    `json:"note" binding:"max=255"`
}

// AttendanceFilterRequest represents attendance list parameters
type AttendanceFilterRequest struct {
	UserID   string `form:"user_id"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// RecordExpenseRequest records money paid out of the till
type RecordExpenseRequest struct {
	Amount      money.Amount `json:"amount"`
	Category    string       `json:"category" binding:"max=100"`
	Description string       `json:"description" binding:"max=500"`
	SpentAt     *time.Time   `json:"spent_at"`
}

// ExpenseFilterRequest represents expense list parameters
type ExpenseFilterRequest struct {
	DateRangeRequest
	Category string `form:"category"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// CloseDayRequest closes (or previews) a business day. A missing opening
// cash carries over the previous day's counted cash.
type CloseDayRequest struct {
	BusinessDate string        `json:"business_date"`
	OpeningCash  *money.Amount `json:"opening_cash"`
	CountedCash  money.Amount  `json:"counted_cash"`
	Note         string        `json:"note" binding:"max=500"`
}

// PageRequest is bare page-based pagination
type PageRequest struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}
