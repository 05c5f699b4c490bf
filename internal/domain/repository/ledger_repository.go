package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// AttendanceRepository defines the interface for attendance records
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *entity.Attendance) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Attendance, error)
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*entity.Attendance, error)
	Update(ctx context.Context, attendance *entity.Attendance) error
	List(ctx context.Context, params *AttendanceFilterParams) ([]entity.Attendance, int64, error)
}

// AttendanceFilterParams contains filtering parameters for attendance queries.
// Dates are YYYY-MM-DD strings, inclusive.
type AttendanceFilterParams struct {
	Pagination *pagination.PaginationParams
	UserID     *uuid.UUID
	FromDate   string
	ToDate     string
}

// ExpenseRepository defines the interface for expense records
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	List(ctx context.Context, params *ExpenseFilterParams) ([]entity.Expense, int64, error)
	// SumInRange totals expense amounts spent in the range
	SumInRange(ctx context.Context, r DateRange) (int64, error)
}

// ExpenseFilterParams contains filtering parameters for expense queries
type ExpenseFilterParams struct {
	Pagination *pagination.PaginationParams
	Category   string
	Range      DateRange
}

// DayClosingRepository defines the interface for day-closing summaries
type DayClosingRepository interface {
	Create(ctx context.Context, closing *entity.DayClosing) error
	GetByDate(ctx context.Context, businessDate string) (*entity.DayClosing, error)
	// GetLatestBefore returns the most recent closing before businessDate
	GetLatestBefore(ctx context.Context, businessDate string) (*entity.DayClosing, error)
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.DayClosing, int64, error)
}
