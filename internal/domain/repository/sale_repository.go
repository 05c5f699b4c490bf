package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// SaleRepository defines the interface for finalized sales. Sales are
// append-only; there is no update or delete.
type SaleRepository interface {
	// Create inserts the sale together with its items
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// ListInRange returns every sale with items sold in the range, oldest first
	ListInRange(ctx context.Context, r DateRange) ([]entity.Sale, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Range      DateRange
	CashierID  *uuid.UUID
}

// InvoiceSequenceRepository hands out invoice numbers.
type InvoiceSequenceRepository interface {
	// Next increments the named counter and returns the new value. Inside a
	// transaction the increment rolls back with it.
	Next(ctx context.Context, name string) (int64, error)
}

// DateRange is a half-open time interval [From, To). A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// NewDateRange builds a closed-bounds range.
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: &from, To: &to}
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && !t.Before(*r.To) {
		return false
	}
	return true
}
