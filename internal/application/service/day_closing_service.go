package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// DayClosingService produces end-of-day cash summaries
type DayClosingService struct {
	closingRepo repository.DayClosingRepository
	saleRepo    repository.SaleRepository
	expenseRepo repository.ExpenseRepository
	publisher   events.Publisher
	loc         *time.Location
	now         func() time.Time
}

// NewDayClosingService creates a new day closing service
func NewDayClosingService(
	closingRepo repository.DayClosingRepository,
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
	publisher events.Publisher,
	loc *time.Location,
) *DayClosingService {
	if loc == nil {
		loc = time.UTC
	}
	return &DayClosingService{
		closingRepo: closingRepo,
		saleRepo:    saleRepo,
		expenseRepo: expenseRepo,
		publisher:   publisher,
		loc:         loc,
		now:         time.Now,
	}
}

// CloseDayInput represents the close day input. Amounts are cents. When
// OpeningCash is nil the previous closing's counted cash carries over.
type CloseDayInput struct {
	BusinessDate string
	OpeningCash  *int64
	CountedCash  int64
	Note         string
	ClosedBy     *uuid.UUID
}

// Preview computes the closing figures for a date without storing them.
func (s *DayClosingService) Preview(ctx context.Context, input *CloseDayInput) (*entity.DayClosing, error) {
	date, day, err := s.businessDay(input.BusinessDate)
	if err != nil {
		return nil, err
	}
	if input.CountedCash < 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "counted_cash", Message: "must not be negative"}})
	}

	sales, err := s.saleRepo.ListInRange(ctx, DayRange(day, s.loc))
	if err != nil {
		return nil, asAppError(err)
	}
	expenses, err := s.expenseRepo.SumInRange(ctx, DayRange(day, s.loc))
	if err != nil {
		return nil, asAppError(err)
	}

	var opening int64
	if input.OpeningCash != nil {
		opening = *input.OpeningCash
	} else {
		prev, err := s.closingRepo.GetLatestBefore(ctx, date)
		if err != nil {
			return nil, asAppError(err)
		}
		if prev != nil {
			opening = prev.CountedCash
		}
	}

	closing := &entity.DayClosing{
		BusinessDate: date,
		SalesCount:   len(sales),
		ExpenseTotal: expenses,
		OpeningCash:  opening,
		CountedCash:  input.CountedCash,
		Note:         strings.TrimSpace(input.Note),
		ClosedBy:     input.ClosedBy,
		ClosedAt:     s.now(),
	}
	for i := range sales {
		closing.SalesTotal += sales[i].GrandTotal
	}
	closing.ExpectedCash = closing.OpeningCash + closing.SalesTotal - closing.ExpenseTotal
	closing.Variance = closing.CountedCash - closing.ExpectedCash
	return closing, nil
}

// CloseDay stores the closing for a date. Each date can be closed once.
func (s *DayClosingService) CloseDay(ctx context.Context, input *CloseDayInput) (*entity.DayClosing, error) {
	closing, err := s.Preview(ctx, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.closingRepo.GetByDate(ctx, closing.BusinessDate)
	if err != nil {
		return nil, asAppError(err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Day " + closing.BusinessDate + " is already closed")
	}

	if err := s.closingRepo.Create(ctx, closing); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError("Day " + closing.BusinessDate + " is already closed")
		}
		return nil, asAppError(err)
	}

	s.publisher.Publish(ctx, events.NewEvent(events.CollectionDayClosings, events.ActionCreated, closing.ID.String(), closing))
	return closing, nil
}

// GetClosing returns the closing for a date
func (s *DayClosingService) GetClosing(ctx context.Context, businessDate string) (*entity.DayClosing, error) {
	closing, err := s.closingRepo.GetByDate(ctx, businessDate)
	if err != nil {
		return nil, asAppError(err)
	}
	if closing == nil {
		return nil, apperror.NewNotFoundError("Day closing")
	}
	return closing, nil
}

// ListClosings lists closings, newest first
func (s *DayClosingService) ListClosings(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.DayClosing], error) {
	params.Validate()
	closings, total, err := s.closingRepo.List(ctx, params)
	if err != nil {
		return nil, asAppError(err)
	}
	return pagination.NewPaginatedResult(closings, params, total), nil
}

func (s *DayClosingService) businessDay(value string) (string, time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		day := StartOfDay(s.now(), s.loc)
		return day.Format(businessDateLayout), day, nil
	}
	day, err := time.ParseInLocation(businessDateLayout, value, s.loc)
	if err != nil {
		return "", time.Time{}, apperror.NewValidationError([]apperror.FieldError{{Field: "business_date", Message: "must be YYYY-MM-DD"}})
	}
	return value, day, nil
}
