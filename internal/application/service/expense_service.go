package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// ExpenseService records cash outflows
type ExpenseService struct {
	expenseRepo repository.ExpenseRepository
	publisher   events.Publisher
	now         func() time.Time
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenseRepo repository.ExpenseRepository, publisher events.Publisher) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// RecordExpenseInput represents the record expense input. Amount is cents.
type RecordExpenseInput struct {
	Amount      int64
	Category    string
	Description string
	SpentAt     *time.Time
	RecordedBy  *uuid.UUID
}

// RecordExpense stores an expense
func (s *ExpenseService) RecordExpense(ctx context.Context, input *RecordExpenseInput) (*entity.Expense, error) {
	var fieldErrors []apperror.FieldError
	if input.Amount <= 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	if strings.TrimSpace(input.Category) == "" && strings.TrimSpace(input.Description) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "description", Message: "category or description is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	spentAt := s.now()
	if input.SpentAt != nil {
		spentAt = *input.SpentAt
	}

	expense := &entity.Expense{
		Amount:      input.Amount,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		SpentAt:     spentAt,
		RecordedBy:  input.RecordedBy,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, asAppError(err)
	}

	s.publisher.Publish(ctx, events.NewEvent(events.CollectionExpenses, events.ActionCreated, expense.ID.String(), expense))
	return expense, nil
}

// ListExpenses lists expenses with filtering
func (s *ExpenseService) ListExpenses(ctx context.Context, params *repository.ExpenseFilterParams) (*pagination.PaginatedResult[entity.Expense], error) {
	params.Pagination.Validate()
	expenses, total, err := s.expenseRepo.List(ctx, params)
	if err != nil {
		return nil, asAppError(err)
	}
	return pagination.NewPaginatedResult(expenses, params.Pagination, total), nil
}
