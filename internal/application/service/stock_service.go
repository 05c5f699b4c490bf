package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
)

// StockService is the only writer of product quantity. Sales take stock out,
// purchases put it back in, and adjustments correct it by hand.
type StockService struct {
	productRepo repository.ProductRepository
	transactor  repository.Transactor
	publisher   events.Publisher
}

// NewStockService creates a new stock service
func NewStockService(
	productRepo repository.ProductRepository,
	transactor repository.Transactor,
	publisher events.Publisher,
) *StockService {
	return &StockService{
		productRepo: productRepo,
		transactor:  transactor,
		publisher:   publisher,
	}
}

// saleDeltas sums sold quantity per product. A cart never has two lines for
// one product, but sale items are summed anyway.
func saleDeltas(sale *entity.Sale) map[uuid.UUID]int {
	deltas := make(map[uuid.UUID]int, len(sale.Items))
	for _, item := range sale.Items {
		deltas[item.ProductID] += item.Quantity
	}
	return deltas
}

// OnSaleCompleted takes every sold line out of stock as one atomic batch. If
// any product is short or gone, nothing is decremented and a conflict naming
// those items is returned. Call it inside the finalize transaction.
func (s *StockService) OnSaleCompleted(ctx context.Context, sale *entity.Sale) error {
	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, saleDeltas(sale))
	if err != nil {
		return apperror.NewInternalError(fmt.Errorf("decrement stock for %s: %w", sale.InvoiceNo, err))
	}
	if len(failedIDs) == 0 {
		return nil
	}

	failed := make(map[uuid.UUID]bool, len(failedIDs))
	for _, id := range failedIDs {
		failed[id] = true
	}
	var names []string
	var fieldErrors []apperror.FieldError
	for _, item := range sale.Items {
		if failed[item.ProductID] {
			names = append(names, item.Name)
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   item.ProductID.String(),
				Message: fmt.Sprintf("not enough stock for %s", item.Name),
			})
			delete(failed, item.ProductID)
		}
	}

	appErr := apperror.NewConflictError("Insufficient stock for: " + strings.Join(names, ", "))
	appErr.Errors = fieldErrors
	return appErr
}

// PurchaseResult is what a purchase did to the catalog.
type PurchaseResult struct {
	Product *entity.Product
	Created bool
}

// OnPurchaseRecorded adds a purchase to stock. The product is looked up by
// exact name under a row lock; when found its quantity goes up and both
// prices take the purchase's values, otherwise a new product is created with
// the purchased quantity. A duplicate-name race surfaces as
// repository.ErrDuplicate so the caller can retry the whole transaction.
func (s *StockService) OnPurchaseRecorded(ctx context.Context, entry *entity.Purchase) (*PurchaseResult, error) {
	var result PurchaseResult

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.GetByNameForUpdate(ctx, entry.ProductName)
		if err != nil {
			return fmt.Errorf("lookup product %q: %w", entry.ProductName, err)
		}

		if product == nil {
			product = &entity.Product{
				Name:          entry.ProductName,
				Category:      entry.Category,
				PurchasePrice: entry.PurchasePrice,
				RetailPrice:   entry.RetailPrice,
				Quantity:      entry.Quantity,
				CreatedBy:     entry.RecordedBy,
			}
			if err := s.productRepo.Create(ctx, product); err != nil {
				return err
			}
			result.Created = true
		} else {
			if err := s.productRepo.ApplyPurchase(ctx, product.ID, entry.Quantity, entry.PurchasePrice, entry.RetailPrice); err != nil {
				return fmt.Errorf("apply purchase to %s: %w", product.ID, err)
			}
			if product, err = s.productRepo.GetByID(ctx, product.ID); err != nil {
				return err
			}
		}

		entry.ProductID = product.ID
		entry.CreatedProduct = result.Created
		result.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AdjustInput is a manual stock correction.
type AdjustInput struct {
	ProductID  uuid.UUID
	Delta      int
	Reason     string
	AdjustedBy *uuid.UUID
}

// Adjust applies a manual correction and records it. Stock never goes below
// zero.
func (s *StockService) Adjust(ctx context.Context, input *AdjustInput) (*entity.Product, error) {
	if input.Delta == 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "delta", Message: "must not be zero"},
		})
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "reason", Message: "is required"},
		})
	}

	var product *entity.Product
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.productRepo.GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NewNotFoundError("Product")
		}

		ok, err := s.productRepo.ApplyDelta(ctx, input.ProductID, input.Delta)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewBadRequestError(fmt.Sprintf("Adjustment would take %s below zero (on hand: %d)", current.Name, current.Quantity))
		}

		if err := s.productRepo.CreateAdjustment(ctx, &entity.StockAdjustment{
			ProductID:   current.ID,
			ProductName: current.Name,
			Delta:       input.Delta,
			Reason:      reason,
			AdjustedBy:  input.AdjustedBy,
		}); err != nil {
			return err
		}

		product, err = s.productRepo.GetByID(ctx, input.ProductID)
		return err
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.NotifyChanged(ctx, product.ID)
	return product, nil
}

// ListAdjustments returns the correction history of a product.
func (s *StockService) ListAdjustments(ctx context.Context, productID uuid.UUID) ([]entity.StockAdjustment, error) {
	return s.productRepo.ListAdjustments(ctx, productID)
}

// NotifyChanged publishes products.updated for each id. Call it after the
// transaction that moved stock has committed.
func (s *StockService) NotifyChanged(ctx context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		s.publisher.Publish(ctx, events.NewEvent(events.CollectionProducts, events.ActionUpdated, id.String(), nil))
	}
}

// asAppError passes application errors through and hides everything else
// behind a generic internal error.
func asAppError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	log.Printf("[service] store failure: %v", err)
	return apperror.NewInternalError(err)
}
