package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// maxPurchaseAttempts bounds retries when two first purchases of the same
// product name race on the unique index.
const maxPurchaseAttempts = 3

// PurchaseService records inward stock movements
type PurchaseService struct {
	purchaseRepo repository.PurchaseRepository
	stock        *StockService
	transactor   repository.Transactor
	publisher    events.Publisher
	now          func() time.Time
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	stock *StockService,
	transactor repository.Transactor,
	publisher events.Publisher,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		stock:        stock,
		transactor:   transactor,
		publisher:    publisher,
		now:          time.Now,
	}
}

// RecordPurchaseInput represents the record purchase input. Prices are cents.
type RecordPurchaseInput struct {
	ProductName   string
	Category      string
	Supplier      string
	Quantity      int
	PurchasePrice int64
	RetailPrice   int64
	PurchasedAt   *time.Time
	RecordedBy    *uuid.UUID
}

// PurchaseOutput is the stored purchase with the product it touched
type PurchaseOutput struct {
	Purchase       *entity.Purchase `json:"purchase"`
	Product        *entity.Product  `json:"product"`
	CreatedProduct bool             `json:"created_product"`
}

func (in *RecordPurchaseInput) validate() error {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(in.ProductName) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "product_name", Message: "is required"})
	}
	if in.Quantity < 1 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "must be at least 1"})
	}
	if in.PurchasePrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "purchase_price", Message: "must not be negative"})
	}
	if in.RetailPrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "retail_price", Message: "must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// RecordPurchase stores a purchase entry and reconciles it into the catalog
// in one transaction. A unique-name collision restarts the whole transaction,
// since Postgres refuses further statements in a transaction after one fails.
func (s *PurchaseService) RecordPurchase(ctx context.Context, input *RecordPurchaseInput) (*PurchaseOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	purchasedAt := s.now()
	if input.PurchasedAt != nil {
		purchasedAt = *input.PurchasedAt
	}

	var out *PurchaseOutput
	var err error
	for attempt := 1; attempt <= maxPurchaseAttempts; attempt++ {
		out, err = s.recordOnce(ctx, input, purchasedAt)
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
		log.Printf("[purchases] name collision on %q, retrying (%d/%d)", input.ProductName, attempt, maxPurchaseAttempts)
	}
	if err != nil {
		return nil, asAppError(err)
	}

	action := events.ActionUpdated
	if out.CreatedProduct {
		action = events.ActionCreated
	}
	s.publisher.Publish(ctx, events.NewEvent(events.CollectionProducts, action, out.Product.ID.String(), out.Product))
	s.publisher.Publish(ctx, events.NewEvent(events.CollectionPurchases, events.ActionCreated, out.Purchase.ID.String(), out.Purchase))

	return out, nil
}

func (s *PurchaseService) recordOnce(ctx context.Context, input *RecordPurchaseInput, purchasedAt time.Time) (*PurchaseOutput, error) {
	entry := &entity.Purchase{
		ProductName:   strings.TrimSpace(input.ProductName),
		Category:      strings.TrimSpace(input.Category),
		Supplier:      strings.TrimSpace(input.Supplier),
		Quantity:      input.Quantity,
		PurchasePrice: input.PurchasePrice,
		RetailPrice:   input.RetailPrice,
		PurchasedAt:   purchasedAt,
		RecordedBy:    input.RecordedBy,
	}

	var out PurchaseOutput
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		result, err := s.stock.OnPurchaseRecorded(ctx, entry)
		if err != nil {
			return err
		}
		if err := s.purchaseRepo.Create(ctx, entry); err != nil {
			return err
		}
		out = PurchaseOutput{Purchase: entry, Product: result.Product, CreatedProduct: result.Created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPurchase retrieves a purchase by ID
func (s *PurchaseService) GetPurchase(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asAppError(err)
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}
	return purchase, nil
}

// ListPurchases lists purchases with filtering
func (s *PurchaseService) ListPurchases(ctx context.Context, params *repository.PurchaseFilterParams) (*pagination.PaginatedResult[entity.Purchase], error) {
	purchases, total, err := s.purchaseRepo.List(ctx, params)
	if err != nil {
		return nil, asAppError(err)
	}
	return pagination.NewPaginatedResult(purchases, params.Pagination, total), nil
}
