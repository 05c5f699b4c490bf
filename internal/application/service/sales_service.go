package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// ReceiptSink takes finalized sales for printing. Submit must not block the
// checkout.
type ReceiptSink interface {
	Submit(sale *entity.Sale)
}

// SalesService finalizes carts into invoices and serves the sales ledger.
type SalesService struct {
	carts      repository.CartStore
	guard      repository.FinalizeGuard
	transactor repository.Transactor
	saleRepo   repository.SaleRepository
	sequences  repository.InvoiceSequenceRepository
	stock      *StockService
	receipts   ReceiptSink
	publisher  events.Publisher
	settings   InvoiceSettings
	now        func() time.Time
}

// NewSalesService creates a new sales service
func NewSalesService(
	carts repository.CartStore,
	guard repository.FinalizeGuard,
	transactor repository.Transactor,
	saleRepo repository.SaleRepository,
	sequences repository.InvoiceSequenceRepository,
	stock *StockService,
	receipts ReceiptSink,
	publisher events.Publisher,
	settings InvoiceSettings,
) *SalesService {
	return &SalesService{
		carts:      carts,
		guard:      guard,
		transactor: transactor,
		saleRepo:   saleRepo,
		sequences:  sequences,
		stock:      stock,
		receipts:   receipts,
		publisher:  publisher,
		settings:   settings.withDefaults(),
		now:        time.Now,
	}
}

// FinalizeInput represents the checkout input
type FinalizeInput struct {
	CustomerName string
	CashierID    *uuid.UUID
}

// Finalize turns the session's cart into a persisted sale.
//
// At most one finalize runs per session; a second one is refused with a
// conflict rather than queued. An empty cart is refused, and so is a cart
// holding more of a product than is in stock (a conflict naming the items).
// The invoice number, the sale with its items and the stock decrement commit
// together. Once the guard is held the work is detached from ctx, so a client
// that disconnects does not roll back a checkout in progress. On any failure
// the cart and its charges are left as they were so the cashier can retry. On
// success only the sold lines and billed charges leave the cart; anything
// added meanwhile stays.
func (s *SalesService) Finalize(ctx context.Context, session string, input *FinalizeInput) (*entity.Sale, error) {
	release, err := s.guard.Acquire(ctx, session)
	if errors.Is(err, repository.ErrLockHeld) {
		return nil, apperror.NewConflictError("A checkout is already in progress for this session")
	}
	if err != nil {
		return nil, asAppError(fmt.Errorf("acquire finalize guard: %w", err))
	}
	defer release()
	ctx = context.WithoutCancel(ctx)

	cart, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, asAppError(err)
	}
	if cart.IsEmpty() {
		return nil, apperror.NewBadRequestError("Cart is empty")
	}

	sale := BuildSale(cart, input.CustomerName, s.now(), s.settings)
	sale.CashierID = input.CashierID
	year := sale.SoldAt.Year()

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		seq, err := s.sequences.Next(ctx, SequenceName(year))
		if err != nil {
			return fmt.Errorf("next invoice number: %w", err)
		}
		sale.InvoiceNo = FormatInvoiceNo(s.settings.Prefix, year, seq)

		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		return s.stock.OnSaleCompleted(ctx, sale)
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.publisher.Publish(ctx, events.NewEvent(events.CollectionSales, events.ActionCreated, sale.ID.String(), sale))
	ids := make([]uuid.UUID, 0, len(sale.Items))
	for id := range saleDeltas(sale) {
		ids = append(ids, id)
	}
	s.stock.NotifyChanged(ctx, ids...)

	s.receipts.Submit(sale)

	if _, err := s.carts.Update(ctx, session, func(c *entity.Cart) error {
		c.Settle(cart)
		return nil
	}); err != nil {
		log.Printf("[sales] %s saved but cart %s was not cleared: %v", sale.InvoiceNo, session, err)
	}

	return sale, nil
}

// GetSale retrieves a sale by ID
func (s *SalesService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asAppError(err)
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// GetByInvoiceNo retrieves a sale by its invoice number
func (s *SalesService) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		return nil, asAppError(err)
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with filtering
func (s *SalesService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, asAppError(err)
	}
	return pagination.NewPaginatedResult(sales, params.Pagination, total), nil
}

// Reprint submits an existing sale's receipt again.
func (s *SalesService) Reprint(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	s.receipts.Submit(sale)
	return sale, nil
}
