package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	domainRepo "github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the sale and its items. Gorm writes the association in the
// same statement batch, so both land or neither does inside a transaction.
func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return translateWriteError(conn(ctx, r.db).Create(sale).Error, "create sale")
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).
		Preload("Items", preloadItems).
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).
		Preload("Items", preloadItems).
		First(&sale, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := conn(ctx, r.db).Model(&entity.Sale{}).Scopes(DateRangeScope("sold_at", params.Range))

	if params.Search != "" {
		pattern := likePattern(params.Search)
		query = query.Where("LOWER(invoice_no) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}

	if params.CashierID != nil {
		query = query.Where("cashier_id = ?", *params.CashierID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Items", preloadItems).
		Order("sold_at DESC").
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) ListInRange(ctx context.Context, dr domainRepo.DateRange) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := conn(ctx, r.db).
		Scopes(DateRangeScope("sold_at", dr)).
		Preload("Items", preloadItems).
		Order("sold_at ASC").
		Find(&sales).Error
	return sales, err
}

type invoiceSequenceRepository struct {
	db *gorm.DB
}

// NewInvoiceSequenceRepository creates a counter-backed invoice numberer
func NewInvoiceSequenceRepository(db *gorm.DB) domainRepo.InvoiceSequenceRepository {
	return &invoiceSequenceRepository{db: db}
}

// Next makes sure the counter row exists, locks it and bumps it. Two
// finalizes in different sessions serialize on the row lock; a rolled-back
// finalize gives its number back.
func (r *invoiceSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		seed := entity.InvoiceSequence{Name: name}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		var seq entity.InvoiceSequence
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "name = ?", name).Error; err != nil {
			return err
		}

		seq.Value++
		if err := tx.Model(&seq).Update("value", seq.Value).Error; err != nil {
			return err
		}
		value = seq.Value
		return nil
	})
	return value, err
}
