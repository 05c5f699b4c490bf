package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	domainRepo "github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"gorm.io/gorm"
)

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) domainRepo.PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *entity.Purchase) error {
	return conn(ctx, r.db).Create(purchase).Error
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := conn(ctx, r.db).First(&purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &purchase, err
}

func (r *purchaseRepository) List(ctx context.Context, params *domainRepo.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	var purchases []entity.Purchase
	var total int64

	query := conn(ctx, r.db).Model(&entity.Purchase{}).Scopes(DateRangeScope("purchased_at", params.Range))

	if params.Search != "" {
		pattern := likePattern(params.Search)
		query = query.Where("LOWER(product_name) LIKE ? OR LOWER(supplier) LIKE ?", pattern, pattern)
	}

	if params.Supplier != "" {
		query = query.Where("supplier = ?", params.Supplier)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("purchased_at DESC").
		Find(&purchases).Error

	return purchases, total, err
}
