package repository

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	domainRepo "github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errInsufficientStock rolls back a batch decrement without surfacing as a failure
var errInsufficientStock = errors.New("insufficient stock")

var productSortColumns = map[string]bool{
	"name":           true,
	"category":       true,
	"quantity":       true,
	"retail_price":   true,
	"purchase_price": true,
	"created_at":     true,
	"updated_at":     true,
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return translateWriteError(conn(ctx, r.db).Create(product).Error, "create product")
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := conn(ctx, r.db).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).First(&product, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByNameForUpdate takes a row lock (SELECT ... FOR UPDATE). It only holds
// when called inside a transaction.
func (r *productRepository) GetByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// UpdateDetails saves everything except quantity, which would otherwise race
// with concurrent stock movements.
func (r *productRepository) UpdateDetails(ctx context.Context, product *entity.Product) error {
	result := conn(ctx, r.db).Model(product).
		Select("name", "category", "purchase_price", "retail_price", "min_stock", "max_stock", "notes").
		Updates(product)
	if result.Error != nil {
		return translateWriteError(result.Error, "update product")
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&entity.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := conn(ctx, r.db).Model(&entity.Product{})

	if params.Search != "" {
		pattern := likePattern(params.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.LowStock {
		query = query.Where("quantity <= min_stock")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order(orderBy(params.SortBy, params.SortOrder, productSortColumns, "created_at")).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) ListAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := conn(ctx, r.db).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := conn(ctx, r.db).
		Where("quantity <= min_stock").
		Order("quantity ASC, name ASC").
		Find(&products).Error
	return products, err
}

// AtomicDecrementBatch decrements stock for several products in a single
// transaction (a savepoint when one is already open). Each row is guarded by
// quantity >= amount; if any row is short or missing the whole batch rolls
// back and the offending IDs are returned with a nil error. Rows are touched
// in ID order so concurrent batches lock in the same sequence.
func (r *productRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if len(decrements) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(decrements))
	for id := range decrements {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	var failedIDs []uuid.UUID

	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			amount := decrements[id]
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND quantity >= ?", id, amount).
				Update("quantity", gorm.Expr("quantity - ?", amount))

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}

		if len(failedIDs) > 0 {
			return errInsufficientStock
		}
		return nil
	})

	if errors.Is(err, errInsufficientStock) {
		return failedIDs, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// ApplyPurchase adds received stock and overwrites both prices with the
// latest purchase terms.
func (r *productRepository) ApplyPurchase(ctx context.Context, id uuid.UUID, quantity int, purchasePrice, retailPrice int64) error {
	result := conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":       gorm.Expr("quantity + ?", quantity),
			"purchase_price": purchasePrice,
			"retail_price":   retailPrice,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

// ApplyDelta moves stock by delta with a guard so it never goes negative.
func (r *productRepository) ApplyDelta(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *productRepository) CreateAdjustment(ctx context.Context, adjustment *entity.StockAdjustment) error {
	return conn(ctx, r.db).Create(adjustment).Error
}

func (r *productRepository) ListAdjustments(ctx context.Context, productID uuid.UUID) ([]entity.StockAdjustment, error) {
	var adjustments []entity.StockAdjustment
	err := conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&adjustments).Error
	return adjustments, err
}
