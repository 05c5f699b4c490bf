package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// ProductRepository defines the interface for product catalog operations.
// Quantity only moves through the Apply*/Atomic* methods.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	// GetByName finds a product by exact name
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	// GetByNameForUpdate finds a product by exact name and locks the row
	// until the surrounding transaction ends
	GetByNameForUpdate(ctx context.Context, name string) (*entity.Product, error)
	// UpdateDetails saves every field except quantity
	UpdateDetails(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// ListAll returns the whole catalog (used by reporting)
	ListAll(ctx context.Context) ([]entity.Product, error)
	GetLowStock(ctx context.Context) ([]entity.Product, error)
	// AtomicDecrementBatch decrements stock for several products in one
	// transaction. If any product is missing or short, nothing is applied and
	// the offending IDs are returned.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) (failedIDs []uuid.UUID, err error)
	// ApplyPurchase adds quantity and overwrites both prices in one statement
	ApplyPurchase(ctx context.Context, id uuid.UUID, quantity int, purchasePrice, retailPrice int64) error
	// ApplyDelta changes stock by delta, refusing to go below zero.
	// Returns false when the product is missing or the result would be negative.
	ApplyDelta(ctx context.Context, id uuid.UUID, delta int) (bool, error)
	CreateAdjustment(ctx context.Context, adjustment *entity.StockAdjustment) error
	ListAdjustments(ctx context.Context, productID uuid.UUID) ([]entity.StockAdjustment, error)
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Category   string
	LowStock   bool
	SortBy     string
	SortOrder  string
}
