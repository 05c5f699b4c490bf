package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/money"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
	"github.com/xuri/excelize/v2"
)

// ProductService handles catalog operations. Quantity is set once on manual
// creation; afterwards only StockService moves it.
type ProductService struct {
	productRepo repository.ProductRepository
	publisher   events.Publisher
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, publisher events.Publisher) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// CreateProductInput represents the create product input. Prices are cents.
type CreateProductInput struct {
	Name          string
	Category      string
	PurchasePrice int64
	RetailPrice   int64
	Quantity      int
	MinStock      int
	MaxStock      int
	Notes         *string
	CreatedBy     *uuid.UUID
}

func (in *CreateProductInput) validate() []apperror.FieldError {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if in.PurchasePrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "purchase_price", Message: "must not be negative"})
	}
	if in.RetailPrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "retail_price", Message: "must not be negative"})
	}
	if in.Quantity < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "must not be negative"})
	}
	if in.MinStock < 0 || in.MaxStock < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "min_stock", Message: "stock thresholds must not be negative"})
	}
	return fieldErrors
}

// CreateProduct adds a catalog entry by hand with its opening stock
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if fieldErrors := input.validate(); len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	name := strings.TrimSpace(input.Name)
	existing, err := s.productRepo.GetByName(ctx, name)
	if err != nil {
		return nil, asAppError(err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError(fmt.Sprintf("Product %q already exists", name))
	}

	product := &entity.Product{
		Name:          name,
		Category:      strings.TrimSpace(input.Category),
		PurchasePrice: input.PurchasePrice,
		RetailPrice:   input.RetailPrice,
		Quantity:      input.Quantity,
		MinStock:      input.MinStock,
		MaxStock:      input.MaxStock,
		Notes:         input.Notes,
		CreatedBy:     input.CreatedBy,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError(fmt.Sprintf("Product %q already exists", name))
		}
		return nil, asAppError(err)
	}

	s.publisher.Publish(ctx, events.NewEvent(events.CollectionProducts, events.ActionCreated, product.ID.String(), product))
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asAppError(err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, asAppError(err)
	}
	return pagination.NewPaginatedResult(products, params.Pagination, total), nil
}

// GetLowStock returns every product at or below its minimum stock
func (s *ProductService) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return nil, asAppError(err)
	}
	return products, nil
}

// UpdateProductInput represents the update product input. There is no
// quantity field: stock only moves through sales, purchases and adjustments.
type UpdateProductInput struct {
	ID            uuid.UUID
	Name          *string
	Category      *string
	PurchasePrice *int64
	RetailPrice   *int64
	MinStock      *int
	MaxStock      *int
	Notes         *string
}

// UpdateProduct updates catalog details of a product
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "is required"}})
		}
		if name != product.Name {
			existing, err := s.productRepo.GetByName(ctx, name)
			if err != nil {
				return nil, asAppError(err)
			}
			if existing != nil && existing.ID != product.ID {
				return nil, apperror.NewConflictError(fmt.Sprintf("Product %q already exists", name))
			}
			product.Name = name
		}
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.PurchasePrice != nil {
		if *input.PurchasePrice < 0 {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "purchase_price", Message: "must not be negative"}})
		}
		product.PurchasePrice = *input.PurchasePrice
	}
	if input.RetailPrice != nil {
		if *input.RetailPrice < 0 {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "retail_price", Message: "must not be negative"}})
		}
		product.RetailPrice = *input.RetailPrice
	}
	if input.MinStock != nil {
		product.MinStock = *input.MinStock
	}
	if input.MaxStock != nil {
		product.MaxStock = *input.MaxStock
	}
	if input.Notes != nil {
		product.Notes = input.Notes
	}

	if err := s.productRepo.UpdateDetails(ctx, product); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperror.NewConflictError(fmt.Sprintf("Product %q already exists", product.Name))
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperror.NewNotFoundError("Product")
		}
		return nil, asAppError(err)
	}

	// Re-read so the response carries the stock level as of now
	updated, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.NewEvent(events.CollectionProducts, events.ActionUpdated, updated.ID.String(), updated))
	return updated, nil
}

// DeleteProduct removes a product from the catalog. Past sales keep their
// snapshotted lines.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NewNotFoundError("Product")
		}
		return asAppError(err)
	}
	s.publisher.Publish(ctx, events.NewEvent(events.CollectionProducts, events.ActionDeleted, id.String(), nil))
	return nil
}

// ImportResult summarizes a spreadsheet import
type ImportResult struct {
	Created int                  `json:"created"`
	Skipped []string             `json:"skipped"`
	Errors  []apperror.FieldError `json:"errors"`
}

// importColumns is the header row expected in the first sheet
var importColumns = []string{"Name", "Category", "Purchase Price", "Retail Price", "Quantity", "Min Stock", "Max Stock"}

// ImportProducts creates products from the first sheet of an .xlsx workbook.
// Rows whose name already exists are skipped; malformed rows are reported
// per row and do not stop the import.
func (s *ProductService) ImportProducts(ctx context.Context, r io.Reader, createdBy *uuid.UUID) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewBadRequestError("File is not a valid .xlsx workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, apperror.NewBadRequestError("Workbook has no readable sheet")
	}

	result := &ImportResult{Skipped: []string{}, Errors: []apperror.FieldError{}}
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		rowRef := fmt.Sprintf("row %d", i+1)

		input, err := parseImportRow(row)
		if err != nil {
			result.Errors = append(result.Errors, apperror.FieldError{Field: rowRef, Message: err.Error()})
			continue
		}
		if input == nil {
			continue
		}
		input.CreatedBy = createdBy

		_, err = s.CreateProduct(ctx, input)
		var appErr *apperror.AppError
		switch {
		case err == nil:
			result.Created++
		case errors.As(err, &appErr) && appErr.Code == 409:
			result.Skipped = append(result.Skipped, input.Name)
		case errors.As(err, &appErr) && appErr.Code < 500:
			result.Errors = append(result.Errors, apperror.FieldError{Field: rowRef, Message: appErr.Message})
		default:
			return result, err
		}
	}
	return result, nil
}

func isHeaderRow(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), importColumns[0])
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseImportRow returns nil for a blank row.
func parseImportRow(row []string) (*CreateProductInput, error) {
	name := cell(row, 0)
	if name == "" {
		return nil, nil
	}

	input := &CreateProductInput{Name: name, Category: cell(row, 1)}
	var err error
	if input.PurchasePrice, err = parseImportAmount(cell(row, 2)); err != nil {
		return nil, fmt.Errorf("purchase price: %w", err)
	}
	if input.RetailPrice, err = parseImportAmount(cell(row, 3)); err != nil {
		return nil, fmt.Errorf("retail price: %w", err)
	}
	if input.Quantity, err = parseImportInt(cell(row, 4)); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	if input.MinStock, err = parseImportInt(cell(row, 5)); err != nil {
		return nil, fmt.Errorf("min stock: %w", err)
	}
	if input.MaxStock, err = parseImportInt(cell(row, 6)); err != nil {
		return nil, fmt.Errorf("max stock: %w", err)
	}
	return input, nil
}

func parseImportAmount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return money.Parse(s)
}

func parseImportInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
