package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mahavirtraders/flowtrack/internal/application/service"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/request"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/response"
)

// maxImportSize caps uploaded product workbooks
const maxImportSize = 10 << 20

// ProductHandler handles catalog and stock HTTP requests
type ProductHandler struct {
	productService *service.ProductService
	stockService   *service.StockService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, stockService *service.StockService) *ProductHandler {
	return &ProductHandler{productService: productService, stockService: stockService}
}

// List handles listing products
// @Summary List Products
// @Tags products
// @Security BearerAuth
// @Param search query string false "Name search"
// @Param category query string false "Category"
// @Param low_stock query bool false "Only products at or below minimum stock"
// @Success 200 {object} response.APIResponse
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), &repository.ProductFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
		Category:   filter.Category,
		LowStock:   filter.LowStock,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", result)
}

// Create handles creating a product
// @Summary Create Product
// @Tags products
// @Security BearerAuth
// @Param request body request.CreateProductRequest true "Product data"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		Name:          req.Name,
		Category:      req.Category,
		PurchasePrice: req.PurchasePrice.Minor(),
		RetailPrice:   req.RetailPrice.Minor(),
		Quantity:      req.Quantity,
		MinStock:      req.MinStock,
		MaxStock:      req.MaxStock,
		Notes:         req.Notes,
		CreatedBy:     GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

// Get handles getting a product by ID
// @Summary Get Product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} response.APIResponse
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id", "product")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product's details
// @Summary Update Product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body request.UpdateProductRequest true "Fields to change"
// @Success 200 {object} response.APIResponse
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id", "product")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateProductInput{
		ID:       id,
		Name:     req.Name,
		Category: req.Category,
		MinStock: req.MinStock,
		MaxStock: req.MaxStock,
		Notes:    req.Notes,
	}
	if req.PurchasePrice != nil {
		v := req.PurchasePrice.Minor()
		input.PurchasePrice = &v
	}
	if req.RetailPrice != nil {
		v := req.RetailPrice.Minor()
		input.RetailPrice = &v
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
// @Summary Delete Product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} response.APIResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id", "product")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product deleted successfully", nil)
}

// GetLowStock lists products at or below their minimum stock
// @Summary Low stock products
// @Tags products
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /products/low-stock [get]
func (h *ProductHandler) GetLowStock(c *gin.Context) {
	products, err := h.productService.GetLowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Low stock products retrieved successfully", products)
}

// Import creates products from an uploaded .xlsx workbook
// @Summary Import Products
// @Tags products
// @Security BearerAuth
// @Accept multipart/form-data
// @Param file formData file true "Workbook with Name, Category, Purchase Price, Retail Price, Quantity, Min Stock, Max Stock"
// @Success 200 {object} response.APIResponse
// @Router /products/import [post]
func (h *ProductHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A workbook must be uploaded in the file field")
		return
	}
	if fileHeader.Size > maxImportSize {
		response.BadRequest(c, "Workbook is larger than 10MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	result, err := h.productService.ImportProducts(c.Request.Context(), file, GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Products imported", result)
}

// Adjust corrects a product's stock by a signed delta
// @Summary Adjust stock
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body request.AdjustStockRequest true "Delta and reason"
// @Success 200 {object} response.APIResponse
// @Router /products/{id}/adjust [post]
func (h *ProductHandler) Adjust(c *gin.Context) {
	id, err := parseID(c, "id", "product")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.stockService.Adjust(c.Request.Context(), &service.AdjustInput{
		ProductID:  id,
		Delta:      req.Delta,
		Reason:     req.Reason,
		AdjustedBy: GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stock adjusted successfully", product)
}

// Adjustments lists a product's manual stock corrections
// @Summary Stock adjustment history
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} response.APIResponse
// @Router /products/{id}/adjustments [get]
func (h *ProductHandler) Adjustments(c *gin.Context) {
	id, err := parseID(c, "id", "product")
	if err != nil {
		response.Error(c, err)
		return
	}

	adjustments, err := h.stockService.ListAdjustments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stock adjustments retrieved successfully", adjustments)
}
