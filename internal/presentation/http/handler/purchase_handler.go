package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahavirtraders/flowtrack/internal/application/service"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/request"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/response"
)

// PurchaseHandler handles purchase-related HTTP requests
type PurchaseHandler struct {
	purchaseService *service.PurchaseService
	loc             *time.Location
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService *service.PurchaseService, loc *time.Location) *PurchaseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PurchaseHandler{purchaseService: purchaseService, loc: loc}
}

// List handles listing purchases
// @Summary List Purchases
// @Tags purchases
// @Security BearerAuth
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Param supplier query string false "Supplier"
// @Success 200 {object} response.APIResponse
// @Router /purchases [get]
func (h *PurchaseHandler) List(c *gin.Context) {
	var filter request.PurchaseFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	dr, err := parseDayRange(filter.From, filter.To, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.purchaseService.ListPurchases(c.Request.Context(), &repository.PurchaseFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
		Supplier:   filter.Supplier,
		Range:      dr,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Purchases retrieved successfully", result)
}

// Create records a purchase and restocks (or creates) the product
// @Summary Record Purchase
// @Tags purchases
// @Security BearerAuth
// @Param Idempotency-Key header string false "Retry key"
// @Param request body request.RecordPurchaseRequest true "Purchase data"
// @Success 201 {object} response.APIResponse
// @Router /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req request.RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.purchaseService.RecordPurchase(c.Request.Context(), &service.RecordPurchaseInput{
		ProductName:   req.ProductName,
		Category:      req.Category,
		Supplier:      req.Supplier,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice.Minor(),
		RetailPrice:   req.RetailPrice.Minor(),
		PurchasedAt:   req.PurchasedAt,
		RecordedBy:    GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Purchase recorded successfully", output)
}

// Get handles getting a purchase by ID
// @Summary Get Purchase
// @Tags purchases
// @Security BearerAuth
// @Param id path string true "Purchase ID"
// @Success 200 {object} response.APIResponse
// @Router /purchases/{id} [get]
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id", "purchase")
	if err != nil {
		response.Error(c, err)
		return
	}
	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Purchase retrieved successfully", purchase)
}
