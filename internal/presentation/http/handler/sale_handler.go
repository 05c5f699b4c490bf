package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/application/service"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/request"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/response"
)

// SaleHandler handles checkout and the sales ledger
type SaleHandler struct {
	salesService  *service.SalesService
	reportService *service.ReportService
	loc           *time.Location
}

// NewSaleHandler creates a new sale handler. loc is the store timezone used
// to read from/to dates.
func NewSaleHandler(salesService *service.SalesService, reportService *service.ReportService, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{salesService: salesService, reportService: reportService, loc: loc}
}

// Checkout finalizes the cashier's cart into an invoice
// @Summary Checkout
// @Description Persist the cart as a sale, decrement stock and queue the receipt
// @Tags sales
// @Security BearerAuth
// @Param Idempotency-Key header string false "Retry key"
// @Param X-Terminal-ID header string false "Till identifier"
// @Param request body request.CheckoutRequest false "Customer"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse "Cart is empty"
// @Failure 409 {object} response.APIResponse "Checkout in progress or insufficient stock"
// @Router /sales/checkout [post]
func (h *SaleHandler) Checkout(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	sale, err := h.salesService.Finalize(c.Request.Context(), SessionID(c, *userID), &service.FinalizeInput{
		CustomerName: req.CustomerName,
		CashierID:    userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sale completed", sale)
}

// List handles listing sales
// @Summary List Sales
// @Tags sales
// @Security BearerAuth
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Param search query string false "Invoice number or customer"
// @Success 200 {object} response.APIResponse
// @Router /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	dr, err := parseDayRange(filter.From, filter.To, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	params := &repository.SaleFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
		Range:      dr,
	}
	if filter.CashierID != "" {
		cashierID, err := uuid.Parse(filter.CashierID)
		if err != nil {
			response.BadRequest(c, "Invalid cashier ID")
			return
		}
		params.CashierID = &cashierID
	}

	result, err := h.salesService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Sales retrieved successfully", result)
}

// Get handles getting a sale by ID
// @Summary Get Sale
// @Tags sales
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 200 {object} response.APIResponse
// @Router /sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id", "sale")
	if err != nil {
		response.Error(c, err)
		return
	}
	sale, err := h.salesService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}

// GetByInvoice looks a sale up by its invoice number
// @Summary Get Sale by invoice number
// @Tags sales
// @Security BearerAuth
// @Param invoiceNo path string true "Invoice number, e.g. MT-2026-000001"
// @Success 200 {object} response.APIResponse
// @Router /sales/invoice/{invoiceNo} [get]
func (h *SaleHandler) GetByInvoice(c *gin.Context) {
	sale, err := h.salesService.GetByInvoiceNo(c.Request.Context(), c.Param("invoiceNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}

// Reprint queues the receipt again
// @Summary Reprint receipt
// @Tags sales
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 202 {object} response.APIResponse
// @Router /sales/{id}/reprint [post]
func (h *SaleHandler) Reprint(c *gin.Context) {
	id, err := parseID(c, "id", "sale")
	if err != nil {
		response.Error(c, err)
		return
	}
	sale, err := h.salesService.Reprint(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, "Receipt queued for printing", gin.H{
		"id":         sale.ID,
		"invoice_no": sale.InvoiceNo,
	})
}

// Export downloads one invoice as a workbook
// @Summary Export invoice
// @Tags sales
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Sale ID"
// @Success 200 {file} file
// @Router /sales/{id}/export [get]
func (h *SaleHandler) Export(c *gin.Context) {
	id, err := parseID(c, "id", "sale")
	if err != nil {
		response.Error(c, err)
		return
	}
	sale, data, err := h.reportService.ExportInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, sale.InvoiceNo+".xlsx", response.XLSXContentType, data)
}
