package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/application/service"
	"github.com/mahavirtraders/flowtrack/internal/domain/enum"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/request"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/response"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
)

// LedgerHandler handles attendance, expenses and day closing
type LedgerHandler struct {
	attendanceService *service.AttendanceService
	expenseService    *service.ExpenseService
	closingService    *service.DayClosingService
	loc               *time.Location
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(
	attendanceService *service.AttendanceService,
	expenseService *service.ExpenseService,
	closingService *service.DayClosingService,
	loc *time.Location,
) *LedgerHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerHandler{
		attendanceService: attendanceService,
		expenseService:    expenseService,
		closingService:    closingService,
		loc:               loc,
	}
}

// MarkAttendance records a staff member's day
// @Summary Mark attendance
// @Tags attendance
// @Security BearerAuth
// @Param request body request.MarkAttendanceRequest true "Attendance"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse "Already marked for that day"
// @Router /attendance [post]
func (h *LedgerHandler) MarkAttendance(c *gin.Context) {
	var req request.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	status, err := enum.ParseAttendanceStatus(req.Status)
	if err != nil {
		response.ValidationError(c, []apperror.FieldError{{Field: "status", Message: "must be present, absent, half_day or leave"}})
		return
	}

	record, err := h.attendanceService.MarkAttendance(c.Request.Context(), &service.MarkAttendanceInput{
		UserID:   req.UserID,
		Date:     req.Date,
		Status:   status,
		Note:     req.Note,
		MarkedBy: GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Attendance marked", record)
}

// CheckOut stamps the check-out time
// @Summary Check out
// @Tags attendance
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.APIResponse
// @Router /attendance/{id}/check-out [post]
func (h *LedgerHandler) CheckOut(c *gin.Context) {
	id, err := parseID(c, "id", "attendance")
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.attendanceService.CheckOut(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Checked out", record)
}

// ListAttendance lists attendance records
// @Summary List attendance
// @Tags attendance
// @Security BearerAuth
// @Param user_id query string false "Staff member"
// @Param from_date query string false "YYYY-MM-DD"
// @Param to_date query string false "YYYY-MM-DD"
// @Success 200 {object} response.APIResponse
// @Router /attendance [get]
func (h *LedgerHandler) ListAttendance(c *gin.Context) {
	var filter request.AttendanceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	for _, d := range []string{filter.FromDate, filter.ToDate} {
		if d == "" {
			continue
		}
		if _, err := parseDay(d, h.loc); err != nil {
			response.Error(c, err)
			return
		}
	}

	params := &repository.AttendanceFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	if filter.UserID != "" {
		userID, err := uuid.Parse(filter.UserID)
		if err != nil {
			response.BadRequest(c, "Invalid user ID")
			return
		}
		params.UserID = &userID
	}

	result, err := h.attendanceService.ListAttendance(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Attendance retrieved successfully", result)
}

// RecordExpense records money paid out of the till
// @Summary Record expense
// @Tags expenses
// @Security BearerAuth
// @Param request body request.RecordExpenseRequest true "Expense"
// @Success 201 {object} response.APIResponse
// @Router /expenses [post]
func (h *LedgerHandler) RecordExpense(c *gin.Context) {
	var req request.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	expense, err := h.expenseService.RecordExpense(c.Request.Context(), &service.RecordExpenseInput{
		Amount:      req.Amount.Minor(),
		Category:    req.Category,
		Description: req.Description,
		SpentAt:     req.SpentAt,
		RecordedBy:  GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Expense recorded", expense)
}

// ListExpenses lists expenses
// @Summary List expenses
// @Tags expenses
// @Security BearerAuth
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Param category query string false "Category"
// @Success 200 {object} response.APIResponse
// @Router /expenses [get]
func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	var filter request.ExpenseFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	dr, err := parseDayRange(filter.From, filter.To, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.expenseService.ListExpenses(c.Request.Context(), &repository.ExpenseFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Category:   filter.Category,
		Range:      dr,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Expenses retrieved successfully", result)
}

func closeDayInput(c *gin.Context, req *request.CloseDayRequest) *service.CloseDayInput {
	input := &service.CloseDayInput{
		BusinessDate: req.BusinessDate,
		CountedCash:  req.CountedCash.Minor(),
		Note:         req.Note,
		ClosedBy:     GetUserID(c),
	}
	if req.OpeningCash != nil {
		v := req.OpeningCash.Minor()
		input.OpeningCash = &v
	}
	return input
}

// PreviewClosing computes expected cash and variance without saving
// @Summary Preview day closing
// @Tags day-closing
// @Security BearerAuth
// @Param request body request.CloseDayRequest true "Counted cash"
// @Success 200 {object} response.APIResponse
// @Router /day-closings/preview [post]
func (h *LedgerHandler) PreviewClosing(c *gin.Context) {
	var req request.CloseDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	closing, err := h.closingService.Preview(c.Request.Context(), closeDayInput(c, &req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Day closing preview", closing)
}

// CloseDay saves the day's closing. A day closes once.
// @Summary Close day
// @Tags day-closing
// @Security BearerAuth
// @Param request body request.CloseDayRequest true "Counted cash"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse "Day already closed"
// @Router /day-closings [post]
func (h *LedgerHandler) CloseDay(c *gin.Context) {
	var req request.CloseDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	closing, err := h.closingService.CloseDay(c.Request.Context(), closeDayInput(c, &req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Day closed", closing)
}

// GetClosing returns the closing for a business date
// @Summary Get day closing
// @Tags day-closing
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} response.APIResponse
// @Router /day-closings/{date} [get]
func (h *LedgerHandler) GetClosing(c *gin.Context) {
	date := c.Param("date")
	if _, err := parseDay(date, h.loc); err != nil {
		response.Error(c, err)
		return
	}
	closing, err := h.closingService.GetClosing(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Day closing retrieved", closing)
}

// ListClosings lists day closings, newest first
// @Summary List day closings
// @Tags day-closing
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /day-closings [get]
func (h *LedgerHandler) ListClosings(c *gin.Context) {
	var q request.PageRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	result, err := h.closingService.ListClosings(c.Request.Context(), pageParams(q.Page, q.PerPage))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Day closings retrieved successfully", result)
}
