package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mahavirtraders/flowtrack/internal/application/service"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/request"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/response"
)

// ReportHandler serves profit and best-seller reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Summary returns today, this month and all-time figures
// @Summary Dashboard summary
// @Tags reports
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	report, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Summary retrieved successfully", report)
}

// rangeQuery reads inclusive from/to days. to defaults to from.
func (h *ReportHandler) rangeQuery(c *gin.Context) (from, end string, err error) {
	var q request.DateRangeRequest
	if err := c.ShouldBindQuery(&q); err != nil || q.From == "" {
		return "", "", fmt.Errorf("from is required (YYYY-MM-DD)")
	}
	if q.To == "" {
		q.To = q.From
	}
	return q.From, q.To, nil
}

// Range reports totals, profit and best sellers between two days
// @Summary Range report
// @Tags reports
// @Security BearerAuth
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD (defaults to from)"
// @Success 200 {object} response.APIResponse
// @Router /reports/range [get]
func (h *ReportHandler) Range(c *gin.Context) {
	fromStr, toStr, err := h.rangeQuery(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	from, err := h.reportService.ParseReportDate(fromStr)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := h.reportService.ParseReportDate(toStr)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reportService.RangeSummary(c.Request.Context(), from, to.AddDate(0, 0, 1))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Report generated successfully", report)
}

// Export downloads a range report as a workbook
// @Summary Export range report
// @Tags reports
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {file} file
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	fromStr, toStr, err := h.rangeQuery(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	from, err := h.reportService.ParseReportDate(fromStr)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := h.reportService.ParseReportDate(toStr)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.reportService.ExportRange(c.Request.Context(), from, to.AddDate(0, 0, 1))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, fmt.Sprintf("sales-%s-to-%s.xlsx", fromStr, toStr), response.XLSXContentType, data)
}
