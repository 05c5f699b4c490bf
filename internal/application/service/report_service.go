package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/money"
	"github.com/xuri/excelize/v2"
)

// ReportService loads sales, catalog and expenses and feeds them to Aggregate.
// It never writes.
type ReportService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	expenseRepo repository.ExpenseRepository
	loc         *time.Location
	now         func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	expenseRepo repository.ExpenseRepository,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		expenseRepo: expenseRepo,
		loc:         loc,
		now:         time.Now,
	}
}

// DashboardReport is the landing-page rollup
type DashboardReport struct {
	*SalesSummary
	TodayExpenses int64     `json:"today_expenses"`
	MonthExpenses int64     `json:"month_expenses"`
	LowStockCount int       `json:"low_stock_count"`
	ProductCount  int       `json:"product_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Summary reports today, this month and all-time profit and best sellers
func (s *ReportService) Summary(ctx context.Context) (*DashboardReport, error) {
	now := s.now()

	sales, err := s.saleRepo.ListInRange(ctx, repository.DateRange{})
	if err != nil {
		return nil, asAppError(err)
	}
	catalog, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, asAppError(err)
	}
	todayExpenses, err := s.expenseRepo.SumInRange(ctx, DayRange(now, s.loc))
	if err != nil {
		return nil, asAppError(err)
	}
	monthExpenses, err := s.expenseRepo.SumInRange(ctx, MonthRange(now, s.loc))
	if err != nil {
		return nil, asAppError(err)
	}

	lowStock := 0
	for i := range catalog {
		if catalog[i].IsLowStock() {
			lowStock++
		}
	}

	return &DashboardReport{
		SalesSummary:  Aggregate(sales, catalog, now, s.loc),
		TodayExpenses: todayExpenses,
		MonthExpenses: monthExpenses,
		LowStockCount: lowStock,
		ProductCount:  len(catalog),
		GeneratedAt:   now.In(s.loc),
	}, nil
}

// RangeReport is a rollup of sales and expenses between two instants
type RangeReport struct {
	From                  time.Time     `json:"from"`
	To                    time.Time     `json:"to"`
	SalesCount            int           `json:"sales_count"`
	SalesTotal            int64         `json:"sales_total"`
	GrossProfit           int64         `json:"gross_profit"`
	HistoricalGrossProfit int64         `json:"historical_gross_profit"`
	ExpenseTotal          int64         `json:"expense_total"`
	NetTotal              int64         `json:"net_total"`
	TopItems              []TopItem     `json:"top_items"`
	Sales                 []entity.Sale `json:"-"`
}

// ParseReportDate reads a YYYY-MM-DD date as midnight in the store timezone
func (s *ReportService) ParseReportDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, s.loc)
	if err != nil {
		return time.Time{}, apperror.NewBadRequestError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", value))
	}
	return t, nil
}

// RangeSummary rolls up [from, to). to must be after from.
func (s *ReportService) RangeSummary(ctx context.Context, from, to time.Time) (*RangeReport, error) {
	if !to.After(from) {
		return nil, apperror.NewBadRequestError("Report end must be after its start")
	}
	dr := repository.NewDateRange(from, to)

	sales, err := s.saleRepo.ListInRange(ctx, dr)
	if err != nil {
		return nil, asAppError(err)
	}
	catalog, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, asAppError(err)
	}
	expenses, err := s.expenseRepo.SumInRange(ctx, dr)
	if err != nil {
		return nil, asAppError(err)
	}

	summary := Aggregate(sales, catalog, from, s.loc)
	return &RangeReport{
		From:                  from.In(s.loc),
		To:                    to.In(s.loc),
		SalesCount:            summary.SalesCount,
		SalesTotal:            summary.SalesTotal,
		GrossProfit:           summary.GrossProfit,
		HistoricalGrossProfit: summary.HistoricalGrossProfit,
		ExpenseTotal:          expenses,
		NetTotal:              summary.SalesTotal - expenses,
		TopItems:              summary.TopItems,
		Sales:                 sales,
	}, nil
}

// ExportRange renders a range report as an .xlsx workbook with a Summary
// sheet and one row per sale on a Sales sheet.
func (s *ReportService) ExportRange(ctx context.Context, from, to time.Time) ([]byte, error) {
	report, err := s.RangeSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, asAppError(err)
	}

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, asAppError(err)
	}
	rows := [][]interface{}{
		{"From", report.From.Format("2006-01-02")},
		{"To (exclusive)", report.To.Format("2006-01-02")},
		{"Sales", report.SalesCount},
		{"Sales total", money.ToFloat(report.SalesTotal)},
		{"Expenses", money.ToFloat(report.ExpenseTotal)},
		{"Net", money.ToFloat(report.NetTotal)},
		{"Gross profit (current cost)", money.ToFloat(report.GrossProfit)},
		{"Gross profit (cost at sale)", money.ToFloat(report.HistoricalGrossProfit)},
		{},
		{"Top items", "Quantity"},
	}
	for _, item := range report.TopItems {
		rows = append(rows, []interface{}{item.Name, item.Quantity})
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return nil, asAppError(err)
	}
	_ = f.SetCellStyle(summarySheet, "A1", "A8", bold)
	_ = f.SetColWidth(summarySheet, "A", "A", 30)

	const salesSheet = "Sales"
	if _, err := f.NewSheet(salesSheet); err != nil {
		return nil, asAppError(err)
	}
	saleRows := [][]interface{}{
		{"Invoice", "Date", "Time", "Customer", "Items", "Subtotal", "Discount", "Labour", "Freight", "Grand total"},
	}
	for i := range report.Sales {
		sale := &report.Sales[i]
		saleRows = append(saleRows, []interface{}{
			sale.InvoiceNo,
			sale.DisplayDate,
			sale.DisplayTime,
			sale.CustomerName,
			sale.TotalQuantity(),
			money.ToFloat(sale.SubTotal),
			money.ToFloat(sale.Discount),
			money.ToFloat(sale.Labour),
			money.ToFloat(sale.Freight),
			money.ToFloat(sale.GrandTotal),
		})
	}
	if err := writeRows(f, salesSheet, saleRows); err != nil {
		return nil, asAppError(err)
	}
	_ = f.SetCellStyle(salesSheet, "A1", "J1", bold)
	_ = f.SetColWidth(salesSheet, "A", "D", 18)

	return workbookBytes(f)
}

// ExportInvoice renders one sale as an .xlsx invoice
func (s *ReportService) ExportInvoice(ctx context.Context, id uuid.UUID) (*entity.Sale, []byte, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, asAppError(err)
	}
	if sale == nil {
		return nil, nil, apperror.NewNotFoundError("Sale")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoice"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, nil, asAppError(err)
	}

	rows := [][]interface{}{
		{"Invoice", sale.InvoiceNo},
		{"Date", sale.DisplayDate},
		{"Time", sale.DisplayTime},
		{"Customer", sale.CustomerName},
		{},
		{"#", "Item", "Qty", "Rate", "Amount"},
	}
	for _, item := range sale.Items {
		rows = append(rows, []interface{}{
			item.Position, item.Name, item.Quantity, money.ToFloat(item.UnitPrice), money.ToFloat(item.LineTotal),
		})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"", "", "", "Subtotal", money.ToFloat(sale.SubTotal)},
		[]interface{}{"", "", "", "Discount", money.ToFloat(sale.Discount)},
		[]interface{}{"", "", "", "Labour", money.ToFloat(sale.Labour)},
		[]interface{}{"", "", "", "Freight", money.ToFloat(sale.Freight)},
		[]interface{}{"", "", "", "Grand total", money.ToFloat(sale.GrandTotal)},
	)
	if err := writeRows(f, sheet, rows); err != nil {
		return nil, nil, asAppError(err)
	}
	_ = f.SetColWidth(sheet, "B", "B", 32)

	data, err := workbookBytes(f)
	if err != nil {
		return nil, nil, err
	}
	return sale, data, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
			return err
		}
	}
	return nil
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, asAppError(fmt.Errorf("write workbook: %w", err))
	}
	return buf.Bytes(), nil
}
