package service

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

func saleAt(soldAt time.Time, total int64, items ...entity.SaleItem) entity.Sale {
	return entity.Sale{ID: uuid.New(), SoldAt: soldAt, GrandTotal: total, SubTotal: total, Items: items}
}

func line(name string, qty int, price, cost int64) entity.SaleItem {
	return entity.SaleItem{Name: name, Quantity: qty, UnitPrice: price, UnitCost: cost, LineTotal: int64(qty) * price}
}

func TestAggregate_TodayExcludesYesterday(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, loc)

	sales := []entity.Sale{
		saleAt(time.Date(2026, time.March, 13, 23, 59, 0, 0, loc), 1000),
		saleAt(time.Date(2026, time.March, 14, 0, 0, 0, 0, loc), 2000),
		saleAt(time.Date(2026, time.March, 14, 9, 0, 0, 0, loc), 4000),
		saleAt(time.Date(2026, time.February, 28, 12, 0, 0, 0, loc), 8000),
	}

	summary := Aggregate(sales, nil, now, loc)

	if summary.TodayTotal != 6000 || summary.TodayCount != 2 {
		t.Errorf("today = %d (%d sales), want 6000 (2)", summary.TodayTotal, summary.TodayCount)
	}
	if summary.MonthTotal != 7000 || summary.MonthCount != 3 {
		t.Errorf("month = %d (%d sales), want 7000 (3)", summary.MonthTotal, summary.MonthCount)
	}
	if summary.SalesTotal != 15000 || summary.SalesCount != 4 {
		t.Errorf("all time = %d (%d sales), want 15000 (4)", summary.SalesTotal, summary.SalesCount)
	}
}

func TestAggregate_TodayUsesStoreTimezone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, time.March, 14, 1, 0, 0, 0, loc)

	// 20:00 UTC on the 13th is 01:30 on the 14th in store time
	sales := []entity.Sale{saleAt(time.Date(2026, time.March, 13, 20, 0, 0, 0, time.UTC), 500)}

	if got := Aggregate(sales, nil, now, loc).TodayTotal; got != 500 {
		t.Errorf("expected sale counted today in store time, got %d", got)
	}
}

func TestAggregate_GrossProfitSkipsMissingProducts(t *testing.T) {
	catalog := []entity.Product{
		{Name: "Cement", PurchasePrice: 300},
		{Name: "Sand", PurchasePrice: 50},
	}
	sales := []entity.Sale{
		saleAt(testNow, 0,
			line("Cement", 2, 350, 280),
			line("Deleted item", 5, 100, 60),
		),
		saleAt(testNow, 0, line("Sand", 10, 80, 40)),
	}

	summary := Aggregate(sales, catalog, testNow, time.UTC)

	// (350-300)*2 + (80-50)*10
	if summary.GrossProfit != 400 {
		t.Errorf("gross profit = %d, want 400", summary.GrossProfit)
	}
	// (350-280)*2 + (100-60)*5 + (80-40)*10
	if summary.HistoricalGrossProfit != 740 {
		t.Errorf("historical gross profit = %d, want 740", summary.HistoricalGrossProfit)
	}
}

func TestAggregate_TopItemsStableOrder(t *testing.T) {
	sales := []entity.Sale{
		saleAt(testNow, 0, line("Nails", 3, 1, 0), line("Paint", 5, 1, 0), line("Sand", 3, 1, 0)),
		saleAt(testNow, 0, line("Cement", 7, 1, 0), line("Brush", 1, 1, 0), line("Tape", 3, 1, 0), line("Paint", 2, 1, 0)),
	}

	top := Aggregate(sales, nil, testNow, time.UTC).TopItems

	want := []TopItem{
		{"Paint", 7},
		{"Cement", 7},
		{"Nails", 3},
		{"Sand", 3},
		{"Tape", 3},
	}
	if len(top) != len(want) {
		t.Fatalf("expected %d top items, got %d: %+v", len(want), len(top), top)
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("top[%d] = %+v, want %+v", i, top[i], want[i])
		}
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	summary := Aggregate(nil, nil, testNow, nil)
	if summary.SalesCount != 0 || summary.GrossProfit != 0 || len(summary.TopItems) != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
}

func TestMonthRange_CrossesYear(t *testing.T) {
	dr := MonthRange(time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC), time.UTC)
	if !dr.From.Equal(time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", dr.From)
	}
	if !dr.To.Equal(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %v", dr.To)
	}
}

func newReportFixture() (*fakeStore, *ReportService) {
	store := newFakeStore()
	reports := NewReportService(&fakeSaleRepo{s: store}, &fakeProductRepo{s: store}, &fakeExpenseRepo{s: store}, time.UTC)
	reports.now = func() time.Time { return testNow }
	return store, reports
}

func TestReportService_Summary(t *testing.T) {
	store, reports := newReportFixture()
	store.addProduct(entity.Product{Name: "Cement", PurchasePrice: 300, Quantity: 2, MinStock: 5})
	store.addProduct(entity.Product{Name: "Sand", PurchasePrice: 50, Quantity: 100, MinStock: 5})
	store.sales = []entity.Sale{
		saleAt(testNow.Add(-time.Hour), 700, line("Cement", 2, 350, 300)),
		saleAt(testNow.AddDate(0, 0, -1), 800, line("Sand", 10, 80, 50)),
	}
	store.expenses = []entity.Expense{
		{Amount: 150, SpentAt: testNow.Add(-2 * time.Hour)},
		{Amount: 90, SpentAt: testNow.AddDate(0, 0, -3)},
		{Amount: 1000, SpentAt: testNow.AddDate(0, -1, 0)},
	}

	report, err := reports.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if report.TodayTotal != 700 || report.MonthTotal != 1500 {
		t.Errorf("unexpected totals today=%d month=%d", report.TodayTotal, report.MonthTotal)
	}
	if report.TodayExpenses != 150 || report.MonthExpenses != 240 {
		t.Errorf("unexpected expenses today=%d month=%d", report.TodayExpenses, report.MonthExpenses)
	}
	if report.LowStockCount != 1 || report.ProductCount != 2 {
		t.Errorf("unexpected stock counts low=%d products=%d", report.LowStockCount, report.ProductCount)
	}
}

func TestReportService_RangeSummary(t *testing.T) {
	store, reports := newReportFixture()
	store.sales = []entity.Sale{
		saleAt(time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC), 100),
		saleAt(time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC), 200),
		saleAt(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), 400),
	}
	store.expenses = []entity.Expense{{Amount: 50, SpentAt: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)}}

	from, _ := reports.ParseReportDate("2026-03-01")
	to, _ := reports.ParseReportDate("2026-03-10")

	report, err := reports.RangeSummary(context.Background(), from, to)
	if err != nil {
		t.Fatalf("range summary: %v", err)
	}
	if report.SalesCount != 2 || report.SalesTotal != 300 {
		t.Errorf("expected the end bound excluded, got %d sales totalling %d", report.SalesCount, report.SalesTotal)
	}
	if report.NetTotal != 250 {
		t.Errorf("net = %d, want 250", report.NetTotal)
	}

	_, err = reports.RangeSummary(context.Background(), to, from)
	if code := appCode(t, err); code != http.StatusBadRequest {
		t.Errorf("expected 400 for reversed range, got %d", code)
	}
	if _, err := reports.ParseReportDate("14/03/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestReportService_ExportRange(t *testing.T) {
	store, reports := newReportFixture()
	sale := saleAt(testNow, 35000, line("Cement", 1, 35000, 30000))
	sale.InvoiceNo = "MT-2026-000001"
	store.sales = []entity.Sale{sale}

	data, err := reports.ExportRange(context.Background(), StartOfDay(testNow, time.UTC), StartOfDay(testNow, time.UTC).AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	invoice, err := f.GetCellValue("Sales", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if invoice != "MT-2026-000001" {
		t.Errorf("expected invoice in Sales!A2, got %q", invoice)
	}
	if count, _ := f.GetCellValue("Summary", "B3"); count != "1" {
		t.Errorf("expected sales count 1 in Summary!B3, got %q", count)
	}
}
