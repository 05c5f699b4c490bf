package service

import (
	"sort"
	"time"

	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
)

// topItemsLimit is how many best sellers a report lists
const topItemsLimit = 5

// TopItem is a product name with the units sold under it
type TopItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// SalesSummary is a rollup of sales. All amounts are cents.
type SalesSummary struct {
	TodayTotal            int64     `json:"today_total"`
	TodayCount            int       `json:"today_count"`
	MonthTotal            int64     `json:"month_total"`
	MonthCount            int       `json:"month_count"`
	GrossProfit           int64     `json:"gross_profit"`
	HistoricalGrossProfit int64     `json:"historical_gross_profit"`
	SalesCount            int       `json:"sales_count"`
	SalesTotal            int64     `json:"sales_total"`
	TopItems              []TopItem `json:"top_items"`
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfMonth returns midnight of the first day of t's month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// DayRange is [midnight, next midnight) of t's day in loc. AddDate keeps it
// right across DST changes.
func DayRange(t time.Time, loc *time.Location) repository.DateRange {
	start := StartOfDay(t, loc)
	return repository.NewDateRange(start, start.AddDate(0, 0, 1))
}

// MonthRange is [first of month, first of next month) in loc.
func MonthRange(t time.Time, loc *time.Location) repository.DateRange {
	start := StartOfMonth(t, loc)
	return repository.NewDateRange(start, start.AddDate(0, 1, 0))
}

// Aggregate rolls up sales against a catalog snapshot. It is a pure function
// of its inputs and keeps no state between calls.
//
// Today and month totals compare the structured sold_at timestamp against
// half-open ranges in loc. Gross profit prices every sold line against the
// catalog's current purchase price, matched by product name, and skips lines
// whose product is no longer in the catalog; it drifts when costs change.
// HistoricalGrossProfit uses the cost captured on the sale line instead.
func Aggregate(sales []entity.Sale, catalog []entity.Product, now time.Time, loc *time.Location) *SalesSummary {
	if loc == nil {
		loc = time.UTC
	}
	today := DayRange(now, loc)
	month := MonthRange(now, loc)

	costByName := make(map[string]int64, len(catalog))
	for _, p := range catalog {
		costByName[p.Name] = p.PurchasePrice
	}

	summary := &SalesSummary{}
	tally := newItemTally()

	for i := range sales {
		sale := &sales[i]
		summary.SalesCount++
		summary.SalesTotal += sale.GrandTotal

		if today.Contains(sale.SoldAt) {
			summary.TodayTotal += sale.GrandTotal
			summary.TodayCount++
		}
		if month.Contains(sale.SoldAt) {
			summary.MonthTotal += sale.GrandTotal
			summary.MonthCount++
		}

		for _, item := range sale.Items {
			qty := int64(item.Quantity)
			if cost, ok := costByName[item.Name]; ok {
				summary.GrossProfit += (item.UnitPrice - cost) * qty
			}
			summary.HistoricalGrossProfit += (item.UnitPrice - item.UnitCost) * qty
			tally.add(item.Name, item.Quantity)
		}
	}

	summary.TopItems = tally.top(topItemsLimit)
	return summary
}

// itemTally counts units per name and remembers first-seen order.
type itemTally struct {
	order []string
	qty   map[string]int
}

func newItemTally() *itemTally {
	return &itemTally{qty: make(map[string]int)}
}

func (t *itemTally) add(name string, qty int) {
	if _, seen := t.qty[name]; !seen {
		t.order = append(t.order, name)
	}
	t.qty[name] += qty
}

// top returns the n highest counts; equal counts keep first-seen order.
func (t *itemTally) top(n int) []TopItem {
	items := make([]TopItem, 0, len(t.order))
	for _, name := range t.order {
		items = append(items, TopItem{Name: name, Quantity: t.qty[name]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Quantity > items[j].Quantity
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}
