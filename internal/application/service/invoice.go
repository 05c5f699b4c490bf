package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
)

// InvoiceSettings controls how finalized sales are stamped and numbered.
type InvoiceSettings struct {
	Prefix         string
	Location       *time.Location
	DateLayout     string
	TimeLayout     string
	WalkInCustomer string
}

// DefaultInvoiceSettings are used for any field left empty.
func DefaultInvoiceSettings() InvoiceSettings {
	return InvoiceSettings{
		Prefix:         "INV",
		Location:       time.UTC,
		DateLayout:     "02/01/2006",
		TimeLayout:     "03:04:05 PM",
		WalkInCustomer: entity.WalkInCustomer,
	}
}

func (s InvoiceSettings) withDefaults() InvoiceSettings {
	def := DefaultInvoiceSettings()
	if s.Prefix == "" {
		s.Prefix = def.Prefix
	}
	if s.Location == nil {
		s.Location = def.Location
	}
	if s.DateLayout == "" {
		s.DateLayout = def.DateLayout
	}
	if s.TimeLayout == "" {
		s.TimeLayout = def.TimeLayout
	}
	if s.WalkInCustomer == "" {
		s.WalkInCustomer = def.WalkInCustomer
	}
	return s
}

// SequenceName is the counter row that numbers invoices for a year.
func SequenceName(year int) string {
	return fmt.Sprintf("invoice-%d", year)
}

// FormatInvoiceNo renders PREFIX-YYYY-NNNNNN, e.g. INV-2026-000123.
func FormatInvoiceNo(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, seq)
}

// BuildSale snapshots the cart into an unsaved sale. Lines are copied by
// value so later catalog or cart edits cannot reach the invoice. The invoice
// number is left for the caller to assign.
func BuildSale(cart *entity.Cart, customerName string, now time.Time, settings InvoiceSettings) *entity.Sale {
	settings = settings.withDefaults()
	local := now.In(settings.Location)

	customer := strings.TrimSpace(customerName)
	if customer == "" {
		customer = settings.WalkInCustomer
	}

	items := make([]entity.SaleItem, 0, len(cart.Lines))
	for i, line := range cart.Lines {
		items = append(items, entity.SaleItem{
			ProductID: line.ProductID,
			Position:  i + 1,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			UnitCost:  line.UnitCost,
			LineTotal: line.LineTotal(),
		})
	}

	subTotal := cart.Subtotal()
	return &entity.Sale{
		CustomerName: customer,
		SubTotal:     subTotal,
		Discount:     cart.Charges.Discount,
		Labour:       cart.Charges.Labour,
		Freight:      cart.Charges.Freight,
		GrandTotal:   cart.Charges.GrandTotal(subTotal),
		SoldAt:       local,
		DisplayDate:  local.Format(settings.DateLayout),
		DisplayTime:  local.Format(settings.TimeLayout),
		Items:        items,
	}
}
