package service

import (
	"fmt"
	"log"

	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/pkg/money"
	"github.com/mahavirtraders/flowtrack/pkg/printer"
)

// ReceiptSettings is the shop header and footer printed on every receipt.
type ReceiptSettings struct {
	StoreName string
	Address   string
	Phone     string
	Footer    string
	Width     int // characters per line; 32 for 58mm paper, 48 for 80mm
}

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	printerType string
	settings    ReceiptSettings
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, printerType string, settings ReceiptSettings) *PrinterService {
	if settings.Width <= 0 {
		settings.Width = 32
	}
	return &PrinterService{
		printer:     p,
		printerType: printerType,
		settings:    settings,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// BuildReceipt renders a sale into printable text fields.
func (s *PrinterService) BuildReceipt(sale *entity.Sale) *entity.Receipt {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: s.settings.StoreName,
			Address:   s.settings.Address,
			Phone:     s.settings.Phone,
		},
		InvoiceNo:  sale.InvoiceNo,
		Date:       sale.DisplayDate,
		Time:       sale.DisplayTime,
		Customer:   sale.CustomerName,
		Items:      make([]entity.ReceiptItem, 0, len(sale.Items)),
		SubTotal:   money.Format(sale.SubTotal),
		GrandTotal: money.Format(sale.GrandTotal),
		Footer:     s.settings.Footer,
	}
	if sale.Discount > 0 {
		receipt.Discount = money.Format(sale.Discount)
	}
	if sale.Labour > 0 {
		receipt.Labour = money.Format(sale.Labour)
	}
	if sale.Freight > 0 {
		receipt.Freight = money.Format(sale.Freight)
	}

	for _, item := range sale.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: money.Format(item.UnitPrice),
			Total:     money.Format(item.LineTotal),
		})
	}
	return receipt
}

// PrintSale formats and prints a sale's receipt.
func (s *PrinterService) PrintSale(sale *entity.Sale) (*entity.Receipt, error) {
	receipt := s.BuildReceipt(sale)
	if err := s.printer.Print(FormatReceipt(receipt, s.settings.Width)); err != nil {
		log.Printf("[printer] %s: %v", sale.InvoiceNo, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// TestPrint sends a test page to the printer. The receipt is returned so the
// handler can show it when no printer is attached.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: s.settings.StoreName,
			Address:   s.settings.Address,
			Phone:     s.settings.Phone,
		},
		InvoiceNo: "TEST",
		Customer:  entity.WalkInCustomer,
		Items: []entity.ReceiptItem{
			{Name: "Test item", Quantity: 2, UnitPrice: "5.00", Total: "10.00"},
		},
		SubTotal:   "10.00",
		GrandTotal: "10.00",
		Footer:     "Printer test",
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.settings.Width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Invoice:", r.InvoiceNo)
	if r.Date != "" {
		doc.KeyValue("Date:", r.Date)
	}
	if r.Time != "" {
		doc.KeyValue("Time:", r.Time)
	}
	doc.KeyValue("Customer:", r.Customer).
		Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total)
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice)
		}
	}

	doc.Separator('-').
		KeyValue("Subtotal:", r.SubTotal)
	if r.Discount != "" {
		doc.KeyValue("Discount:", "-"+r.Discount)
	}
	if r.Labour != "" {
		doc.KeyValue("Labour:", r.Labour)
	}
	if r.Freight != "" {
		doc.KeyValue("Freight:", r.Freight)
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", r.GrandTotal).
		SetBold(false).
		Separator('-')

	if r.Footer != "" {
		doc.SetAlign(printer.AlignCenter).
			LineFeed().
			Text(r.Footer).
			SetAlign(printer.AlignLeft)
	}

	return doc.FeedLines(3).PartialCut().Bytes()
}
