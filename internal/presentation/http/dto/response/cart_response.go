package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/pkg/money"
)

// CartLineView is a cart line with decimal amounts
type CartLineView struct {
	ProductID uuid.UUID    `json:"product_id"`
	Name      string       `json:"name"`
	UnitPrice money.Amount `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	LineTotal money.Amount `json:"line_total"`
}

// CartView is the cart as the till displays it
type CartView struct {
	SessionID  string         `json:"session_id"`
	Lines      []CartLineView `json:"lines"`
	ItemCount  int            `json:"item_count"`
	Subtotal   money.Amount   `json:"subtotal"`
	Discount   money.Amount   `json:"discount"`
	Labour     money.Amount   `json:"labour"`
	Freight    money.Amount   `json:"freight"`
	GrandTotal money.Amount   `json:"grand_total"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewCartView renders cart totals. Unit costs stay server side.
func NewCartView(cart *entity.Cart) *CartView {
	view := &CartView{
		SessionID:  cart.SessionID,
		Lines:      make([]CartLineView, 0, len(cart.Lines)),
		Subtotal:   money.Amount(cart.Subtotal()),
		Discount:   money.Amount(cart.Charges.Discount),
		Labour:     money.Amount(cart.Charges.Labour),
		Freight:    money.Amount(cart.Charges.Freight),
		GrandTotal: money.Amount(cart.GrandTotal()),
		UpdatedAt:  cart.UpdatedAt,
	}
	for _, l := range cart.Lines {
		view.Lines = append(view.Lines, CartLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: money.Amount(l.UnitPrice),
			Quantity:  l.Quantity,
			LineTotal: money.Amount(l.LineTotal()),
		})
		view.ItemCount += l.Quantity
	}
	return view
}
