package entity

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one product in an in-progress sale. Name and prices are
// snapshotted when the product is first added.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unit_price"` // retail price in cents
	UnitCost  int64     `json:"unit_cost"`  // purchase price in cents
	Quantity  int       `json:"quantity"`
}

// LineTotal returns quantity x unit price in cents.
func (l CartLine) LineTotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// Charges are the optional adjustments applied on top of a cart subtotal.
// All values are non-negative cents.
type Charges struct {
	Discount int64 `json:"discount"`
	Labour   int64 `json:"labour"`
	Freight  int64 `json:"freight"`
}

// NewCharges builds a charge set, replacing negative inputs with zero.
func NewCharges(discount, labour, freight int64) Charges {
	return Charges{
		Discount: nonNegative(discount),
		Labour:   nonNegative(labour),
		Freight:  nonNegative(freight),
	}
}

// GrandTotal returns subtotal - discount + labour + freight. A discount larger
// than the subtotal yields a negative total.
func (c Charges) GrandTotal(subtotal int64) int64 {
	return subtotal - c.Discount + c.Labour + c.Freight
}

// IsZero reports whether no charges are set.
func (c Charges) IsZero() bool {
	return c == Charges{}
}

// Cart holds the lines and charges of one session's sale in progress.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Charges   Charges    `json:"charges"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for a session.
func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Lines: []CartLine{}}
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddLine adds one unit of product. An existing line is incremented instead of
// duplicated, and keeps the prices captured when it was first added.
func (c *Cart) AddLine(p *Product) {
	if i := c.indexOf(p.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.RetailPrice,
		UnitCost:  p.PurchasePrice,
		Quantity:  1,
	})
}

// SetQuantity sets a line's quantity, clamped to at least 1. It reports
// whether the line exists.
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	if qty < 1 {
		qty = 1
	}
	c.Lines[i].Quantity = qty
	return true
}

// AdjustQuantity changes a line's quantity by delta, clamped to at least 1.
func (c *Cart) AdjustQuantity(productID uuid.UUID, delta int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	return c.SetQuantity(productID, c.Lines[i].Quantity+delta)
}

// RemoveLine drops a line from the cart.
func (c *Cart) RemoveLine(productID uuid.UUID) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// Settle takes a finalized snapshot of this cart out of it. Units added since
// the snapshot stay in the cart, and the charges are reset only if they still
// match the ones that were billed.
func (c *Cart) Settle(sold *Cart) {
	for _, line := range sold.Lines {
		i := c.indexOf(line.ProductID)
		if i < 0 {
			continue
		}
		if c.Lines[i].Quantity <= line.Quantity {
			c.RemoveLine(line.ProductID)
			continue
		}
		c.Lines[i].Quantity -= line.Quantity
	}
	if c.Charges == sold.Charges {
		c.Charges = Charges{}
	}
}

// Subtotal is the sum of quantity x unit price over all lines.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.LineTotal()
	}
	return total
}

// GrandTotal applies the cart's charges to its subtotal.
func (c *Cart) GrandTotal() int64 {
	return c.Charges.GrandTotal(c.Subtotal())
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Lines = append([]CartLine(nil), c.Lines...)
	if out.Lines == nil {
		out.Lines = []CartLine{}
	}
	return &out
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
