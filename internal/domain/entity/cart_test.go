package entity

import (
	"testing"

	"github.com/google/uuid"
)

func newTestProduct(name string, retail, cost int64) *Product {
	return &Product{ID: uuid.New(), Name: name, RetailPrice: retail, PurchasePrice: cost}
}

func TestCart_AddLineIncrementsExisting(t *testing.T) {
	cart := NewCart("s1")
	a := newTestProduct("Cement", 10000, 8000)
	b := newTestProduct("Sand", 2500, 2000)

	cart.AddLine(a)
	cart.AddLine(b)
	cart.AddLine(a)
	cart.AddLine(a)

	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 3 {
		t.Errorf("expected Cement x3, got %d", cart.Lines[0].Quantity)
	}
	if got, want := cart.Subtotal(), int64(3*10000+2500); got != want {
		t.Errorf("subtotal = %d, want %d", got, want)
	}
}

func TestCart_KeepsPriceCapturedAtAddTime(t *testing.T) {
	cart := NewCart("s1")
	p := newTestProduct("Paint", 500, 300)
	cart.AddLine(p)

	p.RetailPrice = 900
	cart.AddLine(p)

	if cart.Lines[0].UnitPrice != 500 {
		t.Errorf("expected snapshotted price 500, got %d", cart.Lines[0].UnitPrice)
	}
	if cart.Subtotal() != 1000 {
		t.Errorf("expected subtotal 1000, got %d", cart.Subtotal())
	}
}

func TestCart_QuantityClampedToOne(t *testing.T) {
	cart := NewCart("s1")
	p := newTestProduct("Nails", 100, 50)
	cart.AddLine(p)

	tests := []struct {
		name string
		op   func() bool
		want int
	}{
		{"set zero", func() bool { return cart.SetQuantity(p.ID, 0) }, 1},
		{"set negative", func() bool { return cart.SetQuantity(p.ID, -4) }, 1},
		{"set five", func() bool { return cart.SetQuantity(p.ID, 5) }, 5},
		{"adjust down past zero", func() bool { return cart.AdjustQuantity(p.ID, -10) }, 1},
		{"adjust up", func() bool { return cart.AdjustQuantity(p.ID, 2) }, 3},
	}
	for _, tt := range tests {
		if !tt.op() {
			t.Fatalf("%s: expected line to exist", tt.name)
		}
		if got := cart.Lines[0].Quantity; got != tt.want {
			t.Errorf("%s: quantity = %d, want %d", tt.name, got, tt.want)
		}
	}

	if cart.SetQuantity(uuid.New(), 3) {
		t.Error("expected unknown product to report false")
	}
}

func TestCart_RemoveLine(t *testing.T) {
	cart := NewCart("s1")
	a := newTestProduct("A", 100, 0)
	b := newTestProduct("B", 200, 0)
	cart.AddLine(a)
	cart.AddLine(b)

	if !cart.RemoveLine(a.ID) {
		t.Fatal("expected removal to succeed")
	}
	if len(cart.Lines) != 1 || cart.Lines[0].ProductID != b.ID {
		t.Errorf("unexpected lines after removal: %+v", cart.Lines)
	}
	if cart.RemoveLine(a.ID) {
		t.Error("expected second removal to report false")
	}
}

func TestCart_CloneIsIndependent(t *testing.T) {
	cart := NewCart("s1")
	p := newTestProduct("A", 100, 0)
	cart.AddLine(p)

	clone := cart.Clone()
	clone.SetQuantity(p.ID, 9)

	if cart.Lines[0].Quantity != 1 {
		t.Errorf("original cart mutated through clone")
	}
}

func TestCharges_GrandTotal(t *testing.T) {
	tests := []struct {
		name     string
		charges  Charges
		subtotal int64
		want     int64
	}{
		{"no charges", Charges{}, 30000, 30000},
		{"all charges", NewCharges(1000, 500, 250), 30000, 29750},
		{"negative inputs ignored", NewCharges(-100, -5, -1), 5000, 5000},
		{"discount exceeds subtotal", NewCharges(8000, 0, 0), 5000, -3000},
	}
	for _, tt := range tests {
		if got := tt.charges.GrandTotal(tt.subtotal); got != tt.want {
			t.Errorf("%s: GrandTotal = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCharges_Monotonicity(t *testing.T) {
	const subtotal = 10000
	base := NewCharges(500, 500, 500)
	baseTotal := base.GrandTotal(subtotal)

	for _, d := range []int64{1, 50, 999} {
		more := base
		more.Labour += d
		if more.GrandTotal(subtotal) < baseTotal {
			t.Errorf("raising labour by %d lowered the total", d)
		}
		more = base
		more.Freight += d
		if more.GrandTotal(subtotal) < baseTotal {
			t.Errorf("raising freight by %d lowered the total", d)
		}
		more = base
		more.Discount += d
		if more.GrandTotal(subtotal) > baseTotal {
			t.Errorf("raising discount by %d raised the total", d)
		}
	}
}

func TestSale_RecomputedTotalMatchesStored(t *testing.T) {
	charges := NewCharges(250, 1000, 400)
	sale := &Sale{
		SubTotal:   12345,
		Discount:   charges.Discount,
		Labour:     charges.Labour,
		Freight:    charges.Freight,
		GrandTotal: charges.GrandTotal(12345),
	}
	if sale.RecomputedTotal() != sale.GrandTotal {
		t.Errorf("recomputed %d != stored %d", sale.RecomputedTotal(), sale.GrandTotal)
	}
}

func TestCart_SettleKeepsWhatWasNotSold(t *testing.T) {
	a := newTestProduct("Cement", 10000, 8000)
	b := newTestProduct("Sand", 2500, 2000)
	c := newTestProduct("Paint", 500, 300)

	cart := NewCart("s1")
	cart.AddLine(a)
	cart.AddLine(a)
	cart.AddLine(c)
	cart.Charges = NewCharges(100, 0, 0)
	sold := cart.Clone()

	// Edits made while the sale was being saved
	cart.AddLine(a)
	cart.AddLine(b)

	cart.Settle(sold)

	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines left, got %+v", cart.Lines)
	}
	if cart.Lines[0].ProductID != a.ID || cart.Lines[0].Quantity != 1 {
		t.Errorf("expected one unsold Cement, got %+v", cart.Lines[0])
	}
	if cart.Lines[1].ProductID != b.ID || cart.Lines[1].Quantity != 1 {
		t.Errorf("expected Sand kept, got %+v", cart.Lines[1])
	}
	if !cart.Charges.IsZero() {
		t.Errorf("expected billed charges cleared, got %+v", cart.Charges)
	}
}

func TestCart_SettleKeepsChangedCharges(t *testing.T) {
	cart := NewCart("s1")
	cart.AddLine(newTestProduct("Cement", 10000, 8000))
	cart.Charges = NewCharges(100, 0, 0)
	sold := cart.Clone()

	cart.Charges = NewCharges(100, 250, 0)
	cart.Settle(sold)

	if !cart.IsEmpty() {
		t.Errorf("expected sold line removed, got %+v", cart.Lines)
	}
	if cart.Charges != NewCharges(100, 250, 0) {
		t.Errorf("expected new charges kept, got %+v", cart.Charges)
	}
}
