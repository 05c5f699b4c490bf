package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/infrastructure/memory"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
)

var testNow = time.Date(2026, time.March, 14, 15, 30, 0, 0, time.UTC)

type salesFixture struct {
	store     *fakeStore
	carts     *memory.CartStore
	cart      *CartService
	sales     *SalesService
	sink      *recordingSink
	publisher *recordingPublisher
}

func newSalesFixture() *salesFixture {
	store := newFakeStore()
	carts := memory.NewCartStore(time.Hour)
	publisher := &recordingPublisher{}
	sink := &recordingSink{}
	products := &fakeProductRepo{s: store}
	stock := NewStockService(products, store, publisher)

	sales := NewSalesService(
		carts,
		memory.NewFinalizeGuard(),
		store,
		&fakeSaleRepo{s: store},
		&fakeSequenceRepo{s: store},
		stock,
		sink,
		publisher,
		InvoiceSettings{Prefix: "MT"},
	)
	sales.now = func() time.Time { return testNow }

	return &salesFixture{
		store:     store,
		carts:     carts,
		cart:      NewCartService(carts, products),
		sales:     sales,
		sink:      sink,
		publisher: publisher,
	}
}

func appCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestFinalize_ThreeUnitsOfProductA(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	a := f.store.addProduct(entity.Product{Name: "Product A", RetailPrice: 10000, PurchasePrice: 7000, Quantity: 20})

	for i := 0; i < 3; i++ {
		if _, err := f.cart.AddProduct(ctx, "s1", a.ID); err != nil {
			t.Fatalf("add product: %v", err)
		}
	}

	sale, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if sale.SubTotal != 30000 || sale.GrandTotal != 30000 {
		t.Errorf("expected subtotal and grand total 30000, got %d / %d", sale.SubTotal, sale.GrandTotal)
	}
	if got := f.store.product(a.ID).Quantity; got != 17 {
		t.Errorf("expected on-hand 17, got %d", got)
	}
	if sale.InvoiceNo != "MT-2026-000001" {
		t.Errorf("unexpected invoice number %q", sale.InvoiceNo)
	}
	if sale.CustomerName != entity.WalkInCustomer {
		t.Errorf("expected walk-in customer, got %q", sale.CustomerName)
	}
	if sale.DisplayDate != "14/03/2026" || sale.DisplayTime != "03:30:00 PM" {
		t.Errorf("unexpected display stamp %q %q", sale.DisplayDate, sale.DisplayTime)
	}

	cart, _ := f.cart.GetCart(ctx, "s1")
	if !cart.IsEmpty() || !cart.Charges.IsZero() {
		t.Errorf("expected cart and charges cleared, got %+v", cart)
	}
	if f.sink.count() != 1 {
		t.Errorf("expected 1 receipt submitted, got %d", f.sink.count())
	}
	if f.publisher.count(events.CollectionSales, events.ActionCreated) != 1 {
		t.Error("expected a sales.created event")
	}
	if f.publisher.count(events.CollectionProducts, events.ActionUpdated) != 1 {
		t.Error("expected a products.updated event")
	}
}

func TestFinalize_AppliesCharges(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	cement := f.store.addProduct(entity.Product{Name: "Cement", RetailPrice: 35000, Quantity: 10})
	sand := f.store.addProduct(entity.Product{Name: "Sand", RetailPrice: 2500, Quantity: 10})

	f.cart.AddProduct(ctx, "s1", cement.ID)
	f.cart.AddProduct(ctx, "s1", sand.ID)
	f.cart.SetQuantity(ctx, "s1", sand.ID, 4)
	f.cart.SetCharges(ctx, "s1", entity.Charges{Discount: 5000, Labour: 2000, Freight: 1500})

	sale, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{CustomerName: "  Ravi  "})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if sale.SubTotal != 45000 {
		t.Errorf("subtotal = %d, want 45000", sale.SubTotal)
	}
	if sale.GrandTotal != 45000-5000+2000+1500 {
		t.Errorf("grand total = %d, want 43500", sale.GrandTotal)
	}
	if sale.GrandTotal != sale.RecomputedTotal() {
		t.Errorf("stored total %d differs from recomputed %d", sale.GrandTotal, sale.RecomputedTotal())
	}
	if sale.CustomerName != "Ravi" {
		t.Errorf("expected trimmed customer name, got %q", sale.CustomerName)
	}
	if len(sale.Items) != 2 || sale.Items[0].Position != 1 || sale.Items[1].Name != "Sand" {
		t.Errorf("unexpected items %+v", sale.Items)
	}
}

func TestFinalize_EmptyCartPersistsNothing(t *testing.T) {
	f := newSalesFixture()

	_, err := f.sales.Finalize(context.Background(), "s1", &FinalizeInput{})
	if err == nil {
		t.Fatal("expected error for empty cart")
	}
	if code := appCode(t, err); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
	if f.store.saleCount() != 0 {
		t.Errorf("expected no sale stored, got %d", f.store.saleCount())
	}
	if f.store.sequences[SequenceName(2026)] != 0 {
		t.Error("expected invoice counter untouched")
	}
}

func TestFinalize_InsufficientStockRollsBack(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	a := f.store.addProduct(entity.Product{Name: "Product A", RetailPrice: 10000, Quantity: 5})
	b := f.store.addProduct(entity.Product{Name: "Product B", RetailPrice: 2000, Quantity: 1})

	f.cart.AddProduct(ctx, "s1", a.ID)
	f.cart.AddProduct(ctx, "s1", b.ID)
	f.cart.SetQuantity(ctx, "s1", b.ID, 3)
	f.cart.SetCharges(ctx, "s1", entity.Charges{Discount: 100})

	_, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if code := appCode(t, err); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}

	if f.store.saleCount() != 0 {
		t.Errorf("expected sale rolled back, got %d", f.store.saleCount())
	}
	if f.store.product(a.ID).Quantity != 5 || f.store.product(b.ID).Quantity != 1 {
		t.Error("expected stock unchanged")
	}
	cart, _ := f.cart.GetCart(ctx, "s1")
	if len(cart.Lines) != 2 || cart.Charges.Discount != 100 {
		t.Errorf("expected cart and charges kept for retry, got %+v", cart)
	}
	if f.sink.count() != 0 {
		t.Error("expected no receipt for a failed sale")
	}
}

func TestFinalize_StoreFailureKeepsCart(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	a := f.store.addProduct(entity.Product{Name: "Product A", RetailPrice: 10000, Quantity: 5})
	f.cart.AddProduct(ctx, "s1", a.ID)
	f.store.failSaleCreate = errors.New("connection reset")

	_, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{})
	if code := appCode(t, err); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}

	cart, _ := f.cart.GetCart(ctx, "s1")
	if len(cart.Lines) != 1 {
		t.Error("expected cart kept after a failed write")
	}

	// The counter rolled back with the failed transaction, so the retry
	// gets the first number.
	sale, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if sale.InvoiceNo != "MT-2026-000001" {
		t.Errorf("expected MT-2026-000001 on retry, got %s", sale.InvoiceNo)
	}
}

func TestFinalize_ConcurrentCallsProduceOneInvoice(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	a := f.store.addProduct(entity.Product{Name: "Product A", RetailPrice: 10000, Quantity: 100})
	f.cart.AddProduct(ctx, "s1", a.ID)

	const callers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful finalize, got %d", succeeded)
	}
	if f.store.saleCount() != 1 {
		t.Errorf("expected 1 stored sale, got %d", f.store.saleCount())
	}
	if got := f.store.product(a.ID).Quantity; got != 99 {
		t.Errorf("expected stock 99, got %d", got)
	}
}

func TestFinalize_InvoiceNumbersIncrease(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	a := f.store.addProduct(entity.Product{Name: "Product A", RetailPrice: 100, Quantity: 10})

	var numbers []string
	for i := 0; i < 3; i++ {
		f.cart.AddProduct(ctx, "s1", a.ID)
		sale, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{})
		if err != nil {
			t.Fatalf("finalize %d: %v", i, err)
		}
		numbers = append(numbers, sale.InvoiceNo)
	}

	want := []string{"MT-2026-000001", "MT-2026-000002", "MT-2026-000003"}
	for i := range want {
		if numbers[i] != want[i] {
			t.Errorf("invoice %d = %s, want %s", i, numbers[i], want[i])
		}
	}
}

func TestSalesService_Reprint(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	a := f.store.addProduct(entity.Product{Name: "Product A", RetailPrice: 100, Quantity: 10})
	f.cart.AddProduct(ctx, "s1", a.ID)
	sale, _ := f.sales.Finalize(ctx, "s1", &FinalizeInput{})

	if _, err := f.sales.Reprint(ctx, sale.ID); err != nil {
		t.Fatalf("reprint: %v", err)
	}
	if f.sink.count() != 2 {
		t.Errorf("expected 2 receipts, got %d", f.sink.count())
	}

	_, err := f.sales.Reprint(ctx, uuid.New())
	if code := appCode(t, err); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown sale, got %d", code)
	}
}

func TestCartService_UnknownLine(t *testing.T) {
	f := newSalesFixture()

	_, err := f.cart.SetQuantity(context.Background(), "s1", uuid.New(), 2)
	if code := appCode(t, err); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	_, err = f.cart.AddProduct(context.Background(), "s1", uuid.New())
	if code := appCode(t, err); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown product, got %d", code)
	}
}

func TestCartService_NegativeChargesBecomeZero(t *testing.T) {
	f := newSalesFixture()

	cart, err := f.cart.SetCharges(context.Background(), "s1", entity.Charges{Discount: -500, Labour: 300, Freight: -1})
	if err != nil {
		t.Fatalf("set charges: %v", err)
	}
	if cart.Charges != (entity.Charges{Labour: 300}) {
		t.Errorf("unexpected charges %+v", cart.Charges)
	}
}

// sinkFunc runs a callback for every submitted receipt
type sinkFunc func(sale *entity.Sale)

func (f sinkFunc) Submit(sale *entity.Sale) { f(sale) }

func TestFinalize_KeepsLinesAddedDuringCheckout(t *testing.T) {
	f := newSalesFixture()
	ctx := context.Background()
	a := f.store.addProduct(entity.Product{Name: "Product A", RetailPrice: 10000, Quantity: 20})
	b := f.store.addProduct(entity.Product{Name: "Product B", RetailPrice: 2500, Quantity: 20})

	f.cart.AddProduct(ctx, "s1", a.ID)
	f.cart.SetCharges(ctx, "s1", entity.NewCharges(500, 0, 0))

	// Another request edits the cart between the snapshot and the cleanup
	f.sales.receipts = sinkFunc(func(*entity.Sale) {
		if _, err := f.cart.AddProduct(ctx, "s1", b.ID); err != nil {
			t.Errorf("add product: %v", err)
		}
		f.cart.AddProduct(ctx, "s1", a.ID)
	})

	sale, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(sale.Items) != 1 || sale.Items[0].Quantity != 1 {
		t.Fatalf("expected one unit of A sold, got %+v", sale.Items)
	}

	cart, _ := f.cart.GetCart(ctx, "s1")
	if len(cart.Lines) != 2 {
		t.Fatalf("expected the unsold lines kept, got %+v", cart.Lines)
	}
	for _, l := range cart.Lines {
		if l.Quantity != 1 {
			t.Errorf("expected one unsold unit of %s, got %d", l.Name, l.Quantity)
		}
	}
	if !cart.Charges.IsZero() {
		t.Errorf("expected billed charges cleared, got %+v", cart.Charges)
	}
}

// cancelAwareTransactor refuses to start on a cancelled context, like a
// database driver would.
type cancelAwareTransactor struct{ *fakeStore }

func (t cancelAwareTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.fakeStore.WithinTransaction(ctx, fn)
}

func TestFinalize_ClientDisconnectDoesNotAbort(t *testing.T) {
	f := newSalesFixture()
	f.sales.transactor = cancelAwareTransactor{f.store}
	a := f.store.addProduct(entity.Product{Name: "Product A", RetailPrice: 10000, Quantity: 20})

	ctx, cancel := context.WithCancel(context.Background())
	f.cart.AddProduct(ctx, "s1", a.ID)
	cancel()

	if _, err := f.sales.Finalize(ctx, "s1", &FinalizeInput{}); err != nil {
		t.Fatalf("finalize after disconnect: %v", err)
	}
	if f.store.saleCount() != 1 {
		t.Errorf("expected the sale committed, got %d", f.store.saleCount())
	}
	if got := f.store.product(a.ID).Quantity; got != 19 {
		t.Errorf("expected on-hand 19, got %d", got)
	}
}
