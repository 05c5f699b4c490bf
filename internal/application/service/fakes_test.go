package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// fakeStore is an in-memory stand-in for the database. Transactions are
// serialized and roll every table back when fn fails.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products    map[uuid.UUID]entity.Product
	adjustments []entity.StockAdjustment
	sales       []entity.Sale
	purchases   []entity.Purchase
	expenses    []entity.Expense
	closings    []entity.DayClosing
	sequences   map[string]int64

	// failSaleCreate makes the next sale insert fail.
	failSaleCreate error
	// afterRollback runs once after the next failed transaction, standing in
	// for a concurrent writer whose commit lands meanwhile.
	afterRollback func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  make(map[uuid.UUID]entity.Product),
		sequences: make(map[string]int64),
	}
}

type fakeTxKey struct{}

type fakeSnapshot struct {
	products    map[uuid.UUID]entity.Product
	adjustments []entity.StockAdjustment
	sales       []entity.Sale
	purchases   []entity.Purchase
	sequences   map[string]int64
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := fakeSnapshot{
		products:    make(map[uuid.UUID]entity.Product, len(s.products)),
		adjustments: append([]entity.StockAdjustment(nil), s.adjustments...),
		sales:       append([]entity.Sale(nil), s.sales...),
		purchases:   append([]entity.Purchase(nil), s.purchases...),
		sequences:   make(map[string]int64, len(s.sequences)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.adjustments = snap.adjustments
	s.sales = snap.sales
	s.purchases = snap.purchases
	s.sequences = snap.sequences
}

func (s *fakeStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		s.restore(snap)
		s.mu.Lock()
		hook := s.afterRollback
		s.afterRollback = nil
		s.mu.Unlock()
		if hook != nil {
			hook()
		}
		return err
	}
	return nil
}

func (s *fakeStore) addProduct(p entity.Product) entity.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
	return p
}

func (s *fakeStore) product(id uuid.UUID) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *fakeStore) saleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

// fakeProductRepo implements repository.ProductRepository on a fakeStore
type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.Name == p.Name {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, _ := r.GetByID(ctx, id); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	return r.GetByName(ctx, name)
}

func (r *fakeProductRepo) UpdateDetails(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *p
	updated.Quantity = current.Quantity
	r.s.products[p.ID] = updated
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	all, _ := r.ListAll(ctx)
	var out []entity.Product
	for _, p := range all {
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			continue
		}
		if params.LowStock && !p.IsLowStock() {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ListAll(_ context.Context) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProductRepo) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	all, _ := r.ListAll(ctx)
	var out []entity.Product
	for _, p := range all {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) AtomicDecrementBatch(_ context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var failed []uuid.UUID
	for id, qty := range decrements {
		p, ok := r.s.products[id]
		if !ok || p.Quantity < qty {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}
	for id, qty := range decrements {
		p := r.s.products[id]
		p.Quantity -= qty
		r.s.products[id] = p
	}
	return nil, nil
}

func (r *fakeProductRepo) ApplyPurchase(_ context.Context, id uuid.UUID, quantity int, purchasePrice, retailPrice int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Quantity += quantity
	p.PurchasePrice = purchasePrice
	p.RetailPrice = retailPrice
	r.s.products[id] = p
	return nil
}

func (r *fakeProductRepo) ApplyDelta(_ context.Context, id uuid.UUID, delta int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.Quantity+delta < 0 {
		return false, nil
	}
	p.Quantity += delta
	r.s.products[id] = p
	return true, nil
}

func (r *fakeProductRepo) CreateAdjustment(_ context.Context, a *entity.StockAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.adjustments = append(r.s.adjustments, *a)
	return nil
}

func (r *fakeProductRepo) ListAdjustments(_ context.Context, productID uuid.UUID) ([]entity.StockAdjustment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.StockAdjustment
	for _, a := range r.s.adjustments {
		if a.ProductID == productID {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeSaleRepo implements repository.SaleRepository on a fakeStore
type fakeSaleRepo struct{ s *fakeStore }

func (r *fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failSaleCreate; err != nil {
		r.s.failSaleCreate = nil
		return err
	}
	for _, existing := range r.s.sales {
		if existing.InvoiceNo == sale.InvoiceNo {
			return repository.ErrDuplicate
		}
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	r.s.sales = append(r.s.sales, *sale)
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sale := range r.s.sales {
		if sale.ID == id {
			sale := sale
			return &sale, nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) GetByInvoiceNo(_ context.Context, invoiceNo string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sale := range r.s.sales {
		if sale.InvoiceNo == invoiceNo {
			sale := sale
			return &sale, nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) List(ctx context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	sales, _ := r.ListInRange(ctx, params.Range)
	return sales, int64(len(sales)), nil
}

func (r *fakeSaleRepo) ListInRange(_ context.Context, dr repository.DateRange) ([]entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Sale
	for _, sale := range r.s.sales {
		if dr.Contains(sale.SoldAt) {
			out = append(out, sale)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SoldAt.Before(out[j].SoldAt) })
	return out, nil
}

// fakeSequenceRepo implements repository.InvoiceSequenceRepository
type fakeSequenceRepo struct{ s *fakeStore }

func (r *fakeSequenceRepo) Next(_ context.Context, name string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sequences[name]++
	return r.s.sequences[name], nil
}

// fakePurchaseRepo implements repository.PurchaseRepository
type fakePurchaseRepo struct{ s *fakeStore }

func (r *fakePurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.purchases = append(r.s.purchases, *p)
	return nil
}

func (r *fakePurchaseRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.purchases {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakePurchaseRepo) List(_ context.Context, _ *repository.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]entity.Purchase(nil), r.s.purchases...)
	return out, int64(len(out)), nil
}

// fakeExpenseRepo implements repository.ExpenseRepository
type fakeExpenseRepo struct{ s *fakeStore }

func (r *fakeExpenseRepo) Create(_ context.Context, e *entity.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.s.expenses = append(r.s.expenses, *e)
	return nil
}

func (r *fakeExpenseRepo) List(_ context.Context, params *repository.ExpenseFilterParams) ([]entity.Expense, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Expense
	for _, e := range r.s.expenses {
		if params.Range.Contains(e.SpentAt) {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeExpenseRepo) SumInRange(_ context.Context, dr repository.DateRange) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, e := range r.s.expenses {
		if dr.Contains(e.SpentAt) {
			total += e.Amount
		}
	}
	return total, nil
}

// fakeClosingRepo implements repository.DayClosingRepository
type fakeClosingRepo struct{ s *fakeStore }

func (r *fakeClosingRepo) Create(_ context.Context, c *entity.DayClosing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.closings {
		if existing.BusinessDate == c.BusinessDate {
			return repository.ErrDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.closings = append(r.s.closings, *c)
	return nil
}

func (r *fakeClosingRepo) GetByDate(_ context.Context, date string) (*entity.DayClosing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.closings {
		if c.BusinessDate == date {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeClosingRepo) GetLatestBefore(_ context.Context, date string) (*entity.DayClosing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.DayClosing
	for i := range r.s.closings {
		c := r.s.closings[i]
		if c.BusinessDate < date && (latest == nil || c.BusinessDate > latest.BusinessDate) {
			latest = &c
		}
	}
	return latest, nil
}

func (r *fakeClosingRepo) List(_ context.Context, _ *pagination.PaginationParams) ([]entity.DayClosing, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]entity.DayClosing(nil), r.s.closings...)
	return out, int64(len(out)), nil
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count(collection string, action events.Action) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Collection == collection && e.Action == action {
			n++
		}
	}
	return n
}

// recordingSink keeps every submitted receipt
type recordingSink struct {
	mu    sync.Mutex
	sales []*entity.Sale
}

func (r *recordingSink) Submit(sale *entity.Sale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales = append(r.sales, sale)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sales)
}
