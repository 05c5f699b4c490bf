package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/enum"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records []entity.Attendance
}

func (r *fakeAttendanceRepo) Create(_ context.Context, a *entity.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.UserID == a.UserID && existing.Date == a.Date {
			return repository.ErrDuplicate
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.records = append(r.records, *a)
	return nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) GetByUserAndDate(_ context.Context, userID uuid.UUID, date string) (*entity.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.UserID == userID && a.Date == date {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) Update(_ context.Context, a *entity.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == a.ID {
			r.records[i] = *a
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeAttendanceRepo) List(_ context.Context, _ *repository.AttendanceFilterParams) ([]entity.Attendance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]entity.Attendance(nil), r.records...)
	return out, int64(len(out)), nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ *pagination.PaginationParams, _ string) ([]entity.User, int64, error) {
	var out []entity.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) AssignRole(_ context.Context, _ uuid.UUID, _ uint) error {
	return nil
}

func TestAttendance_OnePerUserAndDate(t *testing.T) {
	staff := &entity.User{ID: uuid.New(), Name: "Meena"}
	users := &fakeUserRepo{users: map[uuid.UUID]*entity.User{staff.ID: staff}}
	attendance := NewAttendanceService(&fakeAttendanceRepo{}, users, &recordingPublisher{}, time.UTC)
	attendance.now = func() time.Time { return testNow }
	ctx := context.Background()

	record, err := attendance.MarkAttendance(ctx, &MarkAttendanceInput{UserID: staff.ID, Status: enum.AttendancePresent})
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if record.Date != "2026-03-14" || record.StaffName != "Meena" {
		t.Errorf("unexpected record %+v", record)
	}
	if record.CheckIn == nil {
		t.Error("expected check-in stamped for present today")
	}

	_, err = attendance.MarkAttendance(ctx, &MarkAttendanceInput{UserID: staff.ID, Status: enum.AttendanceLeave})
	if code := appCode(t, err); code != http.StatusConflict {
		t.Errorf("expected 409 for second mark, got %d", code)
	}

	other, err := attendance.MarkAttendance(ctx, &MarkAttendanceInput{UserID: staff.ID, Date: "2026-03-13", Status: enum.AttendanceLeave})
	if err != nil {
		t.Fatalf("mark other day: %v", err)
	}
	if other.CheckIn != nil {
		t.Error("expected no check-in for leave")
	}

	_, err = attendance.MarkAttendance(ctx, &MarkAttendanceInput{UserID: uuid.New(), Status: enum.AttendancePresent})
	if code := appCode(t, err); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown user, got %d", code)
	}
}

func TestAttendance_CheckOut(t *testing.T) {
	staff := &entity.User{ID: uuid.New(), Name: "Meena"}
	users := &fakeUserRepo{users: map[uuid.UUID]*entity.User{staff.ID: staff}}
	attendance := NewAttendanceService(&fakeAttendanceRepo{}, users, &recordingPublisher{}, time.UTC)
	attendance.now = func() time.Time { return testNow }
	ctx := context.Background()

	record, _ := attendance.MarkAttendance(ctx, &MarkAttendanceInput{UserID: staff.ID, Status: enum.AttendancePresent})

	attendance.now = func() time.Time { return testNow.Add(8 * time.Hour) }
	out, err := attendance.CheckOut(ctx, record.ID)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if out.HoursWorked() != 8*time.Hour {
		t.Errorf("expected 8h worked, got %v", out.HoursWorked())
	}

	_, err = attendance.CheckOut(ctx, record.ID)
	if code := appCode(t, err); code != http.StatusConflict {
		t.Errorf("expected 409 for second check-out, got %d", code)
	}
}

func TestExpense_Validation(t *testing.T) {
	store := newFakeStore()
	expenses := NewExpenseService(&fakeExpenseRepo{s: store}, &recordingPublisher{})

	_, err := expenses.RecordExpense(context.Background(), &RecordExpenseInput{Amount: 0, Category: "Tea"})
	if code := appCode(t, err); code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for zero amount, got %d", code)
	}

	e, err := expenses.RecordExpense(context.Background(), &RecordExpenseInput{Amount: 1500, Category: " Tea "})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if e.Category != "Tea" || e.SpentAt.IsZero() {
		t.Errorf("unexpected expense %+v", e)
	}
}

func newClosingFixture() (*fakeStore, *DayClosingService) {
	store := newFakeStore()
	closings := NewDayClosingService(&fakeClosingRepo{s: store}, &fakeSaleRepo{s: store}, &fakeExpenseRepo{s: store}, &recordingPublisher{}, time.UTC)
	closings.now = func() time.Time { return testNow }
	return store, closings
}

func TestDayClosing_ExpectedCashAndVariance(t *testing.T) {
	store, closings := newClosingFixture()
	store.sales = []entity.Sale{
		saleAt(testNow.Add(-3*time.Hour), 40000),
		saleAt(testNow.Add(-time.Hour), 10000),
		saleAt(testNow.AddDate(0, 0, -1), 99999),
	}
	store.expenses = []entity.Expense{{Amount: 2000, SpentAt: testNow.Add(-2 * time.Hour)}}
	store.closings = []entity.DayClosing{{ID: uuid.New(), BusinessDate: "2026-03-13", CountedCash: 5000}}

	closing, err := closings.CloseDay(context.Background(), &CloseDayInput{CountedCash: 52500})
	if err != nil {
		t.Fatalf("close day: %v", err)
	}

	if closing.BusinessDate != "2026-03-14" {
		t.Errorf("unexpected business date %s", closing.BusinessDate)
	}
	if closing.SalesCount != 2 || closing.SalesTotal != 50000 {
		t.Errorf("sales = %d totalling %d, want 2 totalling 50000", closing.SalesCount, closing.SalesTotal)
	}
	if closing.OpeningCash != 5000 {
		t.Errorf("expected opening carried over from previous counted cash, got %d", closing.OpeningCash)
	}
	// 5000 + 50000 - 2000
	if closing.ExpectedCash != 53000 {
		t.Errorf("expected cash = %d, want 53000", closing.ExpectedCash)
	}
	if closing.Variance != -500 {
		t.Errorf("variance = %d, want -500", closing.Variance)
	}

	_, err = closings.CloseDay(context.Background(), &CloseDayInput{CountedCash: 1})
	if code := appCode(t, err); code != http.StatusConflict {
		t.Errorf("expected 409 for second closing, got %d", code)
	}
}

func TestDayClosing_ExplicitOpeningAndDate(t *testing.T) {
	_, closings := newClosingFixture()
	opening := int64(1000)

	closing, err := closings.Preview(context.Background(), &CloseDayInput{BusinessDate: "2026-03-01", OpeningCash: &opening, CountedCash: 1000})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if closing.ExpectedCash != 1000 || closing.Variance != 0 {
		t.Errorf("unexpected closing %+v", closing)
	}

	_, err = closings.Preview(context.Background(), &CloseDayInput{BusinessDate: "01-03-2026"})
	if code := appCode(t, err); code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for bad date, got %d", code)
	}
}
