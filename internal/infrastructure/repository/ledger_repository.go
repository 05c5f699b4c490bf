package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	domainRepo "github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
	"gorm.io/gorm"
)

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) domainRepo.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *entity.Attendance) error {
	return translateWriteError(conn(ctx, r.db).Create(attendance).Error, "create attendance")
}

func (r *attendanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Attendance, error) {
	var attendance entity.Attendance
	err := conn(ctx, r.db).First(&attendance, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &attendance, err
}

func (r *attendanceRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*entity.Attendance, error) {
	var attendance entity.Attendance
	err := conn(ctx, r.db).First(&attendance, "user_id = ? AND date = ?", userID, date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &attendance, err
}

func (r *attendanceRepository) Update(ctx context.Context, attendance *entity.Attendance) error {
	return conn(ctx, r.db).Save(attendance).Error
}

func (r *attendanceRepository) List(ctx context.Context, params *domainRepo.AttendanceFilterParams) ([]entity.Attendance, int64, error) {
	var records []entity.Attendance
	var total int64

	query := conn(ctx, r.db).Model(&entity.Attendance{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	// YYYY-MM-DD strings order the same as the dates they name
	if params.FromDate != "" {
		query = query.Where("date >= ?", params.FromDate)
	}
	if params.ToDate != "" {
		query = query.Where("date <= ?", params.ToDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("date DESC, staff_name ASC").
		Find(&records).Error

	return records, total, err
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) domainRepo.ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	return conn(ctx, r.db).Create(expense).Error
}

func (r *expenseRepository) List(ctx context.Context, params *domainRepo.ExpenseFilterParams) ([]entity.Expense, int64, error) {
	var expenses []entity.Expense
	var total int64

	query := conn(ctx, r.db).Model(&entity.Expense{}).Scopes(DateRangeScope("spent_at", params.Range))
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("spent_at DESC").
		Find(&expenses).Error

	return expenses, total, err
}

func (r *expenseRepository) SumInRange(ctx context.Context, dr domainRepo.DateRange) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&entity.Expense{}).
		Scopes(DateRangeScope("spent_at", dr)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

type dayClosingRepository struct {
	db *gorm.DB
}

// NewDayClosingRepository creates a new day-closing repository
func NewDayClosingRepository(db *gorm.DB) domainRepo.DayClosingRepository {
	return &dayClosingRepository{db: db}
}

func (r *dayClosingRepository) Create(ctx context.Context, closing *entity.DayClosing) error {
	return translateWriteError(conn(ctx, r.db).Create(closing).Error, "create day closing")
}

func (r *dayClosingRepository) GetByDate(ctx context.Context, businessDate string) (*entity.DayClosing, error) {
	var closing entity.DayClosing
	err := conn(ctx, r.db).First(&closing, "business_date = ?", businessDate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &closing, err
}

func (r *dayClosingRepository) GetLatestBefore(ctx context.Context, businessDate string) (*entity.DayClosing, error) {
	var closing entity.DayClosing
	err := conn(ctx, r.db).
		Where("business_date < ?", businessDate).
		Order("business_date DESC").
		First(&closing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &closing, err
}

func (r *dayClosingRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.DayClosing, int64, error) {
	var closings []entity.DayClosing
	var total int64

	query := conn(ctx, r.db).Model(&entity.DayClosing{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params)).
		Order("business_date DESC").
		Find(&closings).Error

	return closings, total, err
}
