package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/enum"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
)

// businessDateLayout is how business dates are stored and accepted.
const businessDateLayout = "2006-01-02"

// AttendanceService handles staff attendance
type AttendanceService struct {
	attendanceRepo repository.AttendanceRepository
	userRepo       repository.UserRepository
	publisher      events.Publisher
	loc            *time.Location
	now            func() time.Time
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	attendanceRepo repository.AttendanceRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
	loc *time.Location,
) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		loc:            loc,
		now:            time.Now,
	}
}

// MarkAttendanceInput represents the mark attendance input. Date defaults to
// today in store time.
type MarkAttendanceInput struct {
	UserID   uuid.UUID
	Date     string
	Status   enum.AttendanceStatus
	Note     string
	MarkedBy *uuid.UUID
}

// MarkAttendance records a user's attendance for a date. Present and half-day
// marks for today are stamped with a check-in time.
func (s *AttendanceService) MarkAttendance(ctx context.Context, input *MarkAttendanceInput) (*entity.Attendance, error) {
	if !input.Status.IsValid() {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "status", Message: "unknown attendance status"}})
	}

	now := s.now().In(s.loc)
	date := strings.TrimSpace(input.Date)
	if date == "" {
		date = now.Format(businessDateLayout)
	} else if _, err := time.ParseInLocation(businessDateLayout, date, s.loc); err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "date", Message: "must be YYYY-MM-DD"}})
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, asAppError(err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	existing, err := s.attendanceRepo.GetByUserAndDate(ctx, input.UserID, date)
	if err != nil {
		return nil, asAppError(err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Attendance already marked for " + user.Name + " on " + date)
	}

	record := &entity.Attendance{
		UserID:    user.ID,
		StaffName: user.Name,
		Date:      date,
		Status:    input.Status,
		Note:      strings.TrimSpace(input.Note),
		MarkedBy:  input.MarkedBy,
	}
	if date == now.Format(businessDateLayout) &&
		(input.Status == enum.AttendancePresent || input.Status == enum.AttendanceHalfDay) {
		record.CheckIn = &now
	}

	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError("Attendance already marked for " + user.Name + " on " + date)
		}
		return nil, asAppError(err)
	}

	s.publisher.Publish(ctx, events.NewEvent(events.CollectionAttendance, events.ActionCreated, record.ID.String(), record))
	return record, nil
}

// CheckOut stamps the check-out time on an attendance record
func (s *AttendanceService) CheckOut(ctx context.Context, id uuid.UUID) (*entity.Attendance, error) {
	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asAppError(err)
	}
	if record == nil {
		return nil, apperror.NewNotFoundError("Attendance")
	}
	if record.CheckOut != nil {
		return nil, apperror.NewConflictError("Already checked out")
	}
	if record.Status == enum.AttendanceAbsent || record.Status == enum.AttendanceLeave {
		return nil, apperror.NewBadRequestError("Cannot check out a " + record.Status.String() + " record")
	}

	now := s.now().In(s.loc)
	if record.CheckIn == nil {
		record.CheckIn = &now
	}
	record.CheckOut = &now

	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return nil, asAppError(err)
	}
	s.publisher.Publish(ctx, events.NewEvent(events.CollectionAttendance, events.ActionUpdated, record.ID.String(), record))
	return record, nil
}

// ListAttendance lists attendance records with filtering
func (s *AttendanceService) ListAttendance(ctx context.Context, params *repository.AttendanceFilterParams) (*pagination.PaginatedResult[entity.Attendance], error) {
	params.Pagination.Validate()
	records, total, err := s.attendanceRepo.List(ctx, params)
	if err != nil {
		return nil, asAppError(err)
	}
	return pagination.NewPaginatedResult(records, params.Pagination, total), nil
}
