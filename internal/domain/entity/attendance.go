package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/enum"
	"gorm.io/gorm"
)

// Attendance is a staff member's attendance for one business date. There is
// at most one record per user and date.
type Attendance struct {
	ID        uuid.UUID             `gorm:"size:36;primaryKey" json:"id"`
	UserID    uuid.UUID             `gorm:"size:36;not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	StaffName string                `gorm:"size:255;not null" json:"staff_name"`
	Date      string                `gorm:"size:10;not null;uniqueIndex:idx_attendance_user_date;index" json:"date"` // YYYY-MM-DD in store time
	Status    enum.AttendanceStatus `gorm:"default:0" json:"status"`
	CheckIn   *time.Time            `json:"check_in,omitempty"`
	CheckOut  *time.Time            `json:"check_out,omitempty"`
	Note      string                `gorm:"size:500" json:"note,omitempty"`
	MarkedBy  *uuid.UUID            `gorm:"size:36" json:"marked_by,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new attendance record
func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Attendance model
func (Attendance) TableName() string {
	return "attendance"
}

// HoursWorked returns the time between check-in and check-out, or zero.
func (a *Attendance) HoursWorked() time.Duration {
	if a.CheckIn == nil || a.CheckOut == nil || a.CheckOut.Before(*a.CheckIn) {
		return 0
	}
	return a.CheckOut.Sub(*a.CheckIn)
}
