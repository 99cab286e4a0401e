package model

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	AttendanceStatusActive   AttendanceStatus = "active"   // current binding
	AttendanceStatusMoved    AttendanceStatus = "moved"    // superseded by a move to another session
	AttendanceStatusCanceled AttendanceStatus = "canceled" // withdrawn by the student
)

// Attendance binds a student to exactly one clinic session within an
// enrollment context. A student holds at most one active attendance per
// session; a move retires the old row and creates a new one atomically.
type Attendance struct {
	ID              uuid.UUID        `json:"id"`
	StudentID       int64            `json:"student_id"`
	CourseID        int64            `json:"course_id"`
	ClinicSessionID uuid.UUID        `json:"clinic_session_id"`
	Status          AttendanceStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       *time.Time       `json:"updated_at"`

	// Joined for convenience on student views (not stored on the row).
	Session *ClinicSession `json:"session,omitempty"`
}

// IsActive checks if this row is the student's current binding.
func (a *Attendance) IsActive() bool {
	return a.Status == AttendanceStatusActive
}

// IsActionable reports whether the student may still act on this
// attendance. A binding whose session was canceled stays on the list but
// can no longer be moved or withdrawn.
func (a *Attendance) IsActionable() bool {
	if !a.IsActive() {
		return false
	}
	if a.Session != nil && a.Session.IsCanceled {
		return false
	}
	return true
}
