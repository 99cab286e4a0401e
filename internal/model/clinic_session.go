package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionKind distinguishes schedule-generated sessions from ad-hoc ones.
type SessionKind string

const (
	SessionKindRegular   SessionKind = "regular"   // generated from a course's weekly schedule
	SessionKindEmergency SessionKind = "emergency" // created ad hoc by staff
)

// ClinicSession is one bookable clinic block. Dates and times stay
// string-typed ("2006-01-02", "15:04") because that is the wire form; the
// timeutil package owns all parsing.
type ClinicSession struct {
	ID         uuid.UUID   `json:"id"`
	BranchID   int64       `json:"branch_id"`
	TeacherID  int64       `json:"teacher_id"`
	Date       string      `json:"date"`       // YYYY-MM-DD
	StartTime  string      `json:"start_time"` // HH:MM
	EndTime    string      `json:"end_time"`   // HH:MM, exclusive
	Capacity   int         `json:"capacity"`
	Kind       SessionKind `json:"kind"`
	IsCanceled bool        `json:"is_canceled"`
	CreatedAt  time.Time   `json:"created_at"`
}

// IsEmergency checks if the session was created ad hoc.
func (s *ClinicSession) IsEmergency() bool {
	return s.Kind == SessionKindEmergency
}
