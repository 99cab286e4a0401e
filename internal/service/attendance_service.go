package service

import (
	"context"
	"time"

	"github.com/academyops/clinicboard/internal/fault"
	"github.com/academyops/clinicboard/internal/model"
	"github.com/academyops/clinicboard/internal/movemode"
	"github.com/academyops/clinicboard/internal/timeutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LockMinutes is the move-lock window: once a session starts in this many
// minutes or fewer, students may no longer move their attendance into it.
const LockMinutes = 30

// AttendanceStore is the persistence surface for attendance bindings.
type AttendanceStore interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	Move(ctx context.Context, studentID int64, fromSessionID, toSessionID uuid.UUID) (*model.Attendance, error)
	GetActiveByStudent(ctx context.Context, studentID int64) ([]*model.Attendance, error)
}

// SessionReader is the narrow session lookup the coordinator pre-checks
// against.
type SessionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ClinicSession, error)
}

// AttendanceService coordinates a student's session bindings: requesting
// attendance, the single atomic move between sessions, and the board's
// move-mode state.
type AttendanceService struct {
	store    AttendanceStore
	sessions SessionReader
	moves    *movemode.Manager
	logger   *zap.Logger
	now      func() time.Time
	onMutate func()
}

func NewAttendanceService(store AttendanceStore, sessions SessionReader, logger *zap.Logger) *AttendanceService {
	return &AttendanceService{
		store:    store,
		sessions: sessions,
		moves:    movemode.NewManager(),
		logger:   logger,
		now:      time.Now,
	}
}

// OnMutate registers a hook fired after every successful mutation.
func (s *AttendanceService) OnMutate(fn func()) {
	s.onMutate = fn
}

// SetClock overrides the wall clock, for tests of the lock window.
func (s *AttendanceService) SetClock(now func() time.Time) {
	s.now = now
}

// RequestAttendance binds a student to a session within a course context.
// The target must be live and not already held by the student; both are
// pre-checked here for immediate feedback and re-checked by the store
// under a lock.
func (s *AttendanceService) RequestAttendance(ctx context.Context, studentID, courseID int64, sessionID uuid.UUID) (*model.Attendance, error) {
	if studentID <= 0 {
		return nil, fault.Validation("student_id", "student is required")
	}
	if courseID <= 0 {
		return nil, fault.Validation("course_id", "course is required")
	}
	if sessionID == uuid.Nil {
		return nil, fault.Validation("session_id", "session is required")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fault.Conflict("session not found")
	}
	if session.IsCanceled {
		return nil, fault.Validation("session_id", "session is canceled")
	}

	held, err := s.activeSessionSet(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if held[sessionID] {
		return nil, fault.Validation("session_id", "already attending this session")
	}

	attendance := &model.Attendance{
		StudentID:       studentID,
		CourseID:        courseID,
		ClinicSessionID: sessionID,
	}
	if err := s.store.Create(ctx, attendance); err != nil {
		if fault.IsConflict(err) {
			return nil, err
		}
		return nil, fault.Transport("request attendance", err)
	}

	s.logger.Info("Attendance requested",
		zap.Int64("student_id", studentID),
		zap.Int64("course_id", courseID),
		zap.String("session_id", sessionID.String()),
	)

	s.mutated()
	return attendance, nil
}

// MoveAttendance is the only mutation that changes a student's session
// binding. All preconditions run before the store sees the request; the
// store then executes the detach+attach as one transaction, so a failure
// at any point leaves the source attendance exactly as it was.
func (s *AttendanceService) MoveAttendance(ctx context.Context, studentID int64, fromSessionID, toSessionID uuid.UUID) (*model.Attendance, error) {
	if toSessionID == fromSessionID {
		return nil, fault.Validation("to_session_id", "destination is the same session")
	}

	dest, err := s.sessions.GetByID(ctx, toSessionID)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, fault.Conflict("destination session not found")
	}
	if dest.IsCanceled {
		return nil, fault.Validation("to_session_id", "destination session is canceled")
	}

	held, err := s.activeSessionSet(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if held[toSessionID] {
		return nil, fault.Validation("to_session_id", "already attending the destination session")
	}

	// Only the destination is lock-checked; moving away from a session
	// that is about to start is always allowed.
	if s.isLocked(dest) {
		return nil, fault.Validation("to_session_id", "destination session starts too soon to move in")
	}

	moved, err := s.store.Move(ctx, studentID, fromSessionID, toSessionID)
	if err != nil {
		if fault.IsConflict(err) {
			return nil, err
		}
		return nil, fault.Transport("move attendance", err)
	}

	s.moves.Disarm(studentID)

	s.logger.Info("Attendance moved",
		zap.Int64("student_id", studentID),
		zap.String("from_session_id", fromSessionID.String()),
		zap.String("to_session_id", toSessionID.String()),
	)

	s.mutated()
	return moved, nil
}

// ListForStudent returns the student's active bindings and reconciles the
// board's move mode against them, so a vanished source attendance
// auto-disarms an armed move.
func (s *AttendanceService) ListForStudent(ctx context.Context, studentID int64) ([]*model.Attendance, error) {
	attendances, err := s.store.GetActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, fault.Transport("list attendance", err)
	}

	active := make(map[uuid.UUID]bool, len(attendances))
	for _, a := range attendances {
		if a.IsActionable() {
			active[a.ClinicSessionID] = true
		}
	}
	s.moves.Reconcile(studentID, active)

	return attendances, nil
}

// ArmMove pins a source session as the student's move origin. Arming
// requires a live attendance on that session.
func (s *AttendanceService) ArmMove(ctx context.Context, studentID int64, sourceSessionID uuid.UUID) (movemode.State, error) {
	held, err := s.activeSessionSet(ctx, studentID)
	if err != nil {
		return movemode.Idle(), err
	}
	return s.moves.Arm(studentID, sourceSessionID, held)
}

// DisarmMove drops the student back to the idle board state.
func (s *AttendanceService) DisarmMove(studentID int64) {
	s.moves.Disarm(studentID)
}

// MoveState reports the student's current move-mode state.
func (s *AttendanceService) MoveState(studentID int64) movemode.State {
	return s.moves.Get(studentID)
}

// isLocked applies the move-lock rule: locked once the session starts in
// LockMinutes or fewer (boundary inclusive). A session whose date or time
// does not parse counts as NOT locked; the store's own checks stay the
// final authority for such rows.
func (s *AttendanceService) isLocked(session *model.ClinicSession) bool {
	start, ok := timeutil.CombineLocal(session.Date, session.StartTime)
	if !ok {
		return false
	}
	return start.Sub(s.now()) <= LockMinutes*time.Minute
}

// activeSessionSet builds the session-id set of the student's actionable
// bindings, the local cache the pre-checks run against.
func (s *AttendanceService) activeSessionSet(ctx context.Context, studentID int64) (map[uuid.UUID]bool, error) {
	attendances, err := s.store.GetActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, fault.Transport("list attendance", err)
	}

	held := make(map[uuid.UUID]bool, len(attendances))
	for _, a := range attendances {
		if a.IsActionable() {
			held[a.ClinicSessionID] = true
		}
	}
	return held, nil
}

func (s *AttendanceService) mutated() {
	if s.onMutate != nil {
		s.onMutate()
	}
}
