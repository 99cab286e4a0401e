package service

import (
	"context"

	"github.com/academyops/clinicboard/internal/fault"
	"github.com/academyops/clinicboard/internal/model"
	"github.com/academyops/clinicboard/internal/timeutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore is the persistence surface the session lifecycle needs.
type SessionStore interface {
	Create(ctx context.Context, session *model.ClinicSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ClinicSession, error)
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
	ListForRange(ctx context.Context, branchID, teacherID int64, dateStart, dateEnd string) ([]*model.ClinicSession, error)
}

// SessionService governs the clinic-session lifecycle. Regular sessions
// are generated elsewhere from course schedules; this service creates
// emergency ones, cancels, and projects weeks onto day buckets.
type SessionService struct {
	store    SessionStore
	logger   *zap.Logger
	onMutate func()
}

func NewSessionService(store SessionStore, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:  store,
		logger: logger,
	}
}

// OnMutate registers a hook fired after every successful mutation, used
// to nudge board refreshes.
func (s *SessionService) OnMutate(fn func()) {
	s.onMutate = fn
}

// EmergencySessionInput is the staff-entered form for an ad-hoc session.
type EmergencySessionInput struct {
	BranchID  int64
	TeacherID int64
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Capacity  int
}

// CreateEmergency creates a one-off session. Every precondition is
// checked here first; a violation returns a field-specific validation
// error and never reaches the store.
func (s *SessionService) CreateEmergency(ctx context.Context, input EmergencySessionInput) (*model.ClinicSession, error) {
	if input.BranchID <= 0 {
		return nil, fault.Validation("branch_id", "branch is required")
	}
	if input.TeacherID <= 0 {
		return nil, fault.Validation("teacher_id", "teacher is required")
	}
	if input.Date == "" {
		return nil, fault.Validation("date", "date is required")
	}
	if _, ok := timeutil.ParseDate(input.Date); !ok {
		return nil, fault.Validation("date", "date must be YYYY-MM-DD")
	}
	if input.StartTime == "" {
		return nil, fault.Validation("start_time", "start time is required")
	}
	start, ok := timeutil.MinutesSinceMidnight(input.StartTime)
	if !ok {
		return nil, fault.Validation("start_time", "start time must be HH:MM")
	}
	if input.EndTime == "" {
		return nil, fault.Validation("end_time", "end time is required")
	}
	end, ok := timeutil.MinutesSinceMidnight(input.EndTime)
	if !ok {
		return nil, fault.Validation("end_time", "end time must be HH:MM")
	}
	if end <= start {
		return nil, fault.Validation("end_time", "end time must be after start time")
	}
	if input.Capacity < 1 {
		return nil, fault.Validation("capacity", "capacity must be at least 1")
	}

	session := &model.ClinicSession{
		BranchID:  input.BranchID,
		TeacherID: input.TeacherID,
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Capacity:  input.Capacity,
		Kind:      model.SessionKindEmergency,
	}

	if err := s.store.Create(ctx, session); err != nil {
		return nil, fault.Transport("create emergency session", err)
	}

	s.logger.Info("Emergency session created",
		zap.String("session_id", session.ID.String()),
		zap.Int64("branch_id", session.BranchID),
		zap.Int64("teacher_id", session.TeacherID),
		zap.String("date", session.Date),
		zap.String("time", timeutil.FormatTimeRange(session.StartTime, session.EndTime)),
	)

	s.mutated()
	return session, nil
}

// Cancel marks a session canceled. Sessions never un-cancel; a session
// that is already canceled, or missing, surfaces as a conflict so the
// caller refreshes its list.
func (s *SessionService) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return fault.Transport("get session", err)
	}
	if session == nil {
		return fault.Conflict("session not found")
	}
	if session.IsCanceled {
		return fault.Conflict("session is already canceled")
	}

	canceled, err := s.store.Cancel(ctx, sessionID)
	if err != nil {
		return fault.Transport("cancel session", err)
	}
	if !canceled {
		// Another actor canceled it between the read and the update.
		return fault.Conflict("session is already canceled")
	}

	s.logger.Info("Session canceled",
		zap.String("session_id", sessionID.String()),
		zap.Int64("teacher_id", session.TeacherID),
	)

	s.mutated()
	return nil
}

// ListForWeek projects a teacher's week at a branch onto day buckets for
// the board. A week with no sessions is an empty map, not an error.
func (s *SessionService) ListForWeek(ctx context.Context, branchID, teacherID int64, week timeutil.WeekRange) (map[timeutil.DayKey][]*model.ClinicSession, error) {
	sessions, err := s.store.ListForRange(
		ctx, branchID, teacherID,
		timeutil.FormatDate(week.Start),
		timeutil.FormatDate(week.End),
	)
	if err != nil {
		return nil, fault.Transport("list sessions", err)
	}

	buckets := make(map[timeutil.DayKey][]*model.ClinicSession)
	for _, session := range sessions {
		day, ok := timeutil.DayKeyOf(session.Date)
		if !ok {
			s.logger.Warn("Session with unparseable date skipped on board",
				zap.String("session_id", session.ID.String()),
				zap.String("date", session.Date),
			)
			continue
		}
		buckets[day] = append(buckets[day], session)
	}

	return buckets, nil
}

// GetByID exposes a single session read for pre-move checks and screens.
func (s *SessionService) GetByID(ctx context.Context, sessionID uuid.UUID) (*model.ClinicSession, error) {
	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fault.Transport("get session", err)
	}
	return session, nil
}

func (s *SessionService) mutated() {
	if s.onMutate != nil {
		s.onMutate()
	}
}
