package service

import (
	"context"
	"time"

	"github.com/academyops/clinicboard/internal/fault"
	"github.com/academyops/clinicboard/internal/model"
	"github.com/google/uuid"
)

// fakeSessionStore is an in-memory SessionStore for service tests.
type fakeSessionStore struct {
	sessions    map[uuid.UUID]*model.ClinicSession
	createCalls int
	createErr   error
	listErr     error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*model.ClinicSession)}
}

func (f *fakeSessionStore) Create(ctx context.Context, session *model.ClinicSession) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.ClinicSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionStore) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	session, ok := f.sessions[id]
	if !ok || session.IsCanceled {
		return false, nil
	}
	session.IsCanceled = true
	return true, nil
}

func (f *fakeSessionStore) ListForRange(ctx context.Context, branchID, teacherID int64, dateStart, dateEnd string) ([]*model.ClinicSession, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.ClinicSession
	for _, session := range f.sessions {
		if session.BranchID != branchID || session.TeacherID != teacherID {
			continue
		}
		if session.Date < dateStart || session.Date > dateEnd {
			continue
		}
		copied := *session
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeSessionStore) add(session *model.ClinicSession) *model.ClinicSession {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	f.sessions[session.ID] = session
	return session
}

// fakeAttendanceStore is an in-memory AttendanceStore mirroring the real
// repository's conflict checks.
type fakeAttendanceStore struct {
	sessions *fakeSessionStore
	rows     []*model.Attendance
	moveErr  error
}

func newFakeAttendanceStore(sessions *fakeSessionStore) *fakeAttendanceStore {
	return &fakeAttendanceStore{sessions: sessions}
}

func (f *fakeAttendanceStore) Create(ctx context.Context, attendance *model.Attendance) error {
	if err := f.checkBookable(attendance.ClinicSessionID, attendance.StudentID); err != nil {
		return err
	}
	attendance.ID = uuid.New()
	attendance.Status = model.AttendanceStatusActive
	attendance.CreatedAt = time.Now()
	copied := *attendance
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeAttendanceStore) Move(ctx context.Context, studentID int64, fromSessionID, toSessionID uuid.UUID) (*model.Attendance, error) {
	if f.moveErr != nil {
		return nil, f.moveErr
	}

	var source *model.Attendance
	for _, row := range f.rows {
		if row.StudentID == studentID && row.ClinicSessionID == fromSessionID && row.Status == model.AttendanceStatusActive {
			source = row
			break
		}
	}
	if source == nil {
		return nil, fault.Conflict("no active attendance on the source session")
	}
	if err := f.checkBookable(toSessionID, studentID); err != nil {
		return nil, err
	}

	source.Status = model.AttendanceStatusMoved
	moved := &model.Attendance{
		ID:              uuid.New(),
		StudentID:       studentID,
		CourseID:        source.CourseID,
		ClinicSessionID: toSessionID,
		Status:          model.AttendanceStatusActive,
		CreatedAt:       time.Now(),
	}
	f.rows = append(f.rows, moved)
	return moved, nil
}

func (f *fakeAttendanceStore) GetActiveByStudent(ctx context.Context, studentID int64) ([]*model.Attendance, error) {
	var out []*model.Attendance
	for _, row := range f.rows {
		if row.StudentID != studentID || row.Status != model.AttendanceStatusActive {
			continue
		}
		copied := *row
		if session, _ := f.sessions.GetByID(ctx, row.ClinicSessionID); session != nil {
			copied.Session = session
		}
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeAttendanceStore) checkBookable(sessionID uuid.UUID, studentID int64) error {
	session, ok := f.sessions.sessions[sessionID]
	if !ok {
		return fault.Conflict("session not found")
	}
	if session.IsCanceled {
		return fault.Conflict("session is canceled")
	}

	taken := 0
	for _, row := range f.rows {
		if row.ClinicSessionID == sessionID && row.Status == model.AttendanceStatusActive {
			taken++
			if row.StudentID == studentID {
				return fault.Conflict("student already attends this session")
			}
		}
	}
	if taken >= session.Capacity {
		return fault.Conflict("session is at capacity")
	}
	return nil
}

func (f *fakeAttendanceStore) activeOn(studentID int64, sessionID uuid.UUID) *model.Attendance {
	for _, row := range f.rows {
		if row.StudentID == studentID && row.ClinicSessionID == sessionID && row.Status == model.AttendanceStatusActive {
			return row
		}
	}
	return nil
}

// fakeRequestStore is an in-memory RequestStore.
type fakeRequestStore struct {
	requests  map[uuid.UUID]*model.EnrollmentRequest
	decideErr map[uuid.UUID]error
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{
		requests:  make(map[uuid.UUID]*model.EnrollmentRequest),
		decideErr: make(map[uuid.UUID]error),
	}
}

func (f *fakeRequestStore) Create(ctx context.Context, req *model.EnrollmentRequest) error {
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	copied := *req
	f.requests[req.ID] = &copied
	return nil
}

func (f *fakeRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*model.EnrollmentRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *req
	return &copied, nil
}

func (f *fakeRequestStore) Decide(ctx context.Context, id uuid.UUID, status string, processedBy int64) (bool, error) {
	if err := f.decideErr[id]; err != nil {
		return false, err
	}
	req, ok := f.requests[id]
	if !ok || req.Status != model.RequestStatusPending {
		return false, nil
	}
	now := time.Now()
	req.Status = status
	req.ProcessedAt = &now
	req.ProcessedByMemberID = &processedBy
	return true, nil
}

func (f *fakeRequestStore) CancelByRequester(ctx context.Context, id uuid.UUID, requesterID int64) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.RequesterID != requesterID || req.Status != model.RequestStatusPending {
		return false, nil
	}
	now := time.Now()
	req.Status = model.RequestStatusCanceled
	req.ProcessedAt = &now
	return true, nil
}

func (f *fakeRequestStore) ListPendingByTarget(ctx context.Context, kind model.RequestKind, targetID int64) ([]*model.EnrollmentRequest, error) {
	var out []*model.EnrollmentRequest
	for _, req := range f.requests {
		if req.Kind == kind && req.TargetID == targetID && req.Status == model.RequestStatusPending {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) ListByRequester(ctx context.Context, kind model.RequestKind, requesterID int64) ([]*model.EnrollmentRequest, error) {
	var out []*model.EnrollmentRequest
	for _, req := range f.requests {
		if req.Kind == kind && req.RequesterID == requesterID {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeMemberStore is an in-memory MemberReader.
type fakeMemberStore struct {
	members map[int64]*model.Member
}

func newFakeMemberStore(members ...*model.Member) *fakeMemberStore {
	f := &fakeMemberStore{members: make(map[int64]*model.Member)}
	for _, m := range members {
		f.members[m.ID] = m
	}
	return f
}

func (f *fakeMemberStore) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	member, ok := f.members[id]
	if !ok {
		return nil, nil
	}
	copied := *member
	return &copied, nil
}

func (f *fakeMemberStore) GetByIDs(ctx context.Context, ids []int64) ([]*model.Member, error) {
	var out []*model.Member
	for _, id := range ids {
		if member, ok := f.members[id]; ok {
			copied := *member
			out = append(out, &copied)
		}
	}
	return out, nil
}
