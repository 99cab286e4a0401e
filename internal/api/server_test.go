package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/academyops/clinicboard/internal/grid"
	"github.com/academyops/clinicboard/internal/model"
	"github.com/academyops/clinicboard/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memSessionStore implements service.SessionStore in memory.
type memSessionStore struct {
	sessions  map[uuid.UUID]*model.ClinicSession
	createErr error
}

func (m *memSessionStore) Create(ctx context.Context, s *model.ClinicSession) error {
	if m.createErr != nil {
		return m.createErr
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.ClinicSession, error) {
	return m.sessions[id], nil
}

func (m *memSessionStore) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	s, ok := m.sessions[id]
	if !ok || s.IsCanceled {
		return false, nil
	}
	s.IsCanceled = true
	return true, nil
}

func (m *memSessionStore) ListForRange(ctx context.Context, branchID, teacherID int64, dateStart, dateEnd string) ([]*model.ClinicSession, error) {
	var out []*model.ClinicSession
	for _, s := range m.sessions {
		if s.BranchID == branchID && s.TeacherID == teacherID && s.Date >= dateStart && s.Date <= dateEnd {
			out = append(out, s)
		}
	}
	return out, nil
}

// memAttendanceStore implements service.AttendanceStore in memory, enough
// for the handler tests. Guarded by a mutex so concurrent requests can
// share it; createGate, when set, holds Create open until the test
// releases it.
type memAttendanceStore struct {
	mu          sync.Mutex
	rows        []*model.Attendance
	createCalls int32
	createGate  chan struct{}
}

func (m *memAttendanceStore) Create(ctx context.Context, a *model.Attendance) error {
	atomic.AddInt32(&m.createCalls, 1)
	if m.createGate != nil {
		<-m.createGate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.Status = model.AttendanceStatusActive
	a.CreatedAt = time.Now()
	m.rows = append(m.rows, a)
	return nil
}

func (m *memAttendanceStore) Move(ctx context.Context, studentID int64, fromSessionID, toSessionID uuid.UUID) (*model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.StudentID == studentID && row.ClinicSessionID == fromSessionID && row.Status == model.AttendanceStatusActive {
			row.Status = model.AttendanceStatusMoved
			moved := &model.Attendance{
				ID: uuid.New(), StudentID: studentID, CourseID: row.CourseID,
				ClinicSessionID: toSessionID, Status: model.AttendanceStatusActive, CreatedAt: time.Now(),
			}
			m.rows = append(m.rows, moved)
			return moved, nil
		}
	}
	return nil, fmt.Errorf("no source attendance")
}

func (m *memAttendanceStore) GetActiveByStudent(ctx context.Context, studentID int64) ([]*model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Attendance
	for _, row := range m.rows {
		if row.StudentID == studentID && row.Status == model.AttendanceStatusActive {
			out = append(out, row)
		}
	}
	return out, nil
}

// memRequestStore implements service.RequestStore in memory.
type memRequestStore struct {
	requests map[uuid.UUID]*model.EnrollmentRequest
}

func (m *memRequestStore) Create(ctx context.Context, r *model.EnrollmentRequest) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.requests[r.ID] = r
	return nil
}

func (m *memRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*model.EnrollmentRequest, error) {
	return m.requests[id], nil
}

func (m *memRequestStore) Decide(ctx context.Context, id uuid.UUID, status string, processedBy int64) (bool, error) {
	r, ok := m.requests[id]
	if !ok || r.Status != model.RequestStatusPending {
		return false, nil
	}
	now := time.Now()
	r.Status = status
	r.ProcessedAt = &now
	r.ProcessedByMemberID = &processedBy
	return true, nil
}

func (m *memRequestStore) CancelByRequester(ctx context.Context, id uuid.UUID, requesterID int64) (bool, error) {
	r, ok := m.requests[id]
	if !ok || r.RequesterID != requesterID || r.Status != model.RequestStatusPending {
		return false, nil
	}
	r.Status = model.RequestStatusCanceled
	return true, nil
}

func (m *memRequestStore) ListPendingByTarget(ctx context.Context, kind model.RequestKind, targetID int64) ([]*model.EnrollmentRequest, error) {
	var out []*model.EnrollmentRequest
	for _, r := range m.requests {
		if r.Kind == kind && r.TargetID == targetID && r.Status == model.RequestStatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRequestStore) ListByRequester(ctx context.Context, kind model.RequestKind, requesterID int64) ([]*model.EnrollmentRequest, error) {
	var out []*model.EnrollmentRequest
	for _, r := range m.requests {
		if r.Kind == kind && r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// memMemberStore implements service.MemberReader in memory.
type memMemberStore struct {
	members map[int64]*model.Member
}

func (m *memMemberStore) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	return m.members[id], nil
}

func (m *memMemberStore) GetByIDs(ctx context.Context, ids []int64) ([]*model.Member, error) {
	var out []*model.Member
	for _, id := range ids {
		if member, ok := m.members[id]; ok {
			out = append(out, member)
		}
	}
	return out, nil
}

func newTestServer() (*Server, *memSessionStore, *memAttendanceStore) {
	logger := zap.NewNop()
	sessions := &memSessionStore{sessions: make(map[uuid.UUID]*model.ClinicSession)}
	attendance := &memAttendanceStore{}
	requests := &memRequestStore{requests: make(map[uuid.UUID]*model.EnrollmentRequest)}
	members := &memMemberStore{members: map[int64]*model.Member{
		99: {ID: 99, FullName: "Avery Cole", Role: model.MemberRoleStaff},
	}}

	window := grid.TimeWindow{StartHour: 8, EndHour: 20, PixelsPerHour: 60}
	server := NewServer(
		service.NewSessionService(sessions, logger),
		service.NewAttendanceService(attendance, sessions, logger),
		service.NewEnrollmentService(requests, members, logger),
		window,
		logger,
	)
	return server, sessions, attendance
}

func postJSON(t *testing.T, s *Server, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestCreateEmergencyEndpoint(t *testing.T) {
	s, _, _ := newTestServer()

	resp := postJSON(t, s, "/api/clinic-sessions/emergency", map[string]interface{}{
		"branch_id": 1, "teacher_id": 2,
		"date": "2026-08-26", "start_time": "09:00", "end_time": "10:00",
		"capacity": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "emergency", body["kind"])
	assert.NotEmpty(t, body["id"])
}

func TestCreateEmergencyEndpointEndBeforeStart(t *testing.T) {
	s, store, _ := newTestServer()

	resp := postJSON(t, s, "/api/clinic-sessions/emergency", map[string]interface{}{
		"branch_id": 1, "teacher_id": 2,
		"date": "2026-08-26", "start_time": "09:00", "end_time": "08:00",
		"capacity": 5,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "end_time", body["field"])
	assert.Empty(t, store.sessions)
}

func TestCancelEndpointConflict(t *testing.T) {
	s, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodDelete, "/api/clinic-sessions/"+uuid.NewString(), nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListSessionsRequiresBoardQuery(t *testing.T) {
	s, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/clinic-sessions/?teacher_id=2", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestBoardEndpointServesAndCachesPNG(t *testing.T) {
	s, _, _ := newTestServer()

	url := "/api/clinic-sessions/board.png?branch_id=1&teacher_id=2&week_of=2026-08-26"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	first, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Second hit comes from the cache and is byte-identical.
	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, url, nil), -1)
	require.NoError(t, err)
	second, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, s.InvalidateBoards(context.Background()))
	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, url, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEnrollmentBulkEndpoint(t *testing.T) {
	s, _, _ := newTestServer()

	var ids []string
	for i := 0; i < 3; i++ {
		resp := postJSON(t, s, "/api/enrollment-requests/", map[string]interface{}{
			"kind": "course", "requester_id": i + 1, "target_id": 42,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		ids = append(ids, decodeBody(t, resp)["id"].(string))
	}

	// Make one terminal beforehand so the bulk call partially fails.
	resp := postJSON(t, s, "/api/enrollment-requests/"+ids[1]+"/cancel", map[string]interface{}{
		"requester_id": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, s, "/api/enrollment-requests/bulk", map[string]interface{}{
		"request_ids": ids, "approve": true, "decider_id": 99,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["succeeded"])
	assert.Equal(t, float64(1), body["failed"])
}

func TestRequestAttendanceEndpointValidatesShape(t *testing.T) {
	s, _, _ := newTestServer()

	resp := postJSON(t, s, "/api/attendances/", map[string]interface{}{
		"student_id": 7, "course_id": 10, "session_id": "not-a-uuid",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDuplicateSubmissionsCollapse(t *testing.T) {
	s, sessions, attendance := newTestServer()

	session := &model.ClinicSession{
		ID: uuid.New(), BranchID: 1, TeacherID: 2,
		Date: "2026-08-26", StartTime: "09:00", EndTime: "10:00",
		Capacity: 5, Kind: model.SessionKindRegular,
	}
	sessions.sessions[session.ID] = session

	// Hold the first Create open so the second identical request arrives
	// while it is still in flight and joins it instead of running again.
	attendance.createGate = make(chan struct{})

	payload, err := json.Marshal(map[string]interface{}{
		"student_id": 7, "course_id": 10, "session_id": session.ID.String(),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/attendances/", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			if resp, err := s.app.Test(req, -1); err == nil {
				codes[i] = resp.StatusCode
			}
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(attendance.createGate)
	wg.Wait()

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated}, codes)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attendance.createCalls))
	assert.Len(t, attendance.rows, 1)
}

func TestStoreFailureMapsToServerError(t *testing.T) {
	s, sessions, _ := newTestServer()
	sessions.createErr = errors.New("connection refused")

	resp := postJSON(t, s, "/api/clinic-sessions/emergency", map[string]interface{}{
		"branch_id": 1, "teacher_id": 2,
		"date": "2026-08-26", "start_time": "09:00", "end_time": "10:00",
		"capacity": 5,
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "temporary failure, please retry", body["error"])
}
