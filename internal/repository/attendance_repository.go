package repository

import (
	"context"
	"fmt"

	"github.com/academyops/clinicboard/internal/fault"
	"github.com/academyops/clinicboard/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AttendanceRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create inserts an active attendance after re-checking session state and
// capacity under a row lock. The service pre-checks the same conditions
// for fast feedback; the row here is the authority of record.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *model.Attendance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.checkSessionBookable(ctx, tx, attendance.ClinicSessionID, attendance.StudentID); err != nil {
		return err
	}

	query := `
		INSERT INTO attendances (student_id, course_id, clinic_session_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = tx.QueryRow(
		ctx, query,
		attendance.StudentID,
		attendance.CourseID,
		attendance.ClinicSessionID,
		model.AttendanceStatusActive,
	).Scan(&attendance.ID, &attendance.CreatedAt)

	if err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	attendance.Status = model.AttendanceStatusActive

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Move retires the student's active attendance on fromSessionID and
// creates a new one on toSessionID in a single transaction. Any failed
// check rolls the whole thing back, leaving the source attendance intact.
func (r *AttendanceRepository) Move(ctx context.Context, studentID int64, fromSessionID, toSessionID uuid.UUID) (*model.Attendance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the source row so a concurrent move of the same binding waits.
	var sourceID uuid.UUID
	var courseID int64
	err = tx.QueryRow(ctx, `
		SELECT id, course_id
		FROM attendances
		WHERE student_id = $1 AND clinic_session_id = $2 AND status = $3
		FOR UPDATE
	`, studentID, fromSessionID, model.AttendanceStatusActive).Scan(&sourceID, &courseID)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fault.Conflict("no active attendance on the source session")
		}
		return nil, fmt.Errorf("lock source attendance: %w", err)
	}

	if err := r.checkSessionBookable(ctx, tx, toSessionID, studentID); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE attendances
		SET status = $1, updated_at = now()
		WHERE id = $2
	`, model.AttendanceStatusMoved, sourceID)
	if err != nil {
		return nil, fmt.Errorf("retire source attendance: %w", err)
	}

	moved := &model.Attendance{
		StudentID:       studentID,
		CourseID:        courseID,
		ClinicSessionID: toSessionID,
		Status:          model.AttendanceStatusActive,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO attendances (student_id, course_id, clinic_session_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, moved.StudentID, moved.CourseID, moved.ClinicSessionID, moved.Status).Scan(&moved.ID, &moved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create destination attendance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return moved, nil
}

// checkSessionBookable locks the session row and verifies it can take one
// more attendance for this student.
func (r *AttendanceRepository) checkSessionBookable(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, studentID int64) error {
	var capacity int
	var isCanceled bool
	err := tx.QueryRow(ctx, `
		SELECT capacity, is_canceled
		FROM clinic_sessions
		WHERE id = $1
		FOR UPDATE
	`, sessionID).Scan(&capacity, &isCanceled)

	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Conflict("session not found")
		}
		return fmt.Errorf("lock session: %w", err)
	}

	if isCanceled {
		return fault.Conflict("session is canceled")
	}

	var taken int
	err = tx.QueryRow(ctx, `
		SELECT count(*)
		FROM attendances
		WHERE clinic_session_id = $1 AND status = $2
	`, sessionID, model.AttendanceStatusActive).Scan(&taken)
	if err != nil {
		return fmt.Errorf("count attendance: %w", err)
	}

	if taken >= capacity {
		return fault.Conflict("session is at capacity")
	}

	var duplicates int
	err = tx.QueryRow(ctx, `
		SELECT count(*)
		FROM attendances
		WHERE clinic_session_id = $1 AND student_id = $2 AND status = $3
	`, sessionID, studentID, model.AttendanceStatusActive).Scan(&duplicates)
	if err != nil {
		return fmt.Errorf("count duplicate attendance: %w", err)
	}

	if duplicates > 0 {
		return fault.Conflict("student already attends this session")
	}

	return nil
}

// GetActiveByStudent returns the student's active bindings with their
// sessions joined in, newest first.
func (r *AttendanceRepository) GetActiveByStudent(ctx context.Context, studentID int64) ([]*model.Attendance, error) {
	query := `
		SELECT a.id, a.student_id, a.course_id, a.clinic_session_id, a.status, a.created_at, a.updated_at,
		       s.id, s.branch_id, s.teacher_id, s.date, s.start_time, s.end_time, s.capacity, s.kind, s.is_canceled, s.created_at
		FROM attendances a
		JOIN clinic_sessions s ON s.id = a.clinic_session_id
		WHERE a.student_id = $1 AND a.status = $2
		ORDER BY s.date ASC, s.start_time ASC
	`

	rows, err := r.pool.Query(ctx, query, studentID, model.AttendanceStatusActive)
	if err != nil {
		return nil, fmt.Errorf("get attendance by student: %w", err)
	}
	defer rows.Close()

	var attendances []*model.Attendance
	for rows.Next() {
		var a model.Attendance
		var s model.ClinicSession
		err := rows.Scan(
			&a.ID, &a.StudentID, &a.CourseID, &a.ClinicSessionID, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&s.ID, &s.BranchID, &s.TeacherID, &s.Date, &s.StartTime, &s.EndTime, &s.Capacity, &s.Kind, &s.IsCanceled, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		a.Session = &s
		attendances = append(attendances, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendances: %w", err)
	}

	return attendances, nil
}
