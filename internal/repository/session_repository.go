package repository

import (
	"context"
	"fmt"

	"github.com/academyops/clinicboard/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a clinic session and fills the store-assigned fields.
func (r *SessionRepository) Create(ctx context.Context, session *model.ClinicSession) error {
	query := `
		INSERT INTO clinic_sessions (branch_id, teacher_id, date, start_time, end_time, capacity, kind)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		session.BranchID,
		session.TeacherID,
		session.Date,
		session.StartTime,
		session.EndTime,
		session.Capacity,
		session.Kind,
	).Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		return fmt.Errorf("create clinic session: %w", err)
	}

	return nil
}

// GetByID fetches one session, nil when it does not exist.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ClinicSession, error) {
	query := `
		SELECT id, branch_id, teacher_id, date, start_time, end_time, capacity, kind, is_canceled, created_at
		FROM clinic_sessions
		WHERE id = $1
	`

	var session model.ClinicSession
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.BranchID,
		&session.TeacherID,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.Capacity,
		&session.Kind,
		&session.IsCanceled,
		&session.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get clinic session by id: %w", err)
	}

	return &session, nil
}

// Cancel flips is_canceled on. Sessions are never deleted or un-canceled;
// a second cancel finds zero live rows and reports it.
func (r *SessionRepository) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE clinic_sessions
		SET is_canceled = true
		WHERE id = $1 AND is_canceled = false
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("cancel clinic session: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ListForRange returns a teacher's sessions at a branch with dates inside
// [dateStart, dateEnd], ordered for stable board stacking.
func (r *SessionRepository) ListForRange(ctx context.Context, branchID, teacherID int64, dateStart, dateEnd string) ([]*model.ClinicSession, error) {
	query := `
		SELECT id, branch_id, teacher_id, date, start_time, end_time, capacity, kind, is_canceled, created_at
		FROM clinic_sessions
		WHERE branch_id = $1 AND teacher_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date ASC, start_time ASC, end_time ASC
	`

	rows, err := r.pool.Query(ctx, query, branchID, teacherID, dateStart, dateEnd)
	if err != nil {
		return nil, fmt.Errorf("list clinic sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.ClinicSession
	for rows.Next() {
		var session model.ClinicSession
		err := rows.Scan(
			&session.ID,
			&session.BranchID,
			&session.TeacherID,
			&session.Date,
			&session.StartTime,
			&session.EndTime,
			&session.Capacity,
			&session.Kind,
			&session.IsCanceled,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan clinic session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clinic sessions: %w", err)
	}

	return sessions, nil
}
