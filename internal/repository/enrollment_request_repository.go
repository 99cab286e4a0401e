package repository

import (
	"context"
	"fmt"

	"github.com/academyops/clinicboard/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentRequestRepository struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRequestRepository(pool *pgxpool.Pool) *EnrollmentRequestRepository {
	return &EnrollmentRequestRepository{pool: pool}
}

// Create inserts a pending request.
func (r *EnrollmentRequestRepository) Create(ctx context.Context, req *model.EnrollmentRequest) error {
	query := `
		INSERT INTO enrollment_requests (kind, requester_id, target_id, status, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		req.Kind,
		req.RequesterID,
		req.TargetID,
		req.Status,
		req.Message,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		return fmt.Errorf("create enrollment request: %w", err)
	}

	return nil
}

// GetByID fetches one request, nil when it does not exist.
func (r *EnrollmentRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.EnrollmentRequest, error) {
	query := `
		SELECT id, kind, requester_id, target_id, status, message, created_at, processed_at, processed_by_member_id
		FROM enrollment_requests
		WHERE id = $1
	`

	var req model.EnrollmentRequest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.Kind,
		&req.RequesterID,
		&req.TargetID,
		&req.Status,
		&req.Message,
		&req.CreatedAt,
		&req.ProcessedAt,
		&req.ProcessedByMemberID,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment request: %w", err)
	}

	return &req, nil
}

// Decide stamps an approve/reject decision onto a still-pending request.
// Returns false when the request was not pending anymore (or missing), so
// the caller can surface a conflict instead of silently re-deciding.
func (r *EnrollmentRequestRepository) Decide(ctx context.Context, id uuid.UUID, status string, processedBy int64) (bool, error) {
	query := `
		UPDATE enrollment_requests
		SET status = $1, processed_at = now(), processed_by_member_id = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.pool.Exec(ctx, query, status, processedBy, id, model.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("decide enrollment request: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// CancelByRequester withdraws a pending request; only its own requester
// matches the predicate. Returns false when nothing was still pending.
func (r *EnrollmentRequestRepository) CancelByRequester(ctx context.Context, id uuid.UUID, requesterID int64) (bool, error) {
	query := `
		UPDATE enrollment_requests
		SET status = $1, processed_at = now()
		WHERE id = $2 AND requester_id = $3 AND status = $4
	`

	result, err := r.pool.Exec(ctx, query, model.RequestStatusCanceled, id, requesterID, model.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("cancel enrollment request: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ListPendingByTarget returns the open requests awaiting a counterpart's
// decision, oldest first.
func (r *EnrollmentRequestRepository) ListPendingByTarget(ctx context.Context, kind model.RequestKind, targetID int64) ([]*model.EnrollmentRequest, error) {
	query := `
		SELECT id, kind, requester_id, target_id, status, message, created_at, processed_at, processed_by_member_id
		FROM enrollment_requests
		WHERE kind = $1 AND target_id = $2 AND status = $3
		ORDER BY created_at ASC
	`

	return r.list(ctx, query, kind, targetID, model.RequestStatusPending)
}

// ListByRequester returns everything a requester has filed, newest first.
func (r *EnrollmentRequestRepository) ListByRequester(ctx context.Context, kind model.RequestKind, requesterID int64) ([]*model.EnrollmentRequest, error) {
	query := `
		SELECT id, kind, requester_id, target_id, status, message, created_at, processed_at, processed_by_member_id
		FROM enrollment_requests
		WHERE kind = $1 AND requester_id = $2
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, kind, requesterID)
}

func (r *EnrollmentRequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.EnrollmentRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list enrollment requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.EnrollmentRequest
	for rows.Next() {
		var req model.EnrollmentRequest
		err := rows.Scan(
			&req.ID,
			&req.Kind,
			&req.RequesterID,
			&req.TargetID,
			&req.Status,
			&req.Message,
			&req.CreatedAt,
			&req.ProcessedAt,
			&req.ProcessedByMemberID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollment requests: %w", err)
	}

	return requests, nil
}
