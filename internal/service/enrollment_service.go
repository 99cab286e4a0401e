package service

import (
	"context"

	"github.com/academyops/clinicboard/internal/fault"
	"github.com/academyops/clinicboard/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestStore is the persistence surface for enrollment requests.
type RequestStore interface {
	Create(ctx context.Context, req *model.EnrollmentRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.EnrollmentRequest, error)
	Decide(ctx context.Context, id uuid.UUID, status string, processedBy int64) (bool, error)
	CancelByRequester(ctx context.Context, id uuid.UUID, requesterID int64) (bool, error)
	ListPendingByTarget(ctx context.Context, kind model.RequestKind, targetID int64) ([]*model.EnrollmentRequest, error)
	ListByRequester(ctx context.Context, kind model.RequestKind, requesterID int64) ([]*model.EnrollmentRequest, error)
}

// MemberReader resolves academy members for request checks and for
// naming requesters on review screens.
type MemberReader interface {
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Member, error)
}

// EnrollmentService runs the shared four-state request workflow for
// student-course and student-teacher relationships. Pending requests
// transition once; approved, rejected and canceled are terminal.
type EnrollmentService struct {
	store   RequestStore
	members MemberReader
	logger  *zap.Logger
}

func NewEnrollmentService(store RequestStore, members MemberReader, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{
		store:   store,
		members: members,
		logger:  logger,
	}
}

// CreateRequest files a new pending request.
func (s *EnrollmentService) CreateRequest(ctx context.Context, kind model.RequestKind, requesterID, targetID int64, message string) (*model.EnrollmentRequest, error) {
	if kind != model.RequestKindCourse && kind != model.RequestKindTeacher {
		return nil, fault.Validation("kind", "unknown request kind")
	}
	if requesterID <= 0 {
		return nil, fault.Validation("requester_id", "requester is required")
	}
	if targetID <= 0 {
		return nil, fault.Validation("target_id", "target is required")
	}

	if kind == model.RequestKindTeacher {
		target, err := s.members.GetByID(ctx, targetID)
		if err != nil {
			return nil, fault.Transport("get target member", err)
		}
		if target == nil || !target.IsTeacher() {
			return nil, fault.Validation("target_id", "target is not a teacher")
		}
	}

	req := &model.EnrollmentRequest{
		Kind:        kind,
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      model.RequestStatusPending,
		Message:     message,
	}
	if err := s.store.Create(ctx, req); err != nil {
		return nil, fault.Transport("create enrollment request", err)
	}

	s.logger.Info("Enrollment request created",
		zap.String("request_id", req.ID.String()),
		zap.String("kind", string(kind)),
		zap.Int64("requester_id", requesterID),
		zap.Int64("target_id", targetID),
	)

	return req, nil
}

// Approve transitions a pending request to approved and stamps who
// decided it.
func (s *EnrollmentService) Approve(ctx context.Context, requestID uuid.UUID, deciderID int64) (*model.EnrollmentRequest, error) {
	return s.decide(ctx, requestID, model.RequestStatusApproved, deciderID)
}

// Reject transitions a pending request to rejected.
func (s *EnrollmentService) Reject(ctx context.Context, requestID uuid.UUID, deciderID int64) (*model.EnrollmentRequest, error) {
	return s.decide(ctx, requestID, model.RequestStatusRejected, deciderID)
}

func (s *EnrollmentService) decide(ctx context.Context, requestID uuid.UUID, status string, deciderID int64) (*model.EnrollmentRequest, error) {
	if deciderID <= 0 {
		return nil, fault.Validation("decider_id", "decider is required")
	}

	decider, err := s.members.GetByID(ctx, deciderID)
	if err != nil {
		return nil, fault.Transport("get decider member", err)
	}
	if decider == nil || !decider.CanDecide() {
		return nil, fault.Validation("decider_id", "decider must be staff or a teacher")
	}

	decided, err := s.store.Decide(ctx, requestID, status, deciderID)
	if err != nil {
		return nil, fault.Transport("decide enrollment request", err)
	}
	if !decided {
		return nil, fault.Conflict("request is not pending")
	}

	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, fault.Transport("get enrollment request", err)
	}

	s.logger.Info("Enrollment request decided",
		zap.String("request_id", requestID.String()),
		zap.String("status", status),
		zap.Int64("decider_id", deciderID),
	)

	return req, nil
}

// CancelRequest withdraws a still-pending request; only the original
// requester may do it.
func (s *EnrollmentService) CancelRequest(ctx context.Context, requestID uuid.UUID, requesterID int64) (*model.EnrollmentRequest, error) {
	canceled, err := s.store.CancelByRequester(ctx, requestID, requesterID)
	if err != nil {
		return nil, fault.Transport("cancel enrollment request", err)
	}
	if !canceled {
		return nil, fault.Conflict("request is not pending or not yours")
	}

	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, fault.Transport("get enrollment request", err)
	}

	s.logger.Info("Enrollment request canceled",
		zap.String("request_id", requestID.String()),
		zap.Int64("requester_id", requesterID),
	)

	return req, nil
}

// BulkResult aggregates a bulk decision's outcome.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    map[uuid.UUID]error
}

// BulkDecide applies Approve or Reject independently to each id. A
// failure on one request never blocks the rest; the result carries both
// counts and the per-id errors.
func (s *EnrollmentService) BulkDecide(ctx context.Context, requestIDs []uuid.UUID, approve bool, deciderID int64) BulkResult {
	result := BulkResult{Errors: make(map[uuid.UUID]error)}

	for _, id := range requestIDs {
		var err error
		if approve {
			_, err = s.Approve(ctx, id, deciderID)
		} else {
			_, err = s.Reject(ctx, id, deciderID)
		}

		if err != nil {
			result.Failed++
			result.Errors[id] = err
			s.logger.Warn("Bulk decision item failed",
				zap.String("request_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		result.Succeeded++
	}

	return result
}

// ListPendingByTarget returns the open requests awaiting the counterpart,
// plus the requester names a review screen shows alongside them.
func (s *EnrollmentService) ListPendingByTarget(ctx context.Context, kind model.RequestKind, targetID int64) ([]*model.EnrollmentRequest, map[int64]string, error) {
	requests, err := s.store.ListPendingByTarget(ctx, kind, targetID)
	if err != nil {
		return nil, nil, fault.Transport("list pending requests", err)
	}

	ids := make([]int64, 0, len(requests))
	seen := make(map[int64]bool, len(requests))
	for _, req := range requests {
		if !seen[req.RequesterID] {
			seen[req.RequesterID] = true
			ids = append(ids, req.RequesterID)
		}
	}

	members, err := s.members.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fault.Transport("get requester members", err)
	}

	names := make(map[int64]string, len(members))
	for _, m := range members {
		names[m.ID] = m.FullName
	}

	return requests, names, nil
}

// ListByRequester returns everything the requester has filed.
func (s *EnrollmentService) ListByRequester(ctx context.Context, kind model.RequestKind, requesterID int64) ([]*model.EnrollmentRequest, error) {
	requests, err := s.store.ListByRequester(ctx, kind, requesterID)
	if err != nil {
		return nil, fault.Transport("list requests", err)
	}
	return requests, nil
}
