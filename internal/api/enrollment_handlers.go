package api

import (
	"github.com/academyops/clinicboard/internal/fault"
	"github.com/academyops/clinicboard/internal/model"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createRequestRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=course teacher"`
	RequesterID int64  `json:"requester_id" validate:"required"`
	TargetID    int64  `json:"target_id" validate:"required"`
	Message     string `json:"message"`
}

func (s *Server) createEnrollmentRequest(c *fiber.Ctx) error {
	var req createRequestRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	created, err := s.guard.do(func() (interface{}, error) {
		return s.enrollment.CreateRequest(c.Context(), model.RequestKind(req.Kind), req.RequesterID, req.TargetID, req.Message)
	}, "create-request", req.Kind, req.RequesterID, req.TargetID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

type decideRequestRequest struct {
	DeciderID int64 `json:"decider_id" validate:"required"`
}

func (s *Server) approveRequest(c *fiber.Ctx) error {
	return s.decideRequest(c, true)
}

func (s *Server) rejectRequest(c *fiber.Ctx) error {
	return s.decideRequest(c, false)
}

func (s *Server) decideRequest(c *fiber.Ctx, approve bool) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fault.Validation("id", "request id must be a uuid")
	}

	var req decideRequestRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	decided, err := s.guard.do(func() (interface{}, error) {
		if approve {
			return s.enrollment.Approve(c.Context(), requestID, req.DeciderID)
		}
		return s.enrollment.Reject(c.Context(), requestID, req.DeciderID)
	}, "decide-request", requestID, approve)
	if err != nil {
		return err
	}

	return c.JSON(decided)
}

type cancelRequestRequest struct {
	RequesterID int64 `json:"requester_id" validate:"required"`
}

func (s *Server) cancelRequest(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fault.Validation("id", "request id must be a uuid")
	}

	var req cancelRequestRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	canceled, err := s.guard.do(func() (interface{}, error) {
		return s.enrollment.CancelRequest(c.Context(), requestID, req.RequesterID)
	}, "cancel-request", requestID)
	if err != nil {
		return err
	}

	return c.JSON(canceled)
}

type bulkDecideRequest struct {
	RequestIDs []string `json:"request_ids" validate:"required,min=1,dive,uuid"`
	Approve    bool     `json:"approve"`
	DeciderID  int64    `json:"decider_id" validate:"required"`
}

func (s *Server) bulkDecideRequests(c *fiber.Ctx) error {
	var req bulkDecideRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(req.RequestIDs))
	for _, raw := range req.RequestIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fault.Validation("request_ids", "every request id must be a uuid")
		}
		ids = append(ids, id)
	}

	result := s.enrollment.BulkDecide(c.Context(), ids, req.Approve, req.DeciderID)

	failures := make(map[string]string, len(result.Errors))
	for id, err := range result.Errors {
		failures[id.String()] = err.Error()
	}

	return c.JSON(fiber.Map{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"failures":  failures,
	})
}

func (s *Server) listRequests(c *fiber.Ctx) error {
	kind := model.RequestKind(c.Query("kind"))
	if kind != model.RequestKindCourse && kind != model.RequestKindTeacher {
		return fault.Validation("kind", "kind must be course or teacher")
	}

	if targetID := int64(c.QueryInt("target_id")); targetID > 0 {
		requests, names, err := s.enrollment.ListPendingByTarget(c.Context(), kind, targetID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"requests":        requests,
			"requester_names": names,
		})
	}

	requesterID := int64(c.QueryInt("requester_id"))
	if requesterID <= 0 {
		return fault.Validation("requester_id", "target_id or requester_id is required")
	}

	requests, err := s.enrollment.ListByRequester(c.Context(), kind, requesterID)
	if err != nil {
		return err
	}
	return c.JSON(requests)
}
