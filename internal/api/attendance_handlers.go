package api

import (
	"github.com/academyops/clinicboard/internal/fault"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type requestAttendanceRequest struct {
	StudentID int64  `json:"student_id" validate:"required"`
	CourseID  int64  `json:"course_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required,uuid"`
}

func (s *Server) requestAttendance(c *fiber.Ctx) error {
	var req requestAttendanceRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return fault.Validation("session_id", "session id must be a uuid")
	}

	attendance, err := s.guard.do(func() (interface{}, error) {
		return s.attendance.RequestAttendance(c.Context(), req.StudentID, req.CourseID, sessionID)
	}, "request-attendance", req.StudentID, sessionID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(attendance)
}

type moveAttendanceRequest struct {
	StudentID     int64  `json:"student_id" validate:"required"`
	FromSessionID string `json:"from_session_id" validate:"required,uuid"`
	ToSessionID   string `json:"to_session_id" validate:"required,uuid"`
}

func (s *Server) moveAttendance(c *fiber.Ctx) error {
	var req moveAttendanceRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}
	fromID, err := uuid.Parse(req.FromSessionID)
	if err != nil {
		return fault.Validation("from_session_id", "session id must be a uuid")
	}
	toID, err := uuid.Parse(req.ToSessionID)
	if err != nil {
		return fault.Validation("to_session_id", "session id must be a uuid")
	}

	moved, err := s.guard.do(func() (interface{}, error) {
		return s.attendance.MoveAttendance(c.Context(), req.StudentID, fromID, toID)
	}, "move-attendance", req.StudentID, fromID, toID)
	if err != nil {
		return err
	}

	return c.JSON(moved)
}

func (s *Server) listAttendances(c *fiber.Ctx) error {
	studentID := int64(c.QueryInt("student_id"))
	if studentID <= 0 {
		return fault.Validation("student_id", "student is required")
	}

	attendances, err := s.attendance.ListForStudent(c.Context(), studentID)
	if err != nil {
		return err
	}

	state := s.attendance.MoveState(studentID)
	return c.JSON(fiber.Map{
		"attendances": attendances,
		"move_mode": fiber.Map{
			"armed":             state.IsArmed(),
			"source_session_id": state.Source(),
		},
	})
}

type armMoveModeRequest struct {
	StudentID int64  `json:"student_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required,uuid"`
}

func (s *Server) armMoveMode(c *fiber.Ctx) error {
	var req armMoveModeRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return fault.Validation("session_id", "session id must be a uuid")
	}

	state, err := s.attendance.ArmMove(c.Context(), req.StudentID, sessionID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"armed":             state.IsArmed(),
		"source_session_id": state.Source(),
	})
}

func (s *Server) disarmMoveMode(c *fiber.Ctx) error {
	studentID := int64(c.QueryInt("student_id"))
	if studentID <= 0 {
		return fault.Validation("student_id", "student is required")
	}

	s.attendance.DisarmMove(studentID)
	return c.SendStatus(fiber.StatusNoContent)
}
