package api

import (
	"fmt"
	"time"

	"github.com/academyops/clinicboard/internal/fault"
	"github.com/academyops/clinicboard/internal/grid"
	"github.com/academyops/clinicboard/internal/service"
	"github.com/academyops/clinicboard/internal/timeutil"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createEmergencyRequest struct {
	BranchID  int64  `json:"branch_id" validate:"required"`
	TeacherID int64  `json:"teacher_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Capacity  int    `json:"capacity" validate:"required"`
}

func (s *Server) createEmergencySession(c *fiber.Ctx) error {
	var req createEmergencyRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	session, err := s.guard.do(func() (interface{}, error) {
		return s.sessions.CreateEmergency(c.Context(), service.EmergencySessionInput{
			BranchID:  req.BranchID,
			TeacherID: req.TeacherID,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Capacity:  req.Capacity,
		})
	}, "create-emergency", req.BranchID, req.TeacherID, req.Date, req.StartTime)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (s *Server) cancelSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fault.Validation("id", "session id must be a uuid")
	}

	_, err = s.guard.do(func() (interface{}, error) {
		return nil, s.sessions.Cancel(c.Context(), sessionID)
	}, "cancel-session", sessionID)
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	branchID, teacherID, week, err := boardQuery(c)
	if err != nil {
		return err
	}

	buckets, err := s.sessions.ListForWeek(c.Context(), branchID, teacherID, week)
	if err != nil {
		return err
	}

	// Marshals keyed by day so the board renders columns directly.
	return c.JSON(fiber.Map{
		"week_start": timeutil.FormatDate(week.Start),
		"week_end":   timeutil.FormatDate(week.End),
		"days":       buckets,
	})
}

func (s *Server) renderBoard(c *fiber.Ctx) error {
	branchID, teacherID, week, err := boardQuery(c)
	if err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("%d/%d/%s", branchID, teacherID, timeutil.FormatDate(week.Start))
	if png, ok := s.cachedBoard(cacheKey); ok {
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	}

	buckets, err := s.sessions.ListForWeek(c.Context(), branchID, teacherID, week)
	if err != nil {
		return err
	}

	var items []grid.BoardItem
	for day, sessions := range buckets {
		for _, session := range sessions {
			items = append(items, grid.BoardItem{
				Item: grid.Item{
					SessionID: session.ID,
					Day:       day,
					StartTime: session.StartTime,
					EndTime:   session.EndTime,
					Canceled:  session.IsCanceled,
				},
				Emergency: session.IsEmergency(),
			})
		}
	}

	png, err := grid.RenderWeekPNG(week, items, s.window, time.Now())
	if err != nil {
		return err
	}
	s.storeBoard(cacheKey, png)

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// boardQuery parses the shared branch/teacher/week query triple.
func boardQuery(c *fiber.Ctx) (int64, int64, timeutil.WeekRange, error) {
	branchID := int64(c.QueryInt("branch_id"))
	if branchID <= 0 {
		return 0, 0, timeutil.WeekRange{}, fault.Validation("branch_id", "branch is required")
	}
	teacherID := int64(c.QueryInt("teacher_id"))
	if teacherID <= 0 {
		return 0, 0, timeutil.WeekRange{}, fault.Validation("teacher_id", "teacher is required")
	}

	ref := time.Now()
	if weekOf := c.Query("week_of"); weekOf != "" {
		parsed, ok := timeutil.ParseDate(weekOf)
		if !ok {
			return 0, 0, timeutil.WeekRange{}, fault.Validation("week_of", "week_of must be YYYY-MM-DD")
		}
		ref = parsed
	}

	return branchID, teacherID, timeutil.WeekRangeOf(ref), nil
}
