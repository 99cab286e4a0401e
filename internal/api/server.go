// Package api exposes the scheduling engine over HTTP. Handlers stay
// thin: parse and shape-check the payload, run the double-submit guard,
// call the service, map the fault taxonomy onto status codes.
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/academyops/clinicboard/internal/fault"
	"github.com/academyops/clinicboard/internal/grid"
	"github.com/academyops/clinicboard/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	app        *fiber.App
	sessions   *service.SessionService
	attendance *service.AttendanceService
	enrollment *service.EnrollmentService
	window     grid.TimeWindow
	validate   *validator.Validate
	guard      *submitGuard
	logger     *zap.Logger

	boardMu    sync.Mutex
	boardCache map[string][]byte // rendered board PNGs, dropped on mutation
}

func NewServer(
	sessions *service.SessionService,
	attendance *service.AttendanceService,
	enrollment *service.EnrollmentService,
	window grid.TimeWindow,
	logger *zap.Logger,
) *Server {
	s := &Server{
		sessions:   sessions,
		attendance: attendance,
		enrollment: enrollment,
		window:     window,
		validate:   validator.New(),
		guard:      newSubmitGuard(),
		logger:     logger,
		boardCache: make(map[string][]byte),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "clinicboard",
		ErrorHandler: s.errorHandler,
	})

	s.app.Use(s.requestLogger)
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	sessions := api.Group("/clinic-sessions")
	sessions.Post("/emergency", s.createEmergencySession)
	sessions.Delete("/:id", s.cancelSession)
	sessions.Get("/board.png", s.renderBoard)
	sessions.Get("/", s.listSessions)

	attendances := api.Group("/attendances")
	attendances.Post("/", s.requestAttendance)
	attendances.Post("/move", s.moveAttendance)
	attendances.Post("/move-mode/arm", s.armMoveMode)
	attendances.Delete("/move-mode", s.disarmMoveMode)
	attendances.Get("/", s.listAttendances)

	requests := api.Group("/enrollment-requests")
	requests.Post("/", s.createEnrollmentRequest)
	requests.Post("/bulk", s.bulkDecideRequests)
	requests.Post("/:id/approve", s.approveRequest)
	requests.Post("/:id/reject", s.rejectRequest)
	requests.Post("/:id/cancel", s.cancelRequest)
	requests.Get("/", s.listRequests)
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// InvalidateBoards drops every cached board rendering. Wired behind the
// debounced refresher so a burst of mutations clears the cache once.
func (s *Server) InvalidateBoards(ctx context.Context) error {
	s.boardMu.Lock()
	defer s.boardMu.Unlock()

	s.boardCache = make(map[string][]byte)
	return nil
}

func (s *Server) cachedBoard(key string) ([]byte, bool) {
	s.boardMu.Lock()
	defer s.boardMu.Unlock()

	png, ok := s.boardCache[key]
	return png, ok
}

func (s *Server) storeBoard(key string, png []byte) {
	s.boardMu.Lock()
	defer s.boardMu.Unlock()

	s.boardCache[key] = png
}

// requestLogger logs every request with its latency as typed fields.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Info("HTTP request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	return err
}

// errorHandler translates the fault taxonomy into status codes. Nothing
// below the handler layer leaks raw store errors to clients.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var ve *fault.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": ve.Msg,
			"field": ve.Field,
		})
	}

	var ce *fault.ConflictError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": ce.Msg,
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	if fault.IsTransport(err) {
		s.logger.Error("Store operation failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "temporary failure, please retry",
		})
	}

	s.logger.Error("Unhandled request error",
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "something went wrong, please retry",
	})
}

// parseBody decodes and shape-checks a JSON payload. Tag violations map
// to the same validation errors the services produce.
func (s *Server) parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fault.Validation("body", "malformed request body")
	}
	if err := s.validate.Struct(out); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			return fault.Validation(invalid[0].Field(), "failed "+invalid[0].Tag()+" check")
		}
		return fault.Validation("body", "invalid request body")
	}
	return nil
}
