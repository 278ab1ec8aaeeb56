// Package v1 exposes the assistant's HTTP surface: a text-turn endpoint
// that runs the same interpret-and-execute pipeline as the voice loop,
// and a read/write appointment API for integrations.
package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
	"github.com/BasedPanda/healthcare-voice-assistant/internal/observability"
	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
	"github.com/BasedPanda/healthcare-voice-assistant/plugin/nlp/intent"
	"github.com/BasedPanda/healthcare-voice-assistant/plugin/nlp/timeparse"
	"github.com/BasedPanda/healthcare-voice-assistant/server/middleware"
	"github.com/BasedPanda/healthcare-voice-assistant/server/service/scheduling"
)

// APIV1Service wires the HTTP handlers to the interpretation pipeline.
type APIV1Service struct {
	Profile    *profile.Profile
	Scheduler  scheduling.Service
	Times      timeparse.TimeService
	Classifier *intent.Classifier

	logger   *slog.Logger
	timezone *time.Location
	now      func() time.Time
}

// NewAPIV1Service creates the HTTP service.
func NewAPIV1Service(p *profile.Profile, scheduler scheduling.Service, times timeparse.TimeService, logger *slog.Logger) *APIV1Service {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		loc = time.Local
	}
	return &APIV1Service{
		Profile:    p,
		Scheduler:  scheduler,
		Times:      times,
		Classifier: intent.NewClassifier(p.WakeWords),
		logger:     logger,
		timezone:   loc,
		now:        time.Now,
	}
}

// Register mounts the API routes on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.Use(echomw.Recover())

	limiter := middleware.NewRateLimiter(10, 20)
	api := e.Group("/api/v1", limiter.Middleware())

	api.POST("/turn", s.handleTurn)
	api.GET("/appointments", s.handleListAppointments)
	api.POST("/appointments", s.handleCreateAppointment)
	api.DELETE("/appointments", s.handleCancelAppointment)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// httpStatus maps coded errors onto HTTP statuses.
func httpStatus(err error) int {
	switch apperr.GetCodeFromError(err, apperr.ErrCodePersistenceFailure) {
	case apperr.ErrCodeUnparseable, apperr.ErrCodeAmbiguous:
		return http.StatusBadRequest
	case apperr.ErrCodeInsufficientNotice, apperr.ErrCodeOutsideWorkingHours:
		return http.StatusUnprocessableEntity
	case apperr.ErrCodeConflict:
		return http.StatusConflict
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) map[string]any {
	return map[string]any{
		"code":    string(apperr.GetCodeFromError(err, apperr.ErrCodePersistenceFailure)),
		"message": err.Error(),
	}
}

func (s *APIV1Service) turnContext(c echo.Context) *observability.TurnContext {
	return observability.NewTurnContext(s.logger)
}
