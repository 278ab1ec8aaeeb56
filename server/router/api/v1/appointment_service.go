package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// AppointmentResponse is the wire shape of one appointment.
type AppointmentResponse struct {
	UID    string `json:"uid"`
	Status string `json:"status"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Doctor string `json:"doctor"`
	Notes  string `json:"notes,omitempty"`
}

func (s *APIV1Service) toResponse(a *store.Appointment) AppointmentResponse {
	return AppointmentResponse{
		UID:    a.UID,
		Status: string(a.Status),
		Start:  a.ParseStartTime(s.timezone).Format(time.RFC3339),
		End:    a.ParseEndTime(s.timezone).Format(time.RFC3339),
		Doctor: a.Doctor,
		Notes:  a.Notes,
	}
}

// handleListAppointments lists scheduled appointments overlapping the
// requested range. The range may be given as RFC3339 instants (from/to)
// or as a natural language period (period=next week); default is today.
func (s *APIV1Service) handleListAppointments(c echo.Context) error {
	ref := s.now().In(s.timezone)

	var rangeStart, rangeEnd time.Time
	if from := c.QueryParam("from"); from != "" {
		start, err := time.ParseInLocation(time.RFC3339, from, s.timezone)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid from instant"})
		}
		end := start.Add(24 * time.Hour)
		if to := c.QueryParam("to"); to != "" {
			end, err = time.ParseInLocation(time.RFC3339, to, s.timezone)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid to instant"})
			}
		}
		rangeStart, rangeEnd = start, end
	} else {
		r, err := s.Times.ResolveRange(c.Request().Context(), c.QueryParam("period"), ref)
		if err != nil {
			return c.JSON(httpStatus(err), errorBody(err))
		}
		rangeStart, rangeEnd = r.Start, r.End
	}

	appointments, err := s.Scheduler.ListRange(c.Request().Context(), rangeStart, rangeEnd)
	if err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}

	out := make([]AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, s.toResponse(a))
	}
	return c.JSON(http.StatusOK, map[string]any{"appointments": out})
}

// CreateAppointmentRequest books a slot. Start accepts either an RFC3339
// instant or a natural language phrase.
type CreateAppointmentRequest struct {
	Start  string `json:"start"`
	Doctor string `json:"doctor"`
	Notes  string `json:"notes"`
}

func (s *APIV1Service) handleCreateAppointment(c echo.Context) error {
	var req CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "malformed request body"})
	}
	if req.Start == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "start is required"})
	}

	start, err := s.resolveInstant(c, req.Start)
	if err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}

	result, err := s.Scheduler.Schedule(c.Request().Context(), start, req.Doctor, req.Notes)
	if err != nil {
		body := errorBody(err)
		if result != nil && len(result.Alternatives) > 0 {
			alternatives := make([]string, 0, len(result.Alternatives))
			for _, slot := range result.Alternatives {
				alternatives = append(alternatives, slot.Start.Format(time.RFC3339))
			}
			body["alternatives"] = alternatives
		}
		return c.JSON(httpStatus(err), body)
	}

	return c.JSON(http.StatusCreated, s.toResponse(result.Appointment))
}

// handleCancelAppointment cancels the scheduled appointment at the given
// instant (?at=, RFC3339 or natural language).
func (s *APIV1Service) handleCancelAppointment(c echo.Context) error {
	at := c.QueryParam("at")
	if at == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "at is required"})
	}

	target, err := s.resolveInstant(c, at)
	if err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}

	cancelled, err := s.Scheduler.Cancel(c.Request().Context(), target)
	if err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, s.toResponse(cancelled))
}

// resolveInstant accepts an RFC3339 instant or falls back to the natural
// language grammar.
func (s *APIV1Service) resolveInstant(c echo.Context, value string) (time.Time, error) {
	if t, err := time.ParseInLocation(time.RFC3339, value, s.timezone); err == nil {
		return t, nil
	}
	return s.Times.Resolve(c.Request().Context(), value, s.now().In(s.timezone))
}
