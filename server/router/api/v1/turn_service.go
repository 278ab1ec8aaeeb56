package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/BasedPanda/healthcare-voice-assistant/plugin/nlp/intent"
	"github.com/BasedPanda/healthcare-voice-assistant/server/service/scheduling"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// TurnRequest carries one text utterance through the interpretation
// pipeline. The wake word is optional over HTTP.
type TurnRequest struct {
	Utterance string `json:"utterance"`
}

// TurnResponse reports what the assistant understood and did.
type TurnResponse struct {
	TurnID       string                `json:"turn_id"`
	Intent       string                `json:"intent"`
	Appointment  *AppointmentResponse  `json:"appointment,omitempty"`
	Appointments []AppointmentResponse `json:"appointments,omitempty"`
	Alternatives []string              `json:"alternatives,omitempty"`
	Error        map[string]any        `json:"error,omitempty"`
}

// handleTurn classifies and executes one utterance, mirroring a voice
// turn minus the audio boundary.
func (s *APIV1Service) handleTurn(c echo.Context) error {
	var req TurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "malformed request body"})
	}
	if req.Utterance == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "utterance is required"})
	}

	tc := s.turnContext(c)
	ctx := c.Request().Context()
	ref := s.now().In(s.timezone)

	text, _ := s.Classifier.StripWakeWord(req.Utterance)
	it := s.Classifier.Classify(text)
	resp := TurnResponse{TurnID: tc.TurnID, Intent: string(it.Kind)}

	switch it.Kind {
	case intent.KindSchedule:
		start, err := s.Times.Resolve(ctx, it.TemporalPhrase, ref)
		if err != nil {
			resp.Error = errorBody(err)
			return c.JSON(httpStatus(err), resp)
		}
		result, err := s.Scheduler.Schedule(ctx, start, it.Doctor, "")
		if err != nil {
			resp.Error = errorBody(err)
			if result != nil {
				resp.Alternatives = formatSlots(result.Alternatives)
			}
			return c.JSON(httpStatus(err), resp)
		}
		appointment := s.toResponse(result.Appointment)
		resp.Appointment = &appointment

	case intent.KindCheck:
		r, err := s.Times.ResolveRange(ctx, it.TemporalPhrase, ref)
		if err != nil {
			resp.Error = errorBody(err)
			return c.JSON(httpStatus(err), resp)
		}
		appointments, err := s.Scheduler.ListRange(ctx, r.Start, r.End)
		if err != nil {
			resp.Error = errorBody(err)
			return c.JSON(httpStatus(err), resp)
		}
		resp.Appointments = s.toResponses(appointments)

	case intent.KindCancel:
		target, err := s.Times.Resolve(ctx, it.TemporalPhrase, ref)
		if err != nil {
			resp.Error = errorBody(err)
			return c.JSON(httpStatus(err), resp)
		}
		cancelled, err := s.Scheduler.Cancel(ctx, target)
		if err != nil {
			resp.Error = errorBody(err)
			return c.JSON(httpStatus(err), resp)
		}
		appointment := s.toResponse(cancelled)
		resp.Appointment = &appointment
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) toResponses(appointments []*store.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, s.toResponse(a))
	}
	return out
}

func formatSlots(slots []scheduling.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.Start.Format(time.RFC3339))
	}
	return out
}
