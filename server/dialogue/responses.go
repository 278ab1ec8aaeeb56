package dialogue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
	"github.com/BasedPanda/healthcare-voice-assistant/server/service/scheduling"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// Spoken response templates. Each phrasing names the concrete facts the
// user needs to recover: the conflicting time, the allowed hours, or the
// slots still free.

const (
	msgGreeting       = "Hello! How can I help you today?"
	msgGoodbye        = "Goodbye! Take care."
	msgNoSpeech       = "I didn't catch that. Please try again."
	msgUnknownCommand = "I'm not sure what you meant. You can schedule, check, or cancel appointments."
	msgNoAppointments = "You have no appointments in that period."
	msgStoreTrouble   = "I'm sorry, I couldn't reach the appointment book. Please try again in a moment."
)

const spokenTimeLayout = "Monday, January 2 at 3:04 PM"

func formatSlotTime(t time.Time) string {
	return t.Format(spokenTimeLayout)
}

func scheduledMessage(appointment *store.Appointment, loc *time.Location) string {
	return fmt.Sprintf("Your appointment with %s is scheduled for %s.",
		appointment.Doctor, formatSlotTime(appointment.ParseStartTime(loc)))
}

func cancelledMessage(appointment *store.Appointment, loc *time.Location) string {
	return fmt.Sprintf("Your appointment on %s has been cancelled.",
		formatSlotTime(appointment.ParseStartTime(loc)))
}

func listMessage(appointments []*store.Appointment, loc *time.Location) string {
	if len(appointments) == 0 {
		return msgNoAppointments
	}
	lines := make([]string, 0, len(appointments))
	for _, a := range appointments {
		lines = append(lines, fmt.Sprintf("%s with %s",
			formatSlotTime(a.ParseStartTime(loc)), a.Doctor))
	}
	if len(lines) == 1 {
		return fmt.Sprintf("You have one appointment: %s.", lines[0])
	}
	return fmt.Sprintf("You have %d appointments: %s.", len(lines), strings.Join(lines, "; "))
}

func alternativesMessage(alternatives []scheduling.Slot) string {
	if len(alternatives) == 0 {
		return ""
	}
	times := make([]string, 0, len(alternatives))
	for _, slot := range alternatives {
		times = append(times, formatSlotTime(slot.Start))
	}
	return " Available alternatives: " + strings.Join(times, "; ") + "."
}

// failureMessage maps a coded error to a spoken explanation. Times are
// rendered in the configured locale, never the process-local one.
func failureMessage(err error, alternatives []scheduling.Slot, loc *time.Location) string {
	var ae *apperr.AssistantError
	if !errors.As(err, &ae) {
		return msgStoreTrouble
	}

	switch ae.Code {
	case apperr.ErrCodeUnparseable:
		return "I couldn't understand that date and time. Could you rephrase it, for example 'tomorrow at 2 PM'?"
	case apperr.ErrCodeAmbiguous:
		return "That time could mean a few different things. Could you be more specific?"
	case apperr.ErrCodeInsufficientNotice:
		if d, ok := ae.Context["min_notice"].(time.Duration); ok {
			return fmt.Sprintf("That time is too soon. Appointments need to be booked at least %s in advance.",
				spokenDuration(d))
		}
		return "That time is too soon. Appointments need to be booked further in advance."
	case apperr.ErrCodeOutsideWorkingHours:
		return fmt.Sprintf("That time is outside our working hours. %s.", sentenceCase(ae.Message))
	case apperr.ErrCodeConflict:
		msg := "That time slot is already taken."
		if ts, ok := ae.Context["conflicting_start_ts"].(int64); ok {
			msg = fmt.Sprintf("That slot conflicts with your appointment at %s.",
				formatSlotTime(time.Unix(ts, 0).In(loc)))
		}
		return msg + alternativesMessage(alternatives)
	case apperr.ErrCodeNotFound:
		return "I couldn't find a scheduled appointment at that time."
	case apperr.ErrCodeTimeout:
		return msgNoSpeech
	case apperr.ErrCodePersistenceFailure:
		return msgStoreTrouble
	default:
		return msgUnknownCommand
	}
}

func sentenceCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// spokenDuration renders a duration the way it would be said aloud.
func spokenDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, pluralUnit(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, pluralUnit(minutes, "minute"))
	}
	if len(parts) == 0 {
		return "a moment"
	}
	return strings.Join(parts, " and ")
}

func pluralUnit(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
