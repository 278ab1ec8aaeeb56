package scheduling

import (
	"time"

	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

const (
	// maxSuggestionScan bounds the forward walk when hunting for free slots.
	maxSuggestionScan = 30 * 24 * time.Hour
)

// SuggestAlternatives walks forward from the requested slot in
// duration-sized steps and returns up to max free slots that satisfy the
// policy. Pure function over the snapshot of existing appointments.
func SuggestAlternatives(requested Slot, existing []*store.Appointment, now time.Time, cfg Policy, max int) []Slot {
	if max <= 0 {
		return nil
	}

	suggestions := make([]Slot, 0, max)
	cursor := requested.Start
	horizon := requested.Start.Add(maxSuggestionScan)

	for len(suggestions) < max && cursor.Before(horizon) {
		cursor = cursor.Add(cfg.AppointmentDuration)

		// Roll over to the next working day once past closing time.
		startMin := cursor.Hour()*60 + cursor.Minute()
		if startMin+int(cfg.AppointmentDuration.Minutes()) > cfg.WorkingHoursEnd*60 {
			cursor = startOfWorkingDay(cursor.AddDate(0, 0, 1), cfg)
		}
		for cursor.Weekday() == time.Saturday || cursor.Weekday() == time.Sunday {
			cursor = startOfWorkingDay(cursor.AddDate(0, 0, 1), cfg)
		}

		candidate := cfg.NewSlot(cursor)
		if Validate(candidate, existing, now, cfg) == nil {
			suggestions = append(suggestions, candidate)
		}
	}

	return suggestions
}

// FreeSlotsOn returns every free slot on the given day, walking working
// hours in duration-sized steps against the snapshot.
func FreeSlotsOn(day time.Time, existing []*store.Appointment, now time.Time, cfg Policy) []Slot {
	var free []Slot
	step := int(cfg.AppointmentDuration.Minutes())
	for m := cfg.WorkingHoursStart * 60; m+step <= cfg.WorkingHoursEnd*60; m += step {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, m, 0, 0, day.Location())
		candidate := cfg.NewSlot(start)
		if Validate(candidate, existing, now, cfg) == nil {
			free = append(free, candidate)
		}
	}
	return free
}

func startOfWorkingDay(t time.Time, cfg Policy) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), cfg.WorkingHoursStart, 0, 0, 0, t.Location())
}
