// Package scheduling provides appointment booking business logic: policy
// validation, conflict detection, alternative slot suggestion, and the
// service layer that commits bookings through the store.
//
// Validation runs twice by contract: a cheap advisory pre-check here for
// fast, specific user feedback, and the authoritative re-check inside the
// store's atomic create. The duplication is intentional.
package scheduling

import (
	"fmt"
	"time"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// Policy holds the booking rules. Loaded once at startup, read-only after.
type Policy struct {
	WorkingHoursStart   int           // hour of day, inclusive
	WorkingHoursEnd     int           // hour of day, exclusive
	AppointmentDuration time.Duration // fixed slot length
	MinScheduleNotice   time.Duration // minimum lead time before a bookable start
}

// PolicyFromProfile builds the policy from the startup configuration.
func PolicyFromProfile(p *profile.Profile) Policy {
	return Policy{
		WorkingHoursStart:   p.WorkingHoursStart,
		WorkingHoursEnd:     p.WorkingHoursEnd,
		AppointmentDuration: time.Duration(p.AppointmentDuration) * time.Minute,
		MinScheduleNotice:   time.Duration(p.MinScheduleNotice) * time.Hour,
	}
}

// Slot is a candidate booking interval, half-open [Start, End).
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewSlot builds a slot of the policy's fixed duration.
func (p Policy) NewSlot(start time.Time) Slot {
	return Slot{Start: start, End: start.Add(p.AppointmentDuration)}
}

// Validate checks a candidate slot against the policy and a snapshot of
// existing appointments. Checks run in order and short-circuit on the first
// failure: notice, working hours, conflict. Pure function; the caller is
// responsible for snapshot freshness.
func Validate(candidate Slot, existing []*store.Appointment, now time.Time, cfg Policy) error {
	if candidate.Start.Before(now.Add(cfg.MinScheduleNotice)) {
		return apperr.InsufficientNotice(fmt.Sprintf(
			"start %s is inside the %s notice window",
			candidate.Start.Format(time.RFC3339), cfg.MinScheduleNotice)).
			WithContext("min_notice", cfg.MinScheduleNotice)
	}

	if err := checkWorkingHours(candidate, cfg); err != nil {
		return err
	}

	startTs := candidate.Start.Unix()
	endTs := candidate.End.Unix()
	for _, existing := range existing {
		if !existing.IsScheduled() {
			continue
		}
		if existing.OverlapsWith(startTs, endTs) {
			return apperr.Conflict(fmt.Sprintf("slot overlaps appointment %s", existing.UID)).
				WithContext("conflicting_uid", existing.UID).
				WithContext("conflicting_start_ts", existing.StartTs)
		}
	}

	return nil
}

// checkWorkingHours verifies the slot sits inside one working day.
// Weekends count as outside working hours.
func checkWorkingHours(candidate Slot, cfg Policy) error {
	bounds := fmt.Sprintf("working hours are %02d:00-%02d:00, weekdays only",
		cfg.WorkingHoursStart, cfg.WorkingHoursEnd)

	weekday := candidate.Start.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return apperr.OutsideWorkingHours(bounds)
	}

	// Compare in minutes from midnight so a slot ending exactly on the
	// closing hour is still allowed.
	startMin := candidate.Start.Hour()*60 + candidate.Start.Minute()
	endMin := startMin + int(candidate.End.Sub(candidate.Start).Minutes())
	if startMin < cfg.WorkingHoursStart*60 || endMin > cfg.WorkingHoursEnd*60 {
		return apperr.OutsideWorkingHours(bounds)
	}

	return nil
}
