package store

import (
	"time"
)

// Status is the lifecycle state of an appointment. The only legal
// transition is Scheduled to Cancelled.
type Status string

const (
	// Scheduled is an active appointment occupying its slot.
	Scheduled Status = "SCHEDULED"
	// Cancelled is a released slot; cancelled appointments never resurrect.
	Cancelled Status = "CANCELLED"
)

// Appointment is the object representing a booked appointment.
type Appointment struct {
	ID        int32
	UID       string
	Status    Status
	CreatedTs int64
	UpdatedTs int64

	StartTs int64
	EndTs   int64
	Doctor  string
	Notes   string
}

// FindAppointment is the find condition for appointments.
type FindAppointment struct {
	ID  *int32
	UID *string

	// Status filter; nil lists scheduled and cancelled both.
	Status *Status

	// Half-open time range filters: appointments overlapping [RangeStart, RangeEnd)
	RangeStart *int64
	RangeEnd   *int64

	// ExactStart matches appointments starting at precisely this instant.
	ExactStart *int64

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateAppointment is the update request for an appointment.
type UpdateAppointment struct {
	ID        int32
	Status    *Status
	Notes     *string
	UpdatedTs *int64
}

// CancelAppointment is the cancel request for an appointment. Cancelling
// targets scheduled rows only; an already-cancelled row reports not found.
type CancelAppointment struct {
	ID int32
}

// ParseStartTime returns the appointment start as time.Time in loc.
func (a *Appointment) ParseStartTime(loc *time.Location) time.Time {
	return time.Unix(a.StartTs, 0).In(loc)
}

// ParseEndTime returns the appointment end as time.Time in loc.
func (a *Appointment) ParseEndTime(loc *time.Location) time.Time {
	return time.Unix(a.EndTs, 0).In(loc)
}

// OverlapsWith reports whether two half-open intervals [start, end) intersect.
func (a *Appointment) OverlapsWith(startTs, endTs int64) bool {
	return a.StartTs < endTs && startTs < a.EndTs
}

// IsScheduled reports whether the appointment still occupies its slot.
func (a *Appointment) IsScheduled() bool {
	return a.Status == Scheduled
}
