package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// Store is the subset of the appointment store the service needs.
type Store interface {
	CreateAppointment(ctx context.Context, create *store.Appointment) (*store.Appointment, error)
	ListAppointments(ctx context.Context, find *store.FindAppointment) ([]*store.Appointment, error)
	GetAppointment(ctx context.Context, find *store.FindAppointment) (*store.Appointment, error)
	CancelAppointment(ctx context.Context, cancel *store.CancelAppointment) error
}

// Service books, cancels, and lists appointments under the policy.
type Service interface {
	// Schedule books the slot starting at start, or returns a coded error
	// naming the first violated rule. On conflict the error carries the
	// blocking appointment and the result includes alternative slots.
	Schedule(ctx context.Context, start time.Time, doctor, notes string) (*ScheduleResult, error)
	// Cancel releases the scheduled appointment covering target.
	Cancel(ctx context.Context, target time.Time) (*store.Appointment, error)
	// ListRange returns scheduled appointments overlapping [rangeStart, rangeEnd).
	ListRange(ctx context.Context, rangeStart, rangeEnd time.Time) ([]*store.Appointment, error)
	// Alternatives suggests up to max free slots at or after requested.
	Alternatives(ctx context.Context, requested time.Time, max int) ([]Slot, error)
}

// ScheduleResult is the outcome of a booking attempt. Alternatives is
// populated only when the booking failed on a conflict.
type ScheduleResult struct {
	Appointment  *store.Appointment
	Alternatives []Slot
}

// DefaultDoctor is assigned when the utterance names no doctor or specialty.
const DefaultDoctor = "Dr. General (General Physician)"

// maxAlternatives is how many fallback slots a failed booking reports.
const maxAlternatives = 3

type service struct {
	store  Store
	policy Policy
	now    func() time.Time
}

// NewService creates the scheduling service.
func NewService(s Store, policy Policy) Service {
	return &service{store: s, policy: policy, now: time.Now}
}

func (s *service) Schedule(ctx context.Context, start time.Time, doctor, notes string) (*ScheduleResult, error) {
	now := s.now()
	candidate := s.policy.NewSlot(start)

	// Advisory pre-check against a fresh snapshot for fast, specific
	// feedback; the driver re-checks the overlap atomically on create.
	snapshot, err := s.snapshotAround(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if err := Validate(candidate, snapshot, now, s.policy); err != nil {
		return s.failWithAlternatives(candidate, snapshot, now, err)
	}

	if doctor == "" {
		doctor = DefaultDoctor
	}
	created, err := s.store.CreateAppointment(ctx, &store.Appointment{
		UID:     shortuuid.New(),
		Status:  store.Scheduled,
		StartTs: candidate.Start.Unix(),
		EndTs:   candidate.End.Unix(),
		Doctor:  doctor,
		Notes:   notes,
	})
	if err != nil {
		if apperr.IsCode(err, apperr.ErrCodeConflict) {
			// Lost the race to a concurrent writer; re-snapshot so the
			// suggestions reflect the appointment that beat us.
			snapshot, snapErr := s.snapshotAround(ctx, candidate)
			if snapErr != nil {
				return nil, err
			}
			return s.failWithAlternatives(candidate, snapshot, now, err)
		}
		return nil, err
	}

	return &ScheduleResult{Appointment: created}, nil
}

func (s *service) Cancel(ctx context.Context, target time.Time) (*store.Appointment, error) {
	startTs := target.Unix()
	status := store.Scheduled

	// Exact start match first, then any scheduled appointment whose
	// interval covers the target instant.
	appointment, err := s.store.GetAppointment(ctx, &store.FindAppointment{
		ExactStart: &startTs,
		Status:     &status,
	})
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		rangeEnd := startTs + 1
		appointment, err = s.store.GetAppointment(ctx, &store.FindAppointment{
			RangeStart: &startTs,
			RangeEnd:   &rangeEnd,
			Status:     &status,
		})
		if err != nil {
			return nil, err
		}
	}
	if appointment == nil {
		return nil, apperr.NotFound(fmt.Sprintf(
			"no scheduled appointment at %s", target.Format(time.RFC3339)))
	}

	if err := s.store.CancelAppointment(ctx, &store.CancelAppointment{ID: appointment.ID}); err != nil {
		return nil, err
	}
	appointment.Status = store.Cancelled
	return appointment, nil
}

func (s *service) ListRange(ctx context.Context, rangeStart, rangeEnd time.Time) ([]*store.Appointment, error) {
	startTs, endTs := rangeStart.Unix(), rangeEnd.Unix()
	status := store.Scheduled
	return s.store.ListAppointments(ctx, &store.FindAppointment{
		RangeStart: &startTs,
		RangeEnd:   &endTs,
		Status:     &status,
	})
}

func (s *service) Alternatives(ctx context.Context, requested time.Time, max int) ([]Slot, error) {
	candidate := s.policy.NewSlot(requested)
	snapshot, err := s.snapshotAround(ctx, candidate)
	if err != nil {
		return nil, err
	}
	return SuggestAlternatives(candidate, snapshot, s.now(), s.policy, max), nil
}

// snapshotAround loads the scheduled appointments inside the suggestion
// horizon around the candidate slot.
func (s *service) snapshotAround(ctx context.Context, candidate Slot) ([]*store.Appointment, error) {
	rangeStart := candidate.Start.Add(-maxSuggestionScan).Unix()
	rangeEnd := candidate.Start.Add(maxSuggestionScan).Unix()
	status := store.Scheduled
	return s.store.ListAppointments(ctx, &store.FindAppointment{
		RangeStart: &rangeStart,
		RangeEnd:   &rangeEnd,
		Status:     &status,
	})
}

func (s *service) failWithAlternatives(candidate Slot, snapshot []*store.Appointment, now time.Time, cause error) (*ScheduleResult, error) {
	if !apperr.IsCode(cause, apperr.ErrCodeConflict) {
		return nil, cause
	}
	return &ScheduleResult{
		Alternatives: SuggestAlternatives(candidate, snapshot, now, s.policy, maxAlternatives),
	}, cause
}
