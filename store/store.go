package store

import (
	"context"

	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
)

// Store provides database access to appointment records. It is the only
// writer of the appointment collection.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// CreateAppointment creates a new appointment. The write is committed
// before this returns; overlap with an existing scheduled appointment is
// rejected atomically by the driver.
func (s *Store) CreateAppointment(ctx context.Context, create *Appointment) (*Appointment, error) {
	return s.driver.CreateAppointment(ctx, create)
}

// ListAppointments lists appointments with filter, ordered by start time ascending.
func (s *Store) ListAppointments(ctx context.Context, find *FindAppointment) ([]*Appointment, error) {
	return s.driver.ListAppointments(ctx, find)
}

// GetAppointment gets a single appointment matching the find condition.
func (s *Store) GetAppointment(ctx context.Context, find *FindAppointment) (*Appointment, error) {
	list, err := s.driver.ListAppointments(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateAppointment updates an appointment.
func (s *Store) UpdateAppointment(ctx context.Context, update *UpdateAppointment) error {
	return s.driver.UpdateAppointment(ctx, update)
}

// CancelAppointment flips a scheduled appointment to cancelled. Cancelling
// a row that is missing or already cancelled reports not found.
func (s *Store) CancelAppointment(ctx context.Context, cancel *CancelAppointment) error {
	return s.driver.CancelAppointment(ctx, cancel)
}
