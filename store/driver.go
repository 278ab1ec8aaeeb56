package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Appointment model related methods.
	//
	// CreateAppointment re-checks the overlap invariant inside its own
	// transaction; at most one create can win a given interval regardless
	// of any caller-side pre-check.
	CreateAppointment(ctx context.Context, create *Appointment) (*Appointment, error)
	ListAppointments(ctx context.Context, find *FindAppointment) ([]*Appointment, error)
	UpdateAppointment(ctx context.Context, update *UpdateAppointment) error
	CancelAppointment(ctx context.Context, cancel *CancelAppointment) error
}
