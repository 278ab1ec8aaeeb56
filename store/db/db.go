package db

import (
	"github.com/pkg/errors"

	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
	"github.com/BasedPanda/healthcare-voice-assistant/store/db/postgres"
	"github.com/BasedPanda/healthcare-voice-assistant/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// SQLite is the default backend for single-machine deployments; PostgreSQL
// is supported for shared installations where another process may write the
// same appointment book.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
