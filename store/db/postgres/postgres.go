package postgres

import (
	"database/sql"
	"fmt"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// PostgreSQL backs shared installations where another process may write the
// same appointment book; creates run under serializable isolation so the
// overlap re-check cannot race a concurrent insert.
const schema = `
CREATE TABLE IF NOT EXISTS appointment (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	start_ts BIGINT NOT NULL,
	end_ts BIGINT NOT NULL,
	doctor TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'SCHEDULED' CHECK (status IN ('SCHEDULED', 'CANCELLED')),
	created_ts BIGINT NOT NULL DEFAULT extract(epoch from now())::bigint,
	updated_ts BIGINT NOT NULL DEFAULT extract(epoch from now())::bigint
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_appointment_scheduled_start
	ON appointment (start_ts) WHERE status = 'SCHEDULED';

CREATE INDEX IF NOT EXISTS idx_appointment_range ON appointment (start_ts, end_ts);
`

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the PostgreSQL connection and ensures the schema exists.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// Single-user assistant: keep the pool small.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	driver := &DB{db: db, profile: profile}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ensure schema")
	}

	return driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// placeholder returns a numbered placeholder for PostgreSQL ($1, $2, ...)
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
