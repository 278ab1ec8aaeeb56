package sqlite

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// schema is applied on startup. The partial unique index on start_ts is the
// storage-level backstop for the no-overlap invariant; the transactional
// overlap check in CreateAppointment is the canonical enforcement.
const schema = `
CREATE TABLE IF NOT EXISTS appointment (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	start_ts BIGINT NOT NULL,
	end_ts BIGINT NOT NULL,
	doctor TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'SCHEDULED' CHECK (status IN ('SCHEDULED', 'CANCELLED')),
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_appointment_scheduled_start
	ON appointment (start_ts) WHERE status = 'SCHEDULED';

CREATE INDEX IF NOT EXISTS idx_appointment_range ON appointment (start_ts, end_ts);
`

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database and ensures the schema exists.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("sqlite", connectionString(profile.DSN))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// SQLite serializes writers; one connection avoids lock churn.
	db.SetMaxOpenConns(1)

	driver := &DB{db: db, profile: profile}
	if err := driver.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ensure schema")
	}

	return driver, nil
}

// connectionString appends the driver options to the database path.
// _txlock=immediate makes every transaction take the write lock up front,
// so the in-tx overlap check in CreateAppointment reads a stable snapshot.
// busy_timeout smooths over writer contention from a second process
// sharing the same file.
func connectionString(dsn string) string {
	return dsn + "?_txlock=immediate&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
}

func (d *DB) ensureSchema() error {
	_, err := d.db.Exec(schema)
	return err
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// placeholder returns a placeholder for SQLite (uses ?)
func placeholder(n int) string {
	return "?"
}

// placeholders returns n placeholders for SQLite
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}
