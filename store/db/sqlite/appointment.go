package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// CreateAppointment inserts a new appointment after re-checking the overlap
// invariant inside one transaction. SQLite's single-writer transaction
// serializes concurrent creates, so at most one can win an interval.
func (d *DB) CreateAppointment(ctx context.Context, create *store.Appointment) (*store.Appointment, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.PersistenceFailure(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	var blockingUID string
	var blockingStart int64
	err = tx.QueryRowContext(ctx, `
		SELECT uid, start_ts FROM appointment
		WHERE status = 'SCHEDULED' AND start_ts < ? AND end_ts > ?
		ORDER BY start_ts ASC LIMIT 1`,
		create.EndTs, create.StartTs,
	).Scan(&blockingUID, &blockingStart)
	if err == nil {
		return nil, apperr.Conflict(fmt.Sprintf("slot overlaps appointment %s", blockingUID)).
			WithContext("conflicting_uid", blockingUID).
			WithContext("conflicting_start_ts", blockingStart)
	}
	if err != sql.ErrNoRows {
		return nil, apperr.PersistenceFailure(fmt.Errorf("failed to check overlap: %w", err))
	}

	now := time.Now().Unix()
	if create.Status == "" {
		create.Status = store.Scheduled
	}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO appointment (uid, start_ts, end_ts, doctor, notes, status, created_ts, updated_ts)
		VALUES (`+placeholders(8)+`)
		RETURNING id, created_ts, updated_ts`,
		create.UID, create.StartTs, create.EndTs, create.Doctor, create.Notes, create.Status, now, now,
	).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, apperr.PersistenceFailure(fmt.Errorf("failed to create appointment: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.PersistenceFailure(fmt.Errorf("failed to commit appointment: %w", err))
	}

	return create, nil
}

func (d *DB) ListAppointments(ctx context.Context, find *store.FindAppointment) ([]*store.Appointment, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "appointment.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "appointment.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "appointment.status = "+placeholder(len(args)+1)), append(args, string(*v))
	}
	if v := find.ExactStart; v != nil {
		where, args = append(where, "appointment.start_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	// Range filters select appointments overlapping [RangeStart, RangeEnd)
	if v := find.RangeEnd; v != nil {
		where, args = append(where, "appointment.start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RangeStart; v != nil {
		where, args = append(where, "appointment.end_ts > "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, status, created_ts, updated_ts, start_ts, end_ts, doctor, notes
		FROM appointment
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY appointment.start_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.PersistenceFailure(fmt.Errorf("failed to query appointments: %w", err))
	}
	defer rows.Close()

	list := make([]*store.Appointment, 0)
	for rows.Next() {
		var appointment store.Appointment
		if err := rows.Scan(
			&appointment.ID,
			&appointment.UID,
			&appointment.Status,
			&appointment.CreatedTs,
			&appointment.UpdatedTs,
			&appointment.StartTs,
			&appointment.EndTs,
			&appointment.Doctor,
			&appointment.Notes,
		); err != nil {
			return nil, apperr.PersistenceFailure(fmt.Errorf("failed to scan appointment: %w", err))
		}
		list = append(list, &appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.PersistenceFailure(fmt.Errorf("failed to iterate appointments: %w", err))
	}

	return list, nil
}

func (d *DB) UpdateAppointment(ctx context.Context, update *store.UpdateAppointment) error {
	set, args := []string{}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, string(*v))
	}
	if v := update.Notes; v != nil {
		set, args = append(set, "notes = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	} else {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, time.Now().Unix())
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)

	stmt := `UPDATE appointment SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return apperr.PersistenceFailure(fmt.Errorf("failed to update appointment: %w", err))
	}

	return nil
}

// CancelAppointment flips a scheduled appointment to cancelled. The status
// guard in the WHERE clause makes double-cancel report not found instead of
// silently rewriting the row.
func (d *DB) CancelAppointment(ctx context.Context, cancel *store.CancelAppointment) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE appointment
		SET status = 'CANCELLED', updated_ts = `+placeholder(1)+`
		WHERE id = `+placeholder(2)+` AND status = 'SCHEDULED'`,
		time.Now().Unix(), cancel.ID,
	)
	if err != nil {
		return apperr.PersistenceFailure(fmt.Errorf("failed to cancel appointment: %w", err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperr.NotFound(fmt.Sprintf("no scheduled appointment with id %d", cancel.ID))
	}

	return nil
}
