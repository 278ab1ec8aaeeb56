package scheduling

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// memStore is an in-memory Store with the driver's overlap and
// status-guard semantics.
type memStore struct {
	mu           sync.Mutex
	appointments []*store.Appointment
	nextID       int32
}

func newMemStore() *memStore {
	return &memStore{nextID: 1}
}

func (m *memStore) CreateAppointment(_ context.Context, create *store.Appointment) (*store.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.appointments {
		if a.IsScheduled() && a.OverlapsWith(create.StartTs, create.EndTs) {
			return nil, apperr.Conflict(fmt.Sprintf("slot overlaps appointment %s", a.UID)).
				WithContext("conflicting_uid", a.UID).
				WithContext("conflicting_start_ts", a.StartTs)
		}
	}

	create.ID = m.nextID
	m.nextID++
	if create.Status == "" {
		create.Status = store.Scheduled
	}
	m.appointments = append(m.appointments, create)
	return create, nil
}

func (m *memStore) ListAppointments(_ context.Context, find *store.FindAppointment) ([]*store.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var list []*store.Appointment
	for _, a := range m.appointments {
		if find.Status != nil && a.Status != *find.Status {
			continue
		}
		if find.ExactStart != nil && a.StartTs != *find.ExactStart {
			continue
		}
		if find.RangeEnd != nil && a.StartTs >= *find.RangeEnd {
			continue
		}
		if find.RangeStart != nil && a.EndTs <= *find.RangeStart {
			continue
		}
		list = append(list, a)
	}
	return list, nil
}

func (m *memStore) GetAppointment(ctx context.Context, find *store.FindAppointment) (*store.Appointment, error) {
	list, err := m.ListAppointments(ctx, find)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (m *memStore) CancelAppointment(_ context.Context, cancel *store.CancelAppointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.appointments {
		if a.ID == cancel.ID && a.IsScheduled() {
			a.Status = store.Cancelled
			return nil
		}
	}
	return apperr.NotFound(fmt.Sprintf("no scheduled appointment with id %d", cancel.ID))
}

func newTestService(t *testing.T) (*service, *memStore) {
	t.Helper()
	m := newMemStore()
	svc := NewService(m, testPolicy()).(*service)
	svc.now = testNow
	return svc, m
}

func TestService_Schedule(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	result, err := svc.Schedule(context.Background(), start, "Dr. Smith", "follow-up")
	require.NoError(t, err)
	require.NotNil(t, result.Appointment)

	assert.NotEmpty(t, result.Appointment.UID)
	assert.Equal(t, store.Scheduled, result.Appointment.Status)
	assert.Equal(t, start.Unix(), result.Appointment.StartTs)
	assert.Equal(t, start.Add(30*time.Minute).Unix(), result.Appointment.EndTs)
	assert.Equal(t, "Dr. Smith", result.Appointment.Doctor)
	assert.Equal(t, "follow-up", result.Appointment.Notes)
}

func TestService_ScheduleDefaultDoctor(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	result, err := svc.Schedule(context.Background(), start, "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultDoctor, result.Appointment.Doctor)
}

func TestService_ScheduleConflictSuggestsAlternatives(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := svc.Schedule(context.Background(), start, "", "")
	require.NoError(t, err)

	result, err := svc.Schedule(context.Background(), start, "", "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeConflict))
	require.NotNil(t, result)
	require.Len(t, result.Alternatives, 3)
	assert.Equal(t, "2026-03-02 10:30", result.Alternatives[0].Start.Format("2006-01-02 15:04"))
}

func TestService_SchedulePolicyViolationsHaveNoResult(t *testing.T) {
	svc, _ := newTestService(t)

	// Outside working hours: no alternatives offered, just the violation.
	result, err := svc.Schedule(context.Background(), time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC), "", "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeOutsideWorkingHours))
	assert.Nil(t, result)

	result, err = svc.Schedule(context.Background(), testNow().Add(10*time.Minute), "", "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeInsufficientNotice))
	assert.Nil(t, result)
}

func TestService_Cancel(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	created, err := svc.Schedule(context.Background(), start, "", "")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), start)
	require.NoError(t, err)
	assert.Equal(t, created.Appointment.UID, cancelled.UID)
	assert.Equal(t, store.Cancelled, cancelled.Status)

	// The slot is free again.
	_, err = svc.Schedule(context.Background(), start, "", "")
	assert.NoError(t, err)
}

func TestService_CancelByContainedInstant(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := svc.Schedule(context.Background(), start, "", "")
	require.NoError(t, err)

	// Cancelling by an instant inside the slot finds the covering appointment.
	cancelled, err := svc.Cancel(context.Background(), start.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, store.Cancelled, cancelled.Status)
}

func TestService_CancelMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Cancel(context.Background(), time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeNotFound))
}

func TestService_CancelTwice(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := svc.Schedule(context.Background(), start, "", "")
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), start)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), start)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeNotFound))
}

func TestService_ListRange(t *testing.T) {
	svc, _ := newTestService(t)
	monday := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)

	_, err := svc.Schedule(context.Background(), monday, "", "")
	require.NoError(t, err)
	_, err = svc.Schedule(context.Background(), tuesday, "", "")
	require.NoError(t, err)

	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	list, err := svc.ListRange(context.Background(), dayStart, dayStart.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, monday.Unix(), list[0].StartTs)

	week, err := svc.ListRange(context.Background(), dayStart, dayStart.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, week, 2)
}

func TestService_ListRangeExcludesCancelled(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := svc.Schedule(context.Background(), start, "", "")
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), start)
	require.NoError(t, err)

	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	list, err := svc.ListRange(context.Background(), dayStart, dayStart.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_Alternatives(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := svc.Schedule(context.Background(), start, "", "")
	require.NoError(t, err)

	alternatives, err := svc.Alternatives(context.Background(), start, 2)
	require.NoError(t, err)
	require.Len(t, alternatives, 2)
	assert.Equal(t, "2026-03-02 10:30", alternatives[0].Start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2026-03-02 11:00", alternatives[1].Start.Format("2006-01-02 15:04"))
}

func TestService_ConcurrentScheduleSingleWinner(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Schedule(context.Background(), start, "", "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, apperr.IsCode(err, apperr.ErrCodeConflict), "got %v", err)
		}
	}
	assert.Equal(t, 1, winners)
}
