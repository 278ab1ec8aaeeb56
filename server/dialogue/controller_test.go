package dialogue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
	"github.com/BasedPanda/healthcare-voice-assistant/internal/observability"
	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
	"github.com/BasedPanda/healthcare-voice-assistant/plugin/nlp/timeparse"
	"github.com/BasedPanda/healthcare-voice-assistant/server/service/scheduling"
	"github.com/BasedPanda/healthcare-voice-assistant/server/speech"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
)

// fakeStore is an in-memory scheduling.Store with the driver's overlap
// and status-guard semantics.
type fakeStore struct {
	mu           sync.Mutex
	appointments []*store.Appointment
	nextID       int32
}

func (f *fakeStore) CreateAppointment(_ context.Context, create *store.Appointment) (*store.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.IsScheduled() && a.OverlapsWith(create.StartTs, create.EndTs) {
			return nil, apperr.Conflict(fmt.Sprintf("slot overlaps appointment %s", a.UID)).
				WithContext("conflicting_uid", a.UID).
				WithContext("conflicting_start_ts", a.StartTs)
		}
	}
	f.nextID++
	create.ID = f.nextID
	f.appointments = append(f.appointments, create)
	return create, nil
}

func (f *fakeStore) ListAppointments(_ context.Context, find *store.FindAppointment) ([]*store.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*store.Appointment
	for _, a := range f.appointments {
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

func (f *fakeStore) GetAppointment(ctx context.Context, find *store.FindAppointment) (*store.Appointment, error) {
	list, err := f.ListAppointments(ctx, find)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (f *fakeStore) CancelAppointment(_ context.Context, cancel *store.CancelAppointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.ID == cancel.ID && a.IsScheduled() {
			a.Status = store.Cancelled
			return nil
		}
	}
	return apperr.NotFound(fmt.Sprintf("no scheduled appointment with id %d", cancel.ID))
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Mode:                "demo",
		Timezone:            "UTC",
		WorkingHoursStart:   9,
		WorkingHoursEnd:     17,
		AppointmentDuration: 30,
		MinScheduleNotice:   1,
		SpeechTimeout:       5,
		WakeWords:           profile.DefaultWakeWords(),
	}
}

// referenceMonday is a Monday 09:00 UTC at least two weeks in the future,
// so bookings made relative to it always clear the notice window.
func referenceMonday() time.Time {
	ref := time.Now().UTC().AddDate(0, 0, 14)
	for ref.Weekday() != time.Monday {
		ref = ref.AddDate(0, 0, 1)
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), 9, 0, 0, 0, time.UTC)
}

func newTestController(t *testing.T, utterances ...*string) (*Controller, *speech.RecordingSynthesizer) {
	t.Helper()
	p := testProfile()
	synth := speech.NewRecordingSynthesizer()
	scheduler := scheduling.NewService(&fakeStore{}, scheduling.PolicyFromProfile(p))
	c := NewController(
		p,
		speech.NewScriptedRecognizer(utterances...),
		synth,
		timeparse.NewService(p.Timezone),
		scheduler,
		observability.NewLogger(true),
	)
	ref := referenceMonday()
	c.now = func() time.Time { return ref }
	return c, synth
}

func TestController_FullSession(t *testing.T) {
	c, synth := newTestController(t,
		speech.Say("hey assistant"),
		speech.Say("schedule an appointment for tomorrow at 2pm"),
		speech.Say("hey assistant, do i have any appointments tomorrow"),
		speech.Say("hey assistant, cancel my appointment tomorrow at 2pm"),
		speech.Say("hey assistant, do i have any appointments tomorrow"),
		speech.Say("hey assistant, goodbye"),
	)

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, StateStopped, c.State())

	spoken := synth.Spoken()
	require.Len(t, spoken, 6)
	assert.Equal(t, msgGreeting, spoken[0])
	assert.Contains(t, spoken[1], "is scheduled for")
	assert.Contains(t, spoken[1], "2:00 PM")
	assert.Contains(t, spoken[2], "You have one appointment")
	assert.Contains(t, spoken[3], "has been cancelled")
	assert.Equal(t, msgNoAppointments, spoken[4])
	assert.Equal(t, msgGoodbye, spoken[5])
}

func TestController_ConflictOffersAlternatives(t *testing.T) {
	c, synth := newTestController(t,
		speech.Say("hey assistant, schedule an appointment for tomorrow at 2pm"),
		speech.Say("hey assistant, schedule an appointment for tomorrow at 2pm"),
		speech.Say("hey assistant, goodbye"),
	)

	require.NoError(t, c.Run(context.Background()))

	spoken := synth.Spoken()
	require.Len(t, spoken, 3)
	assert.Contains(t, spoken[0], "is scheduled for")
	assert.Contains(t, spoken[1], "conflicts with your appointment")
	assert.Contains(t, spoken[1], "Available alternatives")
}

func TestController_PolicyViolations(t *testing.T) {
	c, synth := newTestController(t,
		speech.Say("hey assistant, schedule an appointment for tomorrow at 8pm"),
		speech.Say("hey assistant, schedule an appointment for saturday at 10am"),
		speech.Say("hey assistant, goodbye"),
	)

	require.NoError(t, c.Run(context.Background()))

	spoken := synth.Spoken()
	require.Len(t, spoken, 3)
	assert.Contains(t, spoken[0], "outside our working hours")
	assert.Contains(t, spoken[1], "outside our working hours")
}

func TestController_UnknownAndUnparseable(t *testing.T) {
	c, synth := newTestController(t,
		speech.Say("hey assistant, tell me a joke"),
		speech.Say("hey assistant, schedule an appointment for blursday"),
		speech.Say("hey assistant, goodbye"),
	)

	require.NoError(t, c.Run(context.Background()))

	spoken := synth.Spoken()
	require.Len(t, spoken, 3)
	assert.Equal(t, msgUnknownCommand, spoken[0])
	assert.Contains(t, spoken[1], "couldn't understand that date and time")
}

func TestController_CancelMissingAppointment(t *testing.T) {
	c, synth := newTestController(t,
		speech.Say("hey assistant, cancel my appointment tomorrow at 2pm"),
		speech.Say("hey assistant, goodbye"),
	)

	require.NoError(t, c.Run(context.Background()))

	spoken := synth.Spoken()
	require.Len(t, spoken, 2)
	assert.Contains(t, spoken[0], "couldn't find a scheduled appointment")
}

func TestController_TimeoutSpeaksRetryPrompt(t *testing.T) {
	c, synth := newTestController(t, speech.Silence())

	require.NoError(t, c.RunTurn(context.Background()))

	spoken := synth.Spoken()
	require.Len(t, spoken, 1)
	assert.Equal(t, msgNoSpeech, spoken[0])
	assert.Equal(t, StateAwaitingWakeWord, c.State())
}

func TestController_IgnoresUtteranceWithoutWakeWord(t *testing.T) {
	c, synth := newTestController(t,
		speech.Say("schedule an appointment for tomorrow at 2pm"),
		speech.Say("hey assistant, goodbye"),
	)

	require.NoError(t, c.Run(context.Background()))

	// The first utterance carried no wake word, so only goodbye is spoken.
	spoken := synth.Spoken()
	require.Len(t, spoken, 1)
	assert.Equal(t, msgGoodbye, spoken[0])
}

func TestController_SchedulePromptsWhenTimeMissing(t *testing.T) {
	c, synth := newTestController(t,
		speech.Say("hey assistant, schedule an appointment"),
		speech.Say("hey assistant, goodbye"),
	)

	require.NoError(t, c.Run(context.Background()))

	spoken := synth.Spoken()
	require.Len(t, spoken, 2)
	assert.True(t, strings.Contains(spoken[0], "When would you like"), "got %q", spoken[0])
}
