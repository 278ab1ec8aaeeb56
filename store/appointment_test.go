package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointment_OverlapsWith(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	a := &Appointment{
		StartTs: start.Unix(),
		EndTs:   start.Add(30 * time.Minute).Unix(),
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"identical", start, start.Add(30 * time.Minute), true},
		{"starts inside", start.Add(15 * time.Minute), start.Add(45 * time.Minute), true},
		{"ends inside", start.Add(-15 * time.Minute), start.Add(15 * time.Minute), true},
		{"covers", start.Add(-15 * time.Minute), start.Add(45 * time.Minute), true},
		{"back to back after", start.Add(30 * time.Minute), start.Add(60 * time.Minute), false},
		{"back to back before", start.Add(-30 * time.Minute), start, false},
		{"disjoint", start.Add(2 * time.Hour), start.Add(3 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.OverlapsWith(tt.start.Unix(), tt.end.Unix()))
		})
	}
}

func TestAppointment_ParseTimes(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	a := &Appointment{StartTs: start.Unix(), EndTs: start.Add(30 * time.Minute).Unix()}

	assert.Equal(t, "10:00", a.ParseStartTime(loc).Format("15:04"))
	assert.Equal(t, "10:30", a.ParseEndTime(loc).Format("15:04"))
}

func TestAppointment_IsScheduled(t *testing.T) {
	assert.True(t, (&Appointment{Status: Scheduled}).IsScheduled())
	assert.False(t, (&Appointment{Status: Cancelled}).IsScheduled())
}
