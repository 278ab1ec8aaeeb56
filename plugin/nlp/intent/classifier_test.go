package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(profile.DefaultWakeWords())

	tests := []struct {
		name       string
		utterance  string
		wantKind   Kind
		wantPhrase string
		wantDoctor string
	}{
		{
			name:       "schedule with relative time",
			utterance:  "schedule an appointment for tomorrow at 2pm",
			wantKind:   KindSchedule,
			wantPhrase: "tomorrow at 2pm",
		},
		{
			name:       "book with doctor name",
			utterance:  "book a checkup with dr. smith next friday",
			wantKind:   KindSchedule,
			wantPhrase: "next friday",
			wantDoctor: "Dr. Smith",
		},
		{
			name:       "schedule with specialty",
			utterance:  "schedule a visit with a cardiologist tomorrow",
			wantKind:   KindSchedule,
			wantPhrase: "tomorrow",
			wantDoctor: "Dr. Cardiology (Specialist)",
		},
		{
			name:       "check appointments",
			utterance:  "do i have any appointments on friday",
			wantKind:   KindCheck,
			wantPhrase: "friday",
		},
		{
			name:       "check with show keyword",
			utterance:  "show my appointments for next week",
			wantKind:   KindCheck,
			wantPhrase: "next week",
		},
		{
			name:       "cancel with time",
			utterance:  "cancel my appointment tomorrow at 2pm",
			wantKind:   KindCancel,
			wantPhrase: "tomorrow at 2pm",
		},
		{
			name:       "reschedule reads as cancel",
			utterance:  "reschedule my appointment tomorrow",
			wantKind:   KindCancel,
			wantPhrase: "tomorrow",
		},
		{
			name:      "exit",
			utterance: "goodbye",
			wantKind:  KindExit,
		},
		{
			name:      "unknown",
			utterance: "tell me a joke",
			wantKind:  KindUnknown,
		},
		{
			name:      "empty",
			utterance: "",
			wantKind:  KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := c.Classify(tt.utterance)
			assert.Equal(t, tt.wantKind, it.Kind)
			assert.Equal(t, tt.wantPhrase, it.TemporalPhrase)
			assert.Equal(t, tt.wantDoctor, it.Doctor)
		})
	}
}

func TestClassifier_StripWakeWord(t *testing.T) {
	c := NewClassifier(profile.DefaultWakeWords())

	tests := []struct {
		name      string
		utterance string
		wantText  string
		wantWoken bool
	}{
		{"longest prefix wins", "hey assistant, schedule a checkup tomorrow", "schedule a checkup tomorrow", true},
		{"short wake word", "assistant show my appointments", "show my appointments", true},
		{"bare wake word", "hey assistant", "", true},
		{"case insensitive", "Hey Assistant, cancel it", "cancel it", true},
		{"no wake word", "schedule a checkup tomorrow", "schedule a checkup tomorrow", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, woken := c.StripWakeWord(tt.utterance)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantWoken, woken)
		})
	}
}

func TestClassifier_MalformedInputNeverPanics(t *testing.T) {
	c := NewClassifier(nil)

	for _, utterance := range []string{"   ", "!!!", "schedule", "cancel", "书预约"} {
		assert.NotPanics(t, func() { c.Classify(utterance) }, "utterance %q", utterance)
	}
}
