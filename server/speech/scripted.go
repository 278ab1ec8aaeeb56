package speech

import (
	"context"
	"sync"
	"time"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
)

// ScriptedRecognizer replays a fixed sequence of utterances. A nil entry
// simulates a listening timeout. Used by dialogue tests.
type ScriptedRecognizer struct {
	mu         sync.Mutex
	utterances []*string
	pos        int
}

// NewScriptedRecognizer builds a recognizer replaying the given lines.
func NewScriptedRecognizer(utterances ...*string) *ScriptedRecognizer {
	return &ScriptedRecognizer{utterances: utterances}
}

// Say is a convenience for building script entries.
func Say(text string) *string {
	return &text
}

// Silence is a script entry that simulates a timed-out listen.
func Silence() *string {
	return nil
}

func (s *ScriptedRecognizer) Listen(_ context.Context, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.utterances) {
		return "", apperr.Timeout("script exhausted")
	}
	entry := s.utterances[s.pos]
	s.pos++
	if entry == nil {
		return "", apperr.Timeout("no speech detected")
	}
	return *entry, nil
}

// RecordingSynthesizer captures every spoken response for assertions.
type RecordingSynthesizer struct {
	mu     sync.Mutex
	spoken []string
}

// NewRecordingSynthesizer creates an empty recorder.
func NewRecordingSynthesizer() *RecordingSynthesizer {
	return &RecordingSynthesizer{}
}

func (r *RecordingSynthesizer) Speak(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, text)
	return nil
}

// Spoken returns a copy of everything spoken so far, in order.
func (r *RecordingSynthesizer) Spoken() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.spoken))
	copy(out, r.spoken)
	return out
}

var (
	_ Recognizer  = (*ScriptedRecognizer)(nil)
	_ Synthesizer = (*RecordingSynthesizer)(nil)
)
