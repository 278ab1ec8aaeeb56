// Package speech defines the narrow boundary to audio input and output.
// The dialogue layer depends only on these interfaces; the concrete
// implementations here are a console pair for interactive use and a
// scripted pair for deterministic tests.
package speech

import (
	"context"
	"time"
)

// Recognizer converts one utterance of audio input to text.
type Recognizer interface {
	// Listen blocks until an utterance is available or the timeout
	// elapses. A timeout or empty capture returns a coded timeout error.
	Listen(ctx context.Context, timeout time.Duration) (string, error)
}

// Synthesizer renders assistant text to the user.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}
