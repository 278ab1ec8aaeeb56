package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
)

// ConsoleRecognizer reads utterances from a line-oriented stream, one
// line per turn. It stands in for a microphone in demo mode.
type ConsoleRecognizer struct {
	scanner *bufio.Scanner
	lines   chan readResult
}

type readResult struct {
	text string
	err  error
}

// NewConsoleRecognizer creates a recognizer over r. A single goroutine
// owns the scanner so a timed-out read does not lose the next line.
func NewConsoleRecognizer(r io.Reader) *ConsoleRecognizer {
	c := &ConsoleRecognizer{
		scanner: bufio.NewScanner(r),
		lines:   make(chan readResult),
	}
	go c.pump()
	return c
}

func (c *ConsoleRecognizer) pump() {
	defer close(c.lines)
	for c.scanner.Scan() {
		c.lines <- readResult{text: strings.TrimSpace(c.scanner.Text())}
	}
	if err := c.scanner.Err(); err != nil {
		c.lines <- readResult{err: err}
	}
}

func (c *ConsoleRecognizer) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		if result.err != nil {
			return "", result.err
		}
		if result.text == "" {
			return "", apperr.Timeout("no speech detected")
		}
		return result.text, nil
	case <-timer.C:
		return "", apperr.Timeout(fmt.Sprintf("no speech within %s", timeout))
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ConsoleSynthesizer writes assistant responses to a stream.
type ConsoleSynthesizer struct {
	w io.Writer
}

// NewConsoleSynthesizer creates a synthesizer over w.
func NewConsoleSynthesizer(w io.Writer) *ConsoleSynthesizer {
	return &ConsoleSynthesizer{w: w}
}

func (c *ConsoleSynthesizer) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintf(c.w, "assistant> %s\n", text)
	return err
}

var (
	_ Recognizer  = (*ConsoleRecognizer)(nil)
	_ Synthesizer = (*ConsoleSynthesizer)(nil)
)
