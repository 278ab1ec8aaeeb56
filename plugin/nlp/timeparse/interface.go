// Package timeparse resolves natural language temporal phrases to absolute
// times using rule-based parsing against an injected reference clock.
package timeparse

import (
	"context"
	"time"
)

// TimeService defines the temporal phrase resolution interface.
type TimeService interface {
	// Resolve converts a phrase like "tomorrow at 2 pm" into an absolute time
	// relative to the given reference instant.
	Resolve(ctx context.Context, phrase string, reference time.Time) (time.Time, error)

	// ResolveRange converts a phrase naming a day or week ("today",
	// "friday", "next week") into a half-open [start, end) range.
	ResolveRange(ctx context.Context, phrase string, reference time.Time) (TimeRange, error)
}

// TimeRange represents a half-open time range.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
