package timeparse

import (
	"context"
	"strings"
	"time"
)

// Service implements TimeService with rule-based parsing.
type Service struct {
	defaultTimezone *time.Location
}

// NewService creates a new time service.
func NewService(defaultTimezone string) *Service {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.Local
	}
	return &Service{
		defaultTimezone: loc,
	}
}

// Resolve parses a natural language phrase into an absolute time.
// The reference instant stands in for "now" so results are deterministic.
func (s *Service) Resolve(_ context.Context, phrase string, reference time.Time) (time.Time, error) {
	parser := &Parser{
		timezone: s.locationOf(reference),
		now:      func() time.Time { return reference },
	}
	return parser.Parse(phrase)
}

// ResolveRange parses a phrase naming a day or week into a [start, end) range.
// Phrases carrying a clock time fall back to the single day they name.
func (s *Service) ResolveRange(ctx context.Context, phrase string, reference time.Time) (TimeRange, error) {
	loc := s.locationOf(reference)
	ref := reference.In(loc)
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	normalized := strings.ToLower(strings.TrimSpace(phrase))
	switch normalized {
	case "", "today":
		return TimeRange{Start: dayStart, End: dayStart.Add(24 * time.Hour)}, nil
	case "tomorrow":
		start := dayStart.AddDate(0, 0, 1)
		return TimeRange{Start: start, End: start.Add(24 * time.Hour)}, nil
	case "this week":
		monday := dayStart.AddDate(0, 0, -mondayOffset(ref))
		return TimeRange{Start: monday, End: monday.AddDate(0, 0, 7)}, nil
	case "next week":
		monday := dayStart.AddDate(0, 0, 7-mondayOffset(ref))
		return TimeRange{Start: monday, End: monday.AddDate(0, 0, 7)}, nil
	}

	// Anything else resolves through the full grammar and covers the day it lands on.
	t, err := s.Resolve(ctx, phrase, reference)
	if err != nil {
		return TimeRange{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return TimeRange{Start: start, End: start.Add(24 * time.Hour)}, nil
}

func (s *Service) locationOf(reference time.Time) *time.Location {
	if loc := reference.Location(); loc != nil {
		return loc
	}
	return s.defaultTimezone
}

// mondayOffset returns how many days the reference lies past Monday.
func mondayOffset(ref time.Time) int {
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return weekday - 1
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
