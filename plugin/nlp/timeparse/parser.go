package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
)

// DefaultHour is the hour used when a phrase names a date but no clock time.
const DefaultHour = 9

// Patterns for time parsing
var (
	hourMinPattern    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm|a\.m\.|p\.m\.)?\b`)
	hourAmPmPattern   = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm|a\.m\.|p\.m\.)\b`)
	oclockPattern     = regexp.MustCompile(`\b(\d{1,2})\s*o'?clock\b`)
	bareAtHourPattern = regexp.MustCompile(`\bat\s+(\d{1,2})\b`)

	monthDayPattern  = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthPattern  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)

	weekdayPattern = regexp.MustCompile(`\b(?:next\s+|this\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// relDateOffsets maps relative date keywords to day offsets.
// Longer phrases are listed first so they match before their substrings.
var relDateOffsets = []struct {
	keyword string
	offset  int
}{
	{"day after tomorrow", 2},
	{"tomorrow", 1},
	{"tonight", 0},
	{"today", 0},
}

// monthsByName maps lowercase month names to time.Month.
var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// weekdaysByName maps lowercase weekday names to time.Weekday.
var weekdaysByName = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// Parser parses natural language time expressions. It is a pure function of
// its input plus the injected reference clock.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewParser creates a new time parser with the given timezone.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.Local
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
	}
}

// Parse parses a time expression and returns the resolved time.
func (p *Parser) Parse(input string) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, errors.Unparseable(input)
	}

	now := p.now().In(p.timezone)

	// Try standard formats first
	if t, ok := p.tryStandardFormats(input, now); ok {
		return t, nil
	}

	// Parse date part
	day, dateFound := p.parseDatePart(input, now)

	// Parse time part
	hour, minute, timeFound := p.parseTimePart(input)

	switch {
	case dateFound && timeFound:
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, p.timezone), nil
	case dateFound:
		// Date only defaults to start of working day
		return time.Date(day.Year(), day.Month(), day.Day(), DefaultHour, 0, 0, 0, p.timezone), nil
	case timeFound:
		// Bare time resolves to the nearest future occurrence
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, p.timezone)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}

	return time.Time{}, errors.Unparseable(input)
}

// tryStandardFormats attempts machine-style date/time layouts.
func (p *Parser) tryStandardFormats(input string, now time.Time) (time.Time, bool) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, input, p.timezone); err == nil {
			if format == "2006-01-02" {
				return time.Date(t.Year(), t.Month(), t.Day(), DefaultHour, 0, 0, 0, p.timezone), true
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// parseDatePart extracts the calendar day named by the input, if any.
func (p *Parser) parseDatePart(input string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.timezone)

	// Relative day keywords
	for _, rel := range relDateOffsets {
		if strings.Contains(input, rel.keyword) {
			return today.AddDate(0, 0, rel.offset), true
		}
	}

	// Explicit month + day ("june 5", "5th of june")
	if m, d, ok := p.parseMonthDay(input); ok {
		t := time.Date(now.Year(), m, d, 0, 0, 0, 0, p.timezone)
		// A date already past this year names next year's occurrence
		if t.Before(today) {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}

	// ISO and slash dates embedded in a longer phrase
	if matches := isoDatePattern.FindStringSubmatch(input); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		day, _ := strconv.Atoi(matches[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.timezone), true
		}
	}
	if matches := slashDatePattern.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			year := now.Year()
			if matches[3] != "" {
				year, _ = strconv.Atoi(matches[3])
			}
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.timezone)
			if matches[3] == "" && t.Before(today) {
				t = t.AddDate(1, 0, 0)
			}
			return t, true
		}
	}

	// Weekday names, with or without "next"/"this". A bare or "next" weekday
	// resolves to the next occurrence strictly after the reference day, so a
	// phrase naming today's weekday lands one week out.
	if matches := weekdayPattern.FindStringSubmatch(input); matches != nil {
		target := weekdaysByName[matches[1]]
		diff := (int(target) - int(now.Weekday()) + 7) % 7
		if diff == 0 {
			diff = 7
		}
		return today.AddDate(0, 0, diff), true
	}

	return time.Time{}, false
}

// parseMonthDay matches "june 5" and "5th of june" forms.
func (p *Parser) parseMonthDay(input string) (time.Month, int, bool) {
	if matches := monthDayPattern.FindStringSubmatch(input); matches != nil {
		day, _ := strconv.Atoi(matches[2])
		if day >= 1 && day <= 31 {
			return monthsByName[matches[1]], day, true
		}
	}
	if matches := dayMonthPattern.FindStringSubmatch(input); matches != nil {
		day, _ := strconv.Atoi(matches[1])
		if day >= 1 && day <= 31 {
			return monthsByName[matches[2]], day, true
		}
	}
	return 0, 0, false
}

// parseTimePart parses the clock time named by the input, if any.
func (p *Parser) parseTimePart(input string) (hour, minute int, found bool) {
	if strings.Contains(input, "noon") || strings.Contains(input, "midday") {
		return 12, 0, true
	}
	if strings.Contains(input, "midnight") {
		return 0, 0, true
	}

	// HH:MM with optional am/pm
	if matches := hourMinPattern.FindStringSubmatch(input); matches != nil {
		h, _ := strconv.Atoi(matches[1])
		m, _ := strconv.Atoi(matches[2])
		if h >= 0 && h <= 23 && m >= 0 && m < 60 {
			return applyMeridiem(h, matches[3], input), m, true
		}
	}

	// Bare hour with am/pm ("2 pm", "11am")
	if matches := hourAmPmPattern.FindStringSubmatch(input); matches != nil {
		h, _ := strconv.Atoi(matches[1])
		if h >= 1 && h <= 12 {
			return applyMeridiem(h, matches[2], input), 0, true
		}
	}

	// "2 o'clock"
	if matches := oclockPattern.FindStringSubmatch(input); matches != nil {
		h, _ := strconv.Atoi(matches[1])
		if h >= 1 && h <= 12 {
			return applyMeridiem(h, "", input), 0, true
		}
	}

	// "at 2" with no meridiem
	if matches := bareAtHourPattern.FindStringSubmatch(input); matches != nil {
		h, _ := strconv.Atoi(matches[1])
		if h >= 0 && h <= 23 {
			return applyMeridiem(h, "", input), 0, true
		}
	}

	return 0, 0, false
}

// applyMeridiem normalizes an hour using an explicit am/pm token or, when
// absent, a deterministic tie-break: 1-6 reads as afternoon, 7-11 as morning.
// Appointment requests for 1-6 overwhelmingly mean the afternoon slot.
func applyMeridiem(hour int, meridiem, input string) int {
	switch {
	case strings.HasPrefix(meridiem, "p"):
		if hour < 12 {
			hour += 12
		}
	case strings.HasPrefix(meridiem, "a"):
		if hour == 12 {
			hour = 0
		}
	case strings.Contains(input, "morning"):
		if hour == 12 {
			hour = 0
		}
	case strings.Contains(input, "afternoon") || strings.Contains(input, "evening") || strings.Contains(input, "tonight"):
		if hour < 12 {
			hour += 12
		}
	case hour >= 1 && hour <= 6:
		hour += 12
	}
	return hour
}
