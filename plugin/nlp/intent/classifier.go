// Package intent classifies utterance text into a closed set of command
// kinds and extracts the slots the scheduler needs. Classification is
// rule-based keyword matching, not a trained model.
package intent

import (
	"regexp"
	"strings"
)

// Kind represents the classified purpose of an utterance.
type Kind string

const (
	// KindSchedule is a request to book a new appointment.
	KindSchedule Kind = "schedule"
	// KindCheck is a request to list appointments.
	KindCheck Kind = "check"
	// KindCancel is a request to cancel an appointment.
	KindCancel Kind = "cancel"
	// KindExit ends the session.
	KindExit Kind = "exit"
	// KindUnknown is anything the classifier cannot place.
	KindUnknown Kind = "unknown"
)

// Intent is the classified purpose of one utterance plus its extracted slots.
// It is built once per utterance and never persisted.
type Intent struct {
	Kind Kind

	// TemporalPhrase is the raw substring naming a date/time, best-effort.
	// Empty when the utterance carried no usable remainder.
	TemporalPhrase string

	// Doctor is the extracted doctor or specialty reference, empty if none.
	Doctor string
}

// keywordSet pairs a kind with the word-boundary patterns that select it.
// Order matters: earlier sets win when an utterance matches several.
var keywordSets = []struct {
	kind     Kind
	patterns []*regexp.Regexp
}{
	{KindSchedule, compileWords("schedule", "book", "make", "set up", "arrange")},
	{KindCheck, compileWords("check", "view", "show", "list", "what are", "what do", "do i have")},
	{KindCancel, compileWords("cancel", "delete", "remove", "reschedule")},
	{KindExit, compileWords("exit", "quit", "goodbye", "bye")},
}

// fillerWords are tokens trimmed from the front of the phrase remainder.
var fillerWords = map[string]bool{
	"an": true, "a": true, "the": true, "my": true, "me": true, "any": true,
	"appointment": true, "appointments": true, "checkup": true, "visit": true,
	"for": true, "to": true, "on": true, "please": true, "up": true,
}

var (
	drNamePattern = regexp.MustCompile(`\bdr\.?\s+([a-z]+)\b`)
	withDrPattern = regexp.MustCompile(`\bwith\s+(?:a\s+|the\s+)?dr\.?\s+[a-z]+\b|\bwith\s+(?:a\s+|the\s+)?[a-z]+(?:ist|ian)\b`)
)

// specialties maps spoken references to specialty names.
var specialties = map[string][]string{
	"Cardiology":  {"cardiologist", "heart doctor", "heart specialist"},
	"Dermatology": {"dermatologist", "skin doctor", "skin specialist"},
	"Pediatrics":  {"pediatrician", "children doctor", "child specialist"},
	"Neurology":   {"neurologist", "brain doctor", "nerve specialist"},
}

func compileWords(words ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return patterns
}

// Classifier classifies utterances. Wake words come from configuration and
// are matched as case-insensitive prefixes.
type Classifier struct {
	wakeWords []string
}

// NewClassifier creates a classifier with the configured wake-word set.
func NewClassifier(wakeWords []string) *Classifier {
	// Longest first so "hey assistant" wins over "assistant"
	sorted := make([]string, len(wakeWords))
	copy(sorted, wakeWords)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if len(sorted[j]) > len(sorted[i]) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	return &Classifier{wakeWords: sorted}
}

// StripWakeWord removes a recognized wake-word prefix. The second return
// value reports whether a wake word was present.
func (c *Classifier) StripWakeWord(utterance string) (string, bool) {
	trimmed := strings.TrimSpace(utterance)
	lower := strings.ToLower(trimmed)
	for _, w := range c.wakeWords {
		if strings.HasPrefix(lower, strings.ToLower(w)) {
			rest := trimmed[len(w):]
			return strings.TrimLeft(rest, " ,.!?"), true
		}
	}
	return trimmed, false
}

// Classify determines the intent of the utterance. Malformed input never
// raises; the worst case is KindUnknown.
func (c *Classifier) Classify(utterance string) Intent {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return Intent{Kind: KindUnknown}
	}

	for _, set := range keywordSets {
		for _, pattern := range set.patterns {
			loc := pattern.FindStringIndex(text)
			if loc == nil {
				continue
			}
			it := Intent{Kind: set.kind}
			if set.kind == KindSchedule || set.kind == KindCancel || set.kind == KindCheck {
				it.Doctor = extractDoctor(text)
				it.TemporalPhrase = extractPhrase(text[loc[1]:])
			}
			return it
		}
	}

	return Intent{Kind: KindUnknown}
}

// extractPhrase trims filler words and doctor clauses off the remainder of
// the utterance after the command keyword. Best-effort substring only; the
// time parser tolerates leftover noise.
func extractPhrase(remainder string) string {
	remainder = withDrPattern.ReplaceAllString(remainder, " ")

	tokens := strings.Fields(remainder)
	for len(tokens) > 0 && fillerWords[tokens[0]] {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// extractDoctor pulls a doctor name or specialty out of the utterance,
// empty when none is mentioned.
func extractDoctor(text string) string {
	if matches := drNamePattern.FindStringSubmatch(text); matches != nil {
		return "Dr. " + strings.ToUpper(matches[1][:1]) + matches[1][1:]
	}
	for specialty, keywords := range specialties {
		for _, keyword := range keywords {
			if strings.Contains(text, keyword) {
				return "Dr. " + specialty + " (Specialist)"
			}
		}
	}
	return ""
}
