// Package consent implements the pure classification rules behind inbound
// opt-out/opt-in handling: normalizing a raw message body and mapping it to
// a consent intent, independent of how the caller persists the result.
package consent

import (
	"strings"

	"github.com/Notifuse/notifuse/internal/domain"
)

// Intent is the classification of a normalized inbound body.
type Intent string

const (
	// IntentNone means the body carries no recognized consent keyword.
	IntentNone Intent = ""
	// IntentStop means the sender asked to stop receiving messages.
	IntentStop Intent = "STOP"
	// IntentStart means the sender asked to resume receiving messages.
	IntentStart Intent = "START"
)

var stopKeywords = map[string]bool{
	"stop":     true,
	"stopall":  true,
	"unsubscribe": true,
	"cancel":   true,
	"end":      true,
	"quit":     true,
	"opt-out":  true,
}

var startKeywords = map[string]bool{
	"start":     true,
	"subscribe": true,
	"join":      true,
	"yes":       true,
	"unstop":    true,
}

// Normalize lowercases, trims, and collapses internal whitespace in a raw
// inbound body so keyword matching is exact.
func Normalize(body string) string {
	fields := strings.Fields(strings.ToLower(body))
	return strings.Join(fields, " ")
}

// Classify returns the Intent carried by an already-normalized body.
func Classify(normalized string) Intent {
	if stopKeywords[normalized] {
		return IntentStop
	}
	if startKeywords[normalized] {
		return IntentStart
	}
	return IntentNone
}

// languageKeywords maps a group of body substrings to the language code
// they indicate, checked in this order (Sinhala, then Tamil, then English)
// to match the original webhook processor's elif-chain precedence.
var languageKeywords = []struct {
	words []string
	code  string
}{
	{[]string{"සිංහල", "sinhala", "සින්හල"}, "si"},
	{[]string{"tamil", "தமிழ்"}, "ta"},
	{[]string{"english", "eng"}, "en"},
}

// DetectLanguage scans a raw inbound body for a language-preference
// keyword and returns the ISO code it implies. It operates on the
// unmodified body rather than Normalize's output, since a keyword can
// appear anywhere in a longer message, not just as the whole body.
func DetectLanguage(body string) (string, bool) {
	lower := strings.ToLower(body)
	for _, group := range languageKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, strings.ToLower(word)) {
				return group.code, true
			}
		}
	}
	return "", false
}

// Apply computes the next consent state for a user given their current
// state and an inbound intent. It reports whether the state actually
// changed so callers can skip a write when nothing moved.
//
// STOP is always honored. START only clears a STOP; it never touches an
// OPT_OUT set by an operator or bulk import, preserving the distinction
// between the two opt-out sources.
func Apply(current domain.ConsentState, intent Intent) (domain.ConsentState, bool) {
	switch intent {
	case IntentStop:
		if current == domain.ConsentStateStop {
			return current, false
		}
		return domain.ConsentStateStop, true
	case IntentStart:
		if current == domain.ConsentStateStop {
			return domain.ConsentStateOptIn, true
		}
		return current, false
	default:
		return current, false
	}
}
