package matching

import (
	"strings"
	"unicode"
)

// LocationMode is the working arrangement a job asks for.
type LocationMode string

const (
	LocationUnspecified LocationMode = "unspecified"
	LocationRemote      LocationMode = "remote"
	LocationHybrid      LocationMode = "hybrid"
	LocationOnsite      LocationMode = "onsite"
)

// LocationRequirement is the job's location text plus the inferred mode.
type LocationRequirement struct {
	Raw  string       `json:"raw"`
	Mode LocationMode `json:"mode"`
}

// Remote reports whether the job can be done from anywhere.
func (l LocationRequirement) Remote() bool {
	return l.Mode == LocationRemote
}

// ParseLocationMode accepts the usual spellings of each mode. Anything else
// is unspecified.
func ParseLocationMode(text string) LocationMode {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "remote", "fully remote", "remote-first", "wfh":
		return LocationRemote
	case "hybrid":
		return LocationHybrid
	case "onsite", "on-site", "on site", "office", "in-office", "in office":
		return LocationOnsite
	default:
		return LocationUnspecified
	}
}

// InferLocationMode guesses the mode from free location text such as
// "London (hybrid, 2 days in office)".
func InferLocationMode(text string) LocationMode {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "hybrid"):
		return LocationHybrid
	case strings.Contains(lower, "remote") || strings.Contains(lower, "work from home") || strings.Contains(lower, "anywhere"):
		return LocationRemote
	case strings.Contains(lower, "on-site") || strings.Contains(lower, "onsite") ||
		strings.Contains(lower, "on site") || strings.Contains(lower, "office"):
		return LocationOnsite
	default:
		return LocationUnspecified
	}
}

// modeWords covers text that describes a working arrangement but no place.
var modeWords = map[string]struct{}{
	"hybrid": {}, "remote": {}, "onsite": {}, "on": {}, "site": {}, "office": {},
	"based": {}, "in": {}, "the": {}, "an": {}, "a": {}, "work": {}, "working": {},
	"from": {}, "home": {}, "wfh": {}, "fully": {}, "first": {}, "flexible": {},
	"day": {}, "days": {}, "per": {}, "week": {}, "or": {}, "and": {}, "with": {},
	"anywhere": {}, "location": {}, "role": {}, "position": {},
}

// ModeOnly reports whether text only names a working arrangement, such as
// "Hybrid" or "Office based, 3 days a week", without any place.
func ModeOnly(text string) bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if strings.IndexFunc(w, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
			continue
		}
		if _, ok := modeWords[w]; !ok {
			return false
		}
	}
	return true
}
