package matching

import (
	"strings"
	"unicode"
)

// Seniority is a position on the career ladder. The zero value means unknown.
type Seniority string

const (
	SeniorityUnknown   Seniority = ""
	SeniorityEntry     Seniority = "entry"
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityLead      Seniority = "lead"
	SeniorityManager   Seniority = "manager"
	SeniorityDirector  Seniority = "director"
	SeniorityExecutive Seniority = "executive"
)

// SeniorityLevels lists the ladder from the bottom up.
var SeniorityLevels = []Seniority{
	SeniorityEntry,
	SeniorityJunior,
	SeniorityMid,
	SenioritySenior,
	SeniorityLead,
	SeniorityManager,
	SeniorityDirector,
	SeniorityExecutive,
}

// Keywords are checked from the top of the ladder down so that
// "senior engineering manager" resolves to manager.
var seniorityKeywords = []struct {
	level Seniority
	words []string
}{
	{SeniorityExecutive, []string{"executive", "chief", "cto", "ceo", "cfo", "cio", "vp", "vice", "president"}},
	{SeniorityDirector, []string{"director", "head"}},
	{SeniorityManager, []string{"manager", "management"}},
	{SeniorityLead, []string{"lead", "principal", "staff", "architect"}},
	{SenioritySenior, []string{"senior", "sr", "snr"}},
	{SeniorityMid, []string{"mid", "middle", "intermediate"}},
	{SeniorityJunior, []string{"junior", "jr", "jnr"}},
	{SeniorityEntry, []string{"entry", "graduate", "grad", "intern", "internship", "trainee", "apprentice"}},
}

// ParseSeniority maps free text such as "Sr. Engineer" or "mid-level" onto a
// Seniority. It reports false when nothing recognisable is found.
func ParseSeniority(text string) (Seniority, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return SeniorityUnknown, false
	}

	present := make(map[string]struct{}, len(words))
	for _, word := range words {
		present[word] = struct{}{}
	}

	for _, entry := range seniorityKeywords {
		for _, word := range entry.words {
			if _, ok := present[word]; ok {
				return entry.level, true
			}
		}
	}

	return SeniorityUnknown, false
}

// Rank returns the zero-based ladder position, or -1 when unknown.
func (s Seniority) Rank() int {
	for i, level := range SeniorityLevels {
		if level == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the known levels.
func (s Seniority) Valid() bool {
	return s.Rank() >= 0
}

// SeniorityForYears infers a level from years of experience.
func SeniorityForYears(years float64) Seniority {
	switch {
	case years < 1:
		return SeniorityEntry
	case years < 3:
		return SeniorityJunior
	case years < 5:
		return SeniorityMid
	case years < 8:
		return SenioritySenior
	default:
		return SeniorityLead
	}
}
