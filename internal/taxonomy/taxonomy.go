// Package taxonomy canonicalises free-text skill mentions and compares skill
// sets. Everything here is pure and safe for concurrent use.
package taxonomy

import (
	"sort"
	"strings"
	"unicode"
)

const segmentSeparators = " -./_"

// Canonical returns the canonical label for a single skill token, or the
// trimmed lower-cased token when it is not a known alias.
func Canonical(token string) string {
	key := clean(token)
	if key == "" {
		return ""
	}

	if canonical, ok := synonyms[key]; ok {
		return canonical
	}

	compact := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	if canonical, ok := synonyms[compact]; ok {
		return canonical
	}

	return key
}

// Normalize splits raw skill text on commas, semicolons, pipes, bullets and
// line breaks and canonicalises every token.
func Normalize(raw string) Set {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ',', ';', '|', '\n', '\r', '\t', '•', '·':
			return true
		}
		return false
	})

	set := make(Set, len(tokens))
	for _, token := range tokens {
		set.Add(token)
	}
	return set
}

func clean(token string) string {
	token = strings.ToLower(token)
	token = strings.TrimFunc(token, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '\'' || r == '*' || r == '-' || r == ':'
	})
	token = strings.TrimRight(token, ".")
	return strings.Join(strings.Fields(token), " ")
}

// Set is a set of canonical skill labels.
type Set map[string]struct{}

// NewSet builds a Set from tokens, canonicalising each one.
func NewSet(tokens ...string) Set {
	set := make(Set, len(tokens))
	for _, token := range tokens {
		set.Add(token)
	}
	return set
}

// Add canonicalises token and adds it. Empty tokens are ignored.
func (s Set) Add(token string) {
	if canonical := Canonical(token); canonical != "" {
		s[canonical] = struct{}{}
	}
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for skill := range s {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// Classification splits a skill set into matched, partial and missing.
type Classification struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Partial []string `json:"partial"`
}

// SkillMatchResult compares a candidate's skills against required and
// preferred sets. The embedded Classification covers the required skills.
type SkillMatchResult struct {
	Classification
	// CoverageRatio is |matched|/|required|, or 1 when nothing is required.
	CoverageRatio float64        `json:"coverageRatio"`
	Preferred     Classification `json:"preferred"`
	// PreferredCoverage is |preferred matched|/|preferred|, or 0 when nothing
	// is preferred.
	PreferredCoverage float64 `json:"preferredCoverage"`
}

// MatchSkillSets classifies every required and preferred skill against the
// candidate's skills. A skill with no exact canonical match that shares a
// whole segment with a candidate skill ("react" and "react-native") is
// partial rather than missing.
func MatchSkillSets(candidate, required, preferred Set) SkillMatchResult {
	candidate = canonicalSet(candidate)
	required = canonicalSet(required)
	preferred = canonicalSet(preferred)

	result := SkillMatchResult{
		Classification: classify(candidate, required),
		CoverageRatio:  1,
		Preferred:      classify(candidate, preferred),
	}

	if len(required) > 0 {
		result.CoverageRatio = float64(len(result.Matched)) / float64(len(required))
	}
	if len(preferred) > 0 {
		result.PreferredCoverage = float64(len(result.Preferred.Matched)) / float64(len(preferred))
	}

	return result
}

func classify(candidate, wanted Set) Classification {
	out := Classification{
		Matched: []string{},
		Missing: []string{},
		Partial: []string{},
	}

	for _, skill := range wanted.Sorted() {
		switch {
		case hasKey(candidate, skill):
			out.Matched = append(out.Matched, skill)
		case hasPartial(candidate, skill):
			out.Partial = append(out.Partial, skill)
		default:
			out.Missing = append(out.Missing, skill)
		}
	}

	return out
}

func hasKey(s Set, key string) bool {
	_, ok := s[key]
	return ok
}

func hasPartial(candidate Set, skill string) bool {
	for have := range candidate {
		if containsSegment(have, skill) || containsSegment(skill, have) {
			return true
		}
	}
	return false
}

// containsSegment reports whether needle occurs in haystack bounded by
// separators or string edges on both sides.
func containsSegment(haystack, needle string) bool {
	if needle == "" || len(needle) >= len(haystack) {
		return false
	}

	for offset := 0; offset <= len(haystack)-len(needle); {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)

		leftOK := start == 0 || strings.IndexByte(segmentSeparators, haystack[start-1]) >= 0
		rightOK := end == len(haystack) || strings.IndexByte(segmentSeparators, haystack[end]) >= 0
		if leftOK && rightOK {
			return true
		}
		offset = start + 1
	}

	return false
}

// canonicalSet re-canonicalises a set built outside this package.
func canonicalSet(s Set) Set {
	out := make(Set, len(s))
	for skill := range s {
		out.Add(skill)
	}
	return out
}
