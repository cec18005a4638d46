package source

import "strings"

// MinPromiseLength is the shortest text block worth sending to extraction.
const MinPromiseLength = 50

var politicalKeywords = []string{
	"promise", "pledge", "commit", "manifesto", "policy", "reform",
	"election", "campaign", "party", "government", "minister",
	"parliament", "assembly", "constituency", "voter", "citizen",
	"development", "infrastructure", "healthcare", "education",
	"employment", "economy", "budget", "scheme", "program",
}

// Relevant reports whether the text mentions at least one term from the
// political vocabulary.
func Relevant(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range politicalKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// FilterRelevant keeps segments that pass the relevance gate and the minimum
// length threshold. A minLength of zero disables the length check.
func FilterRelevant(segments []string, minLength int) []string {
	var kept []string
	for _, segment := range segments {
		if minLength > 0 && len(segment) <= minLength {
			continue
		}
		if segment == "" || !Relevant(segment) {
			continue
		}
		kept = append(kept, segment)
	}
	return kept
}
