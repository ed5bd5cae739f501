package usecase

import (
	"regexp"
	"strings"
)

var (
	replyPrefixPattern = regexp.MustCompile(`(?i)^(re|r|fwd|fw|aw|wg|vs|sv|reply|forward)\s*:\s*`)
	bracketTagPattern  = regexp.MustCompile(`^\[[^\]]*\]\s*`)
)

// NormalizeSubject strips reply/forward prefixes and bracketed tags
// iteratively until the subject is stable, then lowercases it.
func NormalizeSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for {
		next := replyPrefixPattern.ReplaceAllString(s, "")
		next = bracketTagPattern.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			break
		}
		s = next
	}
	return strings.ToLower(s)
}

// jaccardOverlap computes |A∩B| / |A∪B| over two address sets, compared
// case-insensitively. Two empty sets overlap not at all.
func jaccardOverlap(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[strings.ToLower(s)] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[strings.ToLower(s)] = struct{}{}
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// cleanMessageID strips angle brackets and whitespace from a message-id
// token. IDs are stored bare; headers carry them bracketed.
func cleanMessageID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	return strings.TrimSuffix(id, ">")
}
