package stream

import "strings"

// MergeOverlapping reconciles a committed prefix with a newly transcribed
// window by finding the longest suffix-of-committed/prefix-of-new word
// overlap. Case-insensitive; requires at least 2 overlapping words to
// avoid spurious merges on common single words like "the" or "a".
func MergeOverlapping(committed, next string) string {
	if committed == "" {
		return next
	}
	if next == "" {
		return committed
	}

	committedWords := strings.Fields(committed)
	nextWords := strings.Fields(next)

	maxK := len(committedWords)
	if len(nextWords) < maxK {
		maxK = len(nextWords)
	}

	for k := maxK; k >= 2; k-- {
		if wordsEqualFold(committedWords[len(committedWords)-k:], nextWords[:k]) {
			merged := append(append([]string{}, committedWords...), nextWords[k:]...)
			return strings.Join(merged, " ")
		}
	}

	return committed + " " + next
}

func wordsEqualFold(a, b []string) bool {
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
