package booking

import (
	"regexp"
	"strconv"
	"strings"
)

// ordinalWords maps spelled-out ordinals onto slot indexes.
var ordinalWords = map[string]int{
	"first": 0, "second": 1, "third": 2, "fourth": 3, "fifth": 4,
	"sixth": 5, "seventh": 6, "eighth": 7, "ninth": 8, "tenth": 9,
}

// affirmativePhrases select the first presented slot when no ordinal is
// given ("looks good", "that one").
var affirmativePhrases = []string{
	"looks good", "that one", "that works", "sounds great",
}

// confirmationTokens is the fixed affirmative vocabulary for confirming a
// selected slot. Absence of all of them is a negative, not an error.
var confirmationTokens = []string{
	"yes", "confirm", "ok", "okay", "sure", "sounds good", "perfect",
	"book", "schedule",
}

var (
	optionRegex    = regexp.MustCompile(`option\s+(\d{1,2})`)
	bareIndexRegex = regexp.MustCompile(`\b(\d{1,2})\b`)
	wordRegex      = regexp.MustCompile(`[a-z]+`)
)

// ResolveSelection maps free-text slot references onto an index into the
// last presented slot list of length count. Out-of-range and unparsable
// references fail with ErrAmbiguousSelection so the caller can ask the
// user to disambiguate; state is never advanced on failure.
func ResolveSelection(message string, count int) (int, error) {
	if count <= 0 {
		return 0, ErrAmbiguousSelection
	}
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return 0, ErrAmbiguousSelection
	}

	// "option 2" style references take precedence.
	if m := optionRegex.FindStringSubmatch(lower); m != nil {
		return checkIndex(m[1], count)
	}

	for _, w := range wordRegex.FindAllString(lower, -1) {
		if idx, ok := ordinalWords[w]; ok {
			if idx >= count {
				return 0, ErrAmbiguousSelection
			}
			return idx, nil
		}
	}

	if m := bareIndexRegex.FindStringSubmatch(lower); m != nil {
		return checkIndex(m[1], count)
	}

	// An affirmative without an ordinal defaults to the first slot.
	for _, phrase := range affirmativePhrases {
		if strings.Contains(lower, phrase) {
			return 0, nil
		}
	}

	return 0, ErrAmbiguousSelection
}

func checkIndex(digits string, count int) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > count {
		return 0, ErrAmbiguousSelection
	}
	return n - 1, nil
}

// ResolveConfirmation reports whether the message is a positive
// confirmation of the pending selection.
func ResolveConfirmation(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return false
	}
	words := wordRegex.FindAllString(lower, -1)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}
	for _, token := range confirmationTokens {
		if strings.Contains(token, " ") {
			if strings.Contains(lower, token) {
				return true
			}
			continue
		}
		if wordSet[token] {
			return true
		}
	}
	return false
}
