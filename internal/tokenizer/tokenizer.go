// Package tokenizer turns free text into the normalized terms shared by the
// index builder and the query engine.
package tokenizer

import (
	"regexp"
	"strings"
)

// nonAlphanumericRegex matches sequences of non-alphanumeric characters.
// It runs on lowercased text, so only the lowercase range is listed.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize converts a string into a slice of tokens.
// It lowercases the string, splits on non-alphanumeric runs and drops empty tokens.
func Tokenize(text string) []string {
	lowerText := strings.ToLower(text)
	split := nonAlphanumericRegex.Split(lowerText, -1)

	tokens := make([]string, 0, len(split)) // Initialize as empty slice, not nil
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// TermFrequencies tokenizes text and counts each term.
// The second return value is the total number of tokens (document length).
func TermFrequencies(text string) (map[string]int, int) {
	tokens := Tokenize(text)
	freqs := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freqs[token]++
	}
	return freqs, len(tokens)
}

// DistinctTerms tokenizes text and returns each term once, in first-seen order.
func DistinctTerms(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}
