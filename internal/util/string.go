package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Truncate cuts s to maxRunes characters and appends "..." when it was longer.
func Truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NameKey is the uniqueness key of a catalog name: lower-cased with runs of
// whitespace collapsed to one space.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// TitleCase splits on single spaces, upper-cases the first rune of every token
// and lower-cases the rest. Acronyms are flattened ("EZ-Bar" -> "Ez-bar"); the
// generation step relies on names produced exactly this way.
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
	}
	return strings.Join(words, " ")
}
