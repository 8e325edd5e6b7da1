// Package textnorm turns free-form chat text into comparable word stems.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Tokens lower-cases raw and splits it into runs of letters and digits.
func Tokens(raw string) []string {
	return strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Normalize returns the Porter2 stem of every token in raw, in input order.
// Empty input yields an empty slice.
func Normalize(raw string) []string {
	tokens := Tokens(raw)
	stems := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		stems = append(stems, Stem(tok))
	}
	return stems
}

// Stem reduces a single lower-case token. Stop words such as "my" are kept as-is.
func Stem(token string) string {
	return english.Stem(token, false)
}

// Set is a lookup set of stems.
type Set map[string]struct{}

// NewSet builds a Set from stems.
func NewSet(stems []string) Set {
	s := make(Set, len(stems))
	for _, stem := range stems {
		s[stem] = struct{}{}
	}
	return s
}

// Has reports whether stem is in the set.
func (s Set) Has(stem string) bool {
	_, ok := s[stem]
	return ok
}

// HasAny reports whether any of stems is in the set.
func (s Set) HasAny(stems ...string) bool {
	for _, stem := range stems {
		if s.Has(stem) {
			return true
		}
	}
	return false
}

// Vocabulary stems each word so keyword tables stay in sync with Normalize.
func Vocabulary(words ...string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, Normalize(w)...)
	}
	return out
}
