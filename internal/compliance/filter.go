// Package compliance screens rendered messages against a list of forbidden
// keywords before they are dispatched.
//
// Matching is substring based and case-insensitive. Both the words and the
// message are normalized to Unicode NFC and case folded, so "ÁLCOOL" typed
// with a combining accent still matches "álcool".
package compliance

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// defaultWords is the commercial-policy list shipped with the tool.
var defaultWords = []string{
	"drogas", "maconha", "cigarro", "tabaco", "álcool", "esteroides",
	"armas", "munição", "explosivos", "animais", "sexo", "pornografia",
	"jogos de azar", "encontros", "pirataria", "moeda falsa",
}

// DefaultWords returns a copy of the built-in banned word list.
func DefaultWords() []string {
	return slices.Clone(defaultWords)
}

// ErrBlankWord is returned when an empty or whitespace-only word is added.
var ErrBlankWord = errors.New("banned word cannot be blank")

// ViolationError reports the banned word found in a message.
type ViolationError struct {
	Word string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("message contains forbidden content: %s", e.Word)
}

// Filter is an immutable snapshot of a banned word list.
// The zero value accepts every message.
type Filter struct {
	words  []string // display form, list order
	folded []string // normalized form, parallel to words
}

// NewFilter builds a filter from words. Blank entries and duplicates
// (after normalization) are dropped; the first spelling wins.
func NewFilter(words []string) Filter {
	var f Filter
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		key := fold(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		f.words = append(f.words, w)
		f.folded = append(f.folded, key)
	}
	return f
}

// Check returns a *ViolationError for the first banned word (in list order)
// contained in msg, or nil if the message is clean.
func (f Filter) Check(msg string) error {
	if len(f.folded) == 0 {
		return nil
	}
	haystack := fold(msg)
	for i, needle := range f.folded {
		if strings.Contains(haystack, needle) {
			return &ViolationError{Word: f.words[i]}
		}
	}
	return nil
}

// Words returns the words in list order.
func (f Filter) Words() []string {
	return slices.Clone(f.words)
}

// Len returns the number of words in the filter.
func (f Filter) Len() int {
	return len(f.words)
}

// fold normalizes s for comparison. A new Caser is built per call because
// Casers carry state and must not be shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}
