package compliance

import (
	"slices"
	"strings"
	"sync"
)

// List is the runtime-editable banned word list. It is safe for concurrent
// use: the settings dialog writes to it while a send loop takes a Snapshot
// for every row, so edits apply from the next row onwards.
type List struct {
	mu      sync.RWMutex
	filter  Filter
	version uint64
}

// NewList creates a list seeded with words.
func NewList(words []string) *List {
	return &List{filter: NewFilter(words)}
}

// Add appends word to the list. It reports false if an equivalent word is
// already present.
func (l *List) Add(word string) (bool, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return false, ErrBlankWord
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := fold(word)
	if slices.Contains(l.filter.folded, key) {
		return false, nil
	}
	l.filter = NewFilter(append(l.filter.Words(), word))
	l.version++
	return true, nil
}

// Remove deletes the word equivalent to word. It reports whether anything
// was removed.
func (l *List) Remove(word string) bool {
	key := fold(word)

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.Index(l.filter.folded, key)
	if idx < 0 {
		return false
	}
	words := l.filter.Words()
	l.filter = NewFilter(slices.Delete(words, idx, idx+1))
	l.version++
	return true
}

// Replace swaps the whole list, e.g. after the config file was reloaded.
func (l *List) Replace(words []string) {
	f := NewFilter(words)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = f
	l.version++
}

// Words returns the current words in list order.
func (l *List) Words() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter.Words()
}

// Len returns the number of words.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter.Len()
}

// Snapshot returns the current list as an immutable Filter.
func (l *List) Snapshot() Filter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter
}

// Version increments on every successful mutation.
func (l *List) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}
