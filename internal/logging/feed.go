package logging

import (
	"strings"
	"sync/atomic"
)

// Feed is an io.Writer that turns log lines into channel messages for a UI.
// Writes never block: when the reader falls behind, lines are dropped and
// counted.
type Feed struct {
	lines   chan string
	dropped atomic.Int64
}

// NewFeed returns a feed buffering up to size lines.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 256
	}
	return &Feed{lines: make(chan string, size)}
}

func (f *Feed) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case f.lines <- line:
		default:
			f.dropped.Add(1)
		}
	}
	return len(p), nil
}

// Lines is the channel the UI reads from.
func (f *Feed) Lines() <-chan string { return f.lines }

// Dropped reports how many lines were discarded.
func (f *Feed) Dropped() int64 { return f.dropped.Load() }
