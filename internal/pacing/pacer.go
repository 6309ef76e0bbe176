// Package pacing spaces out dispatches with randomized delays.
package pacing

import (
	"context"
	"math/rand"
	"time"
)

// Defaults mirror the 30 to 90 second window the sender has always used.
const (
	DefaultMin = 30 * time.Second
	DefaultMax = 90 * time.Second
)

// Pacer draws delays uniformly from [Min, Max].
type Pacer struct {
	Min time.Duration
	Max time.Duration

	intN  func(n int64) int64
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Pacer.
type Option func(*Pacer)

// WithRand replaces the random source. intN must return a value in [0, n).
func WithRand(intN func(n int64) int64) Option {
	return func(p *Pacer) { p.intN = intN }
}

// WithSleep replaces the sleep function, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pacer) { p.sleep = sleep }
}

// New creates a pacer. Negative bounds are clamped to zero.
func New(lo, hi time.Duration, opts ...Option) *Pacer {
	p := &Pacer{
		Min:   max0(lo),
		Max:   max0(hi),
		intN:  rand.Int63n,
		sleep: Sleep,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Next returns the next delay. When both bounds are whole seconds the
// delay is drawn at one-second granularity.
func (p *Pacer) Next() time.Duration {
	if p.Max <= p.Min {
		return p.Min
	}
	unit := time.Duration(1)
	if p.Min%time.Second == 0 && p.Max%time.Second == 0 {
		unit = time.Second
	}
	span := int64((p.Max - p.Min) / unit)
	return p.Min + time.Duration(p.intN(span+1))*unit
}

// Sleep blocks for d using the pacer's sleep function.
func (p *Pacer) Sleep(ctx context.Context, d time.Duration) error {
	return p.sleep(ctx, d)
}

// Wait sleeps for Next() and returns the chosen delay.
func (p *Pacer) Wait(ctx context.Context) (time.Duration, error) {
	d := p.Next()
	return d, p.sleep(ctx, d)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func max0(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
