package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_NextBounds(t *testing.T) {
	p := New(DefaultMin, DefaultMax)
	for i := 0; i < 500; i++ {
		d := p.Next()
		require.GreaterOrEqual(t, d, DefaultMin)
		require.LessOrEqual(t, d, DefaultMax)
		require.Zero(t, d%time.Second, "whole-second bounds give whole-second delays")
	}
}

func TestPacer_NextUsesRandomSource(t *testing.T) {
	var gotN int64
	p := New(30*time.Second, 90*time.Second, WithRand(func(n int64) int64 {
		gotN = n
		return n - 1
	}))

	assert.Equal(t, 90*time.Second, p.Next())
	assert.Equal(t, int64(61), gotN, "inclusive range 30..90 has 61 values")

	p = New(30*time.Second, 90*time.Second, WithRand(func(int64) int64 { return 0 }))
	assert.Equal(t, 30*time.Second, p.Next())
}

func TestPacer_SubSecondBounds(t *testing.T) {
	p := New(10*time.Millisecond, 20*time.Millisecond, WithRand(func(n int64) int64 { return n / 2 }))
	d := p.Next()
	assert.True(t, d >= 10*time.Millisecond && d <= 20*time.Millisecond, "got %v", d)
}

func TestPacer_DegenerateRange(t *testing.T) {
	assert.Equal(t, 5*time.Second, New(5*time.Second, 5*time.Second).Next())
	assert.Equal(t, 5*time.Second, New(5*time.Second, time.Second).Next())
	assert.Equal(t, time.Duration(0), New(-time.Second, -time.Second).Next())
}

func TestPacer_WaitUsesSleep(t *testing.T) {
	var slept time.Duration
	p := New(time.Second, time.Second, WithSleep(func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}))

	d, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
	assert.Equal(t, time.Second, slept)
}

func TestSleep_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleep_Elapses(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), 5*time.Millisecond))
	require.NoError(t, Sleep(context.Background(), 0))
}
