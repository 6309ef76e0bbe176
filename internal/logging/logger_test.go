package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesFileLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gurusender.log")

	l, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	l.Get(CategoryCampaign).Info("row sent", zap.Int("row", 2))
	l.Get(CategoryDispatch).Debug("hidden at info")
	l.Get(CategoryBoot).Error("boom")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	ts := `\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`
	assert.Regexp(t, regexp.MustCompile(`^`+ts+`  INFO  campaign  row sent  \{"row": 2\}$`), lines[0])
	assert.Regexp(t, regexp.MustCompile(`^`+ts+`  ERROR  boot  boom$`), lines[1])
}

func TestNew_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0644))

	l, err := New(Options{File: path})
	require.NoError(t, err)
	l.Get(CategoryConfig).Info("reloaded")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous\n"))
	assert.Contains(t, string(data), "config  reloaded")
}

func TestNew_Sinks(t *testing.T) {
	var buf bytes.Buffer
	feed := NewFeed(8)

	l, err := New(Options{Level: "debug", Sinks: []io.Writer{&buf, feed}})
	require.NoError(t, err)

	l.Get(CategorySettings).Debug("word added", zap.String("word", "rifa"))

	assert.Contains(t, buf.String(), "DEBUG  settings  word added")
	select {
	case line := <-feed.Lines():
		assert.Contains(t, line, `word added  {"word": "rifa"}`)
		assert.False(t, strings.HasSuffix(line, "\n"))
	default:
		t.Fatal("feed received nothing")
	}
	require.NoError(t, l.Close())
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "warn", Sinks: []io.Writer{&buf}})
	require.NoError(t, err)

	l.Get(CategoryBoot).Info("quiet")
	assert.Empty(t, buf.String())

	require.NoError(t, l.SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, l.Level())
	l.Get(CategoryBoot).Debug("loud")
	assert.Contains(t, buf.String(), "loud")

	assert.Error(t, l.SetLevel("shouty"))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"INFO":    zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)

	_, err = New(Options{Level: "trace"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Get(CategoryCampaign).Info("discarded")
	assert.NoError(t, l.Close())
}

func TestFeed_DropsWhenFull(t *testing.T) {
	f := NewFeed(2)
	_, _ = f.Write([]byte("a\nb\n"))
	_, _ = f.Write([]byte("c\n"))

	assert.Equal(t, "a", <-f.Lines())
	assert.Equal(t, "b", <-f.Lines())
	assert.EqualValues(t, 1, f.Dropped())
}
