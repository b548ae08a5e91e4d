package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleQuietMode(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Info("Mirror", "https://nitter.net")
	assert.Contains(t, buf.String(), "Mirror")
	assert.Contains(t, buf.String(), "https://nitter.net")

	buf.Reset()
	c.SetQuiet(true)
	c.Info("Mirror", "hidden")
	c.Success("hidden")
	c.Warning("hidden")
	assert.Empty(t, buf.String())

	c.Error("render failed", errors.New("disk full"))
	assert.Contains(t, buf.String(), "render failed: disk full")
}

func TestAccountTracker(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewAccountTracker(NewConsole(&buf), 3)

	tracker.Record(1, "alice", 2, nil)
	tracker.Record(2, "ghost", 0, errors.New("not found"))
	tracker.Record(3, "bob", 0, nil)

	out := buf.String()
	assert.Contains(t, out, "[1/3]")
	assert.Contains(t, out, "@alice")
	assert.Contains(t, out, "✓ 2 posts")
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "no recent posts")

	succeeded, failed, posts := tracker.Counts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, posts)
	assert.Contains(t, tracker.Bar(), "3/3")
}

func TestAccountTrackerBarNoAccounts(t *testing.T) {
	tracker := NewAccountTracker(NewConsole(&bytes.Buffer{}), 0)
	assert.Contains(t, tracker.Bar(), "0/0")
}
