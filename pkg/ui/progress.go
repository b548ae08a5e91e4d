package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// AccountTracker prints one line per scraped account and keeps totals
type AccountTracker struct {
	console   *Console
	total     int
	done      int
	succeeded int
	failed    int
	posts     int
	startTime time.Time
}

// NewAccountTracker creates a tracker for total accounts
func NewAccountTracker(console *Console, total int) *AccountTracker {
	if console == nil {
		console = std
	}
	return &AccountTracker{
		console:   console,
		total:     total,
		startTime: time.Now(),
	}
}

// Record prints "[i/n] @handle ✓ k posts" or "[i/n] @handle ✗ reason"
func (t *AccountTracker) Record(index int, handle string, posts int, err error) {
	t.done++
	t.posts += posts

	prefix := Dim(fmt.Sprintf("[%d/%d]", index, t.total))
	switch {
	case err != nil:
		t.failed++
		t.console.printf(false, "%s @%s %s %s\n", prefix, handle, Red("✗"), Dim(err.Error()))
	case posts == 0:
		t.succeeded++
		t.console.printf(false, "%s @%s %s\n", prefix, handle, Yellow("✗ no recent posts"))
	default:
		t.succeeded++
		t.console.printf(false, "%s @%s %s\n", prefix, handle, Green(fmt.Sprintf("✓ %d posts", posts)))
	}
}

// Bar returns a progress bar for accounts processed so far
func (t *AccountTracker) Bar() string {
	filled := 0
	if t.total > 0 {
		filled = t.done * barWidth / t.total
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, t.done, t.total)
}

// Elapsed returns the time since the tracker was created
func (t *AccountTracker) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Summary prints the totals
func (t *AccountTracker) Summary() {
	t.console.printf(false, "%s %s\n", Magenta("[ACCOUNTS]"), t.Bar())
	t.console.Info("Posts collected", fmt.Sprintf("%d", t.posts))
	t.console.Info("Accounts failed", fmt.Sprintf("%d", t.failed))
	t.console.Info("Elapsed", t.Elapsed().Round(time.Second).String())
}

// Counts returns succeeded, failed and post totals
func (t *AccountTracker) Counts() (succeeded, failed, posts int) {
	return t.succeeded, t.failed, t.posts
}
