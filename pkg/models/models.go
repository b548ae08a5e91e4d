package models

import (
	"fmt"
	"strings"
	"time"
)

// Handle is an account name as it appears on a list or timeline page.
type Handle string

// NewHandle normalizes a raw account name: whitespace, a leading '@' and
// trailing slashes are removed. The original casing is preserved.
func NewHandle(raw string) Handle {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "@")
	s = strings.TrimRight(s, "/ ")
	return Handle(s)
}

// Key returns the case-insensitive identity of the handle.
func (h Handle) Key() string {
	return strings.ToLower(string(h))
}

func (h Handle) String() string {
	return string(h)
}

// HandleSet is an insertion-ordered set of handles keyed by Handle.Key.
type HandleSet struct {
	order []Handle
	seen  map[string]bool
}

// NewHandleSet creates an empty set
func NewHandleSet() *HandleSet {
	return &HandleSet{seen: make(map[string]bool)}
}

// Add inserts h unless an equivalent handle is already present. Empty
// handles are ignored. It reports whether the set changed.
func (s *HandleSet) Add(h Handle) bool {
	if h == "" || s.seen[h.Key()] {
		return false
	}
	s.seen[h.Key()] = true
	s.order = append(s.order, h)
	return true
}

// Len returns the number of distinct handles
func (s *HandleSet) Len() int {
	return len(s.order)
}

// Handles returns a copy of the handles in insertion order
func (s *HandleSet) Handles() []Handle {
	out := make([]Handle, len(s.order))
	copy(out, s.order)
	return out
}

// Membership is the persisted snapshot of resolved list members.
type Membership struct {
	Accounts  []Handle  `json:"accounts"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Age returns how long ago the snapshot was taken. A zero UpdatedAt is
// reported as an infinitely old snapshot.
func (m *Membership) Age(now time.Time) time.Duration {
	if m == nil || m.UpdatedAt.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(m.UpdatedAt)
}

// IsFresh reports whether the snapshot is non-empty and younger than retention.
func (m *Membership) IsFresh(now time.Time, retention time.Duration) bool {
	if m == nil || len(m.Accounts) == 0 {
		return false
	}
	return m.Age(now) < retention
}

// PostRecord is a single original post scraped from an account timeline.
// Build it with NewPostRecord so Engagement stays consistent with the counters.
type PostRecord struct {
	Author     Handle    `json:"author"`
	Text       string    `json:"text"`
	URL        string    `json:"url"`
	Likes      int       `json:"likes"`
	Retweets   int       `json:"retweets"`
	Replies    int       `json:"replies"`
	CreatedAt  time.Time `json:"created_at"`
	Engagement int       `json:"engagement"`
}

// Engagement weighs retweets double.
func Engagement(likes, retweets, replies int) int {
	return likes + 2*retweets + replies
}

// NewPostRecord validates the counters and derives the engagement score
func NewPostRecord(author Handle, text, url string, likes, retweets, replies int, createdAt time.Time) (PostRecord, error) {
	if url == "" {
		return PostRecord{}, fmt.Errorf("post by %s has no url", author)
	}
	if likes < 0 || retweets < 0 || replies < 0 {
		return PostRecord{}, fmt.Errorf("post %s has negative counters", url)
	}
	return PostRecord{
		Author:     author,
		Text:       text,
		URL:        url,
		Likes:      likes,
		Retweets:   retweets,
		Replies:    replies,
		CreatedAt:  createdAt,
		Engagement: Engagement(likes, retweets, replies),
	}, nil
}
