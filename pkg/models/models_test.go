package models

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandle(t *testing.T) {
	tests := []struct {
		raw  string
		want Handle
	}{
		{"@alice", "alice"},
		{"  @Bob ", "Bob"},
		{"carol/", "carol"},
		{"dave", "dave"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewHandle(tt.raw), "raw=%q", tt.raw)
	}
}

func TestHandleSetDeduplicatesCaseInsensitively(t *testing.T) {
	set := NewHandleSet()

	assert.True(t, set.Add(NewHandle("@Alice")))
	assert.False(t, set.Add(NewHandle("alice")))
	assert.True(t, set.Add(NewHandle("bob")))
	assert.False(t, set.Add(""))

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []Handle{"Alice", "bob"}, set.Handles())
}

func TestEngagementProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		likes, retweets, replies := rng.Intn(1_000_000), rng.Intn(1_000_000), rng.Intn(1_000_000)

		post, err := NewPostRecord("alice", "some text", "https://twitter.com/alice/status/1", likes, retweets, replies, time.Now())
		require.NoError(t, err)
		assert.Equal(t, likes+2*retweets+replies, post.Engagement)
	}
}

func TestNewPostRecordRejectsInvalidInput(t *testing.T) {
	_, err := NewPostRecord("alice", "text", "", 1, 1, 1, time.Now())
	assert.Error(t, err)

	_, err = NewPostRecord("alice", "text", "https://twitter.com/alice/status/1", -1, 0, 0, time.Now())
	assert.Error(t, err)
}

func TestMembershipFreshness(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	retention := 7 * 24 * time.Hour

	fresh := &Membership{Accounts: []Handle{"alice"}, UpdatedAt: now.Add(-24 * time.Hour)}
	assert.True(t, fresh.IsFresh(now, retention))

	boundary := &Membership{Accounts: []Handle{"alice"}, UpdatedAt: now.Add(-retention)}
	assert.False(t, boundary.IsFresh(now, retention))

	empty := &Membership{UpdatedAt: now}
	assert.False(t, empty.IsFresh(now, retention))

	undated := &Membership{Accounts: []Handle{"alice"}}
	assert.False(t, undated.IsFresh(now, retention))

	var missing *Membership
	assert.False(t, missing.IsFresh(now, retention))
}
