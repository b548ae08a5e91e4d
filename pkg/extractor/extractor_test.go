package extractor

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nitterfeed/pkg/errors"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/models"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// item describes one timeline container in a test page
type item struct {
	reshare   bool
	noContent bool
	text      string
	href      string
	likes     string
	retweets  string
	replies   string
	date      string
}

func (it item) html() string {
	var b strings.Builder
	b.WriteString(`<div class="timeline-item">`)
	if it.href != "" {
		fmt.Fprintf(&b, `<a class="tweet-link" href="%s"></a>`, it.href)
	}
	if it.reshare {
		b.WriteString(`<div class="retweet-header"><span class="icon-retweet"></span> retweeted</div>`)
	}
	if it.date != "" {
		fmt.Fprintf(&b, `<span class="tweet-date"><a href="%s" title="%s">1h</a></span>`, it.href, it.date)
	}
	if !it.noContent {
		fmt.Fprintf(&b, `<div class="tweet-content media-body">%s</div>`, it.text)
	}
	b.WriteString(`<div class="tweet-stats">`)
	stat := func(icon, n string) {
		if n != "" {
			fmt.Fprintf(&b, `<span class="tweet-stat"><span class="icon %s"></span><span class="icon-text">%s</span></span>`, icon, n)
		}
	}
	stat("icon-comment", it.replies)
	stat("icon-retweet", it.retweets)
	stat("icon-heart", it.likes)
	b.WriteString(`</div></div>`)
	return b.String()
}

func page(items ...item) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="timeline">`)
	for _, it := range items {
		b.WriteString(it.html())
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

const longText = "Shipping a new release of our inference server today"

func newTestExtractor() *Extractor {
	return New(nil, Options{
		MinTextLength: DefaultMinTextLength,
		Now:           func() time.Time { return fixedNow },
	}, logger.NewNopLogger())
}

func parse(t *testing.T, e *Extractor, html string, maxPosts int) ([]models.PostRecord, []Skip) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return e.ParsePage(doc, "alice", maxPosts)
}

func TestParsePageExtractsPost(t *testing.T) {
	e := newTestExtractor()

	posts, skips := parse(t, e, page(item{
		text:     "  Shipping   a new release\n of our inference server today ",
		href:     "/alice/status/1#m",
		likes:    "1,204",
		retweets: "38",
		replies:  "12",
		date:     "Mar 15, 2024 · 9:30 AM UTC",
	}), 3)

	require.Empty(t, skips)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, models.Handle("alice"), p.Author)
	assert.Equal(t, longText, p.Text)
	assert.Equal(t, "https://twitter.com/alice/status/1", p.URL)
	assert.Equal(t, 1204, p.Likes)
	assert.Equal(t, 38, p.Retweets)
	assert.Equal(t, 12, p.Replies)
	assert.Equal(t, 1204+2*38+12, p.Engagement)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC), p.CreatedAt)
}

func TestParsePageSkipReasons(t *testing.T) {
	tests := []struct {
		name string
		item item
		want SkipReason
	}{
		{"reshare", item{reshare: true, text: longText, href: "/a/status/1"}, SkipReshare},
		{"no content", item{noContent: true, href: "/a/status/2"}, SkipNoContent},
		{"too short", item{text: "gm", href: "/a/status/3"}, SkipTooShort},
		{"whitespace padded short text", item{text: "  short   text   ", href: "/a/status/4"}, SkipTooShort},
		{"no permalink", item{text: longText}, SkipNoPermalink},
		{"stale", item{text: longText, href: "/a/status/5", date: "Mar 14, 2024 · 11:59 AM UTC"}, SkipStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, skips := parse(t, newTestExtractor(), page(tt.item), 3)
			assert.Empty(t, posts)
			require.Len(t, skips, 1)
			assert.Equal(t, Skip{Index: 0, Reason: tt.want}, skips[0])
		})
	}
}

func TestParsePageAgeBoundary(t *testing.T) {
	// Exactly 24h old is kept; only strictly older posts are stale
	posts, skips := parse(t, newTestExtractor(), page(item{
		text: longText, href: "/a/status/1", date: "Mar 14, 2024 · 12:00 PM UTC",
	}), 3)

	assert.Empty(t, skips)
	assert.Len(t, posts, 1)
}

func TestParsePageDefaults(t *testing.T) {
	posts, _ := parse(t, newTestExtractor(), page(item{
		text:  longText,
		href:  "/a/status/1",
		likes: "lots",
		date:  "yesterday-ish",
	}), 3)

	require.Len(t, posts, 1)
	assert.Equal(t, 0, posts[0].Likes)
	assert.Equal(t, 0, posts[0].Retweets)
	assert.Equal(t, 0, posts[0].Replies)
	assert.Equal(t, fixedNow, posts[0].CreatedAt)
}

func TestParsePageCapsContainers(t *testing.T) {
	var items []item
	for i := 0; i < 5; i++ {
		items = append(items, item{text: longText, href: fmt.Sprintf("/a/status/%d", i)})
	}

	posts, _ := parse(t, newTestExtractor(), page(items...), 3)
	require.Len(t, posts, 3)
	assert.Equal(t, "https://twitter.com/a/status/2", posts[2].URL)
}

func TestParsePageCapCountsSkippedContainers(t *testing.T) {
	posts, skips := parse(t, newTestExtractor(), page(
		item{reshare: true, text: longText, href: "/a/status/1"},
		item{text: "short", href: "/a/status/2"},
		item{text: longText, href: "/a/status/3"},
		item{text: longText, href: "/a/status/4"},
	), 3)

	require.Len(t, posts, 1)
	assert.Equal(t, "https://twitter.com/a/status/3", posts[0].URL)
	assert.Equal(t, []Skip{{0, SkipReshare}, {1, SkipTooShort}}, skips)
}

func TestParsePageEmpty(t *testing.T) {
	posts, skips := parse(t, newTestExtractor(), "<html><body></body></html>", 3)
	assert.Empty(t, posts)
	assert.Empty(t, skips)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 1234567, ParseCount(" 1,234,567 "))
	assert.Equal(t, 0, ParseCount(""))
	assert.Equal(t, 0, ParseCount("1.2K"))
	assert.Equal(t, 0, ParseCount("-3"))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("Jan 5, 2024 · 3:04 PM UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 15, 4, 0, 0, time.UTC), got)

	_, err = ParseDate("2024-01-05T15:04:00Z")
	assert.Error(t, err)
}

// stubFetcher returns a fixed document or error
type stubFetcher struct {
	html string
	err  error
	url  string
}

func (s *stubFetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	s.url = url
	if s.err != nil {
		return nil, s.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(s.html))
}

func TestExtract(t *testing.T) {
	fetcher := &stubFetcher{html: page(item{text: longText, href: "/alice/status/9"})}
	e := New(fetcher, Options{MinTextLength: 20, Now: func() time.Time { return fixedNow }}, logger.NewNopLogger())

	result := e.Extract(context.Background(), "https://mirror.example", "alice", 3)

	assert.Equal(t, "https://mirror.example/alice", fetcher.url)
	assert.NoError(t, result.Err)
	assert.Equal(t, models.Handle("alice"), result.Handle)
	assert.Len(t, result.Posts, 1)
}

func TestExtractPageFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.FromStatus(404, "https://mirror.example/ghost")}
	e := New(fetcher, Options{}, logger.NewNopLogger())

	result := e.Extract(context.Background(), "https://mirror.example", "ghost", 3)

	require.Error(t, result.Err)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.TypeOf(result.Err))
	assert.Empty(t, result.Posts)
}
