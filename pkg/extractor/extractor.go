package extractor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/models"
	"nitterfeed/pkg/nitter"
)

const (
	// DefaultMaxPosts is the per-account container cap
	DefaultMaxPosts = 3

	// DefaultMinTextLength is the shortest accepted post, in characters
	DefaultMinTextLength = 20

	// DefaultMaxAge drops posts older than this
	DefaultMaxAge = 24 * time.Hour

	// DateLayout is the tooltip format of the post date anchor
	DateLayout = "Jan 2, 2006 · 3:04 PM UTC"
)

// SkipReason explains why a timeline item produced no post
type SkipReason string

const (
	SkipReshare     SkipReason = "reshare"
	SkipNoContent   SkipReason = "no_content"
	SkipTooShort    SkipReason = "too_short"
	SkipNoPermalink SkipReason = "no_permalink"
	SkipStale       SkipReason = "stale"
	SkipMalformed   SkipReason = "malformed"
)

// Skip records a dropped timeline item by its position on the page
type Skip struct {
	Index  int
	Reason SkipReason
}

// Extraction is the outcome of scraping one account
type Extraction struct {
	Handle models.Handle
	Posts  []models.PostRecord
	Skips  []Skip
	Err    error
}

// DocumentFetcher fetches and parses a mirror page
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// Options configures an Extractor
type Options struct {
	MinTextLength int
	MaxAge        time.Duration
	CanonicalHost string
	Now           func() time.Time
}

// Extractor scrapes account timelines
type Extractor struct {
	fetcher DocumentFetcher
	opts    Options
	logger  logger.Logger
}

// New creates an extractor
func New(fetcher DocumentFetcher, opts Options, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.MinTextLength < 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.CanonicalHost == "" {
		opts.CanonicalHost = nitter.CanonicalHost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Extractor{fetcher: fetcher, opts: opts, logger: log}
}

// Extract fetches <mirror>/<handle> and parses up to maxPosts timeline items
func (e *Extractor) Extract(ctx context.Context, mirror string, handle models.Handle, maxPosts int) Extraction {
	result := Extraction{Handle: handle}

	url := nitter.ProfileURL(mirror, handle.String())
	doc, err := e.fetcher.FetchDocument(ctx, url)
	if err != nil {
		result.Err = err
		e.logger.WithError(err).DebugWithFields("Failed to fetch timeline", map[string]interface{}{
			"account": handle,
			"url":     url,
		})
		return result
	}

	result.Posts, result.Skips = e.ParsePage(doc, handle, maxPosts)
	return result
}

// ParsePage extracts posts from an already fetched timeline page
func (e *Extractor) ParsePage(doc *goquery.Document, handle models.Handle, maxPosts int) ([]models.PostRecord, []Skip) {
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}

	now := e.opts.Now()
	var posts []models.PostRecord
	var skips []Skip

	items := doc.Find("div.timeline-item")
	if items.Length() > maxPosts {
		items = items.Slice(0, maxPosts)
	}

	items.Each(func(i int, item *goquery.Selection) {
		post, reason := e.parseItem(item, handle, now)
		if reason != "" {
			skips = append(skips, Skip{Index: i, Reason: reason})
			return
		}
		posts = append(posts, post)
	})

	if len(skips) > 0 {
		e.logger.DebugWithFields("Skipped timeline items", map[string]interface{}{
			"account": handle,
			"skipped": len(skips),
			"posts":   len(posts),
		})
	}

	return posts, skips
}

// parseItem reads a single timeline item. Any panic while reading the item
// is reported as SkipMalformed.
func (e *Extractor) parseItem(item *goquery.Selection, handle models.Handle, now time.Time) (post models.PostRecord, reason SkipReason) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WarnWithFields("Malformed timeline item", map[string]interface{}{
				"account": handle,
				"panic":   fmt.Sprint(r),
			})
			post, reason = models.PostRecord{}, SkipMalformed
		}
	}()

	if item.Find("div.retweet-header").Length() > 0 {
		return post, SkipReshare
	}

	content := item.Find("div.tweet-content").First()
	if content.Length() == 0 {
		return post, SkipNoContent
	}

	text := NormalizeText(content.Text())
	if utf8.RuneCountInString(text) < e.opts.MinTextLength {
		return post, SkipTooShort
	}

	href, _ := item.Find("a.tweet-link").First().Attr("href")
	if strings.TrimSpace(href) == "" {
		return post, SkipNoPermalink
	}
	url := nitter.CanonicalPostURL(e.opts.CanonicalHost, href)

	likes, retweets, replies := parseStats(item)

	createdAt := now
	if title, ok := item.Find("span.tweet-date a").First().Attr("title"); ok {
		if t, err := ParseDate(title); err == nil {
			createdAt = t
		}
	}

	if now.Sub(createdAt) > e.opts.MaxAge {
		return post, SkipStale
	}

	record, err := models.NewPostRecord(handle, text, url, likes, retweets, replies, createdAt)
	if err != nil {
		return post, SkipMalformed
	}
	return record, ""
}

// parseStats reads the like, reshare and reply counters
func parseStats(item *goquery.Selection) (likes, retweets, replies int) {
	item.Find("div.tweet-stats span.tweet-stat").Each(func(_ int, stat *goquery.Selection) {
		icon := stat.Find("span.icon").First()
		num := stat.Find("span.icon-text").First()
		if icon.Length() == 0 || num.Length() == 0 {
			return
		}

		n := ParseCount(num.Text())
		switch {
		case icon.HasClass("icon-retweet"):
			retweets = n
		case icon.HasClass("icon-heart"):
			likes = n
		case icon.HasClass("icon-comment"):
			replies = n
		}
	})
	return likes, retweets, replies
}

// ParseCount parses a counter such as "1,234". Anything unparseable or
// negative is zero.
func ParseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseDate parses a date tooltip such as "Mar 15, 2024 · 10:30 AM UTC"
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// NormalizeText collapses runs of whitespace into single spaces
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
