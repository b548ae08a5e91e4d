package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/models"
	"nitterfeed/pkg/nitter"
	"nitterfeed/pkg/ratelimit"
)

// DefaultRetention is how long a cached snapshot stays fresh
const DefaultRetention = 7 * 24 * time.Hour

// Source records where the resolved accounts came from
type Source string

const (
	SourceCache      Source = "cache"
	SourceNetwork    Source = "network"
	SourceStaleCache Source = "stale_cache"
	SourceNone       Source = "none"
)

// DocumentFetcher fetches and parses a mirror page
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// ListFailure records a list that could not be read
type ListFailure struct {
	List string
	Err  error
}

// ListResult is the outcome of reading one list page
type ListResult struct {
	List    string
	URL     string
	Members []models.Handle
	Err     error
}

// Resolution is the outcome of Resolve
type Resolution struct {
	Accounts []models.Handle
	Source   Source
	Failures []ListFailure

	// CacheAge is the age of the cached snapshot, zero when none was found
	CacheAge time.Duration
}

// Options configures a Resolver
type Options struct {
	Retention    time.Duration
	ForceRefresh bool
	Pacer        ratelimit.Pacer
	Now          func() time.Time
}

// Resolver produces the deduplicated account set for a run
type Resolver struct {
	cache   *Cache
	fetcher DocumentFetcher
	opts    Options
	logger  logger.Logger
}

// NewResolver creates a resolver
func NewResolver(cache *Cache, fetcher DocumentFetcher, opts Options, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Pacer == nil {
		opts.Pacer = ratelimit.NewRandomPacer(2*time.Second, 4*time.Second)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Resolver{
		cache:   cache,
		fetcher: fetcher,
		opts:    opts,
		logger:  log,
	}
}

// Resolve returns the accounts to scrape. It never fails: every problem
// degrades to a cached or empty result and is recorded in Failures.
func (r *Resolver) Resolve(ctx context.Context, mirror string, lists []string) Resolution {
	now := r.opts.Now()

	cached, err := r.cache.Load()
	if err != nil {
		r.logger.WithError(err).WarnWithFields("Ignoring unreadable membership cache", map[string]interface{}{
			"path": r.cache.Path(),
		})
		cached = nil
	}

	var res Resolution
	if cached != nil {
		res.CacheAge = cached.Age(now)
	}

	if cached.IsFresh(now, r.opts.Retention) && !r.opts.ForceRefresh {
		r.logger.InfoWithFields("Using cached list members", map[string]interface{}{
			"accounts":  len(cached.Accounts),
			"cache_age": res.CacheAge.Round(time.Minute),
		})
		res.Accounts = cached.Accounts
		res.Source = SourceCache
		return res
	}

	set := models.NewHandleSet()
	for i, list := range lists {
		result := r.FetchList(ctx, mirror, list)
		if result.Err != nil {
			res.Failures = append(res.Failures, ListFailure{List: list, Err: result.Err})
		}
		for _, h := range result.Members {
			set.Add(h)
		}

		if i < len(lists)-1 {
			if err := r.opts.Pacer.Pause(ctx); err != nil {
				res.Failures = append(res.Failures, ListFailure{List: list, Err: err})
				break
			}
		}
	}

	if set.Len() > 0 {
		res.Accounts = set.Handles()
		res.Source = SourceNetwork

		snapshot := &models.Membership{Accounts: res.Accounts, UpdatedAt: now}
		if err := r.cache.Save(snapshot); err != nil {
			r.logger.WithError(err).Warn("Failed to save membership cache")
		} else {
			r.logger.InfoWithFields("Cached list members", map[string]interface{}{
				"accounts": len(res.Accounts),
				"path":     r.cache.Path(),
			})
		}
		return res
	}

	if cached != nil && len(cached.Accounts) > 0 {
		r.logger.WarnWithFields("No list members fetched, falling back to stale cache", map[string]interface{}{
			"accounts":  len(cached.Accounts),
			"cache_age": res.CacheAge.Round(time.Minute),
		})
		res.Accounts = cached.Accounts
		res.Source = SourceStaleCache
		return res
	}

	r.logger.Warn("No list members fetched and no cache available")
	res.Source = SourceNone
	return res
}

// FetchList reads the members of a single list page
func (r *Resolver) FetchList(ctx context.Context, mirror, list string) ListResult {
	result := ListResult{List: list}

	id, err := nitter.ParseListID(list)
	if err != nil {
		result.Err = err
		r.logger.WithError(err).Warn("Skipping invalid list reference")
		return result
	}
	result.URL = nitter.ListURL(mirror, id)

	doc, err := r.fetcher.FetchDocument(ctx, result.URL)
	if err != nil {
		result.Err = fmt.Errorf("list %s: %w", id, err)
		r.logger.WithError(err).WarnWithFields("Failed to fetch list", map[string]interface{}{
			"list": id,
			"url":  result.URL,
		})
		return result
	}

	result.Members = ParseMembers(doc)
	r.logger.InfoWithFields("Fetched list members", map[string]interface{}{
		"list":    id,
		"members": len(result.Members),
	})
	return result
}

// ParseMembers extracts handles from every a.username anchor, deduplicated
// in page order.
func ParseMembers(doc *goquery.Document) []models.Handle {
	set := models.NewHandleSet()
	doc.Find("a.username").Each(func(_ int, s *goquery.Selection) {
		set.Add(models.NewHandle(s.Text()))
	})
	return set.Handles()
}
