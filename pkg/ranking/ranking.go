// Package ranking collects posts across accounts and orders them by engagement.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nitterfeed/pkg/errors"
	"nitterfeed/pkg/extractor"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/models"
	"nitterfeed/pkg/ratelimit"
)

const (
	// DefaultTopN is the maximum number of ranked posts kept
	DefaultTopN = 100

	// DefaultPostsPerAccount is the per-account container cap
	DefaultPostsPerAccount = 3
)

// PostSource extracts posts for one account
type PostSource interface {
	Extract(ctx context.Context, mirror string, handle models.Handle, maxPosts int) extractor.Extraction
}

// AccountOutcome summarizes one account's contribution
type AccountOutcome struct {
	Index  int // 1-based
	Total  int
	Handle models.Handle
	Posts  int
	Skips  []extractor.Skip
	Err    error
}

// ProgressFunc is called after each account is processed
type ProgressFunc func(AccountOutcome)

// Options configures an Aggregator
type Options struct {
	PostsPerAccount int
	TopN            int
	Pacer           ratelimit.Pacer
	Progress        ProgressFunc
}

// Result is the outcome of Aggregate
type Result struct {
	// Posts is deduplicated, sorted by engagement descending and truncated
	Posts []models.PostRecord

	// Collected counts every post extracted before ranking
	Collected  int
	Duplicates int

	Accounts       []AccountOutcome
	FailedAccounts int

	// UnexpectedFailures counts failed accounts whose error is not one of
	// the skippable upstream failures
	UnexpectedFailures int
	SkipCounts     map[extractor.SkipReason]int
	Duration       time.Duration
}

// Aggregator walks accounts sequentially and ranks the combined posts
type Aggregator struct {
	source PostSource
	opts   Options
	logger logger.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(source PostSource, opts Options, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.PostsPerAccount <= 0 {
		opts.PostsPerAccount = DefaultPostsPerAccount
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Pacer == nil {
		opts.Pacer = ratelimit.NewRandomPacer(time.Second, 2*time.Second)
	}

	return &Aggregator{source: source, opts: opts, logger: log}
}

// Aggregate extracts posts from every handle in order, pausing between
// accounts, then ranks them. A failing account contributes nothing. The only
// error returned is context cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, mirror string, handles []models.Handle) (Result, error) {
	start := time.Now()
	result := Result{SkipCounts: make(map[extractor.SkipReason]int)}
	var collected []models.PostRecord

	for i, handle := range handles {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("aggregation interrupted after %d/%d accounts: %w", i, len(handles), err)
		}

		extraction := a.source.Extract(ctx, mirror, handle, a.opts.PostsPerAccount)

		outcome := AccountOutcome{
			Index:  i + 1,
			Total:  len(handles),
			Handle: handle,
			Posts:  len(extraction.Posts),
			Skips:  extraction.Skips,
			Err:    extraction.Err,
		}
		result.Accounts = append(result.Accounts, outcome)
		if extraction.Err != nil {
			result.FailedAccounts++
			if !errors.IsSkippable(extraction.Err) {
				result.UnexpectedFailures++
				a.logger.WithError(extraction.Err).WithField("account", handle.String()).Error("Unexpected account failure")
			}
		}
		for _, skip := range extraction.Skips {
			result.SkipCounts[skip.Reason]++
		}
		collected = append(collected, extraction.Posts...)

		logger.LogAccount(a.logger, outcome.Index, outcome.Total, handle.String(), outcome.Posts, len(outcome.Skips), outcome.Err)
		if a.opts.Progress != nil {
			a.opts.Progress(outcome)
		}

		if i < len(handles)-1 {
			if err := a.opts.Pacer.Pause(ctx); err != nil {
				return result, fmt.Errorf("aggregation interrupted after %d/%d accounts: %w", i+1, len(handles), err)
			}
		}
	}

	result.Collected = len(collected)
	result.Posts, result.Duplicates = Rank(collected, a.opts.TopN)
	result.Duration = time.Since(start)

	return result, nil
}

// Rank drops posts whose URL was already seen (first occurrence wins),
// stable-sorts by engagement descending and keeps at most topN. It returns
// the ranked posts and the number of duplicates dropped. The input is not
// modified.
func Rank(posts []models.PostRecord, topN int) ([]models.PostRecord, int) {
	seen := make(map[string]bool, len(posts))
	ranked := make([]models.PostRecord, 0, len(posts))
	duplicates := 0

	for _, p := range posts {
		if seen[p.URL] {
			duplicates++
			continue
		}
		seen[p.URL] = true
		ranked = append(ranked, p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Engagement > ranked[j].Engagement
	})

	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return ranked, duplicates
}
