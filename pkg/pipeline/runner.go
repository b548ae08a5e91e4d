package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"nitterfeed/pkg/config"
	"nitterfeed/pkg/extractor"
	"nitterfeed/pkg/feed"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/membership"
	"nitterfeed/pkg/nitter"
	"nitterfeed/pkg/ranking"
	"nitterfeed/pkg/ratelimit"
	"nitterfeed/pkg/ui"
)

// Report summarizes a run
type Report struct {
	RunID      string
	Mirror     nitter.Selection
	Membership membership.Resolution
	Ranking    ranking.Result
	Output     feed.WriteResult
	Verified   feed.VerifyResult

	// Fallback is set when the fallback feed was written
	Fallback bool
	Duration time.Duration
}

// Runner wires the components together for a run
type Runner struct {
	cfg          *config.Config
	httpClient   *http.Client
	listPacer    ratelimit.Pacer
	accountPacer ratelimit.Pacer
	now          func() time.Time
	console      *ui.Console
	logger       logger.Logger
}

// Option customizes a Runner
type Option func(*Runner)

// WithHTTPClient overrides the HTTP transport
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) { r.httpClient = c }
}

// WithPacers overrides the pauses between lists and between accounts
func WithPacers(list, account ratelimit.Pacer) Option {
	return func(r *Runner) {
		r.listPacer = list
		r.accountPacer = account
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithConsole overrides the console used for progress output
func WithConsole(c *ui.Console) Option {
	return func(r *Runner) { r.console = c }
}

// WithLogger overrides the logger
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a runner for cfg
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:          cfg,
		listPacer:    ratelimit.NewRandomPacer(cfg.RateLimit.ListPauseMin, cfg.RateLimit.ListPauseMax),
		accountPacer: ratelimit.NewRandomPacer(cfg.RateLimit.AccountPauseMin, cfg.RateLimit.AccountPauseMax),
		now:          time.Now,
		console:      ui.Default(),
		logger:       logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Client builds the mirror client for this runner's configuration
func (r *Runner) Client(log logger.Logger) *nitter.Client {
	return nitter.NewClient(nitter.Options{
		UserAgent:      r.cfg.Nitter.UserAgent,
		RequestTimeout: r.cfg.Nitter.RequestTimeout,
		ProbeTimeout:   r.cfg.Nitter.ProbeTimeout,
		HTTPClient:     r.httpClient,
	}, log)
}

func (r *Runner) resolver(client *nitter.Client, log logger.Logger) *membership.Resolver {
	return membership.NewResolver(
		membership.NewCache(r.cfg.Lists.CacheFile),
		client,
		membership.Options{
			Retention:    r.cfg.Lists.CacheRetention,
			ForceRefresh: r.cfg.Lists.ForceRefresh,
			Pacer:        r.listPacer,
			Now:          r.now,
		},
		log,
	)
}

// ResolveMembers selects a mirror and resolves list membership without
// scraping any timelines.
func (r *Runner) ResolveMembers(ctx context.Context) (nitter.Selection, membership.Resolution) {
	client := r.Client(r.logger)
	sel := r.selectMirror(ctx, client, r.logger)
	return sel, r.resolver(client, r.logger).Resolve(ctx, sel.URL, r.cfg.Lists.URLs)
}

func (r *Runner) selectMirror(ctx context.Context, client *nitter.Client, log logger.Logger) nitter.Selection {
	sel := nitter.SelectMirror(ctx, client, r.cfg.Nitter.Instances)
	fields := map[string]interface{}{
		"mirror": sel.URL,
		"probes": len(sel.Probes),
	}
	if sel.Fallback {
		log.WarnWithFields("No mirror reachable, using first candidate", fields)
		r.console.Warning("No mirror reachable, falling back to " + sel.URL)
	} else {
		logger.LogStage(log, "mirror", fields)
		r.console.Info("Mirror", sel.URL)
	}
	return sel
}

// Run performs one feed generation. On any unrecovered failure the fallback
// feed is written and the original error is returned wrapped.
func (r *Runner) Run(ctx context.Context) (report Report, err error) {
	start := r.now()
	report.RunID = uuid.NewString()
	log := r.logger.WithField("run_id", report.RunID)
	renderer := feed.NewRenderer(r.cfg.Feed, log)

	defer func() {
		if rec := recover(); rec != nil {
			log.ErrorWithFields("Run panicked", map[string]interface{}{
				"panic": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
			})
			err = fmt.Errorf("run %s panicked: %v", report.RunID, rec)
		}
		report.Duration = r.now().Sub(start)
		if err == nil {
			return
		}

		log.WithError(err).Error("Feed generation failed")
		r.console.Error("Feed generation failed", err)

		report.Fallback = true
		out, ferr := renderer.WriteFallback(r.now(), err)
		if ferr != nil {
			log.WithError(ferr).Error("Failed to write fallback feed")
			r.console.Error("Could not write fallback feed", ferr)
			err = stderrors.Join(err, fmt.Errorf("fallback feed: %w", ferr))
			return
		}
		report.Output = out
		r.console.Warning("Fallback feed written to " + out.Path)
	}()

	log.InfoWithFields("Starting feed generation", map[string]interface{}{
		"lists":     len(r.cfg.Lists.URLs),
		"instances": len(r.cfg.Nitter.Instances),
		"output":    r.cfg.Feed.OutputPath,
	})

	client := r.Client(log)

	r.console.Stage("Selecting mirror")
	report.Mirror = r.selectMirror(ctx, client, log)

	r.console.Stage("Resolving list members")
	report.Membership = r.resolver(client, log).Resolve(ctx, report.Mirror.URL, r.cfg.Lists.URLs)
	logger.LogStage(log, "membership", map[string]interface{}{
		"source":        string(report.Membership.Source),
		"accounts":      len(report.Membership.Accounts),
		"list_failures": len(report.Membership.Failures),
	})
	r.console.Info("Source", string(report.Membership.Source))
	r.console.Info("Accounts", fmt.Sprintf("%d", len(report.Membership.Accounts)))

	// An interrupted run must not publish a partial feed as if it were complete
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}

	if len(report.Membership.Accounts) == 0 {
		log.Warn("No accounts resolved, writing empty feed")
		r.console.Warning("No accounts found, writing empty feed")
	}

	r.console.Stage("Fetching posts")
	tracker := ui.NewAccountTracker(r.console, len(report.Membership.Accounts))
	ext := extractor.New(client, extractor.Options{
		MinTextLength: r.cfg.Scrape.MinTextLength,
		MaxAge:        r.cfg.Scrape.MaxPostAge,
		CanonicalHost: r.cfg.Nitter.CanonicalHost,
		Now:           r.now,
	}, log)
	agg := ranking.NewAggregator(ext, ranking.Options{
		PostsPerAccount: r.cfg.Scrape.PostsPerAccount,
		TopN:            r.cfg.Scrape.TopN,
		Pacer:           r.accountPacer,
		Progress: func(o ranking.AccountOutcome) {
			tracker.Record(o.Index, o.Handle.String(), o.Posts, o.Err)
		},
	}, log)

	report.Ranking, err = agg.Aggregate(ctx, report.Mirror.URL, report.Membership.Accounts)
	if err != nil {
		return report, err
	}
	tracker.Summary()

	skips := make(map[string]interface{}, len(report.Ranking.SkipCounts))
	for reason, n := range report.Ranking.SkipCounts {
		skips[string(reason)] = n
	}
	logger.LogStage(log, "ranking", map[string]interface{}{
		"collected":  report.Ranking.Collected,
		"ranked":     len(report.Ranking.Posts),
		"duplicates": report.Ranking.Duplicates,
		"failed":     report.Ranking.FailedAccounts,
		"unexpected": report.Ranking.UnexpectedFailures,
		"skips":      skips,
	})

	if len(report.Ranking.Posts) == 0 {
		log.Warn("No posts collected, writing empty feed")
		r.console.Warning("No posts fetched, writing empty feed")
	}

	r.console.Stage("Rendering feed")
	report.Output, err = renderer.Write(report.Ranking.Posts, r.now())
	if err != nil {
		return report, fmt.Errorf("write feed: %w", err)
	}

	report.Verified, err = feed.Verify(report.Output.Path)
	if err != nil {
		return report, fmt.Errorf("verify feed: %w", err)
	}

	r.console.Success(fmt.Sprintf("RSS feed written: %s (%s, %d posts)",
		report.Verified.Path, humanize.Bytes(uint64(report.Verified.Bytes)), report.Verified.Items))

	logger.LogMetrics(log, "run", map[string]interface{}{
		"mirror":   report.Mirror.URL,
		"accounts": len(report.Membership.Accounts),
		"posts":    report.Verified.Items,
		"bytes":    report.Verified.Bytes,
		"duration": r.now().Sub(start),
	})

	return report, nil
}
