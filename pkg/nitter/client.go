package nitter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"nitterfeed/pkg/errors"
	"nitterfeed/pkg/logger"
)

const (
	// DefaultRequestTimeout bounds page fetches
	DefaultRequestTimeout = 15 * time.Second

	// DefaultProbeTimeout bounds mirror reachability checks
	DefaultProbeTimeout = 10 * time.Second

	// maxBodySize caps how much of a page is read
	maxBodySize = 8 << 20
)

// Options configures a Client
type Options struct {
	UserAgent      string
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration

	// HTTPClient overrides the default transport, mainly for tests
	HTTPClient *http.Client
}

// Client fetches pages from Nitter mirrors
type Client struct {
	httpClient   *http.Client
	headers      map[string]string
	probeTimeout time.Duration
	reqTimeout   time.Duration
	logger       logger.Logger
}

// NewClient creates a new mirror client
func NewClient(opts Options, log logger.Logger) *Client {
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}

	return &Client{
		httpClient:   httpClient,
		headers:      headers,
		probeTimeout: opts.ProbeTimeout,
		reqTimeout:   opts.RequestTimeout,
		logger:       log,
	}
}

// doRequest performs a GET request with the configured headers
func (c *Client) doRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, err, "failed to create request")
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      rawURL,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Wrap(errors.ErrorTypeNetwork, err, "network error")
	}

	logger.LogRequest(c.logger, req.Method, rawURL, resp.StatusCode, duration)
	return resp, nil
}

// checkResponseStatus maps non-2xx responses to typed errors
func (c *Client) checkResponseStatus(resp *http.Response, rawURL string) error {
	if err := errors.FromStatus(resp.StatusCode, rawURL); err != nil {
		return err
	}
	return nil
}

// FetchDocument fetches rawURL and parses the body as HTML
func (c *Client) FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, c.reqTimeout)
	defer cancel()

	resp, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp, rawURL); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeParsing, err, fmt.Sprintf("failed to parse %s", rawURL))
	}

	return doc, nil
}

// ProbeResult is the outcome of a single mirror reachability check
type ProbeResult struct {
	URL     string
	Status  int
	Latency time.Duration
	Err     error
}

// OK reports whether the mirror answered with a 2xx status
func (r ProbeResult) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Probe issues a GET against the mirror root bounded by the probe timeout
func (c *Client) Probe(ctx context.Context, mirror string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.doRequest(ctx, mirror)
	result := ProbeResult{URL: mirror, Latency: time.Since(start)}
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	result.Status = resp.StatusCode
	if err := c.checkResponseStatus(resp, mirror); err != nil {
		result.Err = err
	}
	return result
}
