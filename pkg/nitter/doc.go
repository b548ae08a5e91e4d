// Package nitter provides HTTP access to Nitter mirrors, the public read-only
// front-ends that nitterfeed scrapes instead of the source platform.
//
// The Client sends plain GET requests with a configured User-Agent, maps
// non-2xx responses to typed errors from pkg/errors and parses HTML bodies
// into goquery documents. Requests are never retried.
//
// Mirror selection probes the configured candidates in order and picks the
// first one that answers with a 2xx status:
//
//	client := nitter.NewClient(nitter.Options{UserAgent: ua}, log)
//	sel := nitter.SelectMirror(ctx, client, cfg.Nitter.Instances)
//	if sel.Fallback {
//	    log.Warn("no mirror reachable, using first candidate")
//	}
//	doc, err := client.FetchDocument(ctx, nitter.ProfileURL(sel.URL, "alice"))
package nitter
