package nitter

import (
	"context"
)

// Prober checks whether a mirror is reachable
type Prober interface {
	Probe(ctx context.Context, mirror string) ProbeResult
}

// Selection is the mirror chosen for a run
type Selection struct {
	URL string

	// Fallback is set when no candidate answered and the first one was used anyway
	Fallback bool

	// Probes holds the checks performed, in order, up to and including the winner
	Probes []ProbeResult
}

// SelectMirror probes candidates in order and returns the first reachable one.
// When none answers with a 2xx status the first candidate is returned with
// Fallback set. Candidates are never probed in parallel and never retried.
func SelectMirror(ctx context.Context, p Prober, candidates []string) Selection {
	var sel Selection
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}
		result := p.Probe(ctx, candidate)
		sel.Probes = append(sel.Probes, result)
		if result.OK() {
			sel.URL = candidate
			return sel
		}
	}

	if len(candidates) > 0 {
		sel.URL = candidates[0]
	}
	sel.Fallback = true
	return sel
}

// ProbeAll checks every candidate without short-circuiting
func ProbeAll(ctx context.Context, p Prober, candidates []string) []ProbeResult {
	results := make([]ProbeResult, 0, len(candidates))
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			results = append(results, ProbeResult{URL: candidate, Err: ctx.Err()})
			continue
		}
		results = append(results, p.Probe(ctx, candidate))
	}
	return results
}
