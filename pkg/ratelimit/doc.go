// Package ratelimit provides the advisory pauses nitterfeed inserts between
// upstream requests.
//
// Mirrors are public, volunteer-run services. A run is strictly sequential and
// sleeps for a random duration between consecutive list fetches (2-4s by
// default) and between consecutive accounts (1-2s). Callers pause only
// between items, never after the last one.
//
// Available Implementations:
//
//   - RandomPacer sleeps for a uniformly random duration in [Min, Max]
//   - NopPacer returns immediately and is used in tests
//   - CountingPacer records how many pauses were requested
//
// All pacers honour context cancellation.
//
// Usage:
//
//	pacer := ratelimit.NewRandomPacer(2*time.Second, 4*time.Second)
//	for i, list := range lists {
//	    fetch(list)
//	    if i < len(lists)-1 {
//	        if err := pacer.Pause(ctx); err != nil {
//	            return err
//	        }
//	    }
//	}
package ratelimit
