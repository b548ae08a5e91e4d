// Package pipeline runs one end-to-end feed generation.
//
// A run is strictly sequential:
//
//	mirror selection → membership resolution → per-account extraction →
//	ranking → feed rendering → verification
//
// Runner.Run is the single error boundary of the program. Component-level
// problems (an unreachable mirror, a missing account, a malformed post) are
// absorbed by the components themselves. Anything that escapes them,
// including a panic or a failure to write the feed, is logged, a fallback
// feed is written once and the error is returned so the process exits
// non-zero. Zero accounts or zero posts are not errors: an empty feed is a
// normal result.
package pipeline
