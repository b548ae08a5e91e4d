// Package extractor turns an account's mirror timeline page into PostRecords.
//
// Only the first few timeline items are examined (three by default). Each
// item yields either a post or a Skip explaining why it was dropped:
// reshares, items without text, text shorter than 20 characters, items
// without a permalink, posts older than 24 hours and items that could not
// be read at all. Missing counters default to zero and a missing or
// unreadable timestamp defaults to the current time.
//
// A page that cannot be fetched yields an Extraction with Err set and no
// posts; it never aborts the run.
package extractor
