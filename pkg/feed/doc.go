// Package feed renders ranked posts as an RSS 2.0 document.
//
// Each post becomes one item: the canonical post URL is both the guid and the
// link, the title is "@author: " followed by a 120 character preview, and the
// description is an HTML block with the escaped full text and the engagement
// counters. Channel metadata (id, title, author, link, subtitle, language)
// comes from configuration and lastBuildDate is the render time.
//
// The output file is always replaced atomically. WriteFallback produces a
// valid zero-item document with an error subtitle so consumers never see a
// missing or truncated feed. Verify re-parses a written file.
package feed
