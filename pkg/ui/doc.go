// Package ui prints human-facing run diagnostics to the terminal.
//
// Output is styled with lipgloss and degrades to plain text when the output
// is not a terminal. Quiet mode suppresses everything except errors. The
// structured log written by pkg/logger is separate from this output.
package ui
