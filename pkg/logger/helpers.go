package logger

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs an upstream HTTP request at a level matching its outcome
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 500:
		l.WarnWithFields("HTTP request server error", fields)
	default:
		l.WarnWithFields("HTTP request rejected", fields)
	}
}

// LogStage marks a pipeline stage boundary
func LogStage(l Logger, stage string, fields map[string]interface{}) {
	l.WithField("stage", stage).InfoWithFields("Stage completed", fields)
}

// LogAccount logs the outcome of scraping one account
func LogAccount(l Logger, index, total int, handle string, posts, skipped int, err error) {
	fields := map[string]interface{}{
		"account":  handle,
		"progress": fmt.Sprintf("%d/%d", index, total),
		"posts":    posts,
		"skipped":  skipped,
	}

	if err != nil {
		l.WithError(err).WarnWithFields("Account skipped", fields)
		return
	}
	l.InfoWithFields("Account scraped", fields)
}

// LogMetrics logs run totals
func LogMetrics(l Logger, operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}
	l.InfoWithFields("Run metrics", fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
