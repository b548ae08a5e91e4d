// Package logger provides the structured logging interface used across nitterfeed.
//
// It wraps zerolog behind a small Logger interface so pipeline stages can attach
// fields (run id, mirror, account) without depending on zerolog directly.
// Console output is pretty-printed; when a log file is configured entries are
// written to both the console and the file.
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("mirror selected", map[string]interface{}{
//	    "mirror": "https://nitter.net",
//	})
//
// Tests use NewNopLogger or NewTestLogger, which records every message.
package logger
