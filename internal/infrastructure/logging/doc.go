// Package logging provides structured logging for the deck bridge.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stderr"   # stdout, stderr, file
//	  file:
//	    path: "./logs/ulcdeck.log"
//
// The Stream Deck application does not surface plugin stdout, so a file
// output is the usual choice for installed plugins.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("relay listening", "channel", "ulc", "addr", addr)
//	logger.Error("profile switch failed", "error", err)
//
// # Security
//
// Never log secrets (MQTT password, InfluxDB token).
package logging
