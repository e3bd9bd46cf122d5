// Package logging provides structured logging for the NVX fleet supervisor.
//
// It wraps log/slog so every component logs with the same handler, level
// and default fields (service, version).
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	bridgeLog := logger.With("component", "nvx-bridge")
//	bridgeLog.Warn("registration failed", "endpoint", "0x13", "error", err)
//
// Never log secrets, tokens, or passwords.
package logging
