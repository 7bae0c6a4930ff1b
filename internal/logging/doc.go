// Package logging provides logging utilities for kolibri-server-ctl.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("writing option", "section", section, "key", key)
//	logging.Warn("redis introspection unavailable", "error", err)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Configuring cache backend...")
//	logging.UserSuccess("nginx configuration written to %s", path)
//	logging.UserWarning("redis service is not running, using in-process cache")
//	logging.UserError("Failed to update options file: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
package logging
