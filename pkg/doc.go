// Package pkg provides shared utilities for the bitusb stack.
//
// This package contains common functionality used across the device core,
// the line simulator and the simulated host, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel errors for framing and protocol failures
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with component context. The default
// level is Warn; the interrupt path only logs at Debug and Trace, so it stays
// silent unless explicitly enabled:
//
//	pkg.SetLogLevel(pkg.ParseLevel("debug"))
//	pkg.LogDebug(pkg.ComponentRx, "frame dropped", "err", pkg.ErrCRC)
//
// # Errors
//
// Framing and protocol failures are sentinel values:
//
//	if errors.Is(err, pkg.ErrNoResponse) {
//	    // retry the transaction
//	}
package pkg
