// Package logging provides structured logging for arductl.
//
// It wraps a package-level zap logger with convenience functions and a few
// helpers specific to the serial controller link.
//
// # Log Levels
//
//   - Debug: every frame written to or read from the controller (hex + ASCII),
//     per-exchange outcome and timing
//   - Info: connection lifecycle, bridge clients, state resets
//   - Warn: failed detection attempts, rejected bridge requests
//   - Error: startup failures
//
// # Configuration
//
// Logging is silent unless a level is given, either through the --log-level
// flag or the ARDUCTL_LOG_LEVEL environment variable. This keeps the one-shot
// CLI output readable:
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr in zap's console format.
//
// # Frame Logging
//
//	logging.LogFrame("tx", frame)
//	logging.LogExchange(protocol.HeaderNSteps, "ack", elapsed)
//
// LogFrame checks the debug level before formatting, so it is cheap to call on
// every exchange.
package logging
