// Package ui renders user-facing status lines for bix commands.
//
// StatusReporter observes shell executor events and prints concise, colored
// progress lines to standard error, while detailed telemetry continues to
// flow through the zap logger.
package ui
